package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Endpoints{
		AuthorizationEndpoint: srv.URL + "/authorize",
		TokenEndpoint:         srv.URL + "/token",
	}, "client-123", opts...)
}

func TestExchangeCode(t *testing.T) {
	var gotForm url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-1","token_type":"bearer","refresh_token":"rt-1","expires_in":7200,"scope":"tweet.read users.read"}`))
	})

	token, err := client.ExchangeCode(context.Background(), "code-xyz", "http://127.0.0.1:8477/callback", "verifier-abc")
	require.NoError(t, err)

	assert.Equal(t, "authorization_code", gotForm.Get("grant_type"))
	assert.Equal(t, "code-xyz", gotForm.Get("code"))
	assert.Equal(t, "verifier-abc", gotForm.Get("code_verifier"))
	assert.Equal(t, "client-123", gotForm.Get("client_id"))

	assert.Equal(t, "at-1", token.AccessToken)
	assert.Equal(t, "rt-1", token.RefreshToken)
	assert.Equal(t, []string{"tweet.read", "users.read"}, token.Scopes())
	// ExpiresAt must be derived from expires_in.
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), token.ExpiresAt, time.Minute)
}

func TestRefreshToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "rt-old", r.PostForm.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-2","refresh_token":"rt-new","expires_in":7200}`))
	})

	token, err := client.RefreshToken(context.Background(), "rt-old")
	require.NoError(t, err)
	assert.Equal(t, "at-2", token.AccessToken)
	assert.Equal(t, "rt-new", token.RefreshToken)
}

func TestRefreshTokenSendsBasicAuthForConfidentialClients(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client-123", user)
		assert.Equal(t, "s3cret", pass)
		w.Write([]byte(`{"access_token":"at"}`))
	}, WithClientSecret("s3cret"))

	_, err := client.RefreshToken(context.Background(), "rt")
	require.NoError(t, err)
}

func TestTokenRequestErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	})

	_, err := client.RefreshToken(context.Background(), "rt-revoked")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestBuildAuthorizationURL(t *testing.T) {
	client := NewClient(Endpoints{
		AuthorizationEndpoint: "https://provider.example.com/i/oauth2/authorize",
		TokenEndpoint:         "https://provider.example.com/2/oauth2/token",
	}, "client-123")

	pkce := &PKCEChallenge{
		CodeVerifier:        "verifier",
		CodeChallenge:       "challenge",
		CodeChallengeMethod: "S256",
		State:               "state-1",
	}

	raw, err := client.BuildAuthorizationURL("http://127.0.0.1:8477/callback", "tweet.read offline.access", pkce)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-123", q.Get("client_id"))
	assert.Equal(t, "challenge", q.Get("code_challenge"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "tweet.read offline.access", q.Get("scope"))
	// The verifier itself must never appear in the authorization URL.
	assert.NotContains(t, raw, "verifier")
}

func TestTokenExpiry(t *testing.T) {
	fresh := &Token{AccessToken: "a", ExpiresAt: time.Now().Add(time.Hour)}
	assert.False(t, fresh.IsExpired())
	assert.False(t, fresh.NeedsRefresh())

	stale := &Token{AccessToken: "a", ExpiresAt: time.Now().Add(time.Minute)}
	assert.False(t, stale.IsExpired())
	assert.True(t, stale.NeedsRefresh())

	expired := &Token{AccessToken: "a", ExpiresAt: time.Now().Add(-time.Minute)}
	assert.True(t, expired.IsExpired())

	forever := &Token{AccessToken: "a"}
	assert.False(t, forever.IsExpired())
	assert.False(t, forever.NeedsRefresh())
}
