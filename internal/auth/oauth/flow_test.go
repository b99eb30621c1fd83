package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xplore/internal/auth"
	pkgoauth "xplore/pkg/oauth"
)

// fakeProvider simulates the authorization server: the injected browser
// opener plays the user's browser, capturing the PKCE challenge and
// driving the redirect back to the local callback server.
type fakeProvider struct {
	mu            sync.Mutex
	codeChallenge string

	// redirect controls what the "browser" sends to the callback server.
	// Defaults to a well-formed code+state redirect.
	redirect func(redirectURI string, query url.Values)
}

func (p *fakeProvider) opener(t *testing.T) func(string) error {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		if err != nil {
			return err
		}
		q := u.Query()

		p.mu.Lock()
		p.codeChallenge = q.Get("code_challenge")
		redirect := p.redirect
		p.mu.Unlock()

		if redirect == nil {
			redirect = func(redirectURI string, query url.Values) {
				callbackGet(t, redirectURI, url.Values{
					"code":  {"good-code"},
					"state": {query.Get("state")},
				})
			}
		}
		go redirect(q.Get("redirect_uri"), q)
		return nil
	}
}

func (p *fakeProvider) challenge() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.codeChallenge
}

func callbackGet(t *testing.T, redirectURI string, params url.Values) {
	resp, err := http.Get(redirectURI + "?" + params.Encode())
	if err != nil {
		t.Logf("callback request error: %v", err)
		return
	}
	resp.Body.Close()
}

func newTokenEndpoint(t *testing.T, provider *fakeProvider) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		assert.Equal(t, "good-code", r.FormValue("code"))

		// The PKCE verifier in the exchange must hash to the challenge
		// the authorization request carried.
		verifier := r.FormValue("code_verifier")
		if pkgoauth.S256Challenge(verifier) != provider.challenge() {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "flow-access",
			"token_type":    "bearer",
			"refresh_token": "flow-refresh",
			"expires_in":    7200,
			"scope":         DefaultScopes,
		})
	}))
}

func newFlowFixture(t *testing.T, provider *fakeProvider) (*Flow, *auth.PKCEStrategy, *DiskTokenStore, func()) {
	t.Helper()

	tokenSrv := newTokenEndpoint(t, provider)
	store := newTestStore(t)
	client := pkgoauth.NewClient(pkgoauth.Endpoints{
		AuthorizationEndpoint: "https://auth.example.com/authorize",
		TokenEndpoint:         tokenSrv.URL,
	}, "test-client-id")
	strategy := auth.NewPKCEStrategy(client, store)

	flow := NewFlow(strategy, client, WithBrowserOpener(provider.opener(t)))
	return flow, strategy, store, tokenSrv.Close
}

func TestFlow_Login_Success(t *testing.T) {
	provider := &fakeProvider{}
	flow, strategy, store, cleanup := newFlowFixture(t, provider)
	defer cleanup()

	token, err := flow.Login(context.Background())
	require.NoError(t, err)
	require.NotNil(t, token)

	assert.Equal(t, "flow-access", token.AccessToken)
	assert.Equal(t, "flow-refresh", token.RefreshToken)
	assert.False(t, token.ExpiresAt.IsZero(), "expires_in should be resolved to an absolute expiry")

	assert.Equal(t, auth.FlowAuthenticated, strategy.State())

	persisted, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, persisted, "login must persist the token")
	assert.Equal(t, "flow-access", persisted.AccessToken)
}

func TestFlow_Login_StateMismatch(t *testing.T) {
	provider := &fakeProvider{
		redirect: func(redirectURI string, query url.Values) {
			callbackGet(t, redirectURI, url.Values{
				"code":  {"good-code"},
				"state": {"forged-state"},
			})
		},
	}
	flow, strategy, store, cleanup := newFlowFixture(t, provider)
	defer cleanup()

	_, err := flow.Login(context.Background())
	require.Error(t, err)

	var authErr *auth.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "authorize", authErr.Op)
	assert.False(t, authErr.Fatal)

	assert.Equal(t, auth.FlowIdle, strategy.State())

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, persisted, "no token may be persisted on a forged redirect")
}

func TestFlow_Login_ProviderDenied(t *testing.T) {
	provider := &fakeProvider{
		redirect: func(redirectURI string, query url.Values) {
			callbackGet(t, redirectURI, url.Values{
				"error":             {"access_denied"},
				"error_description": {"User denied access"},
			})
		},
	}
	flow, strategy, _, cleanup := newFlowFixture(t, provider)
	defer cleanup()

	_, err := flow.Login(context.Background())
	require.Error(t, err)

	var authErr *auth.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "authorize", authErr.Op)
	assert.Contains(t, err.Error(), "access_denied")

	assert.Equal(t, auth.FlowIdle, strategy.State())
}

func TestFlow_Login_ExchangeFailure(t *testing.T) {
	failingSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer failingSrv.Close()

	provider := &fakeProvider{}
	store := newTestStore(t)
	client := pkgoauth.NewClient(pkgoauth.Endpoints{
		AuthorizationEndpoint: "https://auth.example.com/authorize",
		TokenEndpoint:         failingSrv.URL,
	}, "test-client-id")
	strategy := auth.NewPKCEStrategy(client, store)
	flow := NewFlow(strategy, client, WithBrowserOpener(provider.opener(t)))

	_, err := flow.Login(context.Background())
	require.Error(t, err)

	var authErr *auth.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "exchange", authErr.Op)

	assert.Equal(t, auth.FlowIdle, strategy.State())
}

func TestFlow_Login_ContextCancelled(t *testing.T) {
	// A browser opener that never delivers a callback.
	provider := &fakeProvider{
		redirect: func(string, url.Values) {},
	}
	flow, strategy, _, cleanup := newFlowFixture(t, provider)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	go cancel()

	_, err := flow.Login(ctx)
	require.Error(t, err)
	assert.Equal(t, auth.FlowIdle, strategy.State())
}

func TestFlow_AuthURLHandler(t *testing.T) {
	provider := &fakeProvider{}
	tokenSrv := newTokenEndpoint(t, provider)
	defer tokenSrv.Close()

	store := newTestStore(t)
	client := pkgoauth.NewClient(pkgoauth.Endpoints{
		AuthorizationEndpoint: "https://auth.example.com/authorize",
		TokenEndpoint:         tokenSrv.URL,
	}, "test-client-id")
	strategy := auth.NewPKCEStrategy(client, store)

	var sawURL string
	flow := NewFlow(strategy, client,
		WithBrowserOpener(provider.opener(t)),
		WithAuthURLHandler(func(u string) { sawURL = u }),
		WithScopes("tweet.read users.read"),
	)

	_, err := flow.Login(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, sawURL)
	u, err := url.Parse(sawURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "test-client-id", q.Get("client_id"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.Equal(t, "tweet.read users.read", q.Get("scope"))
	assert.NotEmpty(t, q.Get("state"))
}
