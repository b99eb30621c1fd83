package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xplore/internal/credentials"
)

func newGetRequest(t *testing.T, url string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	return req
}

func TestDetectMethodPriority(t *testing.T) {
	oauth1 := credentials.Credentials{
		APIKey: "ck", APISecret: "cs", AccessToken: "tk", AccessTokenSecret: "ts",
	}
	everything := oauth1
	everything.ClientID = "cid"
	everything.BearerToken = "bt"

	tests := []struct {
		name  string
		creds credentials.Credentials
		want  Method
	}{
		{"empty", credentials.Credentials{}, MethodNone},
		{"bearer only", credentials.Credentials{BearerToken: "bt"}, MethodBearer},
		{"oauth1 quadruple", oauth1, MethodOAuth1},
		{"client id only", credentials.Credentials{ClientID: "cid"}, MethodOAuth2PKCE},
		{"oauth1 beats bearer", func() credentials.Credentials {
			c := oauth1
			c.BearerToken = "bt"
			return c
		}(), MethodOAuth1},
		{"oauth2 beats everything", everything, MethodOAuth2PKCE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMethod(tt.creds))
		})
	}
}

func TestNewStrategySelectsVariant(t *testing.T) {
	endpoint := &fakeTokenEndpoint{}
	store := &memoryStore{}

	s, err := NewStrategy(credentials.Credentials{ClientID: "cid"}, endpoint, store)
	require.NoError(t, err)
	assert.Equal(t, MethodOAuth2PKCE, s.Method())
	assert.True(t, s.SupportsUserContext())

	s, err = NewStrategy(credentials.Credentials{
		APIKey: "ck", APISecret: "cs", AccessToken: "tk", AccessTokenSecret: "ts",
	}, endpoint, store)
	require.NoError(t, err)
	assert.Equal(t, MethodOAuth1, s.Method())

	s, err = NewStrategy(credentials.Credentials{BearerToken: "bt"}, endpoint, store)
	require.NoError(t, err)
	assert.Equal(t, MethodBearer, s.Method())
	assert.False(t, s.SupportsUserContext())
}

func TestNewStrategyWithoutCredentials(t *testing.T) {
	_, err := NewStrategy(credentials.Credentials{}, &fakeTokenEndpoint{}, &memoryStore{})

	var credErr *CredentialError
	require.ErrorAs(t, err, &credErr)
}

func TestBearerPrepare(t *testing.T) {
	s := NewBearerStrategy("app-only-token")

	req := newGetRequest(t, "https://api.x.com/2/tweets/search/recent?query=go")
	require.NoError(t, s.Prepare(req))
	assert.Equal(t, "Bearer app-only-token", req.Header.Get("Authorization"))
}
