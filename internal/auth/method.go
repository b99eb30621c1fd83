// Package auth selects and implements the authentication strategies for the
// X API: OAuth 2.0 authorization code with PKCE, OAuth 1.0a HMAC-SHA1
// request signing, and app-only bearer tokens.
package auth

import (
	"net/http"

	"xplore/internal/credentials"
)

// Method identifies which authentication strategy is active.
// It is derived once from the resolved credentials and never changes for
// the process lifetime.
type Method int

const (
	// MethodNone means no usable credentials were found.
	MethodNone Method = iota

	// MethodOAuth2PKCE is OAuth 2.0 authorization code with PKCE.
	MethodOAuth2PKCE

	// MethodOAuth1 is OAuth 1.0a HMAC-SHA1 user-context signing.
	MethodOAuth1

	// MethodBearer is an app-only static bearer token.
	MethodBearer
)

// String returns the human-readable method name.
func (m Method) String() string {
	switch m {
	case MethodOAuth2PKCE:
		return "OAuth 2.0 PKCE"
	case MethodOAuth1:
		return "OAuth 1.0a"
	case MethodBearer:
		return "bearer token"
	default:
		return "none"
	}
}

// DetectMethod picks the best available auth method from a credential set.
// Preference: OAuth 2.0 PKCE > OAuth 1.0a > bearer-only.
func DetectMethod(creds credentials.Credentials) Method {
	switch {
	case creds.HasOAuth2():
		return MethodOAuth2PKCE
	case creds.HasOAuth1():
		return MethodOAuth1
	case creds.HasBearer():
		return MethodBearer
	default:
		return MethodNone
	}
}

// Strategy is the common contract of the three authentication strategies.
// A strategy signs or decorates an outgoing request; the request is owned
// exclusively by its caller after Prepare returns.
type Strategy interface {
	// Prepare attaches the authorization header or parameters to the
	// request. For OAuth 2.0 this may block briefly while an expired token
	// is refreshed.
	Prepare(req *http.Request) error

	// SupportsUserContext reports whether the strategy can authorize
	// requests that act on behalf of a user.
	SupportsUserContext() bool

	// Method returns the strategy's method tag.
	Method() Method
}

// Refresher is implemented by strategies whose tokens can be refreshed.
// The API client forces exactly one refresh when a request comes back 401.
type Refresher interface {
	// ForceRefresh discards the current access token's freshness and
	// obtains a new one. Concurrent callers share a single refresh call.
	ForceRefresh() error
}
