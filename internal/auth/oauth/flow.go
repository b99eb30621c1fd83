package oauth

import (
	"context"
	"fmt"

	"xplore/internal/auth"
	"xplore/pkg/logging"
	pkgoauth "xplore/pkg/oauth"
)

// X OAuth 2.0 endpoints.
const (
	AuthorizationEndpoint = "https://twitter.com/i/oauth2/authorize"
	TokenEndpoint         = "https://api.x.com/2/oauth2/token"
)

// DefaultScopes are requested on login. offline.access yields a refresh
// token; bookmark.read covers the bookmarks timeline.
const DefaultScopes = "tweet.read users.read bookmark.read offline.access"

// Endpoints returns the X OAuth 2.0 endpoint pair.
func Endpoints() pkgoauth.Endpoints {
	return pkgoauth.Endpoints{
		AuthorizationEndpoint: AuthorizationEndpoint,
		TokenEndpoint:         TokenEndpoint,
	}
}

// Flow runs the interactive authorization-code + PKCE login: it starts a
// local callback server, opens the browser at the authorization URL,
// validates the returned state, exchanges the code, and drives the
// strategy's state transitions along the way.
type Flow struct {
	strategy *auth.PKCEStrategy
	client   *pkgoauth.Client
	port     int
	scopes   string

	// openBrowser and onAuthURL are injectable for tests and for callers
	// that want to print the URL instead of spawning a browser.
	openBrowser func(url string) error
	onAuthURL   func(url string)
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithCallbackPort sets the local callback server port (0 = default).
func WithCallbackPort(port int) FlowOption {
	return func(f *Flow) { f.port = port }
}

// WithScopes overrides the requested OAuth scopes.
func WithScopes(scopes string) FlowOption {
	return func(f *Flow) { f.scopes = scopes }
}

// WithBrowserOpener replaces the system browser launcher.
func WithBrowserOpener(open func(url string) error) FlowOption {
	return func(f *Flow) { f.openBrowser = open }
}

// WithAuthURLHandler registers a callback invoked with the authorization
// URL before the browser opens, so the CLI can show it to the user.
func WithAuthURLHandler(fn func(url string)) FlowOption {
	return func(f *Flow) { f.onAuthURL = fn }
}

// NewFlow creates a login flow bound to a PKCE strategy and token client.
func NewFlow(strategy *auth.PKCEStrategy, client *pkgoauth.Client, opts ...FlowOption) *Flow {
	f := &Flow{
		strategy:    strategy,
		client:      client,
		scopes:      DefaultScopes,
		openBrowser: OpenBrowser,
		onAuthURL:   func(string) {},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Login runs the full interactive flow and returns the obtained token.
// On success the strategy is left authenticated and the token persisted;
// on any failure the strategy returns to idle.
func (f *Flow) Login(ctx context.Context) (*pkgoauth.Token, error) {
	pkce, err := pkgoauth.GeneratePKCE()
	if err != nil {
		return nil, &auth.AuthError{Op: "authorize", Reason: err}
	}

	srv := NewCallbackServer(f.port)
	redirectURI, err := srv.Start(ctx)
	if err != nil {
		return nil, &auth.AuthError{Op: "authorize", Reason: err}
	}
	defer srv.Stop()

	authURL, err := f.client.BuildAuthorizationURL(redirectURI, f.scopes, pkce)
	if err != nil {
		return nil, &auth.AuthError{Op: "authorize", Reason: err}
	}

	if err := f.strategy.BeginAuthorization(); err != nil {
		return nil, &auth.AuthError{Op: "authorize", Reason: err}
	}

	f.onAuthURL(authURL)
	if err := f.openBrowser(authURL); err != nil {
		// Not fatal: the URL was handed to onAuthURL, the user can open
		// it manually while we keep waiting for the callback.
		logging.Warn("OAuth", "Could not open browser: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, CallbackTimeout)
	defer cancel()

	result, err := srv.WaitForCallback(waitCtx)
	if err != nil {
		f.strategy.AbortAuthorization()
		return nil, &auth.AuthError{Op: "authorize", Reason: fmt.Errorf("waiting for callback: %w", err)}
	}
	if result.IsError() {
		f.strategy.AbortAuthorization()
		return nil, &auth.AuthError{
			Op:     "authorize",
			Reason: fmt.Errorf("provider returned %s: %s", result.Error, result.ErrorDescription),
		}
	}
	if result.State != pkce.State {
		f.strategy.AbortAuthorization()
		return nil, &auth.AuthError{Op: "authorize", Reason: fmt.Errorf("state parameter mismatch")}
	}
	if result.Code == "" {
		f.strategy.AbortAuthorization()
		return nil, &auth.AuthError{Op: "authorize", Reason: fmt.Errorf("callback carried no authorization code")}
	}

	if err := f.strategy.BeginExchange(); err != nil {
		f.strategy.AbortAuthorization()
		return nil, &auth.AuthError{Op: "exchange", Reason: err}
	}

	token, err := f.client.ExchangeCode(ctx, result.Code, redirectURI, pkce.CodeVerifier)
	if err != nil {
		f.strategy.AbortAuthorization()
		return nil, &auth.AuthError{Op: "exchange", Reason: err}
	}

	if err := f.strategy.CompleteExchange(token); err != nil {
		// Authenticated in memory but the token could not be persisted;
		// surface the error so the CLI can warn about it.
		return token, err
	}

	logging.Info("OAuth", "Login complete (scopes: %s)", token.Scope)
	return token, nil
}
