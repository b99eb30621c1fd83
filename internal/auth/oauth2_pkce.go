package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"xplore/pkg/logging"
	"xplore/pkg/oauth"
)

// DefaultMaxRefreshFailures is how many consecutive refresh failures are
// tolerated before the strategy enters FlowFailed and demands
// re-authentication.
const DefaultMaxRefreshFailures = 3

// FlowState is the OAuth 2.0 PKCE strategy's lifecycle state.
type FlowState int

const (
	// FlowIdle means no token exists and no flow is in progress.
	FlowIdle FlowState = iota

	// FlowAwaitingAuthorization means the browser has been opened and we
	// are waiting for the redirect callback.
	FlowAwaitingAuthorization

	// FlowExchangingCode means the authorization code is being exchanged
	// for a token.
	FlowExchangingCode

	// FlowAuthenticated means a usable token is held.
	FlowAuthenticated

	// FlowRefreshing means a refresh call is in flight.
	FlowRefreshing

	// FlowFailed means consecutive refresh failures exhausted the budget;
	// only re-authentication recovers from here.
	FlowFailed
)

// String returns the state name.
func (s FlowState) String() string {
	switch s {
	case FlowIdle:
		return "idle"
	case FlowAwaitingAuthorization:
		return "awaiting_authorization"
	case FlowExchangingCode:
		return "exchanging_code"
	case FlowAuthenticated:
		return "authenticated"
	case FlowRefreshing:
		return "refreshing"
	case FlowFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TokenStore persists the OAuth 2.0 token between sessions.
// Load returns (nil, nil) when no usable token exists.
type TokenStore interface {
	Load() (*oauth.Token, error)
	Save(*oauth.Token) error
}

// TokenEndpointClient is the slice of pkg/oauth.Client the strategy needs.
type TokenEndpointClient interface {
	RefreshToken(ctx context.Context, refreshToken string) (*oauth.Token, error)
}

// PKCEStrategy authorizes requests with an OAuth 2.0 token obtained via the
// PKCE flow. The token is the only mutable state shared across concurrent
// request goroutines; staleness is handled by a single-flight refresh so N
// concurrent callers hitting an expired token trigger exactly one call to
// the token endpoint.
type PKCEStrategy struct {
	client TokenEndpointClient
	store  TokenStore

	mu              sync.Mutex
	state           FlowState
	token           *oauth.Token
	refreshFailures int
	maxFailures     int

	refreshGroup singleflight.Group
}

// NewPKCEStrategy creates the strategy, loading any persisted token from
// the store. A stored token puts the strategy straight into
// FlowAuthenticated; refresh on first use handles staleness.
func NewPKCEStrategy(client TokenEndpointClient, store TokenStore) *PKCEStrategy {
	s := &PKCEStrategy{
		client:      client,
		store:       store,
		state:       FlowIdle,
		maxFailures: DefaultMaxRefreshFailures,
	}

	if token, err := store.Load(); err == nil && token != nil {
		s.token = token
		s.state = FlowAuthenticated
	}

	return s
}

// Method returns MethodOAuth2PKCE.
func (s *PKCEStrategy) Method() Method {
	return MethodOAuth2PKCE
}

// SupportsUserContext reports true: PKCE tokens carry the user's grants.
func (s *PKCEStrategy) SupportsUserContext() bool {
	return true
}

// State returns the current lifecycle state.
func (s *PKCEStrategy) State() FlowState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns the current token, or nil when not authenticated.
func (s *PKCEStrategy) Token() *oauth.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Prepare attaches a Bearer header backed by a fresh access token,
// refreshing first if the token is within the refresh threshold of expiry.
func (s *PKCEStrategy) Prepare(req *http.Request) error {
	token, err := s.ensureFresh(req.Context())
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	return nil
}

// ForceRefresh obtains a new access token regardless of the current one's
// freshness. Used by the API client after a 401.
func (s *PKCEStrategy) ForceRefresh() error {
	_, err := s.refresh(context.Background(), true)
	return err
}

// ensureFresh returns a token guaranteed not to be past its refresh
// threshold. The staleness check happens twice: once outside the
// single-flight section (fast path) and once inside it, because a
// concurrent caller may have refreshed while we waited.
func (s *PKCEStrategy) ensureFresh(ctx context.Context) (*oauth.Token, error) {
	s.mu.Lock()
	if s.state == FlowFailed {
		s.mu.Unlock()
		return nil, &AuthError{Op: "refresh", Fatal: true, Reason: errors.New("token refresh repeatedly failed")}
	}
	token := s.token
	s.mu.Unlock()

	if token == nil {
		return nil, &CredentialError{Reason: "no OAuth 2.0 token stored; run 'xplore auth login'"}
	}

	if !token.NeedsRefresh() {
		return token, nil
	}

	return s.refresh(ctx, false)
}

// refresh performs the single-flight token refresh. All concurrent callers
// share one call to the token endpoint and observe its result.
func (s *PKCEStrategy) refresh(ctx context.Context, forced bool) (*oauth.Token, error) {
	v, err, shared := s.refreshGroup.Do("refresh", func() (interface{}, error) {
		s.mu.Lock()
		token := s.token
		if token == nil {
			s.mu.Unlock()
			return nil, &CredentialError{Reason: "no OAuth 2.0 token stored; run 'xplore auth login'"}
		}

		// Double-check: whoever held the flight before us may already have
		// refreshed the token.
		if !forced && !token.NeedsRefresh() {
			s.mu.Unlock()
			return token, nil
		}

		if token.RefreshToken == "" {
			s.state = FlowFailed
			s.mu.Unlock()
			return nil, &AuthError{Op: "refresh", Fatal: true, Reason: errors.New("token expired and no refresh token available")}
		}

		refreshToken := token.RefreshToken
		s.state = FlowRefreshing
		s.mu.Unlock()

		newToken, refreshErr := s.client.RefreshToken(ctx, refreshToken)

		s.mu.Lock()
		defer s.mu.Unlock()

		if refreshErr != nil {
			s.refreshFailures++
			logging.Warn("Auth", "token refresh failed (%d/%d): %v", s.refreshFailures, s.maxFailures, refreshErr)
			if s.refreshFailures >= s.maxFailures {
				s.state = FlowFailed
				return nil, &AuthError{Op: "refresh", Fatal: true, Reason: refreshErr}
			}
			s.state = FlowAuthenticated
			return nil, &AuthError{Op: "refresh", Reason: refreshErr}
		}

		// Some providers do not rotate the refresh token; keep the old one.
		if newToken.RefreshToken == "" {
			newToken.RefreshToken = refreshToken
		}

		s.token = newToken
		s.refreshFailures = 0
		s.state = FlowAuthenticated

		if saveErr := s.store.Save(newToken); saveErr != nil {
			// The in-memory token is good; persistence is best effort.
			logging.Warn("Auth", "failed to persist refreshed token: %v", saveErr)
		} else {
			logging.Debug("Auth", "token refreshed, expires %s", newToken.ExpiresAt)
		}

		return newToken, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logging.Debug("Auth", "refresh coalesced with concurrent caller")
	}

	return v.(*oauth.Token), nil
}

// BeginAuthorization transitions into FlowAwaitingAuthorization. Valid from
// any state except an in-progress exchange; starting over from FlowFailed
// or FlowAuthenticated is explicitly allowed (re-authentication).
func (s *PKCEStrategy) BeginAuthorization() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == FlowExchangingCode {
		return fmt.Errorf("authorization already in progress (state %s)", s.state)
	}

	s.state = FlowAwaitingAuthorization
	s.refreshFailures = 0
	return nil
}

// BeginExchange transitions from FlowAwaitingAuthorization to
// FlowExchangingCode once the redirect callback delivered a code.
func (s *PKCEStrategy) BeginExchange() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != FlowAwaitingAuthorization {
		return fmt.Errorf("no authorization awaiting exchange (state %s)", s.state)
	}

	s.state = FlowExchangingCode
	return nil
}

// CompleteExchange installs the token obtained from the code exchange,
// persists it, and enters FlowAuthenticated.
func (s *PKCEStrategy) CompleteExchange(token *oauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.refreshFailures = 0
	s.state = FlowAuthenticated

	if err := s.store.Save(token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

// AbortAuthorization returns to FlowIdle after a failed or cancelled
// authorization attempt. The per-attempt PKCE material is discarded by the
// flow; nothing of it survives here.
func (s *PKCEStrategy) AbortAuthorization() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == FlowAwaitingAuthorization || s.state == FlowExchangingCode {
		s.state = FlowIdle
	}
}

// AdoptToken installs a token obtained outside this process, e.g. when the
// token-file watcher sees that 'xplore auth login' completed in another
// terminal. Does not persist: the external writer already did.
func (s *PKCEStrategy) AdoptToken(token *oauth.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.refreshFailures = 0
	s.state = FlowAuthenticated
}
