package cmd

import (
	"xplore/internal/api"
	"xplore/internal/auth"
	xoauth "xplore/internal/auth/oauth"
	"xplore/internal/config"
	"xplore/internal/credentials"
	pkgoauth "xplore/pkg/oauth"
)

// session is the wired-up auth and API stack shared by every command.
type session struct {
	cfg      config.Config
	creds    credentials.Credentials
	method   auth.Method
	strategy auth.Strategy
	client   *api.Client

	// store and tokenClient are nil unless the method is OAuth 2.0 PKCE.
	store       *xoauth.DiskTokenStore
	tokenClient *pkgoauth.Client
}

// newSession resolves credentials and builds the single strategy and
// API client for this process.
func newSession() (*session, error) {
	s := &session{
		cfg:   config.Load(config.Path()),
		creds: credentials.NewResolver().Resolve(),
	}
	s.method = auth.DetectMethod(s.creds)

	if s.method == auth.MethodOAuth2PKCE {
		store, err := xoauth.NewDiskTokenStore("")
		if err != nil {
			return nil, err
		}
		s.store = store

		var opts []pkgoauth.ClientOption
		if s.creds.ClientSecret != "" {
			opts = append(opts, pkgoauth.WithClientSecret(s.creds.ClientSecret))
		}
		s.tokenClient = pkgoauth.NewClient(xoauth.Endpoints(), s.creds.ClientID, opts...)
	}

	strategy, err := auth.NewStrategy(s.creds, s.tokenClient, s.store)
	if err != nil {
		return nil, err
	}
	s.strategy = strategy

	clientOpts := []api.Option{}
	// A bearer token alongside a user-context method serves app-only
	// endpoints like search without burning user-context rate limits.
	if s.method != auth.MethodBearer && s.creds.HasBearer() {
		clientOpts = append(clientOpts, api.WithAppStrategy(auth.NewBearerStrategy(s.creds.BearerToken)))
	}
	s.client = api.NewClient(strategy, clientOpts...)

	return s, nil
}

// pkceStrategy returns the PKCE strategy when that is the active
// method.
func (s *session) pkceStrategy() (*auth.PKCEStrategy, bool) {
	strategy, ok := s.strategy.(*auth.PKCEStrategy)
	return strategy, ok
}

// loginFlow builds the browser login flow. Only valid for PKCE
// sessions.
func (s *session) loginFlow(opts ...xoauth.FlowOption) (*xoauth.Flow, error) {
	strategy, ok := s.pkceStrategy()
	if !ok {
		return nil, &auth.CredentialError{Reason: "login needs an OAuth 2.0 client; set X_CLIENT_ID"}
	}
	opts = append([]xoauth.FlowOption{xoauth.WithCallbackPort(s.cfg.OAuthCallbackPort)}, opts...)
	return xoauth.NewFlow(strategy, s.tokenClient, opts...), nil
}
