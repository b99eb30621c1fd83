package auth

import (
	"xplore/internal/credentials"
)

// NewStrategy builds the active strategy for the resolved credentials.
// Exactly one strategy instance exists per process; the caller hands it to
// the API client and never constructs another.
//
// client and store are only used when the method is OAuth 2.0 PKCE.
func NewStrategy(creds credentials.Credentials, client TokenEndpointClient, store TokenStore) (Strategy, error) {
	switch DetectMethod(creds) {
	case MethodOAuth2PKCE:
		return NewPKCEStrategy(client, store), nil
	case MethodOAuth1:
		return NewOAuth1Strategy(creds), nil
	case MethodBearer:
		return NewBearerStrategy(creds.BearerToken), nil
	default:
		return nil, &CredentialError{Reason: "no usable auth method; set X_CLIENT_ID, the X_API_KEY quadruple, or X_BEARER_TOKEN"}
	}
}
