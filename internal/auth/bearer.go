package auth

import "net/http"

// BearerStrategy attaches a static app-only bearer token. It cannot
// authorize user-context requests; the API client rejects those before any
// network I/O with a CapabilityError.
type BearerStrategy struct {
	token string
}

// NewBearerStrategy creates a bearer-token strategy.
func NewBearerStrategy(token string) *BearerStrategy {
	return &BearerStrategy{token: token}
}

// Method returns MethodBearer.
func (s *BearerStrategy) Method() Method {
	return MethodBearer
}

// SupportsUserContext reports false: app-only tokens carry no user identity.
func (s *BearerStrategy) SupportsUserContext() bool {
	return false
}

// Prepare attaches the Authorization header.
func (s *BearerStrategy) Prepare(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+s.token)
	return nil
}
