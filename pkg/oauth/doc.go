// Package oauth implements the protocol-level pieces of OAuth 2.0 used by
// xplore: PKCE challenge generation (RFC 7636), token endpoint requests
// (authorization code exchange and refresh grants), and the Token type
// persisted between sessions.
//
// This package is transport-only. It knows nothing about credential
// resolution, strategy selection, or the local callback server; those live
// in internal/auth and internal/auth/oauth.
package oauth
