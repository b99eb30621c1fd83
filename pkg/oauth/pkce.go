package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

const (
	// pkceVerifierBytes is the number of random bytes for the PKCE code verifier.
	// 32 bytes encodes to 43 base64url characters, the RFC 7636 minimum, and
	// provides 256 bits of entropy.
	pkceVerifierBytes = 32

	// stateBytes is the number of random bytes for the OAuth state parameter.
	stateBytes = 32
)

// PKCEChallenge holds a PKCE code verifier/challenge pair plus the random
// state value for a single authorization attempt. It is generated fresh per
// attempt and never persisted; the verifier is only ever transmitted in the
// final token exchange request.
type PKCEChallenge struct {
	// CodeVerifier is the cryptographically random secret, base64url-encoded.
	CodeVerifier string

	// CodeChallenge is the S256 hash of the verifier, base64url-encoded
	// without padding. This is what the authorization request carries.
	CodeChallenge string

	// CodeChallengeMethod is always "S256".
	CodeChallengeMethod string

	// State is the anti-forgery value echoed back on the redirect.
	State string
}

// GeneratePKCE generates a new PKCE challenge with a fresh state value,
// ready for use in an authorization request.
func GeneratePKCE() (*PKCEChallenge, error) {
	verifier, challenge, err := GeneratePKCERaw()
	if err != nil {
		return nil, err
	}

	state, err := GenerateState()
	if err != nil {
		return nil, err
	}

	return &PKCEChallenge{
		CodeVerifier:        verifier,
		CodeChallenge:       challenge,
		CodeChallengeMethod: "S256",
		State:               state,
	}, nil
}

// GeneratePKCERaw generates a PKCE code verifier and its S256 challenge as
// raw strings.
func GeneratePKCERaw() (verifier, challenge string, err error) {
	verifierBytes := make([]byte, pkceVerifierBytes)
	if _, err := rand.Read(verifierBytes); err != nil {
		return "", "", fmt.Errorf("failed to generate random bytes for PKCE: %w", err)
	}

	verifier = base64.RawURLEncoding.EncodeToString(verifierBytes)
	challenge = S256Challenge(verifier)

	return verifier, challenge, nil
}

// S256Challenge derives the code challenge for a verifier: the base64url
// (no padding) encoding of SHA256(verifier). Deterministic by construction.
func S256Challenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// GenerateState generates a random state parameter for OAuth.
// The state links the authorization redirect back to the original request
// and prevents CSRF.
func GenerateState() (string, error) {
	buf := make([]byte, stateBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
