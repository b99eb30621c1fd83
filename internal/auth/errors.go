package auth

import "fmt"

// CredentialError indicates that no usable auth method could be resolved
// from the available credentials.
type CredentialError struct {
	// Reason describes what was missing.
	Reason string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("credential error: %s", e.Reason)
}

// AuthError indicates a failure inside an auth strategy: a PKCE exchange
// failure, repeated refresh failure, or signature construction failure.
type AuthError struct {
	// Op names the failed operation ("exchange", "refresh", "sign").
	Op string
	// Fatal marks errors that require re-authentication; the strategy has
	// entered its failed state and will not recover on its own.
	Fatal bool
	// Reason is the underlying error.
	Reason error
}

func (e *AuthError) Error() string {
	if e.Fatal {
		return fmt.Sprintf("auth %s failed (re-authentication required): %v", e.Op, e.Reason)
	}
	return fmt.Sprintf("auth %s failed: %v", e.Op, e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Reason
}

// CapabilityError indicates the active strategy lacks the user-context
// capability a request requires. It is returned before any network I/O.
type CapabilityError struct {
	// Method is the active auth method.
	Method Method
	// Operation names the request that needed user context.
	Operation string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s requires user context, which %s cannot provide", e.Operation, e.Method)
}
