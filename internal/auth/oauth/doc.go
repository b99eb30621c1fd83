// Package oauth orchestrates the interactive OAuth 2.0 PKCE login flow:
// a temporary local callback server, the system browser, persistent token
// storage on disk, and a watcher that picks up tokens written by a
// concurrent login from another process.
package oauth
