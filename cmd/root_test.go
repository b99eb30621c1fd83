package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"xplore/internal/auth"
	"xplore/internal/events"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "missing credentials ask for auth",
			err:  &auth.CredentialError{Reason: "no usable auth method"},
			want: ExitCodeAuthRequired,
		},
		{
			name: "capability gap asks for auth",
			err:  &auth.CapabilityError{Method: auth.MethodBearer, Operation: "home timeline"},
			want: ExitCodeAuthRequired,
		},
		{
			name: "flow failure is auth failed",
			err:  &auth.AuthError{Op: "exchange", Reason: errors.New("denied")},
			want: ExitCodeAuthFailed,
		},
		{
			name: "wrapped auth error unwraps",
			err:  fmt.Errorf("login: %w", &auth.AuthError{Op: "authorize", Reason: errors.New("state mismatch")}),
			want: ExitCodeAuthFailed,
		},
		{
			name: "anything else is a general error",
			err:  errors.New("connection refused"),
			want: ExitCodeError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}

func TestStartView(t *testing.T) {
	assert.Equal(t, events.ViewHome, startView("home").Kind)
	assert.Equal(t, events.ViewMentions, startView("mentions").Kind)
	assert.Equal(t, events.ViewBookmarks, startView("bookmarks").Kind)
	// Views that need a subject fall back to home at startup.
	assert.Equal(t, events.ViewHome, startView("search").Kind)
}

func TestRootHasExpectedSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"auth", "home", "mentions", "bookmarks", "search", "user", "open", "followers", "following", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}
