package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"xplore/internal/auth"
	"xplore/pkg/logging"
)

// Exit codes for CLI commands. Scripts branch on these, so they are
// part of the command surface.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates authentication is required but not available.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the OAuth flow failed.
	ExitCodeAuthFailed = 3
)

var plainOutput bool

// rootCmd is the base command. Without a subcommand it starts the
// interactive session.
var rootCmd = &cobra.Command{
	Use:   "xplore",
	Short: "Read X from your terminal",
	Long: `xplore is a terminal client for X: an interactive prompt for
browsing timelines, threads, and profiles, plus scripting commands
that emit one JSON object per line.

Credentials come from the environment or an .env file. Set X_CLIENT_ID
for OAuth 2.0 PKCE login, the X_API_KEY quadruple for OAuth 1.0a, or
X_BEARER_TOKEN for app-only access.`,
	SilenceUsage: true,
	RunE:         runSession,
}

// SetVersion sets the version for the root command. Called from main
// to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a semantic code.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "xplore version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps the auth error taxonomy onto exit codes.
func getExitCode(err error) int {
	var credErr *auth.CredentialError
	if errors.As(err, &credErr) {
		return ExitCodeAuthRequired
	}

	var capErr *auth.CapabilityError
	if errors.As(err, &capErr) {
		return ExitCodeAuthRequired
	}

	var authErr *auth.AuthError
	if errors.As(err, &authErr) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false, "Disable colored output")

	logLevel := logging.LevelWarn
	if os.Getenv("XPLORE_DEBUG") != "" {
		logLevel = logging.LevelDebug
	}
	logging.InitForCLI(logLevel, os.Stderr)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newAuthCmd())
	for _, c := range newFetchCmds() {
		rootCmd.AddCommand(c)
	}
}
