package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"xplore/internal/auth"
	xoauth "xplore/internal/auth/oauth"
	"xplore/internal/formatting"
)

func newAuthCmd() *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
		Long: `Manage authentication for the X API.

Examples:
  xplore auth login    # OAuth 2.0 browser login (needs X_CLIENT_ID)
  xplore auth status   # Show the active method and token state
  xplore auth logout   # Delete the persisted token`,
	}
	authCmd.AddCommand(newAuthLoginCmd())
	authCmd.AddCommand(newAuthStatusCmd())
	authCmd.AddCommand(newAuthLogoutCmd())
	return authCmd
}

func newAuthLoginCmd() *cobra.Command {
	var noBrowser bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with OAuth 2.0 PKCE",
		Long: `Log in with the OAuth 2.0 authorization code flow.

Opens the authorization page in your browser and waits for the
callback. The token is persisted and refreshed automatically on later
runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}

			opts := []xoauth.FlowOption{
				xoauth.WithAuthURLHandler(func(url string) {
					fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to authorize:\n\n  %s\n\n", url)
				}),
			}
			if noBrowser {
				opts = append(opts, xoauth.WithBrowserOpener(func(string) error { return nil }))
			}
			flow, err := s.loginFlow(opts...)
			if err != nil {
				return err
			}

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			sp.Writer = os.Stderr
			sp.Suffix = " Waiting for authorization..."
			sp.Start()
			token, err := flow.Login(cmd.Context())
			sp.Stop()

			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in. Token expires %s.\n",
				token.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Print the authorization URL instead of opening a browser")
	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active auth method and token state",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}

			status := formatting.AuthStatus{
				Method:      s.method.String(),
				UserContext: s.strategy.SupportsUserContext(),
			}

			switch s.method {
			case auth.MethodOAuth2PKCE:
				strategy, _ := s.pkceStrategy()
				status.TokenPath = s.store.Path()
				if token := strategy.Token(); token != nil {
					status.Authenticated = true
					status.ExpiresAt = token.ExpiresAt
					status.HasRefresh = token.RefreshToken != ""
				}
			default:
				status.Authenticated = true
			}

			if rate := s.client.RateLimit(); rate.Limit >= 0 {
				status.RateLimit = rate
				status.HasRateInfo = true
			}

			formatting.RenderAuthStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the persisted OAuth token",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			if s.store == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No persisted token; nothing to do.")
				return nil
			}
			if err := s.store.Delete(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s.\n", s.store.Path())
			return nil
		},
	}
}
