package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"xplore/internal/app"
	"xplore/internal/auth"
	xoauth "xplore/internal/auth/oauth"
	"xplore/internal/events"
	"xplore/internal/formatting"
	"xplore/pkg/logging"
	pkgoauth "xplore/pkg/oauth"
)

// runSession starts the interactive prompt: the bus, its producers, and
// the consumer loop.
func runSession(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}

	// Interactive mode: log entries travel over a channel so they never
	// tear the prompt mid-line; warnings and errors go to stderr.
	logCh := logging.InitForTUI(logging.LevelWarn)
	go func() {
		for entry := range logCh {
			fmt.Fprintf(os.Stderr, "%s [%s] %s\n", entry.Level, entry.Subsystem, entry.Message)
		}
	}()

	bus := events.NewBus()
	defer bus.Close()
	bus.StartTicker(s.cfg.TickInterval())

	reader, err := app.NewInputReader("xplore> ")
	if err != nil {
		return err
	}
	defer reader.Close()
	go reader.Run()
	go func() {
		for line := range reader.Lines() {
			bus.Publish(events.InputEvent(line))
		}
		// EOF at the prompt ends the session.
		bus.PublishIntent(events.QuitIntent{})
	}()

	dispatcher := app.NewDispatcher(s.client, bus, app.WithPageSize(s.cfg.DefaultMaxResults))
	presenter := formatting.NewTextPresenter(os.Stdout, s.client.Users(),
		formatting.WithColor(!plainOutput))

	opts := []app.AppOption{
		app.WithAuthenticated(s.authenticated()),
	}
	if login := s.sessionLogin(); login != nil {
		opts = append(opts, app.WithLogin(login))
	}
	a := app.New(bus, dispatcher, presenter, startView(s.cfg.DefaultView), opts...)

	// Externally refreshed tokens (another xplore process, a script)
	// get adopted without restarting the session.
	if strategy, ok := s.pkceStrategy(); ok && s.store != nil {
		watcher := xoauth.NewTokenWatcher(s.store, func(token *pkgoauth.Token) {
			strategy.AdoptToken(token)
			bus.PublishCompletion(events.AuthChanged{})
		})
		if err := watcher.Start(); err != nil {
			logging.Warn("Session", "Token watcher unavailable: %v", err)
		} else {
			defer watcher.Stop()
		}
	}

	a.Start(cmd.Context())
	return a.Run(cmd.Context())
}

// authenticated reports whether the session can already make requests.
func (s *session) authenticated() bool {
	if strategy, ok := s.pkceStrategy(); ok {
		return strategy.State() == auth.FlowAuthenticated
	}
	return true
}

// sessionLogin adapts the browser flow for the :auth command, or nil
// when the method has no interactive login.
func (s *session) sessionLogin() app.LoginFunc {
	if _, ok := s.pkceStrategy(); !ok {
		return nil
	}
	return func(ctx context.Context) error {
		flow, err := s.loginFlow(
			xoauth.WithAuthURLHandler(func(url string) {
				fmt.Fprintf(os.Stderr, "\nOpen this URL to authorize:\n  %s\n", url)
			}),
		)
		if err != nil {
			return err
		}
		_, err = flow.Login(ctx)
		return err
	}
}

// startView maps the configured default view name onto a view.
func startView(name string) events.View {
	switch name {
	case "mentions":
		return events.View{Kind: events.ViewMentions}
	case "bookmarks":
		return events.View{Kind: events.ViewBookmarks}
	default:
		return events.View{Kind: events.ViewHome}
	}
}
