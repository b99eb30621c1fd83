package formatting

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"

	"xplore/internal/api"
	"xplore/internal/app"
	"xplore/internal/events"
)

const helpText = `commands (leading ":" optional)
  :home              home timeline
  :mentions, :m      mentions
  :bookmarks, :b     bookmarks
  :user <handle>     profile and timeline (:u)
  :search <query>    recent search (:s)
  :open <id or url>  tweet and its thread (:o)
  :auth              log in with OAuth (:login)
  :help, :h          this help
  :quit, :q          exit`

// TextPresenter renders application state as plain text after each
// change. It is the Render target of the consumer loop.
type TextPresenter struct {
	out   io.Writer
	users *api.UsersCache
	opts  TweetOptions
}

// PresenterOption configures a TextPresenter.
type PresenterOption func(*TextPresenter)

// WithWidth sets the wrap column.
func WithWidth(width int) PresenterOption {
	return func(p *TextPresenter) { p.opts.Width = width }
}

// WithColor toggles ANSI styling.
func WithColor(color bool) PresenterOption {
	return func(p *TextPresenter) { p.opts.Color = color }
}

// NewTextPresenter creates a presenter writing to out, resolving tweet
// authors through the given cache.
func NewTextPresenter(out io.Writer, users *api.UsersCache, opts ...PresenterOption) *TextPresenter {
	p := &TextPresenter{
		out:   out,
		users: users,
		opts:  TweetOptions{Color: true},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Render writes the current view and the status line.
func (p *TextPresenter) Render(state *app.State) {
	view := state.CurrentView()

	var body string
	switch view.Kind {
	case events.ViewHelp:
		body = helpText
	case events.ViewProfile:
		body = p.renderProfile(state, view.Subject)
	default:
		body = p.renderTimeline(state, view)
	}

	header := p.opts.style(text.Bold, "── "+viewTitle(view))
	fmt.Fprintf(p.out, "\n%s\n%s\n", header, body)
	if state.Status != "" {
		fmt.Fprintln(p.out, p.opts.style(text.Faint, state.Status))
	}
}

// renderTimeline shows the tweet list backing a view.
func (p *TextPresenter) renderTimeline(state *app.State, view events.View) string {
	tl := state.Timeline(view.Kind, view.Subject)

	var b strings.Builder
	if tl.Loading {
		b.WriteString(p.opts.style(text.Faint, "loading..."))
		b.WriteString("\n")
	}
	b.WriteString(FormatTimeline(tl.Tweets, p.users, p.opts))
	if tl.NextToken != "" {
		b.WriteString("\n")
		b.WriteString(p.opts.style(text.Faint, "(more available)"))
	}
	return b.String()
}

// renderProfile shows the user card above their timeline.
func (p *TextPresenter) renderProfile(state *app.State, username string) string {
	user, ok := state.Profile(username)
	if !ok {
		return p.opts.style(text.Faint, "loading @"+username+"...")
	}

	var b strings.Builder
	b.WriteString(FormatProfile(&user, p.opts))
	b.WriteString("\n\n")

	tl := state.Timeline(events.ViewUserTimeline, user.ID)
	if tl.Loading {
		b.WriteString(p.opts.style(text.Faint, "loading..."))
		b.WriteString("\n")
	}
	b.WriteString(FormatTimeline(tl.Tweets, p.users, p.opts))
	return b.String()
}

// viewTitle is the header line for a view.
func viewTitle(view events.View) string {
	if view.Subject == "" {
		return view.Kind.String()
	}
	switch view.Kind {
	case events.ViewProfile:
		return "@" + view.Subject
	case events.ViewSearch:
		return "search: " + view.Subject
	default:
		return fmt.Sprintf("%s: %s", view.Kind, view.Subject)
	}
}
