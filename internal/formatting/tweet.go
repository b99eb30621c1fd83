package formatting

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"

	"xplore/internal/api"
)

// TweetOptions controls tweet rendering.
type TweetOptions struct {
	// Width is the wrap column for tweet bodies.
	Width int

	// Color enables ANSI styling.
	Color bool

	// Now anchors relative timestamps; zero means time.Now.
	Now time.Time
}

func (o TweetOptions) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

func (o TweetOptions) width() int {
	if o.Width <= 0 {
		return 100
	}
	return o.Width
}

func (o TweetOptions) style(c text.Color, s string) string {
	if !o.Color {
		return s
	}
	return c.Sprint(s)
}

// FormatTweet renders one tweet: author line, wrapped body, counters.
// Unresolved authors fall back to the raw author ID.
func FormatTweet(tweet *api.Tweet, users *api.UsersCache, opts TweetOptions) string {
	var b strings.Builder

	author := tweet.AuthorID
	if users != nil {
		if u, ok := users.Get(tweet.AuthorID); ok {
			author = fmt.Sprintf("%s @%s", u.Name, u.Username)
		}
	}
	header := opts.style(text.FgCyan, author)
	if tweet.CreatedAt != nil {
		header += opts.style(text.Faint, "  "+RelativeTime(*tweet.CreatedAt, opts.now()))
	}
	b.WriteString(header)
	b.WriteString("\n")

	b.WriteString(wrap(tweet.FullText(), opts.width(), "  "))

	if m := tweet.PublicMetrics; m != nil {
		counters := fmt.Sprintf("♥ %s  ⟳ %s  ↩ %s",
			HumanCount(m.LikeCount), HumanCount(m.RetweetCount), HumanCount(m.ReplyCount))
		b.WriteString("\n  ")
		b.WriteString(opts.style(text.Faint, counters))
	}
	return b.String()
}

// FormatTimeline renders a list of tweets separated by blank lines.
func FormatTimeline(tweets []api.Tweet, users *api.UsersCache, opts TweetOptions) string {
	if len(tweets) == 0 {
		return opts.style(text.Faint, "(no tweets)")
	}
	parts := make([]string, 0, len(tweets))
	for i := range tweets {
		parts = append(parts, FormatTweet(&tweets[i], users, opts))
	}
	return strings.Join(parts, "\n\n")
}

// FormatProfile renders a user card: name line, bio, counters.
func FormatProfile(user *api.User, opts TweetOptions) string {
	var b strings.Builder
	b.WriteString(opts.style(text.Bold, user.Name))
	b.WriteString(opts.style(text.FgCyan, " @"+user.Username))
	b.WriteString("\n")
	if user.Description != "" {
		b.WriteString(wrap(user.Description, opts.width(), "  "))
		b.WriteString("\n")
	}
	if m := user.PublicMetrics; m != nil {
		b.WriteString(opts.style(text.Faint, fmt.Sprintf("  %s followers  %s following  %s tweets",
			HumanCount(m.FollowersCount), HumanCount(m.FollowingCount), HumanCount(m.TweetCount))))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
