package formatting

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"xplore/internal/api"
	pkgstrings "xplore/pkg/strings"
)

// AuthStatus is what the auth status command shows.
type AuthStatus struct {
	Method        string
	UserContext   bool
	TokenPath     string
	ExpiresAt     time.Time
	HasRefresh    bool
	RateLimit     api.RateLimitInfo
	HasRateInfo   bool
	Authenticated bool
}

// newTable creates a table with the standard styling.
func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	return t
}

// RenderAuthStatus writes the auth status table.
func RenderAuthStatus(out io.Writer, status AuthStatus) {
	t := newTable(out)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("KEY"),
		text.FgHiCyan.Sprint("VALUE"),
	})

	t.AppendRow(table.Row{"method", status.Method})
	t.AppendRow(table.Row{"user context", yesNo(status.UserContext)})
	t.AppendRow(table.Row{"authenticated", yesNo(status.Authenticated)})
	if status.TokenPath != "" {
		t.AppendRow(table.Row{"token file", status.TokenPath})
	}
	if !status.ExpiresAt.IsZero() {
		t.AppendRow(table.Row{"token expires", status.ExpiresAt.Format(time.RFC3339)})
		t.AppendRow(table.Row{"refresh token", yesNo(status.HasRefresh)})
	}
	if status.HasRateInfo {
		t.AppendRow(table.Row{"rate remaining", status.RateLimit.Remaining})
		t.AppendRow(table.Row{"rate resets", status.RateLimit.ResetAt.Format(time.RFC3339)})
	}
	t.Render()
}

// RenderUsersTable writes a user list as a table.
func RenderUsersTable(out io.Writer, users []api.User) {
	t := newTable(out)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("HANDLE"),
		text.FgHiCyan.Sprint("NAME"),
		text.FgHiCyan.Sprint("FOLLOWERS"),
		text.FgHiCyan.Sprint("BIO"),
	})
	for _, u := range users {
		followers := ""
		if u.PublicMetrics != nil {
			followers = HumanCount(u.PublicMetrics.FollowersCount)
		}
		bio := pkgstrings.TruncateOneLine(u.Description, pkgstrings.DefaultPreviewMaxLen)
		t.AppendRow(table.Row{"@" + u.Username, u.Name, followers, bio})
	}
	t.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
