// Package formatting renders tweets, users, and session state for the
// terminal: the interactive presenter, the tables used by the CLI, and
// the JSONL encoder for scripted fetches.
package formatting

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
)

// RelativeTime renders a timestamp the way timelines do: seconds up to
// a minute, then minutes, hours, days, and finally the date.
func RelativeTime(ts, now time.Time) string {
	d := now.Sub(ts)
	switch {
	case d < 0:
		return ts.Format("2006-01-02")
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return ts.Format("2006-01-02")
	}
}

// HumanCount compacts engagement counters: 999, 1.2K, 3.4M.
func HumanCount(n int64) string {
	switch {
	case n < 1000:
		return fmt.Sprintf("%d", n)
	case n < 1000000:
		return strings.TrimSuffix(fmt.Sprintf("%.1f", float64(n)/1000), ".0") + "K"
	default:
		return strings.TrimSuffix(fmt.Sprintf("%.1f", float64(n)/1000000), ".0") + "M"
	}
}

// wrap soft-wraps body text to the given width, indenting continuation
// lines to keep tweets visually separate.
func wrap(s string, width int, indent string) string {
	wrapped := text.WrapSoft(s, width)
	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Join(lines, "\n")
}
