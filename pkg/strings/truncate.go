// Package strings provides string helpers shared across output code.
package strings

import (
	"strings"
)

// DefaultPreviewMaxLen is the column width used for tweet and bio
// previews in table cells.
const DefaultPreviewMaxLen = 60

// MinTruncateLen is the smallest usable maxLen; anything shorter has no
// room for content plus "...".
const MinTruncateLen = 4

// TruncateOneLine flattens a string to a single line and truncates it
// to maxLen runes, appending "..." when it was cut. Tweet bodies and
// bios contain newlines and multi-byte characters, so the collapse uses
// strings.Fields and the cut operates on runes, never bytes.
func TruncateOneLine(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
