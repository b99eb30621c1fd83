package strings

import (
	"testing"
)

func TestTruncateOneLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "short string unchanged",
			input:    "hello",
			maxLen:   10,
			expected: "hello",
		},
		{
			name:     "exact length unchanged",
			input:    "hello",
			maxLen:   5,
			expected: "hello",
		},
		{
			name:     "long string truncated",
			input:    "a tweet that rambles on well past the column",
			maxLen:   15,
			expected: "a tweet that...",
		},
		{
			name:     "newlines collapsed to spaces",
			input:    "line one\nline two",
			maxLen:   30,
			expected: "line one line two",
		},
		{
			name:     "runs of whitespace collapsed",
			input:    "spaced \t\n  out",
			maxLen:   30,
			expected: "spaced out",
		},
		{
			name:     "multibyte runes cut whole",
			input:    "日本語のツイート本文です",
			maxLen:   8,
			expected: "日本語のツ...",
		},
		{
			name:     "tiny maxLen clamped",
			input:    "abcdefgh",
			maxLen:   1,
			expected: "a...",
		},
		{
			name:     "empty input",
			input:    "",
			maxLen:   10,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateOneLine(tt.input, tt.maxLen)
			if got != tt.expected {
				t.Errorf("TruncateOneLine(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.expected)
			}
		})
	}
}
