// Package command parses the ":" commands typed at the prompt and
// extracts tweet IDs from pasted URLs.
package command

import (
	"net/url"
	"strings"
)

// Kind identifies a parsed command.
type Kind int

const (
	// KindUser shows a user's profile and timeline. Arg is the handle.
	KindUser Kind = iota
	// KindSearch runs a recent search. Arg is the query.
	KindSearch
	// KindOpen opens a tweet by ID or URL. Arg is the raw argument.
	KindOpen
	// KindHome switches to the home timeline.
	KindHome
	// KindMentions switches to mentions.
	KindMentions
	// KindBookmarks switches to bookmarks.
	KindBookmarks
	// KindHelp shows the help view.
	KindHelp
	// KindAuth starts the login flow.
	KindAuth
	// KindQuit ends the session.
	KindQuit
)

// Command is one parsed prompt command.
type Command struct {
	Kind Kind
	Arg  string
}

// Parse parses a prompt line. The leading ":" is optional. Returns
// false for empty input, unknown commands, and commands missing a
// required argument.
func Parse(input string) (Command, bool) {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), ":"))
	if input == "" {
		return Command{}, false
	}

	name, args := input, ""
	if i := strings.IndexFunc(input, isSpace); i >= 0 {
		name, args = input[:i], strings.TrimSpace(input[i+1:])
	}

	switch name {
	case "user", "u":
		if args == "" {
			return Command{}, false
		}
		return Command{Kind: KindUser, Arg: StripAt(args)}, true
	case "search", "s":
		if args == "" {
			return Command{}, false
		}
		return Command{Kind: KindSearch, Arg: args}, true
	case "open", "o":
		if args == "" {
			return Command{}, false
		}
		return Command{Kind: KindOpen, Arg: args}, true
	case "home":
		return Command{Kind: KindHome}, true
	case "mentions", "m":
		return Command{Kind: KindMentions}, true
	case "bookmarks", "b":
		return Command{Kind: KindBookmarks}, true
	case "help", "h":
		return Command{Kind: KindHelp}, true
	case "auth", "login":
		return Command{Kind: KindAuth}, true
	case "quit", "q", "exit":
		return Command{Kind: KindQuit}, true
	default:
		return Command{}, false
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

// StripAt removes a leading "@" from a handle.
func StripAt(username string) string {
	return strings.TrimPrefix(username, "@")
}

// tweetHosts are the hosts a pasted status URL may use.
var tweetHosts = map[string]bool{
	"x.com":              true,
	"www.x.com":          true,
	"twitter.com":        true,
	"www.twitter.com":    true,
	"mobile.twitter.com": true,
}

// ParseTweetID extracts a tweet ID from a raw numeric ID or a status
// URL (https://x.com/<user>/status/<id> and twitter.com equivalents).
func ParseTweetID(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false
	}

	if isDigits(trimmed) {
		return trimmed, true
	}

	u, err := url.Parse(trimmed)
	if err != nil || !tweetHosts[u.Host] {
		return "", false
	}

	// Path shape: /<user>/status/<id>
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) >= 3 && segments[1] == "status" && isDigits(segments[2]) {
		return segments[2], true
	}
	return "", false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
