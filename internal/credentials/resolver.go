// Package credentials locates and merges API credentials from the
// recognized credential files. Resolution never fails outright: if no file
// exists and no variable is set, the resolved set is simply empty and the
// auth layer reports the missing method when an operation actually needs one.
package credentials

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"xplore/pkg/logging"
)

// Recognized credential keys. The set of keys present selects the auth
// method (see internal/auth.DetectMethod).
const (
	KeyAPIKey            = "X_API_KEY"
	KeyAPISecret         = "X_API_SECRET"
	KeyAccessToken       = "X_ACCESS_TOKEN"
	KeyAccessTokenSecret = "X_ACCESS_TOKEN_SECRET"
	KeyBearerToken       = "X_BEARER_TOKEN"
	KeyClientID          = "X_CLIENT_ID"
	KeyClientSecret      = "X_CLIENT_SECRET"
)

var recognizedKeys = []string{
	KeyAPIKey,
	KeyAPISecret,
	KeyAccessToken,
	KeyAccessTokenSecret,
	KeyBearerToken,
	KeyClientID,
	KeyClientSecret,
}

// Credentials is the merged bag of secrets. Every field is optional;
// the zero value means "nothing found". Immutable once resolved.
type Credentials struct {
	// OAuth 1.0a user context (all four required to select OAuth1).
	APIKey            string
	APISecret         string
	AccessToken       string
	AccessTokenSecret string

	// OAuth 2.0 PKCE client (secret optional, for confidential clients).
	ClientID     string
	ClientSecret string

	// App-only bearer token.
	BearerToken string
}

// HasOAuth1 reports whether the full OAuth 1.0a quadruple is present.
func (c Credentials) HasOAuth1() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessTokenSecret != ""
}

// HasOAuth2 reports whether an OAuth 2.0 client ID is present.
func (c Credentials) HasOAuth2() bool {
	return c.ClientID != ""
}

// HasBearer reports whether a standalone bearer token is present.
func (c Credentials) HasBearer() bool {
	return c.BearerToken != ""
}

// IsEmpty reports whether no recognized credential was found at all.
func (c Credentials) IsEmpty() bool {
	return !c.HasOAuth1() && !c.HasOAuth2() && !c.HasBearer()
}

// Resolver scans credential sources in fixed priority order.
type Resolver struct {
	// Paths are the candidate files, most specific first. A key populated
	// from an earlier path is never overwritten by a later one.
	Paths []string

	// LookupEnv, when set, is consulted before any file. Process environment
	// variables outrank every file so a one-off override always wins.
	LookupEnv func(string) (string, bool)
}

// DefaultPaths returns the candidate credential files in priority order:
// xplore's own profile, the x-cli sibling tool's profile, then the current
// working directory.
func DefaultPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "xplore", "credentials.env"),
			filepath.Join(home, ".config", "x-cli", ".env"),
		)
	}
	paths = append(paths, ".env")
	return paths
}

// NewResolver creates a resolver over the default paths and the process
// environment.
func NewResolver() *Resolver {
	return &Resolver{
		Paths:     DefaultPaths(),
		LookupEnv: os.LookupEnv,
	}
}

// Resolve scans all sources and returns the merged credential set.
// It never returns an error: unreadable or absent files are skipped.
func (r *Resolver) Resolve() Credentials {
	values := make(map[string]string, len(recognizedKeys))

	if r.LookupEnv != nil {
		for _, key := range recognizedKeys {
			if v, ok := r.LookupEnv(key); ok && v != "" {
				values[key] = v
			}
		}
	}

	for _, path := range r.Paths {
		parsed, err := parseFile(path)
		if err != nil {
			continue
		}
		merged := 0
		for key, v := range parsed {
			if _, exists := values[key]; !exists {
				values[key] = v
				merged++
			}
		}
		if merged > 0 {
			logging.Debug("Auth", "loaded %d credential(s) from %s", merged, path)
		}
	}

	return Credentials{
		APIKey:            values[KeyAPIKey],
		APISecret:         values[KeyAPISecret],
		AccessToken:       values[KeyAccessToken],
		AccessTokenSecret: values[KeyAccessTokenSecret],
		ClientID:          values[KeyClientID],
		ClientSecret:      values[KeyClientSecret],
		BearerToken:       values[KeyBearerToken],
	}
}

// parseFile reads a KEY=VALUE file. Blank lines and lines starting with '#'
// are ignored, as is anything that is not a recognized key. Values may be
// wrapped in single or double quotes.
func parseFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		if !isRecognized(key) {
			continue
		}

		value = strings.TrimSpace(value)
		value = unquote(value)
		if value == "" {
			continue
		}

		// First occurrence within a file wins, same as across files.
		if _, exists := values[key]; !exists {
			values[key] = value
		}
	}

	return values, scanner.Err()
}

func isRecognized(key string) bool {
	for _, k := range recognizedKeys {
		if k == key {
			return true
		}
	}
	return false
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
