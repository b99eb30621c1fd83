package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func noEnv(string) (string, bool) { return "", false }

func TestResolveSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "credentials.env", `
# xplore credentials
X_API_KEY=ck
X_API_SECRET=cs
X_ACCESS_TOKEN=tk
X_ACCESS_TOKEN_SECRET=ts

X_BEARER_TOKEN="quoted-bearer"
`)

	r := &Resolver{Paths: []string{path}, LookupEnv: noEnv}
	creds := r.Resolve()

	assert.True(t, creds.HasOAuth1())
	assert.Equal(t, "ck", creds.APIKey)
	assert.Equal(t, "quoted-bearer", creds.BearerToken)
	assert.False(t, creds.HasOAuth2())
}

func TestResolvePriorityProfileOverCwd(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "profile.env", "X_BEARER_TOKEN=from-profile\n")
	cwd := writeFile(t, dir, "cwd.env", "X_BEARER_TOKEN=from-cwd\nX_CLIENT_ID=client-from-cwd\n")

	r := &Resolver{Paths: []string{profile, cwd}, LookupEnv: noEnv}
	creds := r.Resolve()

	// Conflicting key: the higher-priority profile file wins.
	assert.Equal(t, "from-profile", creds.BearerToken)
	// Key absent from the profile file still merges from the lower one.
	assert.Equal(t, "client-from-cwd", creds.ClientID)
}

func TestResolveEnvironmentOutranksFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "creds.env", "X_CLIENT_ID=from-file\n")

	env := map[string]string{"X_CLIENT_ID": "from-env"}
	r := &Resolver{
		Paths: []string{path},
		LookupEnv: func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		},
	}

	assert.Equal(t, "from-env", r.Resolve().ClientID)
}

func TestResolveMissingFilesYieldEmpty(t *testing.T) {
	r := &Resolver{
		Paths:     []string{filepath.Join(t.TempDir(), "does-not-exist.env")},
		LookupEnv: noEnv,
	}

	creds := r.Resolve()
	assert.True(t, creds.IsEmpty())
}

func TestParseIgnoresMalformedAndUnknownLines(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "creds.env", `
not a key value line
UNKNOWN_KEY=ignored
X_CLIENT_ID = spaced-client
X_API_KEY=
`)

	r := &Resolver{Paths: []string{path}, LookupEnv: noEnv}
	creds := r.Resolve()

	assert.Equal(t, "spaced-client", creds.ClientID)
	assert.Empty(t, creds.APIKey, "empty values are treated as absent")
}

func TestOAuth1RequiresFullQuadruple(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "creds.env", "X_API_KEY=ck\nX_API_SECRET=cs\nX_ACCESS_TOKEN=tk\n")

	r := &Resolver{Paths: []string{path}, LookupEnv: noEnv}
	creds := r.Resolve()

	assert.False(t, creds.HasOAuth1())
	assert.True(t, creds.IsEmpty())
}
