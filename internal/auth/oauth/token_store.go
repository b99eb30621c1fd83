package oauth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"xplore/pkg/logging"
	pkgoauth "xplore/pkg/oauth"
)

// DefaultTokenFile is the default token file path relative to the home directory.
const DefaultTokenFile = ".config/xplore/tokens.json"

// DiskTokenStore persists OAuth tokens to a single JSON file.
//
// SECURITY: This store handles sensitive OAuth credentials. The token file
// is created with 0600 permissions and its parent directory with 0700.
// Token values are never logged.
//
// Writes are atomic: the token is written to a temporary file in the same
// directory and renamed into place, so a concurrent reader never observes
// a partially written file.
type DiskTokenStore struct {
	mu   sync.Mutex
	path string
}

// NewDiskTokenStore creates a token store backed by the given file path.
// If path is empty, the default location under the home directory is used.
func NewDiskTokenStore(path string) (*DiskTokenStore, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, DefaultTokenFile)
	}
	return &DiskTokenStore{path: path}, nil
}

// Path returns the token file path.
func (s *DiskTokenStore) Path() string {
	return s.path
}

// Load reads the stored token from disk. A missing file is not an error:
// it returns (nil, nil). A file that cannot be parsed is treated the same
// way, so a corrupt token file degrades to "not logged in" rather than
// wedging startup.
func (s *DiskTokenStore) Load() (*pkgoauth.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// #nosec G304 -- path is configured at construction, not user input
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token pkgoauth.Token
	if err := json.Unmarshal(data, &token); err != nil {
		logging.Warn("TokenStore", "Ignoring unparseable token file %s: %v", s.path, err)
		return nil, nil
	}
	if token.AccessToken == "" {
		return nil, nil
	}
	return &token, nil
}

// Save atomically writes the token to disk, creating the parent directory
// if needed.
func (s *DiskTokenStore) Save(token *pkgoauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tokens-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary token file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set token file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close token file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move token file into place: %w", err)
	}

	logging.Info("TokenStore", "Stored OAuth token at %s (has_refresh_token=%t)",
		s.path, token.RefreshToken != "")
	return nil
}

// Delete removes the token file. Deleting an absent file is not an error.
func (s *DiskTokenStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	logging.Info("TokenStore", "Deleted OAuth token at %s", s.path)
	return nil
}
