package oauth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgoauth "xplore/pkg/oauth"
)

func TestTokenWatcher_PicksUpExternalWrite(t *testing.T) {
	store := newTestStore(t)

	tokenCh := make(chan *pkgoauth.Token, 1)
	watcher := NewTokenWatcher(store, func(token *pkgoauth.Token) {
		select {
		case tokenCh <- token:
		default:
		}
	})
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	// Simulate 'auth login' in another process writing the token file.
	external, err := NewDiskTokenStore(store.Path())
	require.NoError(t, err)
	require.NoError(t, external.Save(&pkgoauth.Token{
		AccessToken:  "externally-obtained",
		TokenType:    "bearer",
		RefreshToken: "external-refresh",
	}))

	select {
	case token := <-tokenCh:
		assert.Equal(t, "externally-obtained", token.AccessToken)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not deliver the externally written token")
	}
}

func TestTokenWatcher_IgnoresOtherFiles(t *testing.T) {
	store := newTestStore(t)

	tokenCh := make(chan *pkgoauth.Token, 1)
	watcher := NewTokenWatcher(store, func(token *pkgoauth.Token) {
		select {
		case tokenCh <- token:
		default:
		}
	})
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	other := filepath.Join(filepath.Dir(store.Path()), "unrelated.json")
	require.NoError(t, os.WriteFile(other, []byte(`{"access_token":"nope"}`), 0600))

	select {
	case token := <-tokenCh:
		t.Fatalf("unexpected token delivery from unrelated file: %+v", token)
	case <-time.After(2 * DefaultDebounceInterval):
	}
}

func TestTokenWatcher_DebouncesBurst(t *testing.T) {
	store := newTestStore(t)

	tokenCh := make(chan *pkgoauth.Token, 8)
	watcher := NewTokenWatcher(store, func(token *pkgoauth.Token) {
		tokenCh <- token
	})
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	external, err := NewDiskTokenStore(store.Path())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, external.Save(&pkgoauth.Token{
			AccessToken: "burst",
			TokenType:   "bearer",
		}))
	}

	// The burst settles into a single delivery.
	select {
	case <-tokenCh:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not deliver after burst")
	}

	select {
	case token := <-tokenCh:
		t.Fatalf("burst produced more than one delivery: %+v", token)
	case <-time.After(2 * DefaultDebounceInterval):
	}
}

func TestTokenWatcher_StartStopLifecycle(t *testing.T) {
	store := newTestStore(t)
	watcher := NewTokenWatcher(store, nil)

	assert.False(t, watcher.IsRunning())
	require.NoError(t, watcher.Start())
	assert.True(t, watcher.IsRunning())

	// Starting twice is a no-op.
	require.NoError(t, watcher.Start())

	require.NoError(t, watcher.Stop())
	assert.False(t, watcher.IsRunning())

	// Stopping twice is a no-op.
	require.NoError(t, watcher.Stop())
}
