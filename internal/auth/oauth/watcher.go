package oauth

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"xplore/pkg/logging"
	pkgoauth "xplore/pkg/oauth"
)

// DefaultDebounceInterval is the time to wait after the last file change
// before reloading the token. Editors and atomic renames can produce a
// burst of events for one logical write.
const DefaultDebounceInterval = 500 * time.Millisecond

// TokenWatcher watches the token file for external writes, so a running
// session picks up a token produced by 'xplore auth login' in another
// process. The store writes atomically via rename, so the watcher has to
// observe the parent directory rather than the file itself.
type TokenWatcher struct {
	mu sync.Mutex

	store   *DiskTokenStore
	onToken func(*pkgoauth.Token)

	fsWatcher *fsnotify.Watcher
	stopCh    chan struct{}
	running   bool

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

// NewTokenWatcher creates a watcher over the store's token file. onToken
// is invoked with each freshly loaded token after a change settles.
func NewTokenWatcher(store *DiskTokenStore, onToken func(*pkgoauth.Token)) *TokenWatcher {
	return &TokenWatcher{
		store:   store,
		onToken: onToken,
	}
}

// Start begins watching. The parent directory must exist; callers that
// need the watcher before first login should save-or-mkdir first.
func (w *TokenWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(w.store.Path())
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	w.fsWatcher = watcher
	w.stopCh = make(chan struct{})
	w.running = true

	go w.processEvents(watcher.Events, watcher.Errors)

	logging.Info("OAuth", "Watching %s for token updates", w.store.Path())
	return nil
}

func (w *TokenWatcher) processEvents(eventsCh <-chan fsnotify.Event, errorsCh <-chan error) {
	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-errorsCh:
			if !ok {
				return
			}
			logging.Warn("OAuth", "Token watcher error: %v", err)
		}
	}
}

func (w *TokenWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != filepath.Base(w.store.Path()) {
		return
	}
	// Atomic saves surface as Create (rename target) or Write.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	logging.Debug("OAuth", "Token file changed: %s", event.Name)
	w.reloadDebounced()
}

func (w *TokenWatcher) reloadDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(DefaultDebounceInterval, func() {
		w.mu.Lock()
		running := w.running
		callback := w.onToken
		w.mu.Unlock()

		if !running || callback == nil {
			return
		}

		token, err := w.store.Load()
		if err != nil {
			logging.Warn("OAuth", "Failed to reload token after change: %v", err)
			return
		}
		if token == nil {
			return
		}
		callback(token)
	})
}

// Stop gracefully stops the watcher.
func (w *TokenWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.stopCh)

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()

	if w.fsWatcher != nil {
		if err := w.fsWatcher.Close(); err != nil {
			logging.Warn("OAuth", "Error closing token watcher: %v", err)
		}
		w.fsWatcher = nil
	}

	return nil
}

// IsRunning reports whether the watcher is active.
func (w *TokenWatcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
