// Package watch reloads the store when the registry document is
// rewritten outside the server (a hand edit, a sync tool). The watcher
// observes the data directory rather than the file itself because the
// codec commits by renaming a temporary file over the target.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tfaber/taskd/pkg/storage"
)

// Reloader re-reads durable state into memory.
type Reloader interface {
	Reload() error
}

// RegistryWatcher watches the data directory and reloads the store after
// the registry document changes. Rapid event bursts (editor save
// patterns, rename commits) coalesce into a single reload.
type RegistryWatcher struct {
	watcher  *fsnotify.Watcher
	dataDir  string
	debounce time.Duration
	store    Reloader
	logger   *slog.Logger
}

// NewRegistryWatcher creates a watcher over the given data directory.
func NewRegistryWatcher(dataDir string, debounce time.Duration, store Reloader, logger *slog.Logger) (*RegistryWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if debounce == 0 {
		debounce = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistryWatcher{
		watcher:  w,
		dataDir:  dataDir,
		debounce: debounce,
		store:    store,
		logger:   logger,
	}, nil
}

// Run starts the event loop. It blocks until the context is cancelled.
func (w *RegistryWatcher) Run(ctx context.Context) error {
	if err := w.watcher.Add(w.dataDir); err != nil {
		w.watcher.Close()
		return fmt.Errorf("watch %s: %w", w.dataDir, err)
	}
	defer w.watcher.Close()

	debouncer := NewDebouncer(w.debounce, func() {
		if err := w.store.Reload(); err != nil {
			// Keep serving the in-memory state; the next rewrite may fix
			// the document.
			w.logger.Warn("reload after external change failed", "error", err)
			return
		}
		w.logger.Info("registry reloaded after external change")
	})
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != storage.RegistryFile {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			debouncer.Trigger()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}
