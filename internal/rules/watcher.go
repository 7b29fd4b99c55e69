package rules

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher observes the rulebook file and recompiles the engine when it
// changes. The freshly compiled engine is handed to the swap callback;
// when a reload fails the previous engine stays active.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	swap    func(*Engine)
	logger  *zap.Logger
}

// NewWatcher creates a watcher for the given rulebook path. The path must
// exist at startup.
func NewWatcher(path string, swap func(*Engine), logger *zap.Logger) (*Watcher, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cannot watch rulebook: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", path, err)
	}

	return &Watcher{
		watcher: watcher,
		path:    path,
		swap:    swap,
		logger:  logger,
	}, nil
}

// Run watches for rulebook changes and reloads. Blocks until ctx is
// cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	// Debounce: wait 500ms after the last write before reloading
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, w.reload)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("rulebook watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	cat, err := LoadCatalog(w.path)
	if err != nil {
		w.logger.Error("failed to reload rulebook",
			zap.String("path", w.path),
			zap.Error(err))
		return
	}
	engine, err := NewEngine(cat)
	if err != nil {
		w.logger.Error("failed to compile reloaded rulebook",
			zap.String("path", w.path),
			zap.Error(err))
		return
	}

	w.swap(engine)
	w.logger.Info("rulebook reloaded", zap.String("path", w.path))
}
