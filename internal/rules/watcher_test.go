package rules

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	path := writeRulebook(t, "thresholds:\n  min_description_length: 10\n")

	swapped := make(chan *Engine, 1)
	w, err := NewWatcher(path, func(e *Engine) { swapped <- e }, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Let the watch registration settle before touching the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path,
		[]byte("thresholds:\n  min_description_length: 5\n"), 0o644))

	select {
	case e := <-swapped:
		assert.Equal(t, 5, e.Thresholds().MinDescriptionLength)
	case <-time.After(5 * time.Second):
		t.Fatal("rulebook change was not picked up")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestWatcher_KeepsEngineOnBadRulebook(t *testing.T) {
	path := writeRulebook(t, "thresholds:\n  min_description_length: 10\n")

	swapped := make(chan *Engine, 1)
	w, err := NewWatcher(path, func(e *Engine) { swapped <- e }, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("categories: [unclosed"), 0o644))

	select {
	case <-swapped:
		t.Fatal("swap must not run for a rulebook that fails to parse")
	case <-time.After(2 * time.Second):
	}
}

func TestNewWatcher_MissingFile(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "absent.yaml"), func(*Engine) {}, zap.NewNop())
	assert.Error(t, err)
}
