package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ReadFile reads and decodes a graph document, choosing the format by extension.
func ReadFile(path string) (*Payload, error) {
	format, err := FormatFromName(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph %s: %w", path, err)
	}
	p, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("decode graph %s: %w", path, err)
	}
	return p, nil
}

// Watcher re-reads a graph file whenever it changes and hands the new payload
// to the registered callbacks.
type Watcher struct {
	path     string
	logger   *slog.Logger
	mu       sync.RWMutex
	onChange []func(*Payload)
}

// NewWatcher creates a Watcher for path. It does not read the file.
func NewWatcher(path string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{path: filepath.Clean(path), logger: logger}
}

// OnChange registers a callback invoked after every successful re-read.
func (w *Watcher) OnChange(fn func(*Payload)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Run watches the file until ctx is done. The parent directory is watched so
// that editors replacing the file by rename are picked up too. A file that
// fails to decode is logged and skipped.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("graph watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("graph watcher add %s: %w", dir, err)
	}
	w.logger.Info("watching graph file", "path", w.path)

	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.reload()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("graph watcher error", "err", err)
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) reload() {
	p, err := ReadFile(w.path)
	if err != nil {
		w.logger.Warn("graph reload skipped", "path", w.path, "err", err)
		return
	}
	w.mu.RLock()
	callbacks := make([]func(*Payload), len(w.onChange))
	copy(callbacks, w.onChange)
	w.mu.RUnlock()
	for _, fn := range callbacks {
		fn(p)
	}
}
