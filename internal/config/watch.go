package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long the file has to stay quiet before it is re-read.
// Editors and config management tools often write a file in several steps.
const settle = 100 * time.Millisecond

// Watch re-reads path whenever it changes and hands every config that loads
// and validates to onChange. It returns when ctx is cancelled.
//
// The parent directory is watched so atomic saves (write temp file, rename
// over path) are seen. Bursts of events are coalesced into one reload. A file
// that fails to load is logged and skipped; onChange is not called.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	name := filepath.Base(path)
	slog.Info("config: watching for changes", "path", path)

	var due <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) == name && ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				due = time.After(settle)
			}

		case <-due:
			due = nil
			apply(path, onChange)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "path", path, "err", err)
		}
	}
}

func apply(path string, onChange func(*Config)) {
	cfg, err := Load(path)
	if err != nil {
		slog.Error("config: reload failed, keeping previous config", "path", path, "err", err)
		return
	}
	slog.Info("config: reloaded", "path", path)
	onChange(cfg)
}
