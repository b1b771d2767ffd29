package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events an editor emits on save.
const DefaultDebounce = 200 * time.Millisecond

// Watch monitors path and calls onChange with the newly loaded Config each
// time the file settles after a write. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file itself so that
// rename-based saves (vim, VS Code) keep being observed. A reload that fails
// to parse or validate is logged and onChange is not called.
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: new watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	slog.Info("config: watching for changes", "path", path)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(debounce)

		case <-timer.C:
			cfg, err := Load(path)
			if err != nil {
				slog.Error("config: reload failed, keeping previous scenario",
					"path", path, "err", err)
				continue
			}
			slog.Info("config: reloaded", "path", path)
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}
