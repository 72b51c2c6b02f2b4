package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of events a single save produces.
const reloadDebounce = 100 * time.Millisecond

// Watch reloads the settings file at path whenever it changes and passes
// the new Config to onChange. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file so that editors which
// save by rename keep triggering reloads. A reload that fails is logged and
// onChange is not called.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	target := filepath.Clean(path)
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	slog.Info("config: watching for changes", "path", target)

	var pending <-chan time.Time
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
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.After(reloadDebounce)
			}

		case <-pending:
			pending = nil
			cfg, err := Load(target)
			if err != nil {
				slog.Error("config: reload failed, keeping previous config",
					"path", target, "err", err)
				continue
			}
			slog.Info("config: reloaded", "path", target, "log_level", cfg.LogLevel)
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}
