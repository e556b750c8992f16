package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	appLog "focusplan/internal/log"
)

const watchDebounce = 250 * time.Millisecond

// Watch reloads the config at path whenever it changes on disk and passes
// the new value to onChange. The parent directory is watched, since Save
// replaces the file through a rename. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	appLog.Debug("config watcher started", "path", abs)

	// Debounce rapid write+rename sequences into one reload.
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(watchDebounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			appLog.Error("config watcher error", err, "path", abs)

		case <-timer.C:
			cfg, err := Load(abs)
			if err != nil {
				appLog.Error("config reload failed", err, "path", abs)
				continue
			}
			appLog.Info("config reloaded", "path", abs)
			onChange(cfg)
		}
	}
}
