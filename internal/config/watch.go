package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"keysonscreen/internal/logging"
)

const watchDebounce = 100 * time.Millisecond

// Watch reloads the settings file into live whenever it changes on disk. The
// parent directory is watched so atomic renames are seen. Watch blocks until
// ctx is done.
func Watch(ctx context.Context, path string, live *Live, logger logging.Logger) error {
	if live == nil {
		return errors.New("live settings are required")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return err
	}

	target := filepath.Clean(path)
	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
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
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			reload = timer.C
		case <-reload:
			reload = nil
			cfg, err := LoadFromPath(path)
			if err != nil {
				logger.Warn("config_reload_failed", logging.F("path", path), logging.F("error", err))
				continue
			}
			live.Set(cfg)
			logger.Debug("config_reloaded", logging.F("path", path))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config_watch_error", logging.F("error", err))
		}
	}
}
