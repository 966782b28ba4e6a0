package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher reloads the config file when it changes on disk and hands
// the new Config to OnChange. Only settings that can change at runtime are
// applied by the caller (log level and scheduler intervals).
type ConfigWatcher struct {
	Path     string
	OnChange func(Config)
	Logger   *slog.Logger

	// Load reads the file. Defaults to the same loader used at startup.
	Load func(path string) (Config, error)
}

// Run watches the directory holding Path until ctx is done. Watching the
// directory rather than the file survives editors that replace the file.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	load := w.Load
	if load == nil {
		load = loadConfig
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.Path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watching directory %s: %w", dir, err)
	}
	logger.Info("config watcher started", "file", w.Path)

	target := filepath.Base(w.Path)
	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Base(event.Name) != target {
				continue
			}

			cfg, err := load(w.Path)
			if err != nil {
				// Keep running on the previous settings.
				logger.Warn("config reload failed", "file", w.Path, "error", err)
				continue
			}
			logger.Info("config file changed, applying", "file", w.Path)
			if w.OnChange != nil {
				w.OnChange(cfg)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("config watcher error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}
