package ml

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 250 * time.Millisecond

// WatchArtifact reloads h whenever its artifact file is created, written or
// renamed into place. The parent directory is watched because SaveArtifact
// replaces the file with a rename. It blocks until ctx is done.
func WatchArtifact(ctx context.Context, h *Holder, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	target := filepath.Clean(h.Path())
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}
	logger.Info("watching model artifact", zap.String("path", target))

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
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
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(reloadDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("artifact watcher error", zap.Error(err))
		case <-timer.C:
			_ = h.Reload()
		}
	}
}
