package search

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the index whenever its database file is rewritten, so a new
// index can be published by replacing the file. Blocks until ctx is done.
func (ix *Index) Watch(ctx context.Context, file string, log *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// watch the directory: publishers typically write a temp file and rename
	// it over the index, which replaces the inode
	if err := watcher.Add(filepath.Dir(file)); err != nil {
		return err
	}

	target := filepath.Clean(file)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			if err := ix.Reload(ctx); err != nil {
				log.Warn("index reload failed", zap.String("file", file), zap.Error(err))
				continue
			}
			log.Info("index reloaded",
				zap.String("file", file),
				zap.Int("documents", ix.DocumentCount()),
				zap.Int("vocabulary", ix.VocabularySize()),
			)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("index watcher error", zap.Error(err))
		}
	}
}
