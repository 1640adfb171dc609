package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/rfit/pkg/errors"
)

// watchDebounce is how long a file must stay quiet before it is re-read.
// Editors often write a file in several steps.
const watchDebounce = 300 * time.Millisecond

// watchFile calls fn each time the file at path changes, until ctx is done.
//
// The parent directory is watched rather than the file, so editors that save
// by writing a temporary file and renaming it over path are still seen.
// Errors from fn are logged and watching continues.
func watchFile(ctx context.Context, logger *log.Logger, path string, debounce time.Duration, fn func() error) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "watch %s", filepath.Dir(abs))
	}
	logger.Debug("watching", "file", abs)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("file changed", "file", abs, "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)

		case <-timer.C:
			if err := fn(); err != nil {
				logger.Error("run failed", "error", err)
			}
		}
	}
}
