package cli

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/toyz/paranoia/internal/errors"
)

// DefaultDebounce is how long the watcher waits for a burst of file events to
// settle before re-inspecting
const DefaultDebounce = 150 * time.Millisecond

// Watch runs an initial inspection and then re-inspects Ruby files as they
// change until ctx is done. Unchanged files are served from the result cache.
// onResult is called after every pass.
func (r *Runner) Watch(ctx context.Context, onResult func(*Result)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.FileSystemErrorCode, "failed to start file watcher", err)
	}
	defer watcher.Close()

	dirs, err := r.scanner.ScanDirectories(r.cfg.paths())
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			r.diagnostics.Warn("cannot watch %s: %v", dir, err)
		}
	}
	r.diagnostics.Info("Watching %d directories for changes", len(dirs))

	result, err := r.Run(ctx)
	if err != nil {
		return err
	}
	if onResult != nil {
		onResult(result)
	}

	pending := make(map[string]bool)
	timer := time.NewTimer(DefaultDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if r.track(watcher, event) {
				pending[filepath.Clean(event.Name)] = true
				timer.Reset(DefaultDebounce)
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.diagnostics.Warn("watch error: %v", werr)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				if _, err := os.Stat(p); err == nil {
					changed = append(changed, p)
				} else {
					r.cache.Delete(p)
				}
			}
			pending = make(map[string]bool)
			if len(changed) == 0 {
				continue
			}
			sort.Strings(changed)
			r.diagnostics.Verbose("Changed: %v", changed)
			r.diagnostics.Debug("%d unchanged results cached", r.cache.Size())

			result, err := r.Run(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				r.reporter.ReportError(err)
				continue
			}
			if onResult != nil {
				onResult(result)
			}
		}
	}
}

// track decides whether event affects inspection results. New directories are
// added to the watch list.
func (r *Runner) track(watcher *fsnotify.Watcher, event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if dirs, err := r.scanner.ScanDirectories([]string{event.Name}); err == nil {
				for _, dir := range dirs {
					_ = watcher.Add(dir)
				}
			}
			return false
		}
	}

	if !r.scanner.Accepts(event.Name) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
