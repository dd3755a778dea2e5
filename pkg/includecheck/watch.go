package includecheck

import (
	"context"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jllopis/surveyshell/pkg/errors"
)

// DefaultDebounce groups the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watch runs the check once, then again after every burst of changes to
// the corpus. Every directory outside the excluded subtree is watched,
// including directories created later. Events are collected for debounce
// after the last one before the check reruns. fn receives every report or
// error. Watch returns when ctx is done.
func Watch(ctx context.Context, root string, opts Options, debounce time.Duration, fn func(*Report, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if _, err := os.Stat(root); err != nil {
		return errors.New(errors.CodeNotFound, "corpus root not found", err).WithContext("root", root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.New(errors.CodeInternal, "failed to create file watcher", err)
	}
	defer watcher.Close()

	if err := watchTree(watcher, root, root, opts); err != nil {
		return errors.New(errors.CodeInternal, "failed to watch corpus", err).WithContext("root", root)
	}
	fn(Run(ctx, root, opts))

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(root, event, opts) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchTree(watcher, root, event.Name, opts); err != nil {
						fn(nil, errors.New(errors.CodeInternal, "failed to watch directory", err).
							WithContext("path", event.Name))
					}
				}
			}
			pending = true
			timer.Reset(debounce)

		case <-timer.C:
			if pending {
				pending = false
				fn(Run(ctx, root, opts))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fn(nil, errors.New(errors.CodeInternal, "file watcher error", err).WithContext("root", root))
		}
	}
}

// watchTree registers dir and every directory below it that discovery
// would enter.
func watchTree(w *fsnotify.Watcher, root, dir string, opts Options) error {
	if excluded(root, dir, opts) {
		return nil
	}
	return walkCorpus(dir, opts, w.Add, nil)
}

// relevant filters out chmod-only events, the excluded subtree and files
// that are not markup. Removals and renames always count since the path may
// have been a directory of documents.
func relevant(root string, event fsnotify.Event, opts Options) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if excluded(root, event.Name, opts) {
		return false
	}
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return true
	}
	if hasExtension(event.Name, opts.Extensions) {
		return true
	}
	info, err := os.Stat(event.Name)
	return err == nil && info.IsDir()
}
