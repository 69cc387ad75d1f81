// Package watch delivers debounced change notifications for a fixed set of files.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 250 * time.Millisecond

// Watcher observes the directories holding a set of files, so replacements
// made by editors (write to temp, rename over) are seen as changes too.
type Watcher struct {
	notify   *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
}

// New starts watching paths. Watches are in place when New returns.
func New(paths []string, debounce time.Duration) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("watch: no paths given")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		notify:   notify,
		files:    make(map[string]bool, len(paths)),
		debounce: debounce,
	}
	dirs := map[string]bool{}
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			notify.Close()
			return nil, err
		}
		abs = filepath.Clean(abs)
		w.files[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := notify.Add(dir); err != nil {
			notify.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return w, nil
}

func (w *Watcher) Close() error {
	return w.notify.Close()
}

// Run calls onChange with the sorted set of changed files once events have
// been quiet for the debounce interval. It returns nil when ctx is done or
// the watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func(changed []string)) error {
	timer := time.NewTimer(time.Hour)
	stopTimer(timer)
	pending := false
	pendingPaths := map[string]bool{}

	resetDebounce := func(path string) {
		pendingPaths[path] = true
		if pending {
			stopTimer(timer)
		}
		timer.Reset(w.debounce)
		pending = true
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.notify.Events:
			if !ok {
				return nil
			}

			eventPath := filepath.Clean(event.Name)
			if !w.files[eventPath] {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			resetDebounce(eventPath)
		case <-timer.C:
			if pending {
				pending = false
				changed := make([]string, 0, len(pendingPaths))
				for path := range pendingPaths {
					changed = append(changed, path)
				}
				sort.Strings(changed)
				pendingPaths = map[string]bool{}
				onChange(changed)
			}
		case watchErr, ok := <-w.notify.Errors:
			if !ok {
				return nil
			}
			return watchErr
		}
	}
}

// stopTimer stops timer and drains a fire that raced the stop.
func stopTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}

// Watch is New followed by Run, closing the watcher on return.
func Watch(ctx context.Context, paths []string, debounce time.Duration, onChange func(changed []string)) error {
	w, err := New(paths, debounce)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Run(ctx, onChange)
}
