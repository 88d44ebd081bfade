// Package watcher provides recursive file system watching with debouncing
// for component sources.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change is a debounced batch of file changes.
type Change struct {
	Changed []string // written or created files, sorted
	Removed []string // removed or renamed files, sorted
}

// Watcher monitors a directory tree and sends batched change notifications.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	debounce  time.Duration
	match     func(path string) bool
	skipDir   func(name string) bool
	onChange  chan Change
	errs      chan error
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	Root        string
	DebounceDur time.Duration
	// Match reports whether a file is relevant; nil matches every file.
	Match func(path string) bool
	// SkipDir reports whether a directory (by base name) is not watched.
	SkipDir func(name string) bool
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(root string) Config {
	return Config{
		Root:        root,
		DebounceDur: 100 * time.Millisecond,
		SkipDir:     DefaultSkipDir,
	}
}

// DefaultSkipDir skips dependency and VCS directories.
func DefaultSkipDir(name string) bool {
	switch name {
	case "node_modules", ".git", ".hg", ".svn":
		return true
	}
	return false
}

// New creates a new watcher.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsw,
		root:      cfg.Root,
		debounce:  cfg.DebounceDur,
		match:     cfg.Match,
		skipDir:   cfg.SkipDir,
		onChange:  make(chan Change, 1),
		errs:      make(chan error, 1),
		done:      make(chan struct{}),
	}
	if w.match == nil {
		w.match = func(string) bool { return true }
	}
	if w.skipDir == nil {
		w.skipDir = func(string) bool { return false }
	}
	return w, nil
}

// Start begins watching the root directory and its subdirectories.
// Returns a channel that receives each debounced batch of changes.
func (w *Watcher) Start() (<-chan Change, error) {
	if err := w.addTree(w.root); err != nil {
		return nil, err
	}

	go w.loop()

	return w.onChange, nil
}

// Errors returns watch errors. Errors are dropped when nobody reads them.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// addTree watches dir and every directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("watching directory %s: %w", path, err)
		}
		return nil
	})
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		changed = make(map[string]struct{})
		removed = make(map[string]struct{})
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.record(event, changed, removed) {
				continue
			}

			// Reset or start debounce timer
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			timer = nil
			if len(changed) == 0 && len(removed) == 0 {
				continue
			}
			change := Change{Changed: sortedKeys(changed), Removed: sortedKeys(removed)}
			clear(changed)
			clear(removed)
			select {
			case w.onChange <- change:
			case <-w.done:
				return
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// record adds a relevant event to the pending sets. New directories are
// watched as they appear.
func (w *Watcher) record(event fsnotify.Event, changed, removed map[string]struct{}) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.skipDir(filepath.Base(event.Name)) {
				if err := w.addTree(event.Name); err != nil {
					select {
					case w.errs <- err:
					default:
					}
				}
			}
			return false
		}
	}

	if !w.match(event.Name) {
		return false
	}

	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		delete(changed, event.Name)
		removed[event.Name] = struct{}{}
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		delete(removed, event.Name)
		changed[event.Name] = struct{}{}
	default:
		return false
	}
	return true
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
