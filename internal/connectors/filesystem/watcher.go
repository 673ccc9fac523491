package filesystem

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultDebounce is how long the watcher waits for activity to settle.
const DefaultDebounce = 500 * time.Millisecond

// ErrWatcherClosed is returned by Watch after Close.
var ErrWatcherClosed = errors.New("watcher is closed")

// ChangeKind describes what happened to a file.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// Change is a single file event that survived filtering.
type Change struct {
	Path string
	Kind ChangeKind
}

// Batch groups the changes seen during one debounce window.
// Paths are unique and sorted; the last event for a path wins.
type Batch struct {
	Changes []Change
}

// Paths returns the changed paths.
func (b Batch) Paths() []string {
	out := make([]string, len(b.Changes))
	for i, c := range b.Changes {
		out[i] = c.Path
	}
	return out
}

// Watcher reports changes to supported documents in a directory.
type Watcher struct {
	dir      string
	exts     extSet
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// NewWatcher creates a watcher for dir. A non-positive debounce uses
// DefaultDebounce.
func NewWatcher(dir string, extensions []string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dir:      dir,
		exts:     extensionSet(extensions),
		debounce: debounce,
	}
}

// Watch starts watching and returns a channel of debounced batches.
// The channel is closed when ctx is cancelled or Close is called.
func (w *Watcher) Watch(ctx context.Context) (<-chan Batch, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrWatcherClosed
	}
	if w.watcher != nil {
		return nil, errors.New("watcher already started")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.watcher = fsw

	out := make(chan Batch)
	go w.loop(ctx, fsw, out)
	return out, nil
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- Batch) {
	defer close(out)
	defer fsw.Close()

	pending := make(map[string]ChangeKind)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			change, keep := w.handleEvent(event)
			if !keep {
				continue
			}
			logger.Debug("Watcher: %s %s", change.Kind, change.Path)
			pending[change.Path] = change.Kind
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := flush(pending)
			pending = make(map[string]ChangeKind)
			select {
			case out <- batch:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handleEvent maps an fsnotify event to a change. Chmod-only events,
// hidden files, and unsupported extensions are dropped.
func (w *Watcher) handleEvent(event fsnotify.Event) (Change, bool) {
	name := filepath.Base(event.Name)
	if isHidden(name) || !w.exts.has(name) {
		return Change{}, false
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return Change{Path: event.Name, Kind: ChangeDeleted}, true
	case event.Has(fsnotify.Create):
		return Change{Path: event.Name, Kind: ChangeCreated}, true
	case event.Has(fsnotify.Write):
		return Change{Path: event.Name, Kind: ChangeUpdated}, true
	default:
		return Change{}, false
	}
}

func flush(pending map[string]ChangeKind) Batch {
	changes := make([]Change, 0, len(pending))
	for path, kind := range pending {
		changes = append(changes, Change{Path: path, Kind: kind})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return Batch{Changes: changes}
}
