package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/texgraphgo/internal/ctxlog"
)

// Kind tells the owner loop which reimport path an event belongs to.
type Kind int

const (
	KindPackage Kind = iota
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindPackage:
		return "package"
	case KindImage:
		return "image"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is a change to a registered file.
type Event struct {
	Kind Kind
	Path string
}

// Watcher filters fsnotify events down to registered files.
// Directories are watched rather than files so that editors which replace
// files by rename are still observed.
type Watcher struct {
	fs     *fsnotify.Watcher
	events chan Event

	mu    sync.Mutex
	files map[string]Kind
	dirs  map[string]int

	done chan struct{}
	wg   sync.WaitGroup
}

// New starts a watcher. Events are delivered until ctx is done or Close is
// called.
func New(ctx context.Context) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		fs:     fw,
		events: make(chan Event, 16),
		files:  make(map[string]Kind),
		dirs:   make(map[string]int),
		done:   make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop(ctx)
	return w, nil
}

// Events is closed once the watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Add registers file for change notification.
func (w *Watcher) Add(file string, kind Kind) error {
	abs, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", file, err)
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[abs]; ok {
		w.files[abs] = kind
		return nil
	}
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %q: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = kind
	return nil
}

// Remove stops reporting changes to file.
func (w *Watcher) Remove(file string) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[abs]; !ok {
		return
	}
	delete(w.files, abs)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.fs.Remove(dir)
	}
}

// Files returns the number of registered files.
func (w *Watcher) Files() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.files)
}

// Close stops the watcher and waits for the delivery goroutine.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	defer close(w.events)
	logger := ctxlog.FromContext(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.mu.Lock()
			kind, known := w.files[filepath.Clean(ev.Name)]
			w.mu.Unlock()
			if !known {
				continue
			}
			logger.Debug("File changed.", "path", ev.Name, "kind", kind, "op", ev.Op.String())
			select {
			case w.events <- Event{Kind: kind, Path: filepath.Clean(ev.Name)}:
			case <-ctx.Done():
				return
			case <-w.done:
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("File watcher error.", "error", err)
		}
	}
}
