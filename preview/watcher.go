package preview

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/atilaykosker/Mosaic/internal/logging"
)

// ChangeEvent is one debounced filesystem change.
type ChangeEvent struct {
	Op   string
	Path string
	At   time.Time
}

// FileFilter reports whether a path is interesting. A path must pass
// every installed filter to reach the handlers.
type FileFilter func(path string) bool

// ChangeHandler receives one debounced batch, deduplicated by path.
type ChangeHandler func(events []ChangeEvent) error

// Watcher turns raw fsnotify traffic into debounced change batches. Rapid
// saves of the same file collapse into one event; a quiet period of the
// configured delay flushes the batch to the handlers.
type Watcher struct {
	// Logger receives watch errors and handler failures. Defaults to the
	// no-op logger.
	Logger logging.Logger

	notifier *fsnotify.Watcher
	delay    time.Duration
	filters  []FileFilter
	handlers []ChangeHandler
	mutex    sync.RWMutex
	stopOnce sync.Once
}

// NewWatcher creates a watcher flushing batches after the given quiet
// delay.
func NewWatcher(delay time.Duration) (*Watcher, error) {
	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		Logger:   logging.NewNopLogger(),
		notifier: notifier,
		delay:    delay,
	}, nil
}

// AddFilter installs a path filter.
func (w *Watcher) AddFilter(filter FileFilter) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.filters = append(w.filters, filter)
}

// AddHandler installs a batch handler.
func (w *Watcher) AddHandler(handler ChangeHandler) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.handlers = append(w.handlers, handler)
}

// AddRecursive watches root and every directory below it.
func (w *Watcher) AddRecursive(root string) error {
	clean := filepath.Clean(root)
	if strings.Contains(clean, "..") {
		return fmt.Errorf("watch root contains traversal: %s", root)
	}

	return filepath.Walk(clean, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.notifier.Add(path)
		}
		return nil
	})
}

// Start begins delivering batches until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop closes the underlying notifier, ending the run loop. Safe to call
// more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		err = w.notifier.Close()
	})
	return err
}

// run is the single goroutine owning the pending batch and its flush
// timer, so no locking is needed around either.
func (w *Watcher) run(ctx context.Context) {
	pending := make(map[string]ChangeEvent)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.notifier.Events:
			if !ok {
				return
			}
			if !w.accepts(event.Name) {
				continue
			}
			pending[event.Name] = ChangeEvent{
				Op:   opString(event.Op),
				Path: event.Name,
				At:   time.Now(),
			}
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.delay)
			}
			fire = timer.C

		case err, ok := <-w.notifier.Errors:
			if !ok {
				return
			}
			w.Logger.Warn(ctx, err, "asset watcher error")

		case <-fire:
			batch := make([]ChangeEvent, 0, len(pending))
			for _, event := range pending {
				batch = append(batch, event)
			}
			pending = make(map[string]ChangeEvent)
			timer = nil
			fire = nil
			w.dispatch(ctx, batch)
		}
	}
}

func (w *Watcher) accepts(path string) bool {
	w.mutex.RLock()
	filters := w.filters
	w.mutex.RUnlock()

	for _, filter := range filters {
		if !filter(path) {
			return false
		}
	}
	return true
}

func (w *Watcher) dispatch(ctx context.Context, batch []ChangeEvent) {
	if len(batch) == 0 {
		return
	}

	w.mutex.RLock()
	handlers := w.handlers
	w.mutex.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			w.Logger.Warn(ctx, err, "asset change handler failed")
		}
	}
}

func opString(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create == fsnotify.Create:
		return "created"
	case op&fsnotify.Write == fsnotify.Write:
		return "modified"
	case op&fsnotify.Remove == fsnotify.Remove:
		return "deleted"
	case op&fsnotify.Rename == fsnotify.Rename:
		return "renamed"
	default:
		return "modified"
	}
}

// AssetFilter passes the static file types the preview page can care
// about.
func AssetFilter(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".css", ".js", ".html", ".svg", ".png", ".jpg", ".jpeg", ".gif", ".ico", ".json", ".woff", ".woff2":
		return true
	default:
		return false
	}
}

// NoHiddenFilter rejects paths with a dot-prefixed segment, which covers
// editor swap files and VCS metadata.
func NoHiddenFilter(path string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.HasPrefix(segment, ".") && segment != "." && segment != ".." {
			return false
		}
	}
	return true
}
