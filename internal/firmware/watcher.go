package firmware

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chatter/remap/internal/ignore"
	"github.com/chatter/remap/internal/logger"
)

// DefaultSettle is how long the drop directory must be quiet before the
// files that arrived are reported as one drop.
const DefaultSettle = 300 * time.Millisecond

// DropWatcher reports files landing in the drop directory. Files that arrive
// within one settle window form a single drop, the way several files dragged
// together arrive in one drop event.
type DropWatcher struct {
	watcher *fsnotify.Watcher
	drops   chan []File
	done    chan struct{}
	exited  chan struct{}
	settle  time.Duration
	log     *logger.Logger
	ignore  *ignore.Matcher

	closeOnce sync.Once
	closeErr  error
}

// NewDropWatcher watches dir, creating it if needed.
func NewDropWatcher(dir string, settle time.Duration, log *logger.Logger) (*DropWatcher, error) {
	log.Debug("creating drop watcher", "dir", dir)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating drop directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("failed to create fsnotify watcher", "err", err)

		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		log.Error("failed to watch drop directory", "dir", dir, "err", err)
		watcher.Close()

		return nil, fmt.Errorf("watching drop directory: %w", err)
	}

	if settle <= 0 {
		settle = DefaultSettle
	}

	w := &DropWatcher{
		watcher: watcher,
		drops:   make(chan []File, 1),
		done:    make(chan struct{}),
		exited:  make(chan struct{}),
		settle:  settle,
		log:     log,
		ignore:  ignore.NewMatcher(dir),
	}

	go w.collect()

	log.Info("drop watcher started", "dir", dir, "settle", settle)

	return w, nil
}

// Drops returns the channel of completed drops. It is closed by Close.
func (w *DropWatcher) Drops() <-chan []File {
	return w.drops
}

// Close stops the watcher and waits for its goroutine to exit. Later calls
// return the first call's result.
func (w *DropWatcher) Close() error {
	w.closeOnce.Do(func() {
		close(w.done)
		err := w.watcher.Close()
		<-w.exited

		if err != nil {
			w.closeErr = fmt.Errorf("closing fsnotify watcher: %w", err)
		}
	})

	return w.closeErr
}

func (w *DropWatcher) collect() {
	defer close(w.exited)
	defer close(w.drops)

	pending := make(map[string]bool)
	timer := time.NewTimer(w.settle)
	timer.Stop()

	for {
		select {
		case <-w.done:
			timer.Stop()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) == ignore.RulesFile {
				w.ignore.Invalidate()
				continue
			}

			if !w.shouldCollect(event) {
				continue
			}

			w.log.Debug("drop file event", "path", event.Name, "op", event.Op.String())

			pending[event.Name] = true
			timer.Reset(w.settle)
		case <-timer.C:
			files := w.settled(pending)
			clear(pending)

			if len(files) == 0 {
				continue
			}

			// Non-blocking send: a drop nobody has read yet is replaced by
			// the newer one.
			select {
			case w.drops <- files:
			default:
				select {
				case <-w.drops:
				default:
				}
				w.drops <- files
				w.log.Debug("unread drop replaced", "files", len(files))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("drop watcher error", "err", err)
		}
	}
}

func (w *DropWatcher) shouldCollect(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	return !w.ignore.Match(event.Name, false)
}

// settled turns pending paths into files, skipping ones that vanished or
// became directories. The result is sorted by name.
func (w *DropWatcher) settled(pending map[string]bool) []File {
	var files []File
	for path := range pending {
		file, err := FileFromPath(path)
		if err != nil {
			continue
		}
		files = append(files, file)
	}
	slices.SortFunc(files, func(a, b File) int {
		return strings.Compare(a.Name, b.Name)
	})
	return files
}
