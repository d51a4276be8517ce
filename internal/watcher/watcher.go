package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"image-viewer/internal/event"
	"image-viewer/internal/imagedata"
	"image-viewer/internal/imageformat"
	"image-viewer/internal/logging"
	"image-viewer/internal/metrics"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces rapid write events so a file is re-probed only
// after it has finished being written.
const debounceWindow = 100 * time.Millisecond

// Watcher monitors the given roots for file changes and re-issues probe
// requests: a changed recognized file yields a FileChanged event with fresh
// metadata, a removed or unreadable file yields FileDeleted. Unrecognized
// files are ignored.
type Watcher struct {
	roots     []string
	recursive bool
	events    chan<- event.Event

	fsw  *fsnotify.Watcher
	stop chan struct{}
	wg   sync.WaitGroup

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a Watcher publishing to events.
func New(roots []string, recursive bool, events chan<- event.Event) *Watcher {
	return &Watcher{
		roots:     roots,
		recursive: recursive,
		events:    events,
		stop:      make(chan struct{}),
		pending:   make(map[string]*time.Timer),
	}
}

// Start registers the watched directories and begins processing events on a
// background goroutine.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw

	count := 0
	for _, root := range w.roots {
		count += w.addRoot(root)
	}
	logging.Debug("Watcher started, watching %d directories", count)

	w.wg.Add(1)
	go w.run()
	return nil
}

// Stop shuts the watcher down.
func (w *Watcher) Stop() {
	close(w.stop)
	if w.fsw != nil {
		if err := w.fsw.Close(); err != nil {
			logging.Error("failed to close file watcher: %v", err)
		}
	}
	w.wg.Wait()
}

func (w *Watcher) addRoot(root string) int {
	info, err := os.Stat(root)
	if err != nil {
		logging.Warn("Watcher: cannot access %s: %v", root, err)
		metrics.WatcherErrors.Inc()
		return 0
	}

	if !info.IsDir() {
		// Watch the containing directory; fsnotify delivers per-file events
		// for its entries.
		root = filepath.Dir(root)
	}

	if !w.recursive {
		if err := w.fsw.Add(root); err != nil {
			logging.Warn("Watcher: failed to watch %s: %v", root, err)
			metrics.WatcherErrors.Inc()
			return 0
		}
		return 1
	}

	count := 0
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			logging.Warn("Watcher: failed to watch %s: %v", path, addErr)
			metrics.WatcherErrors.Inc()
		} else {
			count++
		}
		return nil
	})
	if err != nil {
		logging.Warn("Watcher: walk of %s failed: %v", root, err)
		metrics.WatcherErrors.Inc()
	}
	return count
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Error("Watcher error: %v", err)
			metrics.WatcherErrors.Inc()

		case <-w.stop:
			return
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	// Skip hidden files and editors' dot-temp files.
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return
	}

	metrics.WatcherEventsTotal.WithLabelValues(eventType(ev.Op)).Inc()

	switch {
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.events <- event.FileDeleted{Path: ev.Name}

	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if w.recursive && ev.Op&fsnotify.Create != 0 {
				if err := w.fsw.Add(ev.Name); err != nil {
					logging.Warn("Watcher: failed to watch new directory %s: %v", ev.Name, err)
					metrics.WatcherErrors.Inc()
				}
			}
			return
		}
		w.debounce(ev.Name)
	}
}

// debounce schedules a re-probe for path, resetting the timer if another
// write arrives within the window.
func (w *Watcher) debounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(debounceWindow, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case <-w.stop:
			return
		default:
		}
		w.reprobe(path)
	})
}

func (w *Watcher) reprobe(path string) {
	if _, err := os.Stat(path); err != nil {
		w.events <- event.FileDeleted{Path: path}
		return
	}

	format, err := imageformat.IdentifyFile(path)
	if err != nil {
		w.events <- event.FileDeleted{Path: path}
		return
	}
	if format == imageformat.FormatUnrecognized {
		return
	}

	dims, err := imageformat.Probe(path, format)
	if err != nil {
		// The change made the file unreadable as an image; treat it as gone.
		logging.Debug("Watcher: probe failed for changed file %s: %v", path, err)
		w.events <- event.FileDeleted{Path: path}
		return
	}

	w.events <- event.FileChanged{Meta: imagedata.Metadata{
		Path:   path,
		Width:  dims.Width,
		Height: dims.Height,
		Format: format,
	}}
}

func eventType(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "create"
	case op&fsnotify.Write != 0:
		return "write"
	case op&fsnotify.Remove != 0:
		return "remove"
	case op&fsnotify.Rename != 0:
		return "rename"
	case op&fsnotify.Chmod != 0:
		return "chmod"
	default:
		return "unknown"
	}
}
