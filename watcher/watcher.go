package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/alexander-bruun/placeholders/utils/files"
	"github.com/fsnotify/fsnotify"
	"github.com/gofiber/fiber/v2/log"
)

// DefaultDebounce is the quiet period after the last write before a file is imported.
const DefaultDebounce = 500 * time.Millisecond

// ImportFunc imports the image file at path.
type ImportFunc func(ctx context.Context, path string) error

// Result reports the outcome of an import triggered by the watcher
type Result struct {
	Path string
	Err  error
}

// Watcher imports image files dropped into a directory
type Watcher struct {
	dir      string
	debounce time.Duration
	importFn ImportFunc
	watcher  *fsnotify.Watcher
	results  chan Result

	mu     sync.Mutex
	timers map[string]*time.Timer
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// New creates a watcher over dir
func New(dir string, debounce time.Duration, importFn ImportFunc) (*Watcher, error) {
	if importFn == nil {
		return nil, fmt.Errorf("no import function provided")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		dir:      dir,
		debounce: debounce,
		importFn: importFn,
		watcher:  fsWatcher,
		results:  make(chan Result, 100),
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Start watches the directory and queues the images already in it
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create watch directory: %w", err)
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch folder %s: %w", w.dir, err)
	}
	log.Infof("Watching folder: %s", w.dir)

	ctx, w.cancel = context.WithCancel(ctx)

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			w.schedule(ctx, filepath.Join(w.dir, entry.Name()))
		}
	}

	w.wg.Add(1)
	go w.processEvents(ctx)
	return nil
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("Watcher error: %v", err)
		}
	}
}

func watchable(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return files.IsImageFile(name)
}

// schedule imports path once it has been quiet for the debounce period
func (w *Watcher) schedule(ctx context.Context, path string) {
	if !watchable(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, exists := w.timers[path]; exists {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		w.handle(ctx, path)
	})
}

func (w *Watcher) handle(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	err = w.importFn(ctx, path)
	if err != nil {
		log.Errorf("Failed to import '%s': %v", path, err)
	} else {
		log.Debugf("Imported '%s' from watch folder", path)
	}

	select {
	case w.results <- Result{Path: path, Err: err}:
	default:
	}
}

// Results returns the import outcomes
func (w *Watcher) Results() <-chan Result {
	return w.results
}

// Stop stops the watcher and cancels pending imports
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}

	w.mu.Lock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}
