package export

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"resumebuilder/internal/errors"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// TemplateWatcher re-parses a resume template file when it changes and hands
// the result to an Exporter. A template that fails to parse is logged and the
// previous one stays active.
type TemplateWatcher struct {
	mu sync.Mutex

	path     string
	exporter *Exporter
	debounce time.Duration
	logger   *errors.Logger

	fsWatcher *fsnotify.Watcher
	timer     *time.Timer
	reload    chan struct{}
	stop      chan struct{}
	done      chan struct{}
	running   bool
	onReload  func(error)
}

// NewTemplateWatcher creates a watcher for path. debounce of zero uses a default.
func NewTemplateWatcher(path string, exporter *Exporter, debounce time.Duration, logger *errors.Logger) *TemplateWatcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &TemplateWatcher{
		path:     filepath.Clean(path),
		exporter: exporter,
		debounce: debounce,
		logger:   logger,
		reload:   make(chan struct{}, 1),
	}
}

// Start watches the template's directory, which also catches editors that
// save by renaming a temporary file over the original.
func (w *TemplateWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("template watcher is already running")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	w.fsWatcher = fsw
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	w.running = true
	go w.loop()

	w.logger.Info("Template watcher started", "file", w.path, "debounce", w.debounce)
	return nil
}

// Stop ends watching and waits for the event loop to exit.
func (w *TemplateWatcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stop)
	if w.timer != nil {
		w.timer.Stop()
	}
	err := w.fsWatcher.Close()
	done := w.done
	w.mu.Unlock()

	<-done
	w.logger.Info("Template watcher stopped")
	return err
}

func (w *TemplateWatcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				w.schedule()
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.LogError(err, "Template watcher error")
		case <-w.reload:
			w.apply()
		case <-w.stop:
			return
		}
	}
}

func (w *TemplateWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *TemplateWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.reload <- struct{}{}:
		default:
		}
	})
}

func (w *TemplateWatcher) apply() {
	t, err := LoadTemplateSet(w.path)
	if err != nil {
		w.logger.LogError(err, "Template reload failed, keeping previous template", "file", w.path)
	} else {
		w.exporter.SetTemplates(t)
		w.logger.Info("Resume template reloaded", "file", w.path)
	}

	w.mu.Lock()
	hook := w.onReload
	w.mu.Unlock()
	if hook != nil {
		hook(err)
	}
}
