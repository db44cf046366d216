package filesystem

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sophialabs/xraydash/internal/infrastructure/ports"
)

// TemplateExtensions are the file types that trigger a dashboard template
// reload.
var TemplateExtensions = []string{".html", ".css"}

// Watcher watches a directory tree and calls onReload once a burst of
// changes to matching files has settled.
type Watcher struct {
	rootDir    string
	debounce   time.Duration
	extensions []string
	logger     ports.Logger
	watcher    *fsnotify.Watcher
	onReload   func()
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewWatcher creates a watcher for rootDir. Only files whose extension is in
// extensions are considered.
func NewWatcher(rootDir string, debounce time.Duration, extensions []string, logger ports.Logger, onReload func()) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		rootDir:    rootDir,
		debounce:   debounce,
		extensions: extensions,
		logger:     logger,
		watcher:    fsWatcher,
		onReload:   onReload,
		done:       make(chan struct{}),
	}

	if err := w.addRecursive(rootDir); err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// Start begins watching in a goroutine.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop terminates the watcher.
func (w *Watcher) Stop() {
	close(w.done)
	_ = w.watcher.Close()
	w.wg.Wait()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !w.matches(event.Name) {
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = w.addRecursive(event.Name)
					}
				}
				continue
			}

			w.logger.Debug("template change detected", "file", event.Name, "op", event.Op.String())

			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerC = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)

		case <-timerC:
			w.logger.Info("reloading templates", "dir", w.rootDir)
			w.onReload()
			timerC = nil
		}
	}
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) matches(name string) bool {
	return slices.Contains(w.extensions, strings.ToLower(filepath.Ext(name)))
}
