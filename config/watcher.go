package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/GoCodeAlone/boot/env"
	"github.com/GoCodeAlone/boot/logging"
	"github.com/fsnotify/fsnotify"
)

// reloadDebounce collapses the burst of events editors emit on save.
const reloadDebounce = 100 * time.Millisecond

// Watcher reloads native config files in place when they change. A file
// that fails to parse keeps its previous source.
type Watcher struct {
	env     *env.Environment
	files   map[string]bool
	watcher *fsnotify.Watcher
	logger  logging.Logger

	onReload func(path string)

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Watch starts watching files. onReload, if set, runs after each
// successful reload.
func Watch(e *env.Environment, files []string, logger logging.Logger, onReload func(path string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	if logger == nil {
		logger = logging.Nop()
	}

	w := &Watcher{
		env:      e,
		files:    make(map[string]bool, len(files)),
		watcher:  fw,
		logger:   logger,
		onReload: onReload,
		stopCh:   make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, f := range files {
		w.files[filepath.Clean(f)] = true
		dirs[filepath.Dir(f)] = true
	}
	// Directories are watched so atomic replace-by-rename is seen.
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	pending := make(map[string]bool)

	for {
		select {
		case <-w.stopCh:
			timer.Stop()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			path := filepath.Clean(event.Name)
			if !w.files[path] {
				continue
			}
			pending[path] = true
			timer.Reset(reloadDebounce)

		case <-timer.C:
			for path := range pending {
				w.reload(path)
			}
			pending = make(map[string]bool)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload(path string) {
	src, err := LoadNativeSource(path)
	if err != nil {
		w.logger.Warn("Config reload failed, keeping previous values", "path", path, "error", err)
		return
	}
	if !w.env.ReplacePropertySource(src) {
		w.env.AddPropertySource(src)
	}
	w.logger.Info("Config reloaded", "path", path)
	if w.onReload != nil {
		w.onReload(path)
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
