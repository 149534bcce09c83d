package server

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// templateWatcher watches the section template override directory and
// triggers a registry reload plus a live-preview reload broadcast.
type templateWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	onReload func() error
	done     chan struct{}
	logger   *zap.Logger
}

// newTemplateWatcher watches dir/sections for template changes.
func newTemplateWatcher(dir string, onReload func() error, logger *zap.Logger) (*templateWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &templateWatcher{
		watcher:  fsWatcher,
		dir:      dir,
		onReload: onReload,
		done:     make(chan struct{}),
		logger:   logger,
	}

	if err := fsWatcher.Add(filepath.Join(dir, "sections")); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// start begins watching for template changes.
func (w *templateWatcher) start() {
	go func() {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}

				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
					continue
				}
				if filepath.Ext(event.Name) != ".html" {
					continue
				}

				w.logger.Debug("template changed", zap.String("file", event.Name))
				if err := w.onReload(); err != nil {
					w.logger.Warn("template reload failed", zap.String("file", event.Name), zap.Error(err))
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.logger.Warn("template watcher error", zap.Error(err))

			case <-w.done:
				return
			}
		}
	}()
}

// stop stops the watcher.
func (w *templateWatcher) stop() error {
	close(w.done)
	return w.watcher.Close()
}
