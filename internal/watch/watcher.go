// Package watch reports changes under the source tree so the scheduler can
// run a pass before its interval elapses.
package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"replisync/internal/logger"
	"replisync/internal/model"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher follows every folder under root, including folders created later.
// Notices are dropped when the buffer is full; consumers only need to know
// that something changed.
type Watcher struct {
	root    string
	fw      *fsnotify.Watcher
	notices chan model.ChangeNotice
	quit    chan struct{}
	closed  sync.Once
	wg      sync.WaitGroup
}

// Open starts watching root. Call Close to release the underlying handles.
func Open(root string, buffer int) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		root:    abs,
		fw:      fw,
		notices: make(chan model.ChangeNotice, buffer),
		quit:    make(chan struct{}),
	}

	if err := w.follow(abs); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.loop()

	logger.Log.Info("watching source",
		zap.String("root", abs))
	return w, nil
}

// follow adds dir and every folder below it.
func (w *Watcher) follow(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	defer close(w.notices)

	for {
		select {
		case <-w.quit:
			return

		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logger.Log.Warn("source watcher error",
				zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		// the new folder may already have been removed
		if err := w.follow(ev.Name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Log.Debug("could not follow new folder",
				zap.String("path", ev.Name),
				zap.Error(err))
		}
	}

	select {
	case w.notices <- model.ChangeNotice{Path: ev.Name, Timestamp: time.Now()}:
	default:
	}
}

func (w *Watcher) Root() string {
	return w.root
}

func (w *Watcher) Notices() <-chan model.ChangeNotice {
	return w.notices
}

// Close stops the watcher and closes Notices. It is safe to call twice.
func (w *Watcher) Close() error {
	var err error
	w.closed.Do(func() {
		close(w.quit)
		err = w.fw.Close()
		w.wg.Wait()
	})
	return err
}
