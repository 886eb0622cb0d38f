// Package filewatch turns filesystem notifications on report files into
// debounced, per-key change batches.
package filewatch

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/simheat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simheat/pkg/errors"
)

const DefaultDebounce = 300 * time.Millisecond

// Watcher maps watched files to caller keys (dataset names). Parent
// directories are watched rather than the files themselves so that editors
// and tools that replace a file by rename keep being observed.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	logger   logging.Logger

	mu    sync.Mutex
	files map[string][]string
	dirs  map[string]bool
}

func New(debounce time.Duration, logger logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create file watcher")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Watcher{
		fs:       fw,
		debounce: debounce,
		logger:   logger.Named("filewatch"),
		files:    make(map[string][]string),
		dirs:     make(map[string]bool),
	}, nil
}

// Add registers paths under key. A path may belong to several keys.
func (w *Watcher) Add(key string, paths ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeBadRequest, "invalid watch path").WithDetail(p)
		}
		dir := filepath.Dir(abs)
		if !w.dirs[dir] {
			if err := w.fs.Add(dir); err != nil {
				return errors.Wrap(err, errors.ErrCodeNotFound, "cannot watch directory").WithDetail(dir)
			}
			w.dirs[dir] = true
		}
		if !contains(w.files[abs], key) {
			w.files[abs] = append(w.files[abs], key)
		}
	}
	return nil
}

func (w *Watcher) keysFor(name string) []string {
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[abs]
}

// Run blocks until ctx is done, calling onChange with the sorted set of keys
// whose files changed during each quiet period. Calls are made from the Run
// goroutine, one at a time.
func (w *Watcher) Run(ctx context.Context, onChange func(keys []string)) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			keys := w.keysFor(ev.Name)
			if len(keys) == 0 {
				continue
			}
			w.logger.Debug("File changed", logging.String("path", ev.Name), logging.String("op", ev.Op.String()))
			for _, k := range keys {
				pending[k] = true
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", logging.Err(err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			keys := make([]string, 0, len(pending))
			for k := range pending {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			pending = make(map[string]bool)
			onChange(keys)
		}
	}
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
