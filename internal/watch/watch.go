// Package watch rebuilds on dialect file changes. Events are debounced so
// editor save bursts trigger one rebuild, and unchanged-mtime events
// (touch without modification) are filtered out.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	gocache "github.com/patrickmn/go-cache"

	"blcc/internal/log"
)

// Watcher observes directories for changes to files with the configured
// extensions.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	exts     map[string]bool
	mtimes   *gocache.Cache
}

func New(debounce time.Duration, extensions []string) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[e] = true
	}
	return &Watcher{
		fs:       fs,
		debounce: debounce,
		exts:     exts,
		mtimes:   gocache.New(time.Hour, 2*time.Hour),
	}, nil
}

// Add registers a directory, or the parent directory of a file.
func (w *Watcher) Add(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		path = filepath.Dir(path)
	}
	log.Debug(log.CatWatch, "watching", "dir", path)
	return w.fs.Add(path)
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}

// Run delivers batches of changed files to fn until the context ends.
// fn runs on the watcher's goroutine; events arriving during a rebuild
// are collected and delivered in the next batch.
func (w *Watcher) Run(ctx context.Context, fn func(changed []string)) error {
	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			log.Debug(log.CatWatch, "event", "op", ev.Op.String(), "path", ev.Name)
			pending[ev.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			log.ErrorErr(log.CatWatch, "watcher error", err)

		case <-fire:
			timer, fire = nil, nil
			changed := w.modified(pending)
			pending = make(map[string]struct{})
			if len(changed) > 0 {
				fn(changed)
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	return w.exts[filepath.Ext(ev.Name)]
}

// modified drops paths whose mtime has not moved since the last batch, so
// tools that rewrite files with identical timestamps do not loop rebuilds.
func (w *Watcher) modified(pending map[string]struct{}) []string {
	var changed []string
	for path := range pending {
		st, err := os.Stat(path)
		if err != nil {
			continue // deleted between event and batch
		}
		mt := st.ModTime().UnixNano()
		if prev, ok := w.mtimes.Get(path); ok && prev.(int64) == mt {
			continue
		}
		w.mtimes.Set(path, mt, gocache.DefaultExpiration)
		changed = append(changed, path)
	}
	return changed
}
