// Package watch feeds edits of a values file into a running session.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-certgen/pkg/schema"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// Applier receives field changes. *session.Session satisfies it.
type Applier interface {
	Change(ctx context.Context, key, value string) error
}

// ApplyFunc is called after every sync with the keys that changed.
type ApplyFunc func(ctx context.Context, changed []string, err error)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithOrder applies changed keys in the given order; keys not listed follow
// alphabetically.
func WithOrder(keys []string) Option {
	return func(w *Watcher) {
		w.order = make(map[string]int, len(keys))
		for i, key := range keys {
			w.order[key] = i
		}
	}
}

// WithOnApply registers a callback run after each sync.
func WithOnApply(fn ApplyFunc) Option {
	return func(w *Watcher) {
		w.onApply = fn
	}
}

// WithLogger sets the watcher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher reapplies a JSON or YAML values file whenever it changes on disk.
// Only keys whose value differs from the previous sync are dispatched.
type Watcher struct {
	path     string
	applier  Applier
	debounce time.Duration
	order    map[string]int
	onApply  ApplyFunc
	logger   *slog.Logger

	mu      sync.Mutex
	applied schema.Values

	fsw  *fsnotify.Watcher
	done chan struct{}
}

// New constructs a watcher for path.
func New(path string, applier Applier, options ...Option) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("watch: values path is required")
	}
	if applier == nil {
		return nil, errors.New("watch: applier is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve %s: %w", path, err)
	}
	w := &Watcher{
		path:     abs,
		applier:  applier,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		applied:  schema.Values{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Sync reads the file and applies every key whose value changed since the
// last sync. Keys removed from the file are left untouched in the session.
func (w *Watcher) Sync(ctx context.Context) ([]string, error) {
	values, err := schema.ReadValuesFile(w.path)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	changed := make([]string, 0, len(values))
	for key, value := range values {
		if previous, ok := w.applied[key]; ok && previous == value {
			continue
		}
		changed = append(changed, key)
	}
	w.sort(changed)

	var errs []error
	applied := changed[:0]
	for _, key := range changed {
		if err := w.applier.Change(ctx, key, values[key]); err != nil {
			errs = append(errs, fmt.Errorf("watch: apply %q: %w", key, err))
			continue
		}
		w.applied[key] = values[key]
		applied = append(applied, key)
	}
	return applied, errors.Join(errs...)
}

func (w *Watcher) sort(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		oi, iok := w.order[keys[i]]
		oj, jok := w.order[keys[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
}

// Start performs an initial sync and then watches the file's directory until
// ctx is cancelled or Stop is called. Editors that replace the file through a
// rename are handled because the directory, not the file, is watched.
func (w *Watcher) Start(ctx context.Context) error {
	if w.fsw != nil {
		return errors.New("watch: already started")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch: add %s: %w", filepath.Dir(w.path), err)
	}
	w.fsw = fsw
	w.done = make(chan struct{})

	if _, statErr := os.Stat(w.path); statErr == nil {
		w.flush(ctx)
	}

	go w.loop(ctx)
	w.logger.Info("values watcher started", "path", w.path, "debounce", w.debounce)
	return nil
}

// Stop closes the underlying watcher and waits for the loop to exit.
func (w *Watcher) Stop() error {
	if w.fsw == nil {
		return nil
	}
	err := w.fsw.Close()
	<-w.done
	return err
}

// Done is closed once the watch loop exits.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	pending := false
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = true
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("values watcher error", "error", err)
		case <-ticker.C:
			if pending {
				pending = false
				w.flush(ctx)
			}
		}
	}
}

func (w *Watcher) flush(ctx context.Context) {
	changed, err := w.Sync(ctx)
	if err != nil {
		w.logger.Warn("values sync failed", "path", w.path, "error", err)
	} else if len(changed) > 0 {
		w.logger.Debug("values applied", "path", w.path, "keys", changed)
	}
	if w.onApply != nil {
		w.onApply(ctx, changed, err)
	}
}
