package lists

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reports changes to the list files of a FileResolver.
type Watcher struct {
	resolver *FileResolver
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	byPath   map[string]string // cleaned file path -> list id
}

// NewWatcher watches every directory holding a catalog file of r.
func NewWatcher(r *FileResolver, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("lists: create watcher: %w", err)
	}

	w := &Watcher{
		resolver: r,
		watcher:  fw,
		logger:   logger.With(zap.String("component", "list-watcher")),
		byPath:   make(map[string]string),
	}
	dirs := make(map[string]bool)
	for _, id := range r.Catalog.IDs() {
		path, err := r.Path(id)
		if err != nil {
			continue
		}
		w.byPath[filepath.Clean(path)] = id
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			// A level directory may not exist yet; the remaining ones are still watched.
			w.logger.Warn("cannot watch list directory", zap.String("dir", dir), zap.Error(err))
		}
	}
	return w, nil
}

// Run delivers the id of every changed list to onChange until ctx is done.
func (w *Watcher) Run(ctx context.Context, onChange func(id string)) error {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			id, ok := w.byPath[filepath.Clean(ev.Name)]
			if !ok {
				continue
			}
			w.logger.Info("list changed", zap.String("list", id), zap.String("op", ev.Op.String()))
			onChange(id)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// Close stops the watcher without waiting for Run.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
