package schema

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch loads the schema file at path, calls fn with the result, and calls
// fn again every time the file is written, created or renamed into place.
// It blocks until ctx is done. Load errors are passed to fn and do not stop
// the watch; long-running servers use it to swap the graph handed to new
// registries.
func Watch(ctx context.Context, path string, fn func(*Graph, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("schema: watch: %w", err)
	}
	defer w.Close()
	// Watch the directory: editors replace files instead of writing them.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("schema: watch %s: %w", path, err)
	}
	fn(LoadFile(path))
	name := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			slog.Debug("schema: reloading", "path", path, "op", ev.Op.String())
			fn(LoadFile(path))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("schema: watch error", "path", path, "error", err)
		}
	}
}
