// Package pack copies assets from one source into a writable store, once or
// continuously as files change.
package pack

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/marmos91/hdrive/internal/logger"
)

// Lister enumerates and reads locators.
type Lister interface {
	List(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// Store receives packed assets.
type Store interface {
	Put(ctx context.Context, locator string, data []byte) error
	Delete(ctx context.Context, locator string) error
}

// Result summarizes a pack run.
type Result struct {
	Assets int    `json:"assets" yaml:"assets"`
	Bytes  uint64 `json:"bytes" yaml:"bytes"`
}

// Pack copies every locator of from into to.
func Pack(ctx context.Context, from Lister, to Store) (Result, error) {
	locators, err := from.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list assets: %w", err)
	}

	var res Result
	for _, loc := range locators {
		n, err := copyOne(ctx, from, to, loc)
		if err != nil {
			return res, err
		}
		res.Assets++
		res.Bytes += uint64(n)
	}
	return res, nil
}

func copyOne(ctx context.Context, from Lister, to Store, loc string) (int, error) {
	data, err := from.Fetch(ctx, loc)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", loc, err)
	}
	if err := to.Put(ctx, loc, data); err != nil {
		return 0, err
	}
	logger.Debug("Asset packed", logger.KeyLocator, loc, logger.KeySize, len(data))
	return len(data), nil
}

// Watch keeps to in sync with the directory dir, whose files from reads.
// Writes and creations are re-packed, removals and renames deleted. It
// returns when ctx is done. Directories created after Watch starts are
// watched too.
func Watch(ctx context.Context, dir string, from Lister, to Store) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if err := addTree(w, dir); err != nil {
		return err
	}
	logger.Info("Watching asset directory", logger.KeyPath, dir)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if err := handle(ctx, w, dir, event, from, to); err != nil {
				logger.Warn("Failed to sync asset", logger.KeyPath, event.Name, logger.Err(err))
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func handle(ctx context.Context, w *fsnotify.Watcher, dir string, event fsnotify.Event, from Lister, to Store) error {
	rel, err := filepath.Rel(dir, event.Name)
	if err != nil {
		return err
	}
	loc := filepath.ToSlash(rel)
	if strings.HasPrefix(filepath.Base(loc), ".") {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		logger.Info("Asset removed", logger.KeyLocator, loc)
		return to.Delete(ctx, loc)

	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return addTree(w, event.Name)
		}
		start := time.Now()
		if _, err := copyOne(ctx, from, to, loc); err != nil {
			return err
		}
		logger.Info("Asset updated", logger.KeyLocator, loc, logger.DurationMs(start))
	}
	return nil
}

// addTree watches dir and all of its non-hidden subdirectories.
func addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}
