// Package fs serves assets from a directory on disk.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/marmos91/hdrive/pkg/asset"
)

// Config holds configuration for the filesystem source.
type Config struct {
	// BasePath is the directory locators are resolved against.
	BasePath string `mapstructure:"path" yaml:"path" validate:"required"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{BasePath: "res/images"}
}

// Source reads locators as slash-separated paths relative to BasePath.
// Locators cannot escape the base directory.
type Source struct {
	mu     sync.RWMutex
	root   *os.Root
	closed bool
}

// New opens the base directory.
func New(cfg Config) (*Source, error) {
	if cfg.BasePath == "" {
		return nil, errors.New("base path is required")
	}

	info, err := os.Stat(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("asset directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("asset directory %q is not a directory", cfg.BasePath)
	}

	root, err := os.OpenRoot(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset directory: %w", err)
	}
	return &Source{root: root}, nil
}

// Fetch reads the file at locator.
func (s *Source) Fetch(ctx context.Context, locator string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, asset.ErrSourceClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.root.Open(path.Clean(locator))
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", asset.ErrAssetNotFound, locator)
		}
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// List returns every regular file under the base directory as a locator,
// sorted. Hidden files are skipped.
func (s *Source) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, asset.ErrSourceClosed
	}

	var out []string
	err := iofs.WalkDir(s.root.FS(), ".", func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && p != "." {
			if d.IsDir() {
				return iofs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// HealthCheck verifies the base directory is still readable.
func (s *Source) HealthCheck(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return asset.ErrSourceClosed
	}
	_, err := s.root.Stat(".")
	return err
}

// Close releases the directory handle.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.root.Close()
}

var _ asset.Source = (*Source)(nil)
