// Package memory provides an in-process asset source.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/marmos91/hdrive/pkg/asset"
)

// Source keeps payloads in a map. Used for tests and demos.
type Source struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// New creates an empty source.
func New() *Source {
	return &Source{data: make(map[string][]byte)}
}

// Put stores a copy of data under locator.
func (s *Source) Put(_ context.Context, locator string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return asset.ErrSourceClosed
	}
	s.data[locator] = append([]byte(nil), data...)
	return nil
}

func (s *Source) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, asset.ErrSourceClosed
	}
	d, ok := s.data[locator]
	if !ok {
		return nil, fmt.Errorf("%w: %s", asset.ErrAssetNotFound, locator)
	}
	return append([]byte(nil), d...), nil
}

// List returns stored locators, sorted.
func (s *Source) List(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.data))
	for k := range s.data {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Source) HealthCheck(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return asset.ErrSourceClosed
	}
	return nil
}

func (s *Source) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

var _ asset.Source = (*Source)(nil)
