// Package asset loads and caches the images referenced by catalog records.
//
// Every key is loaded at most once per process. A load ends in exactly one
// terminal state, Loaded or Failed, and that state never changes afterwards.
package asset

import (
	"context"
	"errors"
)

var (
	// ErrAssetNotFound is returned by a Source when the locator does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrSourceClosed is returned by a Source after Close.
	ErrSourceClosed = errors.New("asset source is closed")

	// ErrConsistency reports an attempt to overwrite a terminal cache entry.
	ErrConsistency = errors.New("asset cache consistency violation")

	// ErrTooLarge is returned when a payload exceeds the configured limit.
	ErrTooLarge = errors.New("asset exceeds size limit")

	// ErrNotImage is returned when images-only mode rejects a payload.
	ErrNotImage = errors.New("asset is not an image")
)

// Key identifies an asset. It is the item name used in the catalog.
type Key string

func (k Key) String() string { return string(k) }

// State is the lifecycle state of a cache entry.
type State int

const (
	// Unloaded means no load has finished for the key.
	Unloaded State = iota
	// Loaded means the asset is available.
	Loaded
	// Failed means the load failed and will not be retried.
	Failed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is Loaded or Failed.
func (s State) Terminal() bool {
	return s == Loaded || s == Failed
}

// Asset is a decoded, immutable resource. Callers must not modify Data.
type Asset struct {
	Key       Key
	Locator   string
	Data      []byte
	MediaType string
	Width     int
	Height    int
}

// Source fetches the raw bytes behind a locator.
type Source interface {
	// Fetch returns the payload for locator, or ErrAssetNotFound.
	Fetch(ctx context.Context, locator string) ([]byte, error)

	// HealthCheck verifies the source is reachable.
	HealthCheck(ctx context.Context) error

	Close() error
}

// Resolver maps a key to the locator its source understands.
type Resolver interface {
	Locator(key Key) string
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(Key) string

func (f ResolverFunc) Locator(key Key) string { return f(key) }
