package asset

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/marmos91/hdrive/internal/logger"
	"github.com/marmos91/hdrive/internal/telemetry"
)

// Options configures a Cache.
type Options struct {
	Decode DecodeOptions

	// Metrics is optional.
	Metrics CacheMetrics

	// SourceType is attached to log lines and spans.
	SourceType string
}

type entry struct {
	state State
	asset *Asset
}

// Stats is a point-in-time view of the cache.
type Stats struct {
	Loaded int
	Failed int
	Loads  int // loads performed, one per key at most
	Joins  int // callers that shared a load already in flight
	Hits   int // callers that found a terminal entry
}

// Cache maps keys to terminal load results. It is shared by reference
// between the foreground and the prefetch goroutine and is safe for
// concurrent use.
//
// Entries are only ever inserted, never replaced or removed.
type Cache struct {
	source   Source
	resolver Resolver
	opts     Options

	group singleflight.Group

	mu      sync.RWMutex
	entries map[Key]*entry
	stats   Stats
}

// NewCache creates an empty cache reading from source.
func NewCache(source Source, resolver Resolver, opts Options) *Cache {
	return &Cache{
		source:   source,
		resolver: resolver,
		opts:     opts,
		entries:  make(map[Key]*entry),
	}
}

// EnsureLoaded returns the terminal result for key, loading it first if no
// caller has done so. Concurrent callers for the same key share one load.
//
// The returned state is Loaded or Failed. The asset is nil unless Loaded.
// Cancelling ctx does not abort a load another caller may be waiting on.
func (c *Cache) EnsureLoaded(ctx context.Context, key Key) (*Asset, State) {
	if e, ok := c.lookup(key); ok {
		c.count(LookupHit)
		return e.asset, e.state
	}

	performed := false
	v, _, _ := c.group.Do(string(key), func() (any, error) {
		// A previous flight may have finished between lookup and Do.
		if e, ok := c.lookup(key); ok {
			return e, nil
		}
		performed = true
		e := c.load(context.WithoutCancel(ctx), key)
		if err := c.insert(key, e); err != nil {
			logger.ErrorCtx(ctx, "Asset cache rejected insert", logger.AssetKey(key.String()), logger.Err(err))
			existing, _ := c.lookup(key)
			return existing, nil
		}
		return e, nil
	})

	if performed {
		c.count(LookupMiss)
	} else {
		c.count(LookupJoin)
	}

	e := v.(*entry)
	return e.asset, e.state
}

// Get returns the asset for key if it is Loaded. It never starts a load.
func (c *Cache) Get(key Key) (*Asset, bool) {
	e, ok := c.lookup(key)
	if !ok || e.state != Loaded {
		return nil, false
	}
	return e.asset, true
}

// State returns the state of key. Keys never requested are Unloaded.
func (c *Cache) State(key Key) State {
	if e, ok := c.lookup(key); ok {
		return e.state
	}
	return Unloaded
}

// States returns the state of each key.
func (c *Cache) States(keys []Key) map[Key]State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[Key]State, len(keys))
	for _, k := range keys {
		if e, ok := c.entries[k]; ok {
			out[k] = e.state
		} else {
			out[k] = Unloaded
		}
	}
	return out
}

// Stats returns a snapshot of cache counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Warm ensures every key with at most workers loads in flight and returns the
// resulting counts. It stops early only if ctx is cancelled.
func (c *Cache) Warm(ctx context.Context, keys []Key, workers int) (loaded, failed int, err error) {
	if workers < 1 {
		workers = 1
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, k := range keys {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			_, st := c.EnsureLoaded(gctx, k)
			mu.Lock()
			if st == Loaded {
				loaded++
			} else {
				failed++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return loaded, failed, ctx.Err()
}

func (c *Cache) lookup(key Key) (*entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *Cache) insert(key Key, e *entry) error {
	c.mu.Lock()
	if old, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q is already %s", ErrConsistency, key, old.state)
	}
	c.entries[key] = e
	c.stats.Loads++
	if e.state == Loaded {
		c.stats.Loaded++
	} else {
		c.stats.Failed++
	}
	loaded, failed := c.stats.Loaded, c.stats.Failed
	c.mu.Unlock()

	if c.opts.Metrics != nil {
		c.opts.Metrics.SetEntries(loaded, failed)
	}
	return nil
}

func (c *Cache) count(outcome string) {
	c.mu.Lock()
	switch outcome {
	case LookupHit:
		c.stats.Hits++
	case LookupJoin:
		c.stats.Joins++
	}
	c.mu.Unlock()

	if c.opts.Metrics != nil {
		c.opts.Metrics.RecordLookup(outcome)
	}
}

// load fetches and decodes key. Failures are logged here, once per key,
// because a key is loaded at most once.
func (c *Cache) load(ctx context.Context, key Key) *entry {
	locator := c.resolver.Locator(key)
	start := time.Now()

	ctx, span := telemetry.StartAssetSpan(ctx, key.String(), locator, telemetry.SourceType(c.opts.SourceType))
	defer span.End()

	data, err := c.source.Fetch(ctx, locator)
	var a *Asset
	if err == nil {
		a, err = decode(key, locator, data, c.opts.Decode)
	}

	if c.opts.Metrics != nil {
		st := Loaded
		if err != nil {
			st = Failed
		}
		c.opts.Metrics.ObserveLoad(st, len(data), time.Since(start))
	}

	if err != nil {
		telemetry.RecordError(ctx, err)
		span.SetAttributes(telemetry.AssetState(Failed.String()))
		logger.ErrorCtx(ctx, "Unable to load asset",
			logger.AssetKey(key.String()),
			logger.Locator(locator),
			logger.KeySourceType, c.opts.SourceType,
			logger.Err(err),
		)
		return &entry{state: Failed}
	}

	span.SetAttributes(telemetry.AssetState(Loaded.String()), telemetry.AssetSize(len(data)), telemetry.MediaType(a.MediaType))
	logger.DebugCtx(ctx, "Asset loaded",
		logger.AssetKey(key.String()),
		logger.Locator(locator),
		logger.Size(len(data)),
		logger.KeyMediaType, a.MediaType,
		logger.DurationMs(start),
	)
	return &entry{state: Loaded, asset: a}
}
