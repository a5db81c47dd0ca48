// Package batch assembles the records shown to the user together with the
// assets they reference.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/hdrive/internal/logger"
	"github.com/marmos91/hdrive/internal/telemetry"
	"github.com/marmos91/hdrive/pkg/asset"
	"github.com/marmos91/hdrive/pkg/catalog"
)

// Batch is an ordered set of distinct records, left to right. Every asset key
// its records reference was terminal in the cache when the batch was built.
type Batch struct {
	ID      uuid.UUID
	Indices []int
	Records []catalog.Record
	Created time.Time
}

// Len returns the number of records.
func (b *Batch) Len() int { return len(b.Records) }

// Keys returns every asset key in display order, product first per record.
// Duplicates are kept.
func (b *Batch) Keys() []asset.Key {
	var keys []asset.Key
	for _, r := range b.Records {
		keys = append(keys, r.Keys()...)
	}
	return keys
}

// Ensurer is the part of the asset cache the loader needs.
type Ensurer interface {
	EnsureLoaded(ctx context.Context, key asset.Key) (*asset.Asset, asset.State)
}

// Loader builds batches from catalog indices.
type Loader struct {
	catalog *catalog.Catalog
	cache   Ensurer
}

// NewLoader creates a loader over cat that loads assets through cache.
func NewLoader(cat *catalog.Catalog, cache Ensurer) *Loader {
	return &Loader{catalog: cat, cache: cache}
}

// Load clones the records at indices and ensures each referenced asset,
// product first then ingredients, record by record. It returns once every key
// is Loaded or Failed; asset failures never fail the batch.
func (l *Loader) Load(ctx context.Context, indices []int) (*Batch, error) {
	for _, i := range indices {
		if i < 0 || i >= l.catalog.Len() {
			return nil, fmt.Errorf("record index %d out of range [0, %d)", i, l.catalog.Len())
		}
	}

	b := &Batch{
		ID:      uuid.New(),
		Indices: append([]int(nil), indices...),
		Records: make([]catalog.Record, len(indices)),
		Created: time.Now(),
	}

	ctx, span := telemetry.StartBatchSpan(ctx, b.ID.String(), indices)
	defer span.End()

	start := time.Now()
	failed := 0
	for n, i := range indices {
		b.Records[n] = l.catalog.Record(i)
		for _, k := range b.Records[n].Keys() {
			if _, st := l.cache.EnsureLoaded(ctx, k); st != asset.Loaded {
				failed++
			}
		}
	}

	logger.DebugCtx(ctx, "Batch loaded",
		logger.BatchID(b.ID.String()),
		logger.Indices(indices),
		logger.KeyFailed, failed,
		logger.DurationMs(start),
	)
	return b, nil
}
