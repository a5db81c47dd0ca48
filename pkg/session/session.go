// Package session owns the displayed batch, the user's selection and the
// single background prefetch of the next batch.
//
// The session alternates strictly: a batch becomes current, the next one is
// prefetched while it is shown, and Confirm swaps them.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/marmos91/hdrive/internal/logger"
	"github.com/marmos91/hdrive/internal/telemetry"
	"github.com/marmos91/hdrive/pkg/asset"
	"github.com/marmos91/hdrive/pkg/batch"
	"github.com/marmos91/hdrive/pkg/catalog"
	"github.com/marmos91/hdrive/pkg/prefetch"
	"github.com/marmos91/hdrive/pkg/sampler"
)

// DefaultBatchSize is the number of records shown at once.
const DefaultBatchSize = 3

var (
	// ErrNoSelection is returned by Confirm when no record is selected.
	ErrNoSelection = errors.New("no record selected")

	// ErrInvalidSelection is returned by Select for an out-of-range index.
	ErrInvalidSelection = errors.New("selection out of range")
)

// Options configures a Session.
type Options struct {
	// BatchSize is k, the number of distinct records per batch.
	BatchSize int

	// PrefetchMetrics is optional.
	PrefetchMetrics prefetch.Metrics
}

// Pick is a confirmed choice.
type Pick struct {
	Generation uint64
	BatchID    string
	Record     catalog.Record
	At         time.Time
}

// View is a consistent snapshot of the session for presentation.
type View struct {
	Batch      *batch.Batch
	Generation uint64
	Selected   int // -1 when nothing is selected
	Prefetch   prefetch.Status
}

// Session is safe for concurrent use. Confirms are serialized.
type Session struct {
	catalog *catalog.Catalog
	cache   *asset.Cache
	sampler *sampler.Sampler
	loader  *batch.Loader
	opts    Options

	confirmMu sync.Mutex

	mu         sync.Mutex
	current    *batch.Batch
	generation uint64
	selected   int
	pending    *prefetch.Pipeline
	lastStatus prefetch.Status
	picks      []Pick
}

// New validates the batch size against the catalog, loads the first batch
// synchronously and starts prefetching the second.
func New(ctx context.Context, cat *catalog.Catalog, cache *asset.Cache, smp *sampler.Sampler, opts Options) (*Session, error) {
	if opts.BatchSize == 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if err := cat.CheckBatchSize(opts.BatchSize); err != nil {
		return nil, err
	}

	s := &Session{
		catalog:  cat,
		cache:    cache,
		sampler:  smp,
		loader:   batch.NewLoader(cat, cache),
		opts:     opts,
		selected: -1,
	}

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanSessionStart)
	defer span.End()

	logger.InfoCtx(ctx, "Loading first batch", logger.KeyBatchSize, opts.BatchSize, logger.KeyRecords, cat.Len())
	first, err := s.next(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load first batch: %w", err)
	}

	s.current = first
	s.generation = 1
	s.pending = s.startPrefetch(ctx, 2)
	s.lastStatus = prefetch.Running
	return s, nil
}

// next samples and loads one batch.
func (s *Session) next(ctx context.Context) (*batch.Batch, error) {
	idx, err := s.sampler.SampleDistinct(s.catalog.Len(), s.opts.BatchSize)
	if err != nil {
		return nil, err
	}
	return s.loader.Load(ctx, idx)
}

func (s *Session) startPrefetch(ctx context.Context, gen uint64) *prefetch.Pipeline {
	lc := logger.FromContext(ctx)
	if lc == nil {
		lc = logger.NewLogContext("prefetch")
	}
	ctx = logger.WithContext(ctx, lc.WithGeneration(gen))
	return prefetch.Start(ctx, s.next, s.opts.PrefetchMetrics)
}

// Current returns the batch on screen.
func (s *Session) Current() *batch.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Generation returns the number of batches shown so far.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Select marks record i of the current batch as chosen.
func (s *Session) Select(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= s.current.Len() {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidSelection, i, s.current.Len())
	}
	s.selected = i
	return nil
}

// ClearSelection removes any selection.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.selected = -1
	s.mu.Unlock()
}

// Selected returns the selected index, or -1.
func (s *Session) Selected() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Prefetch returns the status of the pending batch without blocking.
func (s *Session) Prefetch() prefetch.Status {
	s.mu.Lock()
	p := s.pending
	s.mu.Unlock()
	return p.Status()
}

// View returns a consistent snapshot.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Batch:      s.current,
		Generation: s.generation,
		Selected:   s.selected,
		Prefetch:   s.pending.Status(),
	}
}

// Picks returns the confirmed choices, oldest first.
func (s *Session) Picks() []Pick {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Pick(nil), s.picks...)
}

// Tick is the per-frame hook. It polls the pending batch once, never
// blocking, and returns its status.
func (s *Session) Tick() prefetch.Status {
	s.mu.Lock()
	p, gen, last := s.pending, s.generation, s.lastStatus
	s.mu.Unlock()

	st, _ := p.Poll()
	if st != last {
		s.mu.Lock()
		if s.pending == p {
			s.lastStatus = st
		}
		s.mu.Unlock()
		if st == prefetch.Ready {
			logger.Debug("Next batch ready", logger.Generation(gen+1))
		}
	}
	return st
}

// Confirm records the selected record, makes the prefetched batch current and
// starts prefetching the one after. It blocks only if the prefetch is still
// running. Without a selection it returns ErrNoSelection and changes nothing.
func (s *Session) Confirm(ctx context.Context) (Pick, error) {
	s.confirmMu.Lock()
	defer s.confirmMu.Unlock()

	s.mu.Lock()
	if s.selected < 0 {
		s.mu.Unlock()
		return Pick{}, ErrNoSelection
	}
	cur, gen, pending := s.current, s.generation, s.pending
	pick := Pick{
		Generation: gen,
		BatchID:    cur.ID.String(),
		Record:     cur.Records[s.selected],
	}
	s.mu.Unlock()

	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanSessionConfirm)
	defer span.End()
	span.SetAttributes(telemetry.Generation(gen), telemetry.PrefetchReady(pending.Status() == prefetch.Ready))

	start := time.Now()
	next, err := pending.Take(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Pick{}, err
		}
		// The work itself failed; replace the pipeline so the session can recover.
		telemetry.RecordError(ctx, err)
		s.mu.Lock()
		s.pending = s.startPrefetch(ctx, gen+1)
		s.lastStatus = prefetch.Running
		s.mu.Unlock()
		return Pick{}, fmt.Errorf("next batch unavailable: %w", err)
	}

	pick.At = time.Now()

	s.mu.Lock()
	s.picks = append(s.picks, pick)
	s.current = next
	s.generation = gen + 1
	s.selected = -1
	s.pending = s.startPrefetch(ctx, gen+2)
	s.lastStatus = prefetch.Running
	s.mu.Unlock()

	logger.InfoCtx(ctx, "Record confirmed",
		logger.KeyRecord, pick.Record.Name,
		logger.Generation(gen),
		logger.BatchID(next.ID.String()),
		logger.DurationMs(start),
	)
	return pick, nil
}

// Close waits for the pending prefetch to finish. The work is never
// cancelled; ctx only bounds the wait.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	p := s.pending
	s.mu.Unlock()

	if p.Status() == prefetch.Created {
		return nil
	}
	select {
	case <-p.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
