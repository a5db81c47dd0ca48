// Package prefetch computes the next batch in the background while the
// current one is on screen.
package prefetch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/marmos91/hdrive/internal/logger"
	"github.com/marmos91/hdrive/internal/telemetry"
	"github.com/marmos91/hdrive/pkg/batch"
)

// ErrAlreadyTaken is returned when a pipeline's result is taken twice.
var ErrAlreadyTaken = errors.New("prefetched batch already taken")

// Status is the observable state of a pipeline.
type Status int

const (
	// Created means the work has not started yet.
	Created Status = iota
	// Running means the work is in progress.
	Running
	// Ready means the batch is available to Take.
	Ready
	// Consumed means Take has returned the batch.
	Consumed
)

func (s Status) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case Ready:
		return "ready"
	case Consumed:
		return "consumed"
	default:
		return "unknown"
	}
}

// Work produces a batch. It runs exactly once per pipeline.
type Work func(ctx context.Context) (*batch.Batch, error)

// Metrics observes pipeline activity. Optional.
type Metrics interface {
	// ObserveRun records how long the background work took.
	ObserveRun(duration time.Duration, err error)

	// ObserveTake records how long Take blocked and whether the batch was
	// already ready.
	ObserveTake(wait time.Duration, ready bool)
}

// Pipeline is a handle on one background batch computation. Its result is
// consumed exactly once. Once started the work always runs to completion,
// even if the result is never taken.
type Pipeline struct {
	ctx     context.Context
	work    Work
	metrics Metrics

	startOnce sync.Once
	done      chan struct{}

	mu      sync.Mutex
	started bool
	taken   bool
	result  *batch.Batch
	err     error
}

// New creates a pipeline in the Created state. ctx supplies values (trace,
// log context) to the work; its cancellation is ignored.
func New(ctx context.Context, work Work, metrics Metrics) *Pipeline {
	return &Pipeline{
		ctx:     context.WithoutCancel(ctx),
		work:    work,
		metrics: metrics,
		done:    make(chan struct{}),
	}
}

// Start creates a pipeline and starts it immediately.
func Start(ctx context.Context, work Work, metrics Metrics) *Pipeline {
	p := New(ctx, work, metrics)
	p.Start()
	return p
}

// Start launches the work. Calling it more than once has no effect.
func (p *Pipeline) Start() {
	p.startOnce.Do(func() {
		p.mu.Lock()
		p.started = true
		p.mu.Unlock()
		go p.run()
	})
}

func (p *Pipeline) run() {
	ctx, span := telemetry.StartSpan(p.ctx, telemetry.SpanPrefetchRun)
	defer span.End()

	start := time.Now()
	b, err := p.work(ctx)
	if err != nil {
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "Prefetch failed", logger.Err(err))
	}
	if p.metrics != nil {
		p.metrics.ObserveRun(time.Since(start), err)
	}

	p.mu.Lock()
	p.result, p.err = b, err
	p.mu.Unlock()
	close(p.done)
}

// Poll reports the current status without blocking. A Created pipeline is
// started by its first Poll. The batch is returned only when Ready.
func (p *Pipeline) Poll() (Status, *batch.Batch) {
	p.Start()

	select {
	case <-p.done:
	default:
		return Running, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.taken {
		return Consumed, nil
	}
	return Ready, p.result
}

// Status is Poll without the lazy start.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	started, taken := p.started, p.taken
	p.mu.Unlock()

	switch {
	case taken:
		return Consumed
	case !started:
		return Created
	}
	select {
	case <-p.done:
		return Ready
	default:
		return Running
	}
}

// Done is closed when the work finishes.
func (p *Pipeline) Done() <-chan struct{} {
	return p.done
}

// Take returns the batch, blocking until the work finishes if needed. It
// succeeds once; later calls return ErrAlreadyTaken. If ctx ends while
// waiting, the pipeline stays untaken and the work keeps running.
func (p *Pipeline) Take(ctx context.Context) (*batch.Batch, error) {
	p.mu.Lock()
	if p.taken {
		p.mu.Unlock()
		return nil, ErrAlreadyTaken
	}
	p.taken = true
	p.mu.Unlock()

	p.Start()

	start := time.Now()
	ready := true
	select {
	case <-p.done:
	default:
		ready = false
		_, span := telemetry.StartSpan(ctx, telemetry.SpanPrefetchTake)
		select {
		case <-p.done:
			span.End()
		case <-ctx.Done():
			span.End()
			p.mu.Lock()
			p.taken = false
			p.mu.Unlock()
			return nil, ctx.Err()
		}
	}

	wait := time.Since(start)
	if p.metrics != nil {
		p.metrics.ObserveTake(wait, ready)
	}
	if !ready {
		logger.DebugCtx(ctx, "Waited for prefetch", logger.KeyWaitMs, float64(wait.Microseconds())/1000.0)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result, p.err
}
