package session

import (
	"context"
	"time"

	"github.com/marmos91/hdrive/pkg/prefetch"
)

// DefaultFrameInterval approximates a 60Hz render loop.
const DefaultFrameInterval = 16 * time.Millisecond

// Driver calls Tick on every frame, like a render loop would.
type Driver struct {
	session  *Session
	interval time.Duration

	// OnReady, if set, is called once per generation when the pending batch
	// becomes ready.
	OnReady func(generation uint64)
}

// NewDriver creates a driver ticking s every interval.
func NewDriver(s *Session, interval time.Duration) *Driver {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Driver{session: s, interval: interval}
}

// Run ticks until ctx is done.
func (d *Driver) Run(ctx context.Context) error {
	t := time.NewTicker(d.interval)
	defer t.Stop()

	var notified uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			st := d.session.Tick()
			if st != prefetch.Ready || d.OnReady == nil {
				continue
			}
			if gen := d.session.Generation(); gen != notified {
				notified = gen
				d.OnReady(gen + 1)
			}
		}
	}
}
