// Package sampler draws distinct catalog indices for a batch.
package sampler

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
)

// ErrSamplingImpossible is returned when k distinct indices cannot be drawn
// from [0, n). It is fatal at startup.
var ErrSamplingImpossible = errors.New("sampling impossible")

// Check validates that k distinct indices can be drawn from n.
func Check(n, k int) error {
	switch {
	case n <= 0:
		return fmt.Errorf("%w: catalog is empty", ErrSamplingImpossible)
	case k < 1:
		return fmt.Errorf("%w: batch size %d must be positive", ErrSamplingImpossible, k)
	case k > n:
		return fmt.Errorf("%w: batch size %d exceeds catalog size %d", ErrSamplingImpossible, k, n)
	}
	return nil
}

// Sampler draws uniform indices with reject-and-redraw. It is safe for
// concurrent use.
//
// The expected number of draws grows as k approaches n; with k == n the
// last slot needs n draws on average. Batches are small, so this is left as is.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a sampler seeded from the runtime's random source.
func New() *Sampler {
	return &Sampler{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeeded returns a deterministic sampler.
func NewSeeded(seed uint64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// SampleDistinct returns k pairwise-distinct indices in [0, n). The order is
// draw order, which callers use as display order.
func (s *Sampler) SampleDistinct(n, k int) ([]int, error) {
	if err := Check(n, k); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	picked := make([]int, 0, k)
	for len(picked) < k {
		i := s.rng.IntN(n)
		if slices.Contains(picked, i) {
			continue
		}
		picked = append(picked, i)
	}
	return picked, nil
}
