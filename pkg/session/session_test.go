package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/hdrive/pkg/asset"
	"github.com/marmos91/hdrive/pkg/asset/source/memory"
	"github.com/marmos91/hdrive/pkg/catalog"
	"github.com/marmos91/hdrive/pkg/prefetch"
	"github.com/marmos91/hdrive/pkg/sampler"
)

// countingSource wraps a memory source and counts fetches per locator.
type countingSource struct {
	*memory.Source
	mu     sync.Mutex
	counts map[string]int
}

func (c *countingSource) Fetch(ctx context.Context, loc string) ([]byte, error) {
	c.mu.Lock()
	c.counts[loc]++
	c.mu.Unlock()
	return c.Source.Fetch(ctx, loc)
}

func (c *countingSource) maxCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := 0
	for _, n := range c.counts {
		m = max(m, n)
	}
	return m
}

func testCatalog(t *testing.T, n int) *catalog.Catalog {
	t.Helper()
	recs := make([]catalog.Record, n)
	for i := range recs {
		recs[i] = catalog.Record{
			Name:    "Recipe " + string(rune('A'+i)),
			Product: asset.Key("Product " + string(rune('A'+i))),
			Input: []catalog.Ingredient{
				{Name: "Shared", Nb: 1},
				{Name: asset.Key("Input " + string(rune('A'+i))), Nb: 2},
			},
			Rate: float64(i),
		}
	}
	c, err := catalog.New(recs, nil)
	require.NoError(t, err)
	return c
}

func newTestSession(t *testing.T, n int, missing ...asset.Key) (*Session, *countingSource) {
	t.Helper()
	ctx := context.Background()
	cat := testCatalog(t, n)

	src := &countingSource{Source: memory.New(), counts: map[string]int{}}
	skip := map[asset.Key]bool{}
	for _, k := range missing {
		skip[k] = true
	}
	for _, k := range cat.Keys() {
		if !skip[k] {
			require.NoError(t, src.Put(ctx, cat.Locator(k), []byte(k)))
		}
	}

	cache := asset.NewCache(src, cat, asset.Options{})
	s, err := New(ctx, cat, cache, sampler.NewSeeded(3), Options{BatchSize: 3})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s, src
}

func TestNewRejectsSmallCatalog(t *testing.T) {
	cat := testCatalog(t, 2)
	cache := asset.NewCache(memory.New(), cat, asset.Options{})

	_, err := New(context.Background(), cat, cache, sampler.New(), Options{})
	assert.ErrorIs(t, err, sampler.ErrSamplingImpossible)
}

func TestFirstBatchIsTerminal(t *testing.T) {
	s, _ := newTestSession(t, 6)

	b := s.Current()
	require.NotNil(t, b)
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, uint64(1), s.Generation())
	assert.Equal(t, -1, s.Selected())

	for _, k := range b.Keys() {
		assert.True(t, s.cache.State(k).Terminal())
	}
}

func TestConfirmRequiresSelection(t *testing.T) {
	s, _ := newTestSession(t, 6)
	before := s.Current()

	_, err := s.Confirm(context.Background())
	assert.ErrorIs(t, err, ErrNoSelection)
	assert.Same(t, before, s.Current())
	assert.Equal(t, uint64(1), s.Generation())
}

func TestSelect(t *testing.T) {
	s, _ := newTestSession(t, 6)

	assert.ErrorIs(t, s.Select(3), ErrInvalidSelection)
	assert.ErrorIs(t, s.Select(-1), ErrInvalidSelection)
	require.NoError(t, s.Select(2))
	assert.Equal(t, 2, s.Selected())
	s.ClearSelection()
	assert.Equal(t, -1, s.Selected())
}

func TestConfirmSwapsBatch(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t, 6)

	first := s.Current()
	require.NoError(t, s.Select(1))

	pick, err := s.Confirm(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Records[1].Name, pick.Record.Name)
	assert.Equal(t, uint64(1), pick.Generation)

	second := s.Current()
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, uint64(2), s.Generation())
	assert.Equal(t, -1, s.Selected(), "selection resets after confirm")
	require.Len(t, s.Picks(), 1)

	for _, k := range second.Keys() {
		assert.True(t, s.cache.State(k).Terminal(), "swapped-in batch key %s", k)
	}
}

func TestHundredCyclesNeverReload(t *testing.T) {
	ctx := context.Background()
	s, src := newTestSession(t, 8, "Input C")

	for i := 0; i < 100; i++ {
		b := s.Current()
		seen := map[string]bool{}
		for _, r := range b.Records {
			assert.False(t, seen[r.Name], "duplicate record in batch")
			seen[r.Name] = true
		}

		s.Tick()
		require.NoError(t, s.Select(i%3))
		_, err := s.Confirm(ctx)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, src.maxCount(), "every locator fetched at most once")
	assert.Len(t, s.Picks(), 100)
	assert.Equal(t, uint64(101), s.Generation())
}

func TestMissingAssetAttemptedOnce(t *testing.T) {
	ctx := context.Background()
	s, src := newTestSession(t, 3, "Product B")

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Select(0))
		_, err := s.Confirm(ctx)
		require.NoError(t, err)
	}

	assert.Equal(t, asset.Failed, s.cache.State("Product B"))
	src.mu.Lock()
	defer src.mu.Unlock()
	assert.Equal(t, 1, src.counts["Product_B.png"])
}

func TestTickReachesReady(t *testing.T) {
	s, _ := newTestSession(t, 6)

	require.Eventually(t, func() bool {
		return s.Tick() == prefetch.Ready
	}, time.Second, time.Millisecond)

	v := s.View()
	assert.Equal(t, prefetch.Ready, v.Prefetch)
	assert.Equal(t, uint64(1), v.Generation)
	assert.Equal(t, s.Current(), v.Batch)
}

func TestDriverNotifiesReady(t *testing.T) {
	s, _ := newTestSession(t, 6)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	readyGen := make(chan uint64, 1)
	d := NewDriver(s, time.Millisecond)
	d.OnReady = func(gen uint64) {
		select {
		case readyGen <- gen:
		default:
		}
		cancel()
	}

	err := d.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, uint64(2), <-readyGen)
}

func TestCloseWaitsForPrefetch(t *testing.T) {
	s, _ := newTestSession(t, 6)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Close(ctx))
	assert.Equal(t, prefetch.Ready, s.Prefetch())
}
