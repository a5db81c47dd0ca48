package sampler

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		n, k    int
		wantErr bool
	}{
		{"empty catalog", 0, 3, true},
		{"k exceeds n", 2, 3, true},
		{"zero k", 5, 0, true},
		{"k equals n", 3, 3, false},
		{"k below n", 10, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.n, tt.k)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSamplingImpossible)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSampleDistinct(t *testing.T) {
	s := NewSeeded(1)

	t.Run("DistinctAndInRange", func(t *testing.T) {
		for n := 3; n <= 12; n++ {
			for iter := 0; iter < 200; iter++ {
				idx, err := s.SampleDistinct(n, 3)
				require.NoError(t, err)
				require.Len(t, idx, 3)

				seen := map[int]bool{}
				for _, i := range idx {
					assert.GreaterOrEqual(t, i, 0)
					assert.Less(t, i, n)
					assert.False(t, seen[i], "duplicate index %d in %v", i, idx)
					seen[i] = true
				}
			}
		}
	})

	t.Run("KEqualsNReturnsPermutation", func(t *testing.T) {
		idx, err := s.SampleDistinct(3, 3)
		require.NoError(t, err)
		sorted := append([]int(nil), idx...)
		sort.Ints(sorted)
		assert.Equal(t, []int{0, 1, 2}, sorted)
	})

	t.Run("EmptyFailsFast", func(t *testing.T) {
		_, err := s.SampleDistinct(0, 3)
		assert.ErrorIs(t, err, ErrSamplingImpossible)
	})

	t.Run("TooFewRecordsFailsFast", func(t *testing.T) {
		_, err := s.SampleDistinct(2, 3)
		assert.ErrorIs(t, err, ErrSamplingImpossible)
	})
}

func TestSeededIsDeterministic(t *testing.T) {
	a, err := NewSeeded(42).SampleDistinct(100, 3)
	require.NoError(t, err)
	b, err := NewSeeded(42).SampleDistinct(100, 3)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// With n=5, k=3 each of the C(5,3)=10 unordered subsets should appear about
// equally often. The chi-square bound is loose (df=9, p≈0.001).
func TestUniformityOverSubsets(t *testing.T) {
	const draws = 20000
	s := NewSeeded(7)
	counts := map[string]int{}

	for i := 0; i < draws; i++ {
		idx, err := s.SampleDistinct(5, 3)
		require.NoError(t, err)
		sort.Ints(idx)
		counts[fmt.Sprint(idx)]++
	}

	require.Len(t, counts, 10)
	expected := float64(draws) / 10
	var chi2 float64
	for _, c := range counts {
		d := float64(c) - expected
		chi2 += d * d / expected
	}
	assert.Less(t, chi2, 27.88)
}

func TestConcurrentUse(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				idx, err := s.SampleDistinct(4, 3)
				assert.NoError(t, err)
				assert.Len(t, idx, 3)
			}
		}()
	}
	wg.Wait()
}
