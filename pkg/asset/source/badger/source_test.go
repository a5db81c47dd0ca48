package badger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/hdrive/pkg/asset"
)

func newTestSource(t *testing.T) *Source {
	t.Helper()
	s, err := New(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutFetch(t *testing.T) {
	ctx := context.Background()
	s := newTestSource(t)

	require.NoError(t, s.Put(ctx, "Coal.png", []byte("coal")))
	data, err := s.Fetch(ctx, "Coal.png")
	require.NoError(t, err)
	assert.Equal(t, "coal", string(data))

	require.NoError(t, s.Put(ctx, "Coal.png", []byte("coal v2")))
	data, err = s.Fetch(ctx, "Coal.png")
	require.NoError(t, err)
	assert.Equal(t, "coal v2", string(data))
}

func TestFetchMissing(t *testing.T) {
	s := newTestSource(t)
	_, err := s.Fetch(context.Background(), "nope.png")
	assert.ErrorIs(t, err, asset.ErrAssetNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestSource(t)

	require.NoError(t, s.Put(ctx, "Coal.png", []byte("coal")))
	require.NoError(t, s.Delete(ctx, "Coal.png"))
	require.NoError(t, s.Delete(ctx, "never-there.png"))

	_, err := s.Fetch(ctx, "Coal.png")
	assert.ErrorIs(t, err, asset.ErrAssetNotFound)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := newTestSource(t)

	for _, loc := range []string{"b.png", "a.png", "dir/c.png"} {
		require.NoError(t, s.Put(ctx, loc, []byte(loc)))
	}

	got, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png", "dir/c.png"}, got)
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "assets.db")

	s, err := New(Config{Path: dir})
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "Water.png", []byte("water")))
	require.NoError(t, s.Close())

	s, err = New(Config{Path: dir})
	require.NoError(t, err)
	defer s.Close()

	data, err := s.Fetch(ctx, "Water.png")
	require.NoError(t, err)
	assert.Equal(t, "water", string(data))
}

func TestClosed(t *testing.T) {
	s := newTestSource(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.HealthCheck(context.Background()), asset.ErrSourceClosed)
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
