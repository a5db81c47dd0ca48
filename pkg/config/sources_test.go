package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/hdrive/pkg/asset"
	"github.com/marmos91/hdrive/pkg/asset/source/badger"
	"github.com/marmos91/hdrive/pkg/asset/source/fs"
	"github.com/marmos91/hdrive/pkg/asset/source/memory"
)

func TestCreateAssetSource(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		src, err := CreateAssetSource(ctx, AssetsConfig{Type: SourceMemory})
		require.NoError(t, err)
		defer src.Close()
		assert.IsType(t, &memory.Source{}, src)
	})

	t.Run("filesystem", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("x"), 0644))

		src, err := CreateAssetSource(ctx, AssetsConfig{
			Type:       SourceFilesystem,
			Filesystem: fs.Config{BasePath: dir},
		})
		require.NoError(t, err)
		defer src.Close()

		data, err := src.Fetch(ctx, "a.png")
		require.NoError(t, err)
		assert.Equal(t, []byte("x"), data)
	})

	t.Run("filesystem missing dir", func(t *testing.T) {
		_, err := CreateAssetSource(ctx, AssetsConfig{
			Type:       SourceFilesystem,
			Filesystem: fs.Config{BasePath: filepath.Join(t.TempDir(), "missing")},
		})
		assert.Error(t, err)
	})

	t.Run("badger", func(t *testing.T) {
		src, err := CreateAssetSource(ctx, AssetsConfig{
			Type:   SourceBadger,
			Badger: badger.Config{Path: t.TempDir()},
		})
		require.NoError(t, err)
		defer src.Close()

		_, err = src.Fetch(ctx, "missing.png")
		assert.ErrorIs(t, err, asset.ErrAssetNotFound)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := CreateAssetSource(ctx, AssetsConfig{Type: "ftp"})
		assert.Error(t, err)
	})
}
