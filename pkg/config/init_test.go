package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, err := InitConfig(false)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, section := range []string{"# hdrive configuration file", "logging:", "assets:", "session:", "catalog:"} {
		assert.Contains(t, string(content), section)
	}

	_, err = InitConfig(false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = InitConfig(true)
	assert.NoError(t, err)
}

func TestInitConfigToPath_GeneratedConfigIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "hdrive.yaml")
	require.NoError(t, InitConfigToPath(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
}

func TestWriteConfig_CustomValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hdrive.yaml")

	cfg := GetDefaultConfig()
	cfg.Assets.Type = SourceBadger
	cfg.Catalog.Path = "/srv/recipes.json"
	require.NoError(t, WriteConfig(path, cfg, false))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourceBadger, loaded.Assets.Type)
	assert.Equal(t, "/srv/recipes.json", loaded.Catalog.Path)
}
