package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/hdrive/internal/bytesize"
)

// yamlSafePath keeps Windows backslashes from being read as YAML escapes.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
logging:
  level: "debug"

assets:
  type: filesystem
  filesystem:
    path: "`+yamlSafePath(dir)+`"
  max_size: 2Mi
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "res/recipes.json", cfg.Catalog.Path)
	assert.Equal(t, dir, cfg.Assets.Filesystem.BasePath)
	assert.Equal(t, 2*bytesize.MiB, cfg.Assets.MaxSize)
	assert.True(t, cfg.Assets.IsImagesOnly())
	assert.Equal(t, 3, cfg.Session.BatchSize)
	assert.Equal(t, 16*time.Millisecond, cfg.Session.FrameInterval)
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "logging: [unclosed")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
shutdown_timeout = "5s"

[session]
batch_size = 2
seed = 42
frame_interval = "10ms"

[assets]
type = "memory"
images_only = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 2, cfg.Session.BatchSize)
	assert.Equal(t, uint64(42), cfg.Session.Seed)
	assert.Equal(t, 10*time.Millisecond, cfg.Session.FrameInterval)
	assert.Equal(t, SourceMemory, cfg.Assets.Type)
	assert.False(t, cfg.Assets.IsImagesOnly())
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeConfig(t, `
assets:
  type: ftp
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("HDRIVE_LOGGING_LEVEL", "ERROR")
	t.Setenv("HDRIVE_API_PORT", "9091")
	t.Setenv("HDRIVE_SESSION_BATCH_SIZE", "4")

	path := writeConfig(t, `
logging:
  level: "INFO"
api:
  port: 8080
assets:
  type: memory
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ERROR", cfg.Logging.Level)
	assert.Equal(t, 9091, cfg.API.Port)
	assert.Equal(t, 4, cfg.Session.BatchSize)
}

func TestMustLoad_MissingExplicitFile(t *testing.T) {
	_, err := MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hdrive config init")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := GetDefaultConfig()
	cfg.Assets.Type = SourceS3
	cfg.Assets.S3.Bucket = "icons"
	cfg.Session.Seed = 7

	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestGetDefaultConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	assert.Equal(t, filepath.Join(dir, "hdrive"), GetConfigDir())
	assert.Equal(t, filepath.Join(dir, "hdrive", "config.yaml"), GetDefaultConfigPath())
	assert.False(t, DefaultConfigExists())
}

func TestLoad_NumericSizes(t *testing.T) {
	path := writeConfig(t, `
assets:
  type: memory
  max_size: 1048576
shutdown_timeout: 2m
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, bytesize.MiB, cfg.Assets.MaxSize)
	assert.Equal(t, 2*time.Minute, cfg.ShutdownTimeout)
}
