package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"log level", func(c *Config) { c.Logging.Level = "INVALID" }, "oneof"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "oneof"},
		{"api port", func(c *Config) { c.API.Port = 70000 }, "max"},
		{"sample rate", func(c *Config) { c.Telemetry.SampleRate = 2 }, "lte"},
		{"batch size", func(c *Config) { c.Session.BatchSize = 0 }, "gte"},
		{"frame interval", func(c *Config) { c.Session.FrameInterval = 0 }, "gt"},
		{"source type", func(c *Config) { c.Assets.Type = "ftp" }, "oneof"},
		{"s3 bucket", func(c *Config) { c.Assets.Type = SourceS3 }, "assets.s3"},
		{"s3 configured", func(c *Config) {
			c.Assets.Type = SourceS3
			c.Assets.S3.Bucket = "icons"
		}, ""},
		{"badger path", func(c *Config) {
			c.Assets.Type = SourceBadger
			c.Assets.Badger.Path = ""
		}, "assets.badger"},
		{"memory ignores sections", func(c *Config) {
			c.Assets.Type = SourceMemory
			c.Assets.Filesystem.BasePath = ""
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
