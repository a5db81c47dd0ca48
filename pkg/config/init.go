package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configHeader = `# hdrive configuration file
#
# Every key can be overridden with an HDRIVE_ environment variable, e.g.
#   HDRIVE_LOGGING_LEVEL=DEBUG
#   HDRIVE_ASSETS_TYPE=s3
#
# assets.type selects the image source: memory, filesystem, s3 or badger.
# Only the matching section below is used.

`

// InitConfig writes a default configuration to the default location and
// returns its path. An existing file is only replaced when force is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	return path, InitConfigToPath(path, force)
}

// InitConfigToPath writes a default configuration to path.
func InitConfigToPath(path string, force bool) error {
	return WriteConfig(path, GetDefaultConfig(), force)
}

// WriteConfig renders cfg with the explanatory header and writes it to path.
func WriteConfig(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
	}

	data, err := Generate(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault renders the default configuration as commented YAML.
func GenerateDefault() ([]byte, error) {
	return Generate(GetDefaultConfig())
}

// Generate renders cfg as commented YAML.
func Generate(cfg *Config) ([]byte, error) {
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return append([]byte(configHeader), body...), nil
}
