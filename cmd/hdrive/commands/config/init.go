package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/hdrive/internal/cli/prompt"
	pkgconfig "github.com/marmos91/hdrive/pkg/config"
)

var (
	initForce       bool
	initInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file",
	Long: `Create an hdrive configuration file with default values.

By default, the configuration file is created at $XDG_CONFIG_HOME/hdrive/config.yaml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  hdrive config init

  # Choose the catalog and asset source interactively
  hdrive config init --interactive

  # Force overwrite existing config
  hdrive config init --force --config ./hdrive.yaml`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Ask for the main settings")
}

var sourceChoices = []prompt.Choice{
	{Label: pkgconfig.SourceFilesystem, Details: "Image files in a local directory"},
	{Label: pkgconfig.SourceBadger, Details: "A Badger database built with 'hdrive assets pack'"},
	{Label: pkgconfig.SourceS3, Details: "An S3 bucket"},
	{Label: pkgconfig.SourceMemory, Details: "Nothing: every icon is a placeholder"},
}

func runInit(cmd *cobra.Command, args []string) error {
	path := configPath()
	cfg := pkgconfig.GetDefaultConfig()
	force := initForce

	if initInteractive {
		p := &prompt.Prompter{}
		if _, err := os.Stat(path); err == nil && !force {
			ok, err := p.Confirm(fmt.Sprintf("%s exists, overwrite", path), false)
			if err != nil {
				return err
			}
			if !ok {
				return prompt.ErrAborted
			}
			force = true
		}
		if err := askSettings(p, cfg); err != nil {
			return err
		}
	}

	if err := pkgconfig.WriteConfig(path, cfg, force); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", path)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Check the catalog with: hdrive catalog validate --assets")
	fmt.Println("  3. Start with: hdrive play, or hdrive serve")
	return nil
}

func askSettings(p *prompt.Prompter, cfg *pkgconfig.Config) error {
	catalogPath, err := p.Input("Recipe catalog", cfg.Catalog.Path)
	if err != nil {
		return err
	}
	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}

	i, err := p.Select("Icon source", sourceChoices)
	if err != nil {
		return err
	}
	cfg.Assets.Type = sourceChoices[i].Label

	switch cfg.Assets.Type {
	case pkgconfig.SourceFilesystem:
		dir, err := p.Input("Icon directory", cfg.Assets.Filesystem.BasePath)
		if err != nil {
			return err
		}
		if dir != "" {
			cfg.Assets.Filesystem.BasePath = dir
		}
	case pkgconfig.SourceBadger:
		dir, err := p.Input("Database directory", cfg.Assets.Badger.Path)
		if err != nil {
			return err
		}
		if dir != "" {
			cfg.Assets.Badger.Path = dir
		}
	case pkgconfig.SourceS3:
		bucket, err := p.Input("Bucket", cfg.Assets.S3.Bucket)
		if err != nil {
			return err
		}
		cfg.Assets.S3.Bucket = bucket
		region, err := p.Input("Region", cfg.Assets.S3.Region)
		if err != nil {
			return err
		}
		cfg.Assets.S3.Region = region
	}
	return pkgconfig.Validate(cfg)
}
