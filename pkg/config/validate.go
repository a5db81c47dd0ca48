package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags on the whole configuration, then the section
// of the selected asset source.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	var section any
	switch cfg.Assets.Type {
	case SourceFilesystem:
		section = cfg.Assets.Filesystem
	case SourceS3:
		section = cfg.Assets.S3
	case SourceBadger:
		section = cfg.Assets.Badger
	default:
		return nil
	}
	if err := validate.Struct(section); err != nil {
		return fmt.Errorf("assets.%s: %w", cfg.Assets.Type, formatValidationError(err))
	}
	return nil
}

// formatValidationError turns validator output into one line per field,
// keeping the failed tag name so callers can tell rules apart.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed '%s=%s' (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed '%s'", fe.Namespace(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
