package asset

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	// Decoders registered with image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"

	"github.com/marmos91/hdrive/internal/bytesize"
)

// DecodeOptions controls how fetched bytes become an Asset.
type DecodeOptions struct {
	// MaxSize rejects payloads larger than this. Zero means no limit.
	MaxSize bytesize.ByteSize

	// ImagesOnly rejects payloads whose detected type is not image/*,
	// and images whose header cannot be decoded.
	ImagesOnly bool
}

// DefaultDecodeOptions returns the limits used when none are configured.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{
		MaxSize:    16 * bytesize.MiB,
		ImagesOnly: true,
	}
}

// decode validates data and builds the Asset for key.
func decode(key Key, locator string, data []byte, opts DecodeOptions) (*Asset, error) {
	if opts.MaxSize > 0 && uint64(len(data)) > opts.MaxSize.Uint64() {
		return nil, fmt.Errorf("%w: %s > %s", ErrTooLarge, bytesize.ByteSize(len(data)), opts.MaxSize)
	}

	mt := mimetype.Detect(data)
	a := &Asset{
		Key:       key,
		Locator:   locator,
		Data:      data,
		MediaType: mt.String(),
	}

	isImage := strings.HasPrefix(mt.String(), "image/")
	if !isImage {
		if opts.ImagesOnly {
			return nil, fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
		}
		return a, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if opts.ImagesOnly {
			return nil, fmt.Errorf("%w: %s header: %v", ErrNotImage, mt.Extension(), err)
		}
		return a, nil
	}
	a.Width, a.Height = cfg.Width, cfg.Height
	return a, nil
}
