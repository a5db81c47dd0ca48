package logger

import (
	"log/slog"
	"time"
)

// Standard field keys. Use these consistently so logs can be queried by key.
const (
	// Tracing
	KeyTraceID   = "trace_id"
	KeySpanID    = "span_id"
	KeyRequestID = "request_id"
	KeyComponent = "component"

	// Catalog and batches
	KeyRecord     = "record"
	KeyRecords    = "records"
	KeyIndices    = "indices"
	KeyBatchID    = "batch_id"
	KeyBatchSize  = "batch_size"
	KeyGeneration = "generation"
	KeySelection  = "selection"

	// Assets
	KeyAssetKey   = "asset_key"
	KeyLocator    = "locator"
	KeyAssetState = "asset_state"
	KeyMediaType  = "media_type"
	KeySize       = "size"
	KeySourceType = "source_type"
	KeyLoaded     = "loaded"
	KeyFailed     = "failed"

	// Prefetch
	KeyPrefetch = "prefetch"
	KeyWaitMs   = "wait_ms"

	// Generic
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyPath       = "path"
	KeyAddress    = "address"
	KeyMethod     = "method"
	KeyStatus     = "status"
)

// Err returns an error attribute. A nil error yields an empty attr that handlers drop.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// AssetKey returns a slog.Attr for an asset key.
func AssetKey(key string) slog.Attr {
	return slog.String(KeyAssetKey, key)
}

// Locator returns a slog.Attr for an asset locator.
func Locator(loc string) slog.Attr {
	return slog.String(KeyLocator, loc)
}

// Generation returns a slog.Attr for a batch generation.
func Generation(gen uint64) slog.Attr {
	return slog.Uint64(KeyGeneration, gen)
}

// BatchID returns a slog.Attr for a batch identifier.
func BatchID(id string) slog.Attr {
	return slog.String(KeyBatchID, id)
}

// Indices returns a slog.Attr for sampled catalog indices.
func Indices(idx []int) slog.Attr {
	return slog.Any(KeyIndices, idx)
}

// Size returns a slog.Attr for a payload size in bytes.
func Size(n int) slog.Attr {
	return slog.Int(KeySize, n)
}

// DurationMs returns a slog.Attr for milliseconds elapsed since start.
func DurationMs(start time.Time) slog.Attr {
	return slog.Float64(KeyDurationMs, Duration(start))
}
