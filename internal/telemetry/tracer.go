package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys.
const (
	AttrAssetKey     = "asset.key"
	AttrAssetLocator = "asset.locator"
	AttrAssetState   = "asset.state"
	AttrAssetSize    = "asset.size"
	AttrAssetJoined  = "asset.joined"
	AttrMediaType    = "asset.media_type"

	AttrBatchID    = "batch.id"
	AttrBatchSize  = "batch.size"
	AttrGeneration = "batch.generation"
	AttrIndices    = "batch.indices"

	AttrPrefetchReady = "prefetch.ready"

	AttrSourceType = "source.type"
	AttrBucket     = "storage.bucket"
	AttrStorageKey = "storage.key"
)

// Span names. Format: <component>.<operation>
const (
	SpanAssetLoad      = "asset.load"
	SpanAssetFetch     = "asset.fetch"
	SpanBatchLoad      = "batch.load"
	SpanPrefetchRun    = "prefetch.run"
	SpanPrefetchTake   = "prefetch.take"
	SpanSessionConfirm = "session.confirm"
	SpanSessionStart   = "session.start"
)

// AssetKey returns an attribute for an asset key.
func AssetKey(key string) attribute.KeyValue {
	return attribute.String(AttrAssetKey, key)
}

// AssetLocator returns an attribute for an asset locator.
func AssetLocator(loc string) attribute.KeyValue {
	return attribute.String(AttrAssetLocator, loc)
}

// AssetState returns an attribute for the terminal state of a load.
func AssetState(state string) attribute.KeyValue {
	return attribute.String(AttrAssetState, state)
}

// AssetSize returns an attribute for payload size in bytes.
func AssetSize(n int) attribute.KeyValue {
	return attribute.Int(AttrAssetSize, n)
}

// AssetJoined reports whether a caller joined a load already in flight.
func AssetJoined(joined bool) attribute.KeyValue {
	return attribute.Bool(AttrAssetJoined, joined)
}

// MediaType returns an attribute for a detected media type.
func MediaType(mt string) attribute.KeyValue {
	return attribute.String(AttrMediaType, mt)
}

func BatchID(id string) attribute.KeyValue {
	return attribute.String(AttrBatchID, id)
}

func BatchSize(n int) attribute.KeyValue {
	return attribute.Int(AttrBatchSize, n)
}

func Generation(gen uint64) attribute.KeyValue {
	return attribute.Int64(AttrGeneration, int64(gen))
}

func Indices(idx []int) attribute.KeyValue {
	return attribute.IntSlice(AttrIndices, idx)
}

// PrefetchReady reports whether the next batch was ready when confirm ran.
func PrefetchReady(ready bool) attribute.KeyValue {
	return attribute.Bool(AttrPrefetchReady, ready)
}

func SourceType(t string) attribute.KeyValue {
	return attribute.String(AttrSourceType, t)
}

// Bucket returns an attribute for an S3 bucket name.
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// StorageKey returns an attribute for an object key.
func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrStorageKey, key)
}

// StartAssetSpan starts a span for loading one asset.
func StartAssetSpan(ctx context.Context, key, locator string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{AssetKey(key), AssetLocator(locator)}, attrs...)
	return StartSpan(ctx, SpanAssetLoad, trace.WithAttributes(all...))
}

// StartBatchSpan starts a span for loading a batch.
func StartBatchSpan(ctx context.Context, id string, indices []int) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanBatchLoad, trace.WithAttributes(BatchID(id), Indices(indices), BatchSize(len(indices))))
}
