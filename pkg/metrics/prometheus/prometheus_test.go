package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/hdrive/pkg/asset"
	"github.com/marmos91/hdrive/pkg/metrics"
)

func TestConstructorsReturnNilWhenDisabled(t *testing.T) {
	metrics.Reset()
	assert.Nil(t, NewAssetMetrics())
	assert.Nil(t, NewPrefetchMetrics())
	assert.Nil(t, NewS3Metrics())
}

func TestConstructorsUseGlobalRegistry(t *testing.T) {
	metrics.InitRegistry()
	t.Cleanup(metrics.Reset)

	require.NotNil(t, NewAssetMetrics())
	require.NotNil(t, NewPrefetchMetrics())
	require.NotNil(t, NewS3Metrics())
}

func TestAssetMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newAssetMetrics(reg)

	m.RecordLookup(asset.LookupMiss)
	m.RecordLookup(asset.LookupJoin)
	m.RecordLookup(asset.LookupJoin)
	m.ObserveLoad(asset.Loaded, 2048, 3*time.Millisecond)
	m.ObserveLoad(asset.Failed, 0, time.Millisecond)
	m.SetEntries(1, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.lookups.WithLabelValues(asset.LookupJoin)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.entries.WithLabelValues("loaded")))
}

func TestPrefetchMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newPrefetchMetrics(reg)

	m.ObserveRun(time.Millisecond, nil)
	m.ObserveRun(time.Millisecond, errors.New("x"))
	m.ObserveTake(0, true)
	m.ObserveTake(5*time.Millisecond, false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.takes.WithLabelValues("false")))
}

func TestS3Metrics(t *testing.T) {
	m := newS3Metrics(prometheus.NewRegistry())
	m.ObserveOperation("GetObject", time.Millisecond, nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("GetObject", "success")))
}

func TestNilReceiversAreSafe(t *testing.T) {
	var a *assetMetrics
	var p *prefetchMetrics
	var s *s3Metrics

	assert.NotPanics(t, func() {
		a.RecordLookup("hit")
		a.ObserveLoad(asset.Loaded, 1, 0)
		a.SetEntries(0, 0)
		p.ObserveRun(0, nil)
		p.ObserveTake(0, true)
		s.ObserveOperation("x", 0, nil)
	})
}
