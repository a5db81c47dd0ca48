package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput redirects logger output to a buffer and restores the
// previous settings when the test ends.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)

	mu.RLock()
	origOut, origColor, origFormat := output, useColor, format
	mu.RUnlock()
	origLevel := level.Level()

	mu.Lock()
	output, useColor, format = buf, false, "text"
	mu.Unlock()
	rebuild()

	t.Cleanup(func() {
		mu.Lock()
		output, useColor, format = origOut, origColor, origFormat
		mu.Unlock()
		level.Set(origLevel)
		rebuild()
	})
	return buf
}

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level   string
		present []string
		absent  []string
	}{
		{"DEBUG", []string{"debug msg", "info msg", "warn msg", "error msg"}, nil},
		{"INFO", []string{"info msg", "warn msg", "error msg"}, []string{"debug msg"}},
		{"WARN", []string{"warn msg", "error msg"}, []string{"debug msg", "info msg"}},
		{"ERROR", []string{"error msg"}, []string{"debug msg", "info msg", "warn msg"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := captureOutput(t)
			SetLevel(tt.level)

			Debug("debug msg")
			Info("info msg")
			Warn("warn msg")
			Error("error msg")

			out := buf.String()
			for _, s := range tt.present {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestSetLevel(t *testing.T) {
	t.Run("CaseInsensitive", func(t *testing.T) {
		buf := captureOutput(t)
		SetLevel("debug")
		Debug("lowercase works")
		assert.Contains(t, buf.String(), "lowercase works")
	})

	t.Run("IgnoresInvalidValues", func(t *testing.T) {
		buf := captureOutput(t)
		SetLevel("WARN")
		SetLevel("LOUD")
		Info("hidden")
		Warn("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("warning")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)

	_, err = ParseLevel("trace")
	assert.Error(t, err)
}

func TestTextFormat(t *testing.T) {
	t.Run("TimestampAndLevel", func(t *testing.T) {
		buf := captureOutput(t)
		Info("hello")
		line := buf.String()
		assert.True(t, strings.HasPrefix(line, "["))
		assert.Contains(t, line, "[INFO] hello")
	})

	t.Run("StructuredFields", func(t *testing.T) {
		buf := captureOutput(t)
		Info("asset loaded", KeyAssetKey, "Iron Plate", KeySize, 42, "ok", true)
		out := buf.String()
		assert.Contains(t, out, `asset_key="Iron Plate"`)
		assert.Contains(t, out, "size=42")
		assert.Contains(t, out, "ok=true")
	})

	t.Run("GroupsArePrefixed", func(t *testing.T) {
		buf := captureOutput(t)
		With(KeyComponent, "prefetch").WithGroup("batch").Info("ready", "size", 3)
		out := buf.String()
		assert.Contains(t, out, "component=prefetch")
		assert.Contains(t, out, "batch.size=3")
	})

	t.Run("EmptyErrAttrDropped", func(t *testing.T) {
		buf := captureOutput(t)
		Info("no error", Err(nil))
		assert.NotContains(t, buf.String(), "error=")
	})
}

func TestJSONFormat(t *testing.T) {
	buf := captureOutput(t)
	SetFormat("json")

	Info("json message", KeyGeneration, 7, Err(errors.New("boom")))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "json message", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.EqualValues(t, 7, entry[KeyGeneration])
	assert.Equal(t, "boom", entry[KeyError])
	assert.Contains(t, entry, "time")
}

func TestSetFormatIgnoresInvalid(t *testing.T) {
	buf := captureOutput(t)
	SetFormat("xml")
	Info("still text")
	assert.Contains(t, buf.String(), "[INFO] still text")
}

func TestContextLogging(t *testing.T) {
	t.Run("InjectsFields", func(t *testing.T) {
		buf := captureOutput(t)
		lc := NewLogContext("session").WithGeneration(4).WithRequestID("req-1")
		ctx := WithContext(context.Background(), lc)

		InfoCtx(ctx, "confirmed")
		out := buf.String()
		assert.Contains(t, out, "component=session")
		assert.Contains(t, out, "generation=4")
		assert.Contains(t, out, "request_id=req-1")
	})

	t.Run("NilAndBareContexts", func(t *testing.T) {
		buf := captureOutput(t)
		//nolint:staticcheck // nil context is accepted on purpose
		InfoCtx(nil, "nil ctx")
		InfoCtx(context.Background(), "bare ctx")
		assert.Contains(t, buf.String(), "nil ctx")
		assert.Contains(t, buf.String(), "bare ctx")
	})
}

func TestLogContext(t *testing.T) {
	lc := NewLogContext("api")
	assert.Equal(t, "api", lc.Component)
	assert.False(t, lc.StartTime.IsZero())

	clone := lc.WithTrace("t", "s")
	assert.Equal(t, "t", clone.TraceID)
	assert.Empty(t, lc.TraceID, "original must not change")

	var nilCtx *LogContext
	assert.Nil(t, nilCtx.Clone())
	assert.Nil(t, nilCtx.WithGeneration(1))
	assert.Zero(t, nilCtx.DurationMs())
}

func TestConcurrentLogging(t *testing.T) {
	buf := captureOutput(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				Info("concurrent", "worker", n)
				if j%10 == 0 {
					SetLevel("INFO")
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 400, strings.Count(buf.String(), "concurrent"))
}

func TestInit(t *testing.T) {
	t.Run("FileOutput", func(t *testing.T) {
		_ = captureOutput(t)
		path := filepath.Join(t.TempDir(), "hdrive.log")
		require.NoError(t, Init(Config{Level: "DEBUG", Format: "json", Output: path}))
		t.Cleanup(func() {
			mu.Lock()
			if closer != nil {
				_ = closer.Close()
				closer = nil
			}
			mu.Unlock()
		})
		assert.True(t, Enabled(slog.LevelDebug))
	})

	t.Run("RejectsInvalidLevel", func(t *testing.T) {
		_ = captureOutput(t)
		assert.Error(t, Init(Config{Level: "LOUD"}))
	})

	t.Run("RejectsInvalidFormat", func(t *testing.T) {
		_ = captureOutput(t)
		assert.Error(t, Init(Config{Format: "xml"}))
	})

	t.Run("InitWithWriter", func(t *testing.T) {
		_ = captureOutput(t)
		var buf bytes.Buffer
		InitWithWriter(&buf, "INFO", "text", false)
		Info("to writer")
		assert.Contains(t, buf.String(), "to writer")
	})
}

func TestDuration(t *testing.T) {
	start := time.Now().Add(-20 * time.Millisecond)
	assert.GreaterOrEqual(t, Duration(start), 20.0)
}
