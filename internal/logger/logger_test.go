package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Setup("debug", "production", "sentinel-test")
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })
	return &buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestWithContextCarriesTraceID(t *testing.T) {
	buf := capture(t)

	ctx := WithTraceID(context.Background(), "trace-123")
	assert.Equal(t, "trace-123", TraceIDFromContext(ctx))

	WithContext(ctx).WithField("engine", "anomaly").Info("cycle done")

	entry := lastEntry(t, buf)
	assert.Equal(t, "trace-123", entry["trace_id"])
	assert.Equal(t, "anomaly", entry["engine"])
	assert.Equal(t, "sentinel-test", entry["service"])
	assert.Equal(t, "cycle done", entry["msg"])
}

func TestWithContextWithoutTraceID(t *testing.T) {
	buf := capture(t)

	WithContext(context.Background()).Info("plain")

	entry := lastEntry(t, buf)
	assert.NotContains(t, entry, "trace_id")
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestSetupLevel(t *testing.T) {
	buf := capture(t)
	Setup("warn", "production", "")

	Infof("dropped %d", 1)
	assert.Zero(t, buf.Len())

	Warnf("kept %d", 2)
	entry := lastEntry(t, buf)
	assert.Equal(t, "kept 2", entry["msg"])
	assert.NotContains(t, entry, "service")

	Setup("bogus", "production", "")
	Infof("info again")
	assert.Contains(t, buf.String(), "info again")
}
