package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "warn", "json")

	l.Info("dropped")
	l.Warn("kept", "city", "Kazan")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "Kazan", rec["city"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "info", "text").Info("hello", "written", 3)
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "written=3")
}

func TestMetricsForTesting_Independent(t *testing.T) {
	a, b := NewMetricsForTesting(), NewMetricsForTesting()
	a.ObservationsWritten.Add(3)
	a.IngestRuns.WithLabelValues("ingest", "success").Inc()

	assert.Equal(t, 3.0, testutil.ToFloat64(a.ObservationsWritten))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ObservationsWritten))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.IngestRuns.WithLabelValues("ingest", "success")))
}
