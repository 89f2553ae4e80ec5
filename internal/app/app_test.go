package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-forecast/internal/config"
	"github.com/i474232898/weather-forecast/internal/observability"
)

func testConfig(t *testing.T) *config.AppConfig {
	dir := t.TempDir()
	return &config.AppConfig{
		DatabasePath:   filepath.Join(dir, "weather.db"),
		ArtifactDir:    filepath.Join(dir, "artifacts"),
		TrainingWindow: 30,
		BackfillDays:   10,
		Sources:        []string{"synthetic"},
		ForestTrees:    5,
		ForestSeed:     42,
	}
}

func TestBuild_SyntheticEndToEnd(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := Build(testConfig(t), logger, observability.NewMetricsForTesting())
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	res, err := a.Service.Ingest(ctx, "Казань", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Written)

	points, err := a.Service.GetForecast(ctx, "Казань", 3)
	require.NoError(t, err)
	assert.Len(t, points, 3)
}

func TestBuild_InMemory(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabasePath = ":memory:"
	cfg.ArtifactDir = ""

	a, err := Build(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
	require.NoError(t, err)
	require.NoError(t, a.Close())
}

func TestBuild_RejectsUnknownSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sources = []string{"carrier-pigeon"}

	_, err := Build(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
	assert.ErrorContains(t, err, "carrier-pigeon")
}
