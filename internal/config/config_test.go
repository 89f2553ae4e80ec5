package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := fromEnv(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "weather.db", cfg.DatabasePath)
	assert.Equal(t, "artifacts", cfg.ArtifactDir)
	assert.Equal(t, 30, cfg.TrainingWindow)
	assert.Equal(t, 14, cfg.ForecastMaxDays)
	assert.Equal(t, time.Hour, cfg.FetchInterval)
	assert.Equal(t, 10, cfg.BackfillDays)
	assert.Empty(t, cfg.Cities)
	assert.Equal(t, []string{"synthetic"}, cfg.Sources)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 100, cfg.ForestTrees)
	assert.Equal(t, uint64(42), cfg.ForestSeed)
}

func TestOverrides(t *testing.T) {
	cfg, err := fromEnv(lookupFrom(map[string]string{
		"ARTIFACT_DIR":   "",
		"WEATHER_CITIES": " Москва, Kazan ,,",
		"SOURCES":        "openmeteo,weatherapi",
		"FETCH_INTERVAL": "15m",
		"FOREST_TREES":   "20",
		"FOREST_SEED":    "7",
	}))
	require.NoError(t, err)

	assert.Empty(t, cfg.ArtifactDir)
	assert.Equal(t, []string{"Москва", "Kazan"}, cfg.Cities)
	assert.Equal(t, []string{"openmeteo", "weatherapi"}, cfg.Sources)
	assert.Equal(t, 15*time.Minute, cfg.FetchInterval)
	assert.Equal(t, 20, cfg.ForestTrees)
	assert.Equal(t, uint64(7), cfg.ForestSeed)
}

func TestInvalidValuesNameTheKey(t *testing.T) {
	cases := map[string]string{
		"FETCH_INTERVAL":  "soon",
		"HTTP_TIMEOUT":    "-1s",
		"TRAINING_WINDOW": "0",
		"FOREST_TREES":    "many",
		"FOREST_SEED":     "-3",
		"SOURCES":         "synthetic,carrier-pigeon",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			_, err := fromEnv(lookupFrom(map[string]string{key: value}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}
