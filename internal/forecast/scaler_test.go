package forecast

import (
	"testing"

	"github.com/i474232898/weather-forecast/internal/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestScaler_RoundTrip(t *testing.T) {
	x := [][]float64{
		{1, 10, 1000},
		{2, 20, 1010},
		{3, 60, 990},
		{4, 10, 1005},
	}
	s, err := FitScaler(x)
	require.NoError(t, err)

	want := []float64{2.5, 33, 1002}
	scaled, err := s.Transform(want)
	require.NoError(t, err)
	got, err := s.InverseTransform(scaled)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-9)
}

func TestScaler_StandardizesColumns(t *testing.T) {
	x := BuildFeatures(series("Kazan", day0, 20)).X
	s, err := FitScaler(x)
	require.NoError(t, err)

	scaled, err := s.TransformAll(x)
	require.NoError(t, err)

	for j := 0; j < NumFeatures; j++ {
		col := make([]float64, len(scaled))
		for i := range scaled {
			col[i] = scaled[i][j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		assert.InDelta(t, 0, mean, 1e-9, FeatureNames[j])
		if s.Scale[j] != 1 || std != 0 {
			assert.InDelta(t, 1, std, 1e-9, FeatureNames[j])
		}
	}
}

func TestScaler_ConstantColumn(t *testing.T) {
	s, err := FitScaler([][]float64{{5, 1}, {5, 3}})
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Scale[0])

	row, err := s.Transform([]float64{5, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, row)
}

func TestScaler_Errors(t *testing.T) {
	_, err := FitScaler(nil)
	assert.Error(t, err)

	_, err = FitScaler([][]float64{{1, 2}, {3}})
	assert.Error(t, err)

	s, err := FitScaler([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	_, err = s.Transform([]float64{1})
	assert.Error(t, err)

	var empty *Scaler
	_, err = empty.Transform([]float64{1})
	assert.ErrorIs(t, err, errNotFitted)
}

func TestEncoder(t *testing.T) {
	e := FitEncoder([]weather.Condition{weather.ConditionRain, weather.ConditionClear, weather.ConditionRain})
	assert.Equal(t, []weather.Condition{weather.ConditionClear, weather.ConditionRain}, e.Categories)

	assert.Equal(t, []float64{0, 1}, e.Encode(weather.ConditionRain))
	assert.Equal(t, []float64{0, 0}, e.Encode(weather.ConditionSnow))

	assert.Equal(t, weather.ConditionRain, e.Decode([]float64{0.2, 0.8}))
	assert.Equal(t, weather.ConditionUnknown, e.Decode([]float64{0, 0}))
}
