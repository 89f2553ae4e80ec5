package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_FitsDistinctRowsExactly(t *testing.T) {
	x := [][]float64{{1, 0}, {2, 0}, {3, 1}, {4, 1}, {5, 0}}
	y := []float64{5, 1, 7, 3, 9}

	tree := fitTree(x, y, []int{0, 1, 2, 3, 4})
	for i, row := range x {
		assert.Equal(t, y[i], tree.Predict(row))
	}
}

func TestTree_PureNodeIsLeaf(t *testing.T) {
	tree := fitTree([][]float64{{1}, {2}, {3}}, []float64{4, 4, 4}, []int{0, 1, 2})
	require.Len(t, tree.Nodes, 1)
	assert.Equal(t, leaf, tree.Nodes[0].Feature)
	assert.Equal(t, 4.0, tree.Predict([]float64{100}))
}

func TestTree_IdenticalRowsAverage(t *testing.T) {
	tree := fitTree([][]float64{{1}, {1}}, []float64{2, 4}, []int{0, 1})
	require.Len(t, tree.Nodes, 1)
	assert.Equal(t, 3.0, tree.Predict([]float64{1}))
}

func TestTree_MidpointThreshold(t *testing.T) {
	tree := fitTree([][]float64{{1}, {3}}, []float64{0, 10}, []int{0, 1})
	require.Len(t, tree.Nodes, 3)
	assert.Equal(t, 0, tree.Nodes[0].Feature)
	assert.Equal(t, 2.0, tree.Nodes[0].Threshold)
	assert.Equal(t, 0.0, tree.Predict([]float64{2}))
	assert.Equal(t, 10.0, tree.Predict([]float64{2.01}))
}

func TestForest_Deterministic(t *testing.T) {
	x := BuildFeatures(series("Kazan", day0, 15)).X
	y := make([]float64, len(x))
	for i := range y {
		y[i] = math.Cos(float64(i))
	}

	a, err := FitForest(x, y, DefaultForestConfig)
	require.NoError(t, err)
	b, err := FitForest(x, y, DefaultForestConfig)
	require.NoError(t, err)

	assert.Len(t, a.Trees, 100)
	assert.Equal(t, a, b)
	for _, row := range x {
		assert.Equal(t, a.Predict(row), b.Predict(row))
	}
}

func TestForest_ConstantTarget(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}, {5}}
	y := []float64{7, 7, 7, 7, 7}

	f, err := FitForest(x, y, ForestConfig{Trees: 10, Seed: 1})
	require.NoError(t, err)
	assert.InDelta(t, 7, f.Predict([]float64{3}), 1e-9)
	assert.InDelta(t, 7, f.Predict([]float64{-50}), 1e-9)
}

func TestForest_Errors(t *testing.T) {
	_, err := FitForest(nil, nil, DefaultForestConfig)
	assert.Error(t, err)

	_, err = FitForest([][]float64{{1}}, []float64{1, 2}, DefaultForestConfig)
	assert.Error(t, err)

	_, err = FitForest([][]float64{{1}}, []float64{1}, ForestConfig{Trees: 0})
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	m := Metrics{}
	m.record(PrefixTemperature, []float64{1, 2, 3}, []float64{1, 2, 4})
	assert.InDelta(t, math.Sqrt(1.0/3), m["temp_rmse"], 1e-12)
	assert.InDelta(t, 1.0/3, m["temp_mae"], 1e-12)
	assert.InDelta(t, 0.5, m["temp_r2"], 1e-12)

	m.record(PrefixHumidity, []float64{5, 6}, []float64{5, 6})
	assert.Equal(t, 0.0, m["humidity_rmse"])
	assert.Equal(t, 0.0, m["humidity_mae"])
	assert.InDelta(t, 1, m["humidity_r2"], 1e-12)

	m.record(PrefixPrecipitation, []float64{0, 0}, []float64{0, 0})
	assert.Equal(t, 1.0, m["precip_r2"])
	m.record(PrefixPrecipitation, []float64{0, 0}, []float64{0, 1})
	assert.Equal(t, 0.0, m["precip_r2"])
}
