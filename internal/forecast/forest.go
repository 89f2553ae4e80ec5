package forecast

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// ForestConfig controls the bagged tree ensemble.
type ForestConfig struct {
	Trees int
	Seed  uint64
}

// DefaultForestConfig is 100 trees with seed 42.
var DefaultForestConfig = ForestConfig{Trees: 100, Seed: 42}

// Forest is an ensemble of regression trees, each fit on a bootstrap sample.
// The prediction is the mean of the tree predictions.
type Forest struct {
	Trees []Tree `json:"trees"`
}

// FitForest fits a forest on x and y. The same config and data always yield
// the same forest.
func FitForest(x [][]float64, y []float64, cfg ForestConfig) (*Forest, error) {
	if len(x) == 0 {
		return nil, errors.New("fit forest: no rows")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("fit forest: %d rows but %d targets", len(x), len(y))
	}
	if cfg.Trees <= 0 {
		return nil, fmt.Errorf("fit forest: tree count must be positive, got %d", cfg.Trees)
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	n := len(x)
	f := &Forest{Trees: make([]Tree, cfg.Trees)}
	sample := make([]int, n)
	for t := range f.Trees {
		for i := range sample {
			sample[i] = rng.IntN(n)
		}
		f.Trees[t] = fitTree(x, y, sample)
	}
	return f, nil
}

// Predict averages the tree predictions for one standardized row.
func (f *Forest) Predict(row []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	var sum float64
	for i := range f.Trees {
		sum += f.Trees[i].Predict(row)
	}
	return sum / float64(len(f.Trees))
}

// PredictAll predicts every row of x.
func (f *Forest) PredictAll(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		out[i] = f.Predict(row)
	}
	return out
}
