package forecast

import (
	"sort"

	"github.com/i474232898/weather-forecast/internal/weather"
)

// Encoder one-hot encodes condition labels. Categories are sorted; labels
// not seen during fitting encode to an all-zero vector.
type Encoder struct {
	Categories []weather.Condition `json:"categories"`
}

// FitEncoder collects the distinct labels of labels.
func FitEncoder(labels []weather.Condition) *Encoder {
	seen := make(map[weather.Condition]struct{}, len(labels))
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	cats := make([]weather.Condition, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return &Encoder{Categories: cats}
}

// Encode returns the one-hot vector of label.
func (e *Encoder) Encode(label weather.Condition) []float64 {
	out := make([]float64, len(e.Categories))
	if i := e.index(label); i >= 0 {
		out[i] = 1
	}
	return out
}

// Decode returns the category of the largest component of v, or Unknown for
// an all-zero vector.
func (e *Encoder) Decode(v []float64) weather.Condition {
	best, bestVal := -1, 0.0
	for i, x := range v {
		if i >= len(e.Categories) {
			break
		}
		if x > bestVal {
			best, bestVal = i, x
		}
	}
	if best < 0 {
		return weather.ConditionUnknown
	}
	return e.Categories[best]
}

func (e *Encoder) index(label weather.Condition) int {
	i := sort.Search(len(e.Categories), func(i int) bool { return e.Categories[i] >= label })
	if i < len(e.Categories) && e.Categories[i] == label {
		return i
	}
	return -1
}
