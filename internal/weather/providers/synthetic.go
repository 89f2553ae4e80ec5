package providers

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/i474232898/weather-forecast/internal/weather"
)

// baseTemperatures are mean daily temperatures per city (°C).
var baseTemperatures = map[string]float64{
	"москва":          15,
	"санкт-петербург": 12,
	"новосибирск":     10,
	"екатеринбург":    11,
	"казань":          14,
}

const defaultBaseTemperature = 15.0

// synthetic condition weights for warm (> 20°C), mild (> 10°C) and cold days.
var (
	syntheticConditions = []weather.Condition{
		weather.ConditionClear,
		weather.ConditionCloudy,
		weather.ConditionRain,
		weather.ConditionOvercast,
		weather.ConditionStorm,
		weather.ConditionFog,
	}
	warmWeights = []float64{0.7, 0.2, 0.05, 0.03, 0.01, 0.01}
	mildWeights = []float64{0.4, 0.3, 0.1, 0.1, 0.05, 0.05}
	coldWeights = []float64{0.2, 0.3, 0.2, 0.2, 0.05, 0.05}
)

// precipitation range in mm per condition.
var precipRanges = map[weather.Condition][2]float64{
	weather.ConditionClear:    {0, 0.5},
	weather.ConditionCloudy:   {0, 2},
	weather.ConditionRain:     {2, 10},
	weather.ConditionOvercast: {0, 5},
	weather.ConditionStorm:    {5, 20},
	weather.ConditionFog:      {0, 1},
}

// SyntheticProvider generates plausible seasonal weather without network
// access. Output depends only on (city, date), so refetching a day is stable.
type SyntheticProvider struct{}

func NewSyntheticProvider() *SyntheticProvider {
	return &SyntheticProvider{}
}

func (p *SyntheticProvider) Name() string {
	return "synthetic"
}

func (p *SyntheticProvider) Fetch(ctx context.Context, city string, start, end time.Time) ([]weather.Observation, error) {
	base, ok := baseTemperatures[strings.ToLower(strings.TrimSpace(city))]
	if !ok {
		base = defaultBaseTemperature
	}

	var out []weather.Observation
	for _, day := range days(start, end) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, generateDay(city, day, base))
	}
	return out, nil
}

func generateDay(city string, day time.Time, base float64) weather.Observation {
	rng := rand.New(rand.NewPCG(seed(city, day), 0x5eed))
	uniform := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }

	// Seasonal swing peaks in mid July.
	season := 8 * math.Sin(2*math.Pi*float64(day.YearDay()-105)/365.25)
	temp := base + season + uniform(-5, 5)

	weights := coldWeights
	switch {
	case temp > 20:
		weights = warmWeights
	case temp > 10:
		weights = mildWeights
	}
	cond := pick(rng, syntheticConditions, weights)
	r := precipRanges[cond]

	return weather.Observation{
		City:          city,
		Date:          day,
		Temperature:   round1(temp),
		Humidity:      round1(math.Min(100, math.Max(0, uniform(50, 70)+uniform(-10, 10)))),
		Pressure:      round1(uniform(1000, 1020) + uniform(-10, 10)),
		WindSpeed:     round1(uniform(1, 10)),
		Precipitation: round1(uniform(r[0], r[1])),
		Condition:     cond,
	}
}

func seed(city string, day time.Time) uint64 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(city))))
	h.Write([]byte(day.Format(weather.DateLayout)))
	return h.Sum64()
}

func pick(rng *rand.Rand, items []weather.Condition, weights []float64) weather.Condition {
	x := rng.Float64()
	for i, w := range weights {
		if x < w {
			return items[i]
		}
		x -= w
	}
	return items[len(items)-1]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
