package forecast

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metrics holds in-sample fit quality keyed by "<target>_<metric>",
// e.g. "temp_rmse" or "precip_r2".
type Metrics map[string]float64

// Metric key prefixes.
const (
	PrefixTemperature   = "temp"
	PrefixHumidity      = "humidity"
	PrefixPrecipitation = "precip"
)

// MetricKeys lists every key Train reports.
var MetricKeys = []string{
	"temp_rmse", "temp_mae", "temp_r2",
	"humidity_rmse", "humidity_mae", "humidity_r2",
	"precip_rmse", "precip_mae", "precip_r2",
}

func (m Metrics) record(prefix string, actual, predicted []float64) {
	m[prefix+"_rmse"] = rmse(actual, predicted)
	m[prefix+"_mae"] = mae(actual, predicted)
	m[prefix+"_r2"] = r2(actual, predicted)
}

func rmse(actual, predicted []float64) float64 {
	return floats.Distance(actual, predicted, 2) / math.Sqrt(float64(len(actual)))
}

func mae(actual, predicted []float64) float64 {
	return floats.Distance(actual, predicted, 1) / float64(len(actual))
}

// r2 is the coefficient of determination. A constant target scores 1 for a
// perfect fit and 0 otherwise.
func r2(actual, predicted []float64) float64 {
	if stat.PopVariance(actual, nil) == 0 {
		if floats.Distance(actual, predicted, 2) == 0 {
			return 1
		}
		return 0
	}
	return stat.RSquaredFrom(predicted, actual, nil)
}
