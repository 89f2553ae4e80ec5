package forecast

import (
	"time"

	"github.com/i474232898/weather-forecast/internal/weather"
)

// Column indexes of the feature matrix.
const (
	ColDayOfYear = iota
	ColDayOfWeek
	ColMonth
	ColTemperature
	ColHumidity
	ColPressure
	ColWindSpeed
	ColPrecipitation

	NumFeatures
)

// FeatureNames lists the matrix columns in order.
var FeatureNames = [NumFeatures]string{
	"day_of_year",
	"day_of_week",
	"month",
	"temperature",
	"humidity",
	"pressure",
	"wind_speed",
	"precipitation",
}

// Features is the output of BuildFeatures. All slices are parallel to the input rows.
type Features struct {
	X          [][]float64
	Conditions []weather.Condition
	Dates      []time.Time
}

// BuildFeatures turns observations into a feature matrix. Row order mirrors
// input order.
func BuildFeatures(obs []weather.Observation) Features {
	f := Features{
		X:          make([][]float64, len(obs)),
		Conditions: make([]weather.Condition, len(obs)),
		Dates:      make([]time.Time, len(obs)),
	}
	for i, o := range obs {
		f.X[i] = featureRow(o.Date, o)
		f.Conditions[i] = o.Condition
		f.Dates[i] = weather.Day(o.Date)
	}
	return f
}

// featureRow combines the calendar features of date with the meteorological
// values of o. Forecasting passes a future date with the last known o.
func featureRow(date time.Time, o weather.Observation) []float64 {
	row := make([]float64, NumFeatures)
	row[ColDayOfYear] = float64(date.YearDay())
	row[ColDayOfWeek] = float64(weekday(date))
	row[ColMonth] = float64(date.Month())
	row[ColTemperature] = o.Temperature
	row[ColHumidity] = o.Humidity
	row[ColPressure] = o.Pressure
	row[ColWindSpeed] = o.WindSpeed
	row[ColPrecipitation] = o.Precipitation
	return row
}

// weekday numbers days Monday=0 .. Sunday=6.
func weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// targets extracts the three regression targets.
func targets(obs []weather.Observation) (temp, humidity, precip []float64) {
	temp = make([]float64, len(obs))
	humidity = make([]float64, len(obs))
	precip = make([]float64, len(obs))
	for i, o := range obs {
		temp[i] = o.Temperature
		humidity[i] = o.Humidity
		precip[i] = o.Precipitation
	}
	return temp, humidity, precip
}
