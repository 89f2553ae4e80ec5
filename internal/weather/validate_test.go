package weather

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validObservation() Observation {
	return Observation{
		City:          "Moscow",
		Date:          time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC),
		Temperature:   14.2,
		Humidity:      63,
		Pressure:      1012,
		WindSpeed:     4.1,
		Precipitation: 0.3,
		Condition:     "cloudy",
	}
}

func TestNormalize_Valid(t *testing.T) {
	o, err := Normalize(validObservation())
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), o.Date)
	assert.Equal(t, ConditionCloudy, o.Condition)
}

func TestNormalize_UnknownConditionIsNotRejected(t *testing.T) {
	in := validObservation()
	in.Condition = "plague of frogs"

	o, err := Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, ConditionUnknown, o.Condition)
}

func TestNormalize_RangeViolations(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Observation)
		field  string
	}{
		{"empty city", func(o *Observation) { o.City = "  " }, "city"},
		{"zero date", func(o *Observation) { o.Date = time.Time{} }, "date"},
		{"humidity above 100", func(o *Observation) { o.Humidity = 100.1 }, "humidity"},
		{"negative humidity", func(o *Observation) { o.Humidity = -1 }, "humidity"},
		{"pressure too low", func(o *Observation) { o.Pressure = 799 }, "pressure"},
		{"pressure too high", func(o *Observation) { o.Pressure = 1201 }, "pressure"},
		{"negative wind", func(o *Observation) { o.WindSpeed = -0.1 }, "windSpeed"},
		{"negative precipitation", func(o *Observation) { o.Precipitation = -2 }, "precipitation"},
		{"nan temperature", func(o *Observation) { o.Temperature = math.NaN() }, "temperature"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := validObservation()
			tc.mutate(&o)

			_, err := Normalize(o)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestNormalize_BoundariesAccepted(t *testing.T) {
	o := validObservation()
	o.Humidity = 100
	o.Pressure = 800
	o.WindSpeed = 0
	o.Precipitation = 0

	_, err := Normalize(o)
	require.NoError(t, err)

	o.Humidity = 0
	o.Pressure = 1200
	_, err = Normalize(o)
	require.NoError(t, err)
}
