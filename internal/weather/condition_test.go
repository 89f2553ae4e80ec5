package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveCondition_Thresholds(t *testing.T) {
	cases := []struct {
		name                   string
		temp, humidity, precip float64
		want                   Condition
	}{
		{"storm", 25, 80, 10, ConditionStorm},
		{"rain when cold", 10, 60, 8, ConditionRain},
		{"overcast", 10, 60, 2, ConditionOvercast},
		{"fog", 15, 85, 0, ConditionFog},
		{"cloudy", 18, 70, 0, ConditionCloudy},
		{"clear", 20, 50, 0, ConditionClear},
		{"precip boundary is exclusive", 20, 50, 5, ConditionOvercast},
		{"temp boundary is exclusive", 15, 50, 6, ConditionRain},
		{"humidity boundary is exclusive", 20, 80, 0, ConditionCloudy},
		{"humidity 60 is clear", 20, 60, 0, ConditionClear},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveCondition(tc.temp, tc.humidity, tc.precip))
		})
	}
}

func TestParseCondition_Aliases(t *testing.T) {
	assert.Equal(t, ConditionClear, ParseCondition("Clear"))
	assert.Equal(t, ConditionClear, ParseCondition("  SUNNY "))
	assert.Equal(t, ConditionClear, ParseCondition("Ясно"))
	assert.Equal(t, ConditionClear, ParseCondition("ЯСНО"))
	assert.Equal(t, ConditionCloudy, ParseCondition("Partly   cloudy"))
	assert.Equal(t, ConditionOvercast, ParseCondition("Пасмурно"))
	assert.Equal(t, ConditionFog, ParseCondition("Туман"))
	assert.Equal(t, ConditionRain, ParseCondition("Дождь"))
	assert.Equal(t, ConditionStorm, ParseCondition("Гроза"))
	assert.Equal(t, ConditionSnow, ParseCondition("Снег"))
}

func TestParseCondition_FallbackUnknown(t *testing.T) {
	assert.Equal(t, ConditionUnknown, ParseCondition(""))
	assert.Equal(t, ConditionUnknown, ParseCondition("volcanic ash"))
	assert.Equal(t, ConditionUnknown, ParseCondition("rainy-ish"))
}

func TestParseCondition_CanonicalNamesRoundTrip(t *testing.T) {
	for _, c := range Conditions {
		assert.Equal(t, c, ParseCondition(string(c)))
	}
}

func TestConditionFromOpenWeather(t *testing.T) {
	assert.Equal(t, ConditionClear, ConditionFromOpenWeather(800))
	assert.Equal(t, ConditionCloudy, ConditionFromOpenWeather(801))
	assert.Equal(t, ConditionFog, ConditionFromOpenWeather(701))
	assert.Equal(t, ConditionSnow, ConditionFromOpenWeather(601))
	assert.Equal(t, ConditionRain, ConditionFromOpenWeather(501))
	assert.Equal(t, ConditionRain, ConditionFromOpenWeather(301))
	assert.Equal(t, ConditionStorm, ConditionFromOpenWeather(201))
	assert.Equal(t, ConditionUnknown, ConditionFromOpenWeather(100))
}

func TestConditionFromWMO(t *testing.T) {
	assert.Equal(t, ConditionClear, ConditionFromWMO(0))
	assert.Equal(t, ConditionCloudy, ConditionFromWMO(2))
	assert.Equal(t, ConditionOvercast, ConditionFromWMO(3))
	assert.Equal(t, ConditionFog, ConditionFromWMO(45))
	assert.Equal(t, ConditionRain, ConditionFromWMO(61))
	assert.Equal(t, ConditionSnow, ConditionFromWMO(73))
	assert.Equal(t, ConditionStorm, ConditionFromWMO(95))
	assert.Equal(t, ConditionUnknown, ConditionFromWMO(20))
}

func TestConditionFromWeatherAPI(t *testing.T) {
	assert.Equal(t, ConditionClear, ConditionFromWeatherAPI(1000))
	assert.Equal(t, ConditionCloudy, ConditionFromWeatherAPI(1003))
	assert.Equal(t, ConditionOvercast, ConditionFromWeatherAPI(1009))
	assert.Equal(t, ConditionFog, ConditionFromWeatherAPI(1135))
	assert.Equal(t, ConditionRain, ConditionFromWeatherAPI(1189))
	assert.Equal(t, ConditionSnow, ConditionFromWeatherAPI(1219))
	assert.Equal(t, ConditionStorm, ConditionFromWeatherAPI(1276))
	assert.Equal(t, ConditionUnknown, ConditionFromWeatherAPI(42))
}
