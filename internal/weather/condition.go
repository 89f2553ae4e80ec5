package weather

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// conditionAliases is matched exactly after folding. Order only matters for
// readability; every alias is unique.
var conditionAliases = []struct {
	alias string
	cond  Condition
}{
	{"clear", ConditionClear},
	{"sunny", ConditionClear},
	{"fair", ConditionClear},
	{"ясно", ConditionClear},
	{"солнечно", ConditionClear},

	{"cloudy", ConditionCloudy},
	{"clouds", ConditionCloudy},
	{"partly cloudy", ConditionCloudy},
	{"mostly cloudy", ConditionCloudy},
	{"облачно", ConditionCloudy},
	{"переменная облачность", ConditionCloudy},

	{"overcast", ConditionOvercast},
	{"пасмурно", ConditionOvercast},

	{"fog", ConditionFog},
	{"mist", ConditionFog},
	{"haze", ConditionFog},
	{"freezing fog", ConditionFog},
	{"туман", ConditionFog},

	{"rain", ConditionRain},
	{"drizzle", ConditionRain},
	{"showers", ConditionRain},
	{"light rain", ConditionRain},
	{"heavy rain", ConditionRain},
	{"дождь", ConditionRain},
	{"ливень", ConditionRain},

	{"storm", ConditionStorm},
	{"thunderstorm", ConditionStorm},
	{"thunder", ConditionStorm},
	{"гроза", ConditionStorm},

	{"snow", ConditionSnow},
	{"sleet", ConditionSnow},
	{"blizzard", ConditionSnow},
	{"снег", ConditionSnow},

	{"unknown", ConditionUnknown},
	{"неизвестно", ConditionUnknown},
}

var conditionLookup = func() map[string]Condition {
	m := make(map[string]Condition, len(conditionAliases))
	for _, a := range conditionAliases {
		m[foldLabel(a.alias)] = a.cond
	}
	return m
}()

// foldLabel produces the lookup key for a free-text label. Folding is
// locale-independent so "ЯСНО" and "ясно" resolve identically everywhere.
func foldLabel(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")
	return cases.Fold().String(s)
}

// ParseCondition maps a free-text label onto a Condition, falling back to
// ConditionUnknown for anything not in the alias table.
func ParseCondition(label string) Condition {
	if c, ok := conditionLookup[foldLabel(label)]; ok {
		return c
	}
	return ConditionUnknown
}

// DeriveCondition turns predicted values into a discrete label. Rules are
// evaluated in priority order; the first match wins.
func DeriveCondition(temperature, humidity, precipitation float64) Condition {
	switch {
	case precipitation > 5 && temperature > 15:
		return ConditionStorm
	case precipitation > 5:
		return ConditionRain
	case precipitation > 1:
		return ConditionOvercast
	case humidity > 80:
		return ConditionFog
	case humidity > 60:
		return ConditionCloudy
	default:
		return ConditionClear
	}
}

type codeRange struct {
	lo, hi int
	cond   Condition
}

func lookupCode(table []codeRange, code int) Condition {
	for _, r := range table {
		if code >= r.lo && code <= r.hi {
			return r.cond
		}
	}
	return ConditionUnknown
}

// OpenWeatherMap condition ids.
var openWeatherCodes = []codeRange{
	{200, 299, ConditionStorm},
	{300, 399, ConditionRain},
	{500, 599, ConditionRain},
	{600, 699, ConditionSnow},
	{700, 799, ConditionFog},
	{800, 800, ConditionClear},
	{801, 804, ConditionCloudy},
}

// ConditionFromOpenWeather maps an OpenWeatherMap condition id.
func ConditionFromOpenWeather(id int) Condition {
	return lookupCode(openWeatherCodes, id)
}

// WMO weather interpretation codes as used by Open-Meteo.
var wmoCodes = []codeRange{
	{0, 0, ConditionClear},
	{1, 2, ConditionCloudy},
	{3, 3, ConditionOvercast},
	{45, 48, ConditionFog},
	{51, 67, ConditionRain},
	{71, 77, ConditionSnow},
	{80, 82, ConditionRain},
	{85, 86, ConditionSnow},
	{95, 99, ConditionStorm},
}

// ConditionFromWMO maps a WMO weather code.
func ConditionFromWMO(code int) Condition {
	return lookupCode(wmoCodes, code)
}

// WeatherAPI.com condition codes.
var weatherAPICodes = []codeRange{
	{1000, 1000, ConditionClear},
	{1003, 1006, ConditionCloudy},
	{1009, 1009, ConditionOvercast},
	{1030, 1030, ConditionFog},
	{1063, 1063, ConditionRain},
	{1066, 1069, ConditionSnow},
	{1072, 1072, ConditionRain},
	{1087, 1087, ConditionStorm},
	{1114, 1117, ConditionSnow},
	{1135, 1147, ConditionFog},
	{1150, 1201, ConditionRain},
	{1204, 1237, ConditionSnow},
	{1240, 1246, ConditionRain},
	{1249, 1264, ConditionSnow},
	{1273, 1282, ConditionStorm},
}

// ConditionFromWeatherAPI maps a WeatherAPI.com condition code.
func ConditionFromWeatherAPI(code int) Condition {
	return lookupCode(weatherAPICodes, code)
}
