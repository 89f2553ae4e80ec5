package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/weather-forecast/internal/weather"
	"github.com/sony/gobreaker"
)

// OpenMeteoProvider reads daily history from the Open-Meteo archive API.
// It needs coordinates, so every city goes through the geocoder first.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	geocoder Geocoder
}

func NewOpenMeteoProvider(client *http.Client, geo Geocoder) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  "https://archive-api.open-meteo.com/v1/archive",
		httpCfg:  HTTPClientConfig{Client: client, Backoff: DefaultBackoff},
		circuit:  newBreaker("openmeteo"),
		geocoder: geo,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// openMeteoDaily mirrors the "daily" block. Values are pointers because the
// archive reports null for days it has not processed yet.
type openMeteoDaily struct {
	Time          []string   `json:"time"`
	Temperature   []*float64 `json:"temperature_2m_mean"`
	Humidity      []*float64 `json:"relative_humidity_2m_mean"`
	Pressure      []*float64 `json:"surface_pressure_mean"`
	WindSpeed     []*float64 `json:"wind_speed_10m_max"`
	Precipitation []*float64 `json:"precipitation_sum"`
	WeatherCode   []*int     `json:"weather_code"`
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, city string, start, end time.Time) ([]weather.Observation, error) {
	coords, err := p.geocoder.Geocode(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("openmeteo: %w", err)
	}

	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', 4, 64))
	values.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', 4, 64))
	values.Set("start_date", start.Format(weather.DateLayout))
	values.Set("end_date", end.Format(weather.DateLayout))
	values.Set("daily", "temperature_2m_mean,relative_humidity_2m_mean,surface_pressure_mean,wind_speed_10m_max,precipitation_sum,weather_code")
	values.Set("wind_speed_unit", "ms")
	values.Set("timezone", "UTC")

	var payload struct {
		Daily openMeteoDaily `json:"daily"`
	}
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("openmeteo: %w", err)
	}

	d := payload.Daily
	var out []weather.Observation
	for i, ts := range d.Time {
		date, err := weather.ParseDate(ts)
		if err != nil {
			continue
		}
		temp, ok1 := at(d.Temperature, i)
		humidity, ok2 := at(d.Humidity, i)
		pressure, ok3 := at(d.Pressure, i)
		if !ok1 || !ok2 || !ok3 {
			// Not yet available in the archive.
			continue
		}
		wind, _ := at(d.WindSpeed, i)
		precip, _ := at(d.Precipitation, i)

		cond := weather.DeriveCondition(temp, humidity, precip)
		if i < len(d.WeatherCode) && d.WeatherCode[i] != nil {
			cond = weather.ConditionFromWMO(*d.WeatherCode[i])
		}

		out = append(out, weather.Observation{
			City:          city,
			Date:          date,
			Temperature:   temp,
			Humidity:      humidity,
			Pressure:      pressure,
			WindSpeed:     wind,
			Precipitation: precip,
			Condition:     cond,
		})
	}
	return out, nil
}

func at(values []*float64, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil {
		return 0, false
	}
	return *values[i], true
}
