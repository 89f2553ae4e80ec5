package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/i474232898/weather-forecast/internal/weather"
	"github.com/sony/gobreaker"
)

// WeatherAPIProvider reads daily history from WeatherAPI.com, one request per day.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/history.json",
		httpCfg: HTTPClientConfig{Client: client, Backoff: DefaultBackoff},
		circuit: newBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPIHistory struct {
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				AvgTempC     float64 `json:"avgtemp_c"`
				AvgHumidity  float64 `json:"avghumidity"`
				MaxWindKph   float64 `json:"maxwind_kph"`
				TotalPrecipM float64 `json:"totalprecip_mm"`
				Condition    struct {
					Text string `json:"text"`
					Code int    `json:"code"`
				} `json:"condition"`
			} `json:"day"`
			Hour []struct {
				PressureMb float64 `json:"pressure_mb"`
			} `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, city string, start, end time.Time) ([]weather.Observation, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("weatherapi: %w", errMissingAPIKey)
	}

	var out []weather.Observation
	for _, day := range days(start, end) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", city)
		values.Set("dt", day.Format(weather.DateLayout))

		var payload weatherAPIHistory
		if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
			return nil, fmt.Errorf("weatherapi %s: %w", day.Format(weather.DateLayout), err)
		}

		for _, fd := range payload.Forecast.ForecastDay {
			date, err := weather.ParseDate(fd.Date)
			if err != nil {
				continue
			}

			// The day summary has no pressure; average the hourly readings.
			var pressure float64
			for _, h := range fd.Hour {
				pressure += h.PressureMb
			}
			if len(fd.Hour) > 0 {
				pressure /= float64(len(fd.Hour))
			}

			cond := weather.ConditionFromWeatherAPI(fd.Day.Condition.Code)
			if cond == weather.ConditionUnknown {
				cond = weather.ParseCondition(fd.Day.Condition.Text)
			}

			out = append(out, weather.Observation{
				City:          city,
				Date:          date,
				Temperature:   fd.Day.AvgTempC,
				Humidity:      fd.Day.AvgHumidity,
				Pressure:      pressure,
				WindSpeed:     fd.Day.MaxWindKph / 3.6,
				Precipitation: fd.Day.TotalPrecipM,
				Condition:     cond,
			})
		}
	}
	return out, nil
}
