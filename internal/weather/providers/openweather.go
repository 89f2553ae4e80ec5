package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/weather-forecast/internal/weather"
	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"
)

// OpenWeatherProvider reads OpenWeatherMap. Past days come from the One Call
// day summary; the current day comes from the current weather endpoint,
// which is the only one that reports a condition id.
type OpenWeatherProvider struct {
	name       string
	apiKey     string
	summaryURL string
	currentURL string
	httpCfg    HTTPClientConfig
	circuit    *gobreaker.CircuitBreaker
	geocoder   Geocoder
	clock      clockwork.Clock
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, geo Geocoder, clock clockwork.Clock) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:       "openweathermap",
		apiKey:     apiKey,
		summaryURL: "https://api.openweathermap.org/data/3.0/onecall/day_summary",
		currentURL: "https://api.openweathermap.org/data/2.5/weather",
		httpCfg:    HTTPClientConfig{Client: client, Backoff: DefaultBackoff},
		circuit:    newBreaker("openweather"),
		geocoder:   geo,
		clock:      clock,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, city string, start, end time.Time) ([]weather.Observation, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather: %w", errMissingAPIKey)
	}
	coords, err := p.geocoder.Geocode(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("openweather: %w", err)
	}

	today := weather.Day(p.clock.Now())
	var out []weather.Observation
	for _, day := range days(start, end) {
		var (
			o   weather.Observation
			err error
		)
		switch {
		case day.After(today):
			continue
		case day.Equal(today):
			o, err = p.current(ctx, coords)
		default:
			o, err = p.summary(ctx, coords, day)
		}
		if err != nil {
			return nil, fmt.Errorf("openweather %s: %w", day.Format(weather.DateLayout), err)
		}
		o.City, o.Date = city, day
		out = append(out, o)
	}
	return out, nil
}

func (p *OpenWeatherProvider) query(coords Coordinates) url.Values {
	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	values.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', 4, 64))
	values.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', 4, 64))
	return values
}

func (p *OpenWeatherProvider) summary(ctx context.Context, coords Coordinates, day time.Time) (weather.Observation, error) {
	values := p.query(coords)
	values.Set("date", day.Format(weather.DateLayout))

	var payload struct {
		Humidity struct {
			Afternoon float64 `json:"afternoon"`
		} `json:"humidity"`
		Pressure struct {
			Afternoon float64 `json:"afternoon"`
		} `json:"pressure"`
		Temperature struct {
			Min float64 `json:"min"`
			Max float64 `json:"max"`
		} `json:"temperature"`
		Precipitation struct {
			Total float64 `json:"total"`
		} `json:"precipitation"`
		Wind struct {
			Max struct {
				Speed float64 `json:"speed"`
			} `json:"max"`
		} `json:"wind"`
	}
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.summaryURL+"?"+values.Encode(), &payload); err != nil {
		return weather.Observation{}, err
	}

	temp := (payload.Temperature.Min + payload.Temperature.Max) / 2
	return weather.Observation{
		Temperature:   temp,
		Humidity:      payload.Humidity.Afternoon,
		Pressure:      payload.Pressure.Afternoon,
		WindSpeed:     payload.Wind.Max.Speed,
		Precipitation: payload.Precipitation.Total,
		Condition:     weather.DeriveCondition(temp, payload.Humidity.Afternoon, payload.Precipitation.Total),
	}, nil
}

func (p *OpenWeatherProvider) current(ctx context.Context, coords Coordinates) (weather.Observation, error) {
	var payload struct {
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
			Pressure float64 `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Rain struct {
			OneH   float64 `json:"1h"`
			ThreeH float64 `json:"3h"`
		} `json:"rain"`
		Weather []struct {
			ID int `json:"id"`
		} `json:"weather"`
	}
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.currentURL+"?"+p.query(coords).Encode(), &payload); err != nil {
		return weather.Observation{}, err
	}

	precip := payload.Rain.OneH
	if precip == 0 {
		precip = payload.Rain.ThreeH
	}
	cond := weather.ConditionUnknown
	if len(payload.Weather) > 0 {
		cond = weather.ConditionFromOpenWeather(payload.Weather[0].ID)
	}

	return weather.Observation{
		Temperature:   payload.Main.Temp,
		Humidity:      payload.Main.Humidity,
		Pressure:      payload.Main.Pressure,
		WindSpeed:     payload.Wind.Speed,
		Precipitation: precip,
		Condition:     cond,
	}, nil
}
