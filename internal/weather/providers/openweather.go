package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"weather-collector/internal/weather"
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		client:  client,
		circuit: cb,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, target weather.Target) (weather.RawPayload, error) {
	if p.apiKey == "" {
		return weather.RawPayload{}, fmt.Errorf("%w: openweather api key is not configured", weather.ErrUnauthorized)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")

		if target.Lat != nil && target.Lon != nil {
			values.Set("lat", fmt.Sprintf("%f", *target.Lat))
			values.Set("lon", fmt.Sprintf("%f", *target.Lon))
		} else {
			values.Set("q", target.Query())
		}

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	return doRequest(ctx, p.client, p.circuit, buildRequest)
}

func (p *OpenWeatherProvider) Normalize(raw []byte, target weather.Target) (weather.Observation, error) {
	var payload struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp     *float64 `json:"temp"`
			Humidity *float64 `json:"humidity"`
			Pressure *float64 `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed *float64 `json:"speed"`
			Deg   *float64 `json:"deg"`
		} `json:"wind"`
		Rain struct {
			OneH   *float64 `json:"1h"`
			ThreeH *float64 `json:"3h"`
		} `json:"rain"`
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
	}

	if err := json.Unmarshal(raw, &payload); err != nil {
		return weather.Observation{}, fmt.Errorf("%w: %v", weather.ErrMalformedResponse, err)
	}

	var ts time.Time
	if payload.Dt > 0 {
		ts = time.Unix(payload.Dt, 0).UTC()
	} else {
		ts = time.Now().UTC()
	}

	precip := payload.Rain.OneH
	if precip == nil {
		precip = payload.Rain.ThreeH
	}

	return weather.Observation{
		TargetKey:    target.Key(),
		Provider:     p.name,
		Timestamp:    ts,
		TemperatureC: payload.Main.Temp,
		HumidityPct:  payload.Main.Humidity,
		// OWM metric units already report wind speed in m/s.
		WindSpeedMS: payload.Wind.Speed,
		WindDirDeg:  payload.Wind.Deg,
		PressureHpa: payload.Main.Pressure,
		PrecipMm:    precip,
		Condition:   mapOpenWeatherCondition(payload.Weather),
	}, nil
}

func mapOpenWeatherCondition(items []struct {
	Main string `json:"main"`
}) weather.Condition {
	if len(items) == 0 {
		return weather.ConditionUnknown
	}
	switch items[0].Main {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionCloudy
	case "Rain", "Drizzle":
		return weather.ConditionRain
	case "Snow":
		return weather.ConditionSnow
	case "Thunderstorm":
		return weather.ConditionStorm
	case "Mist", "Fog", "Haze":
		return weather.ConditionMist
	default:
		return weather.ConditionUnknown
	}
}
