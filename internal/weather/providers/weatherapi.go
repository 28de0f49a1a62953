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

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weatherapi",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		client:  client,
		circuit: cb,
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, target weather.Target) (weather.RawPayload, error) {
	if p.apiKey == "" {
		return weather.RawPayload{}, fmt.Errorf("%w: weatherapi api key is not configured", weather.ErrUnauthorized)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; it accepts "city,country" or "lat,lon".
		if target.Lat != nil && target.Lon != nil {
			values.Set("q", fmt.Sprintf("%f,%f", *target.Lat, *target.Lon))
		} else {
			values.Set("q", target.Query())
		}

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	return doRequest(ctx, p.client, p.circuit, buildRequest)
}

func (p *WeatherAPIProvider) Normalize(raw []byte, target weather.Target) (weather.Observation, error) {
	var payload struct {
		Location struct {
			LocaltimeEpoch int64 `json:"localtime_epoch"`
		} `json:"location"`
		Current struct {
			TempC      *float64 `json:"temp_c"`
			Humidity   *float64 `json:"humidity"`
			WindKph    *float64 `json:"wind_kph"`
			WindDegree *float64 `json:"wind_degree"`
			PressureMb *float64 `json:"pressure_mb"`
			PrecipMm   *float64 `json:"precip_mm"`
			Condition  struct {
				Text string `json:"text"`
			} `json:"condition"`
		} `json:"current"`
	}

	if err := json.Unmarshal(raw, &payload); err != nil {
		return weather.Observation{}, fmt.Errorf("%w: %v", weather.ErrMalformedResponse, err)
	}

	var ts time.Time
	if payload.Location.LocaltimeEpoch > 0 {
		ts = time.Unix(payload.Location.LocaltimeEpoch, 0).UTC()
	} else {
		ts = time.Now().UTC()
	}

	// Convert wind from kph to m/s.
	var windMS *float64
	if payload.Current.WindKph != nil {
		windMS = newFloat(*payload.Current.WindKph / 3.6)
	}

	return weather.Observation{
		TargetKey:    target.Key(),
		Provider:     p.name,
		Timestamp:    ts,
		TemperatureC: payload.Current.TempC,
		HumidityPct:  payload.Current.Humidity,
		WindSpeedMS:  windMS,
		WindDirDeg:   payload.Current.WindDegree,
		PressureHpa:  payload.Current.PressureMb,
		PrecipMm:     payload.Current.PrecipMm,
		Condition:    mapWeatherAPICondition(payload.Current.Condition.Text),
	}, nil
}

func mapWeatherAPICondition(text string) weather.Condition {
	switch {
	case text == "":
		return weather.ConditionUnknown
	case hasAny(text, "rain", "shower", "drizzle"):
		return weather.ConditionRain
	case hasAny(text, "snow", "sleet", "blizzard"):
		return weather.ConditionSnow
	case hasAny(text, "thunder", "storm"):
		return weather.ConditionStorm
	case hasAny(text, "mist", "fog"):
		return weather.ConditionMist
	case hasAny(text, "cloud", "overcast"):
		return weather.ConditionCloudy
	case hasAny(text, "sunny", "clear"):
		return weather.ConditionClear
	default:
		return weather.ConditionUnknown
	}
}
