package providers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"testing"
	"time"

	"weather-collector/internal/weather"
)

func TestWeatherAPINormalize(t *testing.T) {
	p := NewWeatherAPIProvider(http.DefaultClient, "key")

	raw := []byte(`{
		"location": {"localtime_epoch": 1756400000},
		"current": {
			"temp_c": 17.5,
			"humidity": 58,
			"wind_kph": 36,
			"wind_degree": 200,
			"pressure_mb": 1011,
			"precip_mm": 0.4,
			"condition": {"text": "Partly cloudy"}
		}
	}`)

	obs, err := p.Normalize(raw, berlin())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if obs.Provider != "weatherapi" {
		t.Fatalf("unexpected provider: %q", obs.Provider)
	}
	if obs.TemperatureC == nil || *obs.TemperatureC != 17.5 {
		t.Fatalf("unexpected temperature: %v", obs.TemperatureC)
	}
	// 36 kph is exactly 10 m/s.
	if obs.WindSpeedMS == nil || math.Abs(*obs.WindSpeedMS-10) > 1e-9 {
		t.Fatalf("unexpected wind speed: %v", obs.WindSpeedMS)
	}
	if obs.Condition != weather.ConditionCloudy {
		t.Fatalf("unexpected condition: %v", obs.Condition)
	}
	if want := time.Unix(1756400000, 0).UTC(); !obs.Timestamp.Equal(want) {
		t.Fatalf("unexpected timestamp: %v", obs.Timestamp)
	}
	if obs.PrecipMm == nil || *obs.PrecipMm != 0.4 {
		t.Fatalf("unexpected precipitation: %v", obs.PrecipMm)
	}
}

func TestWeatherAPINormalizeMalformed(t *testing.T) {
	p := NewWeatherAPIProvider(http.DefaultClient, "key")

	if _, err := p.Normalize([]byte("error"), berlin()); !errors.Is(err, weather.ErrMalformedResponse) {
		t.Fatalf("expected malformed-response error, got %v", err)
	}
}

func TestWeatherAPIFetchMissingKey(t *testing.T) {
	p := NewWeatherAPIProvider(http.DefaultClient, "")

	if _, err := p.Fetch(context.Background(), berlin()); !errors.Is(err, weather.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for missing key, got %v", err)
	}
}

func TestWeatherAPIConditionMapping(t *testing.T) {
	cases := map[string]weather.Condition{
		"Light rain shower":  weather.ConditionRain,
		"Blowing snow":       weather.ConditionSnow,
		"Thundery outbreaks": weather.ConditionStorm,
		"Overcast":           weather.ConditionCloudy,
		"Sunny":              weather.ConditionClear,
		"Freezing fog":       weather.ConditionMist,
		"":                   weather.ConditionUnknown,
	}

	for text, want := range cases {
		if got := mapWeatherAPICondition(text); got != want {
			t.Errorf("condition %q: expected %v, got %v", text, want, got)
		}
	}
}
