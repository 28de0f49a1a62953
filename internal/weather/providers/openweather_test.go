package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"weather-collector/internal/weather"
)

func berlin() weather.Target {
	return weather.Target{City: "Berlin", Country: "DE"}
}

func TestOpenWeatherNormalize(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "key")

	raw := []byte(`{
		"dt": 1756400000,
		"main": {"temp": 18.2, "humidity": 60, "pressure": 1014},
		"wind": {"speed": 4.1, "deg": 250},
		"weather": [{"main": "Clear"}]
	}`)

	obs, err := p.Normalize(raw, berlin())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if obs.TargetKey != "Berlin:DE" || obs.Provider != "openweathermap" {
		t.Fatalf("unexpected identity fields: %+v", obs)
	}
	if obs.TemperatureC == nil || *obs.TemperatureC != 18.2 {
		t.Fatalf("unexpected temperature: %v", obs.TemperatureC)
	}
	if obs.HumidityPct == nil || *obs.HumidityPct != 60 {
		t.Fatalf("unexpected humidity: %v", obs.HumidityPct)
	}
	if obs.WindSpeedMS == nil || *obs.WindSpeedMS != 4.1 {
		t.Fatalf("unexpected wind speed: %v", obs.WindSpeedMS)
	}
	if obs.WindDirDeg == nil || *obs.WindDirDeg != 250 {
		t.Fatalf("unexpected wind direction: %v", obs.WindDirDeg)
	}
	if obs.Condition != weather.ConditionClear {
		t.Fatalf("unexpected condition: %v", obs.Condition)
	}
	if want := time.Unix(1756400000, 0).UTC(); !obs.Timestamp.Equal(want) {
		t.Fatalf("unexpected timestamp: %v, want %v", obs.Timestamp, want)
	}
}

// Absent fields normalize to nil, never to zero: zero is a valid reading.
func TestOpenWeatherNormalizeMissingFields(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "key")

	obs, err := p.Normalize([]byte(`{"main": {"temp": 0}}`), berlin())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if obs.TemperatureC == nil || *obs.TemperatureC != 0 {
		t.Fatalf("zero temperature must survive as a value, got %v", obs.TemperatureC)
	}
	if obs.HumidityPct != nil || obs.WindSpeedMS != nil || obs.WindDirDeg != nil {
		t.Fatalf("missing fields must be nil: %+v", obs)
	}
	if obs.Condition != weather.ConditionUnknown {
		t.Fatalf("unexpected condition: %v", obs.Condition)
	}
	if obs.Timestamp.IsZero() {
		t.Fatalf("expected a fallback timestamp")
	}
}

func TestOpenWeatherNormalizeMalformed(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "key")

	if _, err := p.Normalize([]byte("<html>maintenance</html>"), berlin()); !errors.Is(err, weather.ErrMalformedResponse) {
		t.Fatalf("expected malformed-response error, got %v", err)
	}
}

func TestOpenWeatherFetchMissingKey(t *testing.T) {
	p := NewOpenWeatherProvider(http.DefaultClient, "")

	if _, err := p.Fetch(context.Background(), berlin()); !errors.Is(err, weather.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for missing key, got %v", err)
	}
}

func TestOpenWeatherFetchStatusClassification(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, weather.ErrUnauthorized},
		{http.StatusForbidden, weather.ErrUnauthorized},
		{http.StatusTooManyRequests, weather.ErrRateLimited},
		{http.StatusInternalServerError, weather.ErrUnreachable},
		{http.StatusBadRequest, weather.ErrUnreachable},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))

		p := NewOpenWeatherProvider(srv.Client(), "key")
		p.baseURL = srv.URL

		raw, err := p.Fetch(context.Background(), berlin())
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		if raw.Status != tc.status {
			t.Errorf("status %d: expected status recorded, got %d", tc.status, raw.Status)
		}

		srv.Close()
	}
}

func TestOpenWeatherFetchSuccess(t *testing.T) {
	body := `{"dt": 1756400000, "main": {"temp": 11.5}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("appid") != "key" {
			t.Errorf("expected api key in query, got %q", r.URL.RawQuery)
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.Client(), "key")
	p.baseURL = srv.URL

	raw, err := p.Fetch(context.Background(), berlin())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.Status != http.StatusOK || string(raw.Body) != body {
		t.Fatalf("unexpected payload: status=%d body=%q", raw.Status, raw.Body)
	}
}
