package weather

import "context"

// RawPayload is one provider response body, preserved verbatim so the
// artifact writer can persist it alongside the normalized record.
type RawPayload struct {
	Body   []byte
	Status int // HTTP status, 0 if the request never completed
}

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI).
// Fetch performs exactly one request/response cycle; retry policy lives with
// the caller, not here. Normalize owns the mapping from the provider's field
// names and units to the common Observation schema.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, target Target) (RawPayload, error)
	Normalize(raw []byte, target Target) (Observation, error)
}
