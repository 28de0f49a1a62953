package weather

import (
	"fmt"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Target is one configured location to collect weather for.
// Targets are read once at startup and never mutated afterwards.
type Target struct {
	City    string   `json:"city"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// Key returns a canonical string key identifying this target.
func (t Target) Key() string {
	return t.City + ":" + t.Country
}

// Query returns the "city,country" form most provider APIs accept.
func (t Target) Query() string {
	if t.Country == "" {
		return t.City
	}
	return fmt.Sprintf("%s,%s", t.City, t.Country)
}

// Observation is the provider-agnostic current-weather record produced
// from a successful provider response. Optional fields use pointers so
// an absent reading is distinguishable from a legitimate zero value.
// Observations are immutable once created.
type Observation struct {
	TargetKey string    `json:"target"`
	Provider  string    `json:"provider"`
	Timestamp time.Time `json:"timestamp"` // always UTC

	TemperatureC *float64  `json:"temperatureC"`
	HumidityPct  *float64  `json:"humidityPercent,omitempty"`
	WindSpeedMS  *float64  `json:"windSpeedMs,omitempty"`
	WindDirDeg   *float64  `json:"windDirectionDeg,omitempty"`
	PressureHpa  *float64  `json:"pressureHpa,omitempty"`
	PrecipMm     *float64  `json:"precipMm,omitempty"`
	Condition    Condition `json:"condition"`
}

// HasCore reports whether the core fields (temperature and observation
// timestamp) are present. A record without them is unusable.
func (o Observation) HasCore() bool {
	return o.TemperatureC != nil && !o.Timestamp.IsZero()
}
