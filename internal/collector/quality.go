package collector

import (
	"time"

	"weather-collector/internal/weather"
)

// QualityScore grades one observation on three dimensions, each in [0,100],
// plus their weighted composite. Attached 1:1 to an observation at creation
// time and never mutated.
type QualityScore struct {
	Completeness float64 `json:"completeness"`
	Validity     float64 `json:"validity"`
	Consistency  float64 `json:"consistency"`
	Composite    float64 `json:"composite"`

	// CoreMissing marks a record without temperature or timestamp; such a
	// record does not count as a collection success.
	CoreMissing bool `json:"coreMissing,omitempty"`
}

// Weights is the composite weighting surface. Any positive triple works;
// weights are renormalized over their sum.
type Weights struct {
	Completeness float64
	Validity     float64
	Consistency  float64
}

func DefaultWeights() Weights {
	return Weights{Completeness: 0.40, Validity: 0.35, Consistency: 0.25}
}

const (
	// A single out-of-range reading caps validity here, so a grossly wrong
	// value cannot average out against many correct fields.
	validityCap     = 20.0
	validityPenalty = 25.0

	consistencyPenalty = 20.0

	expectedOptionalFields = 6 // humidity, wind speed, wind direction, pressure, precipitation, condition
)

// Assessor scores observations. Pure apart from the injected clock, which
// only feeds the freshness check.
type Assessor struct {
	weights   Weights
	staleness time.Duration // 0 disables the freshness check
	now       func() time.Time
}

func NewAssessor(w Weights, staleness time.Duration) *Assessor {
	sum := w.Completeness + w.Validity + w.Consistency
	if sum <= 0 {
		w = DefaultWeights()
		sum = w.Completeness + w.Validity + w.Consistency
	}
	return &Assessor{
		weights: Weights{
			Completeness: w.Completeness / sum,
			Validity:     w.Validity / sum,
			Consistency:  w.Consistency / sum,
		},
		staleness: staleness,
		now:       time.Now,
	}
}

// Score grades an observation. No side effects, no network access; the same
// observation always yields the same score under the same clock.
func (a *Assessor) Score(obs weather.Observation) QualityScore {
	score := QualityScore{
		Completeness: a.completeness(obs),
		Validity:     a.validity(obs),
		Consistency:  a.consistency(obs),
	}

	if !obs.HasCore() {
		score.Completeness = 0
		score.CoreMissing = true
	}

	score.Composite = clamp(
		score.Completeness*a.weights.Completeness +
			score.Validity*a.weights.Validity +
			score.Consistency*a.weights.Consistency)
	return score
}

func (a *Assessor) completeness(obs weather.Observation) float64 {
	populated := 0
	if obs.HumidityPct != nil {
		populated++
	}
	if obs.WindSpeedMS != nil {
		populated++
	}
	if obs.WindDirDeg != nil {
		populated++
	}
	if obs.PressureHpa != nil {
		populated++
	}
	if obs.PrecipMm != nil {
		populated++
	}
	if obs.Condition != "" && obs.Condition != weather.ConditionUnknown {
		populated++
	}
	return float64(populated) / expectedOptionalFields * 100
}

func (a *Assessor) validity(obs weather.Observation) float64 {
	violations := 0

	if obs.TemperatureC != nil && (*obs.TemperatureC < -90 || *obs.TemperatureC > 60) {
		violations++
	}
	if obs.HumidityPct != nil && (*obs.HumidityPct < 0 || *obs.HumidityPct > 100) {
		violations++
	}
	if obs.WindSpeedMS != nil && (*obs.WindSpeedMS < 0 || *obs.WindSpeedMS > 150) {
		violations++
	}
	if obs.WindDirDeg != nil && (*obs.WindDirDeg < 0 || *obs.WindDirDeg > 360) {
		violations++
	}
	if obs.PressureHpa != nil && (*obs.PressureHpa < 850 || *obs.PressureHpa > 1100) {
		violations++
	}
	if obs.PrecipMm != nil && *obs.PrecipMm < 0 {
		violations++
	}

	v := clamp(100 - float64(violations)*validityPenalty)
	if violations > 0 && v > validityCap {
		v = validityCap
	}
	return v
}

func (a *Assessor) consistency(obs weather.Observation) float64 {
	violations := 0

	// Wind direction is meaningless without moving air.
	if obs.WindDirDeg != nil && (obs.WindSpeedMS == nil || *obs.WindSpeedMS <= 0) {
		violations++
	}
	// Snow in warm air is suspect.
	if obs.Condition == weather.ConditionSnow && obs.TemperatureC != nil && *obs.TemperatureC > 15 {
		violations++
	}
	if !obs.Timestamp.IsZero() {
		now := a.now()
		if a.staleness > 0 && now.Sub(obs.Timestamp) > a.staleness {
			violations++
		}
		if obs.Timestamp.After(now.Add(5 * time.Minute)) {
			violations++
		}
	}

	return clamp(100 - float64(violations)*consistencyPenalty)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
