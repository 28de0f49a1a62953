package collector

import (
	"sync"
	"time"

	"weather-collector/internal/weather"
)

// AttemptOutcome classifies one request/response cycle.
type AttemptOutcome string

const (
	OutcomeSuccess     AttemptOutcome = "success"
	OutcomeSoftFailure AttemptOutcome = "soft_failure" // transient, retried
	OutcomeHardFailure AttemptOutcome = "hard_failure" // terminal for this provider
)

// ProviderAttempt records one request/response cycle. Immutable once logged.
type ProviderAttempt struct {
	Provider  string               `json:"provider"`
	Target    string               `json:"target"`
	Timestamp time.Time            `json:"timestamp"`
	Outcome   AttemptOutcome       `json:"outcome"`
	Class     weather.FailureClass `json:"failureClass,omitempty"`
	LatencyMs int64                `json:"latencyMs"`
	Status    int                  `json:"httpStatus,omitempty"`
}

// RunStatistics is the process-wide accumulator for one collection run.
// It is mutated only through its methods while the run is in flight and
// becomes effectively read-only once the orchestrator finalizes it.
type RunStatistics struct {
	mu sync.Mutex

	RunID     string    `json:"runId"`
	Runstamp  string    `json:"runstamp"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`

	TargetsConfigured int `json:"targetsConfigured"`
	TargetsAttempted  int `json:"targetsAttempted"`
	RecordsCollected  int `json:"recordsCollected"`
	RequestsSent      int `json:"requestsSent"`

	ProviderSuccesses map[string]int `json:"providerSuccesses"`
	ProviderFailures  map[string]int `json:"providerFailures"`

	HardFailures []string `json:"hardFailures"`
	Issues       []string `json:"issues"`

	Attempts []ProviderAttempt `json:"attempts"`

	// AvgQuality is filled in by Finalize.
	AvgQuality float64 `json:"averageQuality"`

	totalQuality float64
}

func NewRunStatistics(runID, runstamp string, targets int) *RunStatistics {
	return &RunStatistics{
		RunID:             runID,
		Runstamp:          runstamp,
		StartedAt:         time.Now().UTC(),
		TargetsConfigured: targets,
		ProviderSuccesses: make(map[string]int),
		ProviderFailures:  make(map[string]int),
	}
}

func (s *RunStatistics) RecordAttempt(a ProviderAttempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RequestsSent++
	s.Attempts = append(s.Attempts, a)
}

func (s *RunStatistics) RecordTargetAttempted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TargetsAttempted++
}

func (s *RunStatistics) RecordSuccess(providerID string, composite float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RecordsCollected++
	s.ProviderSuccesses[providerID]++
	s.totalQuality += composite
}

func (s *RunStatistics) RecordProviderFailure(providerID string, issue string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ProviderFailures[providerID]++
	if issue != "" {
		s.Issues = append(s.Issues, issue)
	}
}

func (s *RunStatistics) RecordHardFailure(targetKey string, issue string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.HardFailures = append(s.HardFailures, targetKey)
	if issue != "" {
		s.Issues = append(s.Issues, issue)
	}
}

// Finalize stamps the end time. Reads after Finalize need no locking by
// convention: the orchestrator is done mutating.
func (s *RunStatistics) Finalize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EndedAt = time.Now().UTC()
	if s.RecordsCollected > 0 {
		s.AvgQuality = s.totalQuality / float64(s.RecordsCollected)
	}
}

// AverageQuality returns the mean composite score across collected records.
func (s *RunStatistics) AverageQuality() float64 {
	if s.RecordsCollected == 0 {
		return 0
	}
	return s.totalQuality / float64(s.RecordsCollected)
}

// SuccessRate returns collected records as a percentage of attempted targets.
func (s *RunStatistics) SuccessRate() float64 {
	if s.TargetsAttempted == 0 {
		return 0
	}
	return float64(s.RecordsCollected) / float64(s.TargetsAttempted) * 100
}

// HardFailureCount returns the number of targets no provider could serve.
func (s *RunStatistics) HardFailureCount() int {
	return len(s.HardFailures)
}
