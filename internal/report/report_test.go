package report

import (
	"os"
	"strings"
	"testing"
	"time"

	"weather-collector/internal/collector"
	"weather-collector/internal/weather"
)

func sampleRun() *collector.RunResult {
	temp := 18.2
	stats := collector.NewRunStatistics("run-1", "20260829_120000", 2)
	stats.RecordTargetAttempted()
	stats.RecordTargetAttempted()
	stats.RecordSuccess("openweathermap", 85)
	stats.RecordProviderFailure("weatherapi", "weatherapi failed for Paris:FR: unauthorized")
	stats.RecordHardFailure("Paris:FR", "all providers exhausted for Paris:FR")
	stats.Finalize()

	return &collector.RunResult{
		RunID:    "run-1",
		Runstamp: "20260829_120000",
		Stats:    stats,
		Results: []collector.TargetResult{{
			Target:   weather.Target{City: "Berlin", Country: "DE"},
			Provider: "openweathermap",
			Attempts: 1,
			Observation: weather.Observation{
				TargetKey:    "Berlin:DE",
				TemperatureC: &temp,
				Timestamp:    time.Now().UTC(),
			},
			Score: collector.QualityScore{Completeness: 50, Validity: 100, Consistency: 100, Composite: 85},
		}},
	}
}

func TestGenerateWritesBothReports(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, nil)

	htmlPath, mdPath, err := g.Generate(sampleRun())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	html, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("reading html report: %v", err)
	}
	for _, want := range []string{"Berlin:DE", "openweathermap", "Paris:FR", "85.0/100"} {
		if !strings.Contains(string(html), want) {
			t.Errorf("html report missing %q", want)
		}
	}

	md, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatalf("reading markdown summary: %v", err)
	}
	for _, want := range []string{"**Targets Attempted** | 2", "**Records Collected** | 1", "**Hard Failures** | 1", "unauthorized"} {
		if !strings.Contains(string(md), want) {
			t.Errorf("markdown summary missing %q", want)
		}
	}
}

// Zero records with targets attempted is provider failure; zero records with
// nothing attempted is misconfiguration. The reports must tell them apart.
func TestGenerateDistinguishesMisconfiguration(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, nil)

	empty := collector.NewRunStatistics("run-a", "20260829_130000", 0)
	empty.Finalize()
	_, mdPath, err := g.Generate(&collector.RunResult{RunID: "run-a", Runstamp: "20260829_130000", Stats: empty})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	md, _ := os.ReadFile(mdPath)
	if !strings.Contains(string(md), "zero targets were attempted") {
		t.Errorf("expected misconfiguration warning for 0 attempted targets")
	}

	failed := collector.NewRunStatistics("run-b", "20260829_140000", 2)
	failed.RecordTargetAttempted()
	failed.RecordTargetAttempted()
	failed.RecordHardFailure("Berlin:DE", "")
	failed.RecordHardFailure("Paris:FR", "")
	failed.Finalize()
	_, mdPath, err = g.Generate(&collector.RunResult{RunID: "run-b", Runstamp: "20260829_140000", Stats: failed})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	md, _ = os.ReadFile(mdPath)
	if strings.Contains(string(md), "zero targets were attempted") {
		t.Errorf("provider-side failure must not be reported as misconfiguration")
	}

	// A run cancelled before any target started has zero attempts but carries
	// hard failures; that is not a configuration problem either.
	cancelled := collector.NewRunStatistics("run-c", "20260829_150000", 2)
	cancelled.RecordHardFailure("Berlin:DE", "run cancelled before Berlin:DE was attempted")
	cancelled.RecordHardFailure("Paris:FR", "run cancelled before Paris:FR was attempted")
	cancelled.Finalize()
	_, mdPath, err = g.Generate(&collector.RunResult{RunID: "run-c", Runstamp: "20260829_150000", Stats: cancelled})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	md, _ = os.ReadFile(mdPath)
	if strings.Contains(string(md), "zero targets were attempted") {
		t.Errorf("cancelled run must not be reported as misconfiguration")
	}
}
