// Package report renders the human-readable artifacts of a collection run:
// an HTML quality report and a markdown collection summary.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"weather-collector/internal/collector"
)

// Generator renders finalized run statistics. The collection engine never
// formats text for humans; that responsibility ends here.
type Generator struct {
	dir string
	log *zap.SugaredLogger
}

func NewGenerator(dir string, log *zap.SugaredLogger) *Generator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Generator{dir: dir, log: log}
}

type providerRow struct {
	Name      string
	Successes int
	Failures  int
}

type recordRow struct {
	Index    int
	Target   string
	Provider string
	Score    float64
	Notes    string
}

type reportData struct {
	GeneratedAt       string
	Runstamp          string
	TargetsConfigured int
	TargetsAttempted  int
	RecordsCollected  int
	RequestsSent      int
	SuccessRate       float64
	AverageQuality    float64
	Providers         []providerRow
	Records           []recordRow
	HardFailures      []string
	Issues            []string
	Misconfigured     bool
}

// Generate writes both report files for the run and returns their paths.
func (g *Generator) Generate(run *collector.RunResult) (htmlPath, mdPath string, err error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", "", err
	}

	data := buildData(run)

	htmlPath = filepath.Join(g.dir, fmt.Sprintf("quality_report_%s.html", run.Runstamp))
	if err := renderFile(htmlPath, htmlReport, data); err != nil {
		return "", "", fmt.Errorf("rendering quality report: %w", err)
	}

	mdPath = filepath.Join(g.dir, fmt.Sprintf("collection_summary_%s.md", run.Runstamp))
	if err := renderFile(mdPath, markdownSummary, data); err != nil {
		return "", "", fmt.Errorf("rendering collection summary: %w", err)
	}

	g.log.Infow("reports generated", "run_id", run.RunID, "html", htmlPath, "markdown", mdPath)
	return htmlPath, mdPath, nil
}

func buildData(run *collector.RunResult) reportData {
	stats := run.Stats

	data := reportData{
		GeneratedAt:       time.Now().UTC().Format("2006-01-02 15:04:05"),
		Runstamp:          run.Runstamp,
		TargetsConfigured: stats.TargetsConfigured,
		TargetsAttempted:  stats.TargetsAttempted,
		RecordsCollected:  stats.RecordsCollected,
		RequestsSent:      stats.RequestsSent,
		SuccessRate:       stats.SuccessRate(),
		AverageQuality:    stats.AverageQuality(),
		HardFailures:      stats.HardFailures,
		Issues:            stats.Issues,
		// Zero records with zero attempted targets and no hard failures means
		// nothing was even tried: a configuration problem, not a provider-side
		// or cancellation one.
		Misconfigured: stats.RecordsCollected == 0 && stats.TargetsAttempted == 0 && stats.HardFailureCount() == 0,
	}

	names := make([]string, 0, len(stats.ProviderSuccesses)+len(stats.ProviderFailures))
	seen := make(map[string]bool)
	for name := range stats.ProviderSuccesses {
		if !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}
	for name := range stats.ProviderFailures {
		if !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}
	sort.Strings(names)
	for _, name := range names {
		data.Providers = append(data.Providers, providerRow{
			Name:      name,
			Successes: stats.ProviderSuccesses[name],
			Failures:  stats.ProviderFailures[name],
		})
	}

	for i, r := range run.Results {
		notes := "None"
		if r.Score.Validity < 100 || r.Score.Consistency < 100 {
			notes = "Quality deductions recorded"
		}
		data.Records = append(data.Records, recordRow{
			Index:    i + 1,
			Target:   r.Target.Key(),
			Provider: r.Provider,
			Score:    r.Score.Composite,
			Notes:    notes,
		})
	}

	return data
}
