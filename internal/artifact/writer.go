// Package artifact persists the raw payloads, processed records, and run
// metadata of a collection run as timestamped JSON files under the data
// directory: data/raw, data/processed, data/metadata.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"weather-collector/internal/collector"
	"weather-collector/internal/weather"
)

// Writer owns file and directory naming; the collection engine only hands
// it the run result.
type Writer struct {
	dataDir string
	log     *zap.SugaredLogger
}

func NewWriter(dataDir string, log *zap.SugaredLogger) *Writer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Writer{dataDir: dataDir, log: log}
}

// rawEntry wraps one provider payload verbatim with enough context to trace it.
type rawEntry struct {
	Target      weather.Target  `json:"target"`
	Provider    string          `json:"provider"`
	CollectedAt time.Time       `json:"collectedAt"`
	Payload     json.RawMessage `json:"payload"`
}

// ProcessedRecord is the flat, analysis-friendly projection of one
// observation. Null fields mean the provider did not report them.
type ProcessedRecord struct {
	City         string                 `json:"city"`
	Country      string                 `json:"country"`
	Runstamp     string                 `json:"collection_timestamp"`
	Provider     string                 `json:"source_provider"`
	ObservedAt   time.Time              `json:"observed_at"`
	TempC        *float64               `json:"current_temp_c"`
	HumidityPct  *float64               `json:"current_humidity_p"`
	WindSpeedMS  *float64               `json:"current_wind_speed_m_s"`
	WindDirDeg   *float64               `json:"current_wind_direction_deg"`
	PressureHpa  *float64               `json:"current_pressure_hpa"`
	PrecipMm     *float64               `json:"current_precip_mm"`
	Condition    weather.Condition      `json:"condition"`
	QualityScore collector.QualityScore `json:"quality_score"`
	AttemptCount int                    `json:"attempt_count"`
}

type schemaField struct {
	Field       string `json:"field"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type metadataFile struct {
	MetadataVersion string                   `json:"metadata_version"`
	RunID           string                   `json:"run_id"`
	Runstamp        string                   `json:"collection_timestamp"`
	Settings        map[string]any           `json:"collection_settings,omitempty"`
	SummaryMetrics  *collector.RunStatistics `json:"summary_metrics"`
	Schema          []schemaField            `json:"processed_data_schema"`
}

// WriteRun persists all three artifacts for a finished run. settings is an
// opaque snapshot of the run's configuration, recorded for traceability.
func (w *Writer) WriteRun(run *collector.RunResult, settings map[string]any) error {
	if len(run.Results) == 0 {
		w.log.Warnw("no records collected, skipping raw and processed artifacts", "run_id", run.RunID)
	} else {
		raws := make([]rawEntry, 0, len(run.Results))
		processed := make([]ProcessedRecord, 0, len(run.Results))
		for _, r := range run.Results {
			raws = append(raws, rawEntry{
				Target:      r.Target,
				Provider:    r.Provider,
				CollectedAt: r.CollectedAt,
				Payload:     json.RawMessage(r.Raw),
			})
			processed = append(processed, ProcessedRecord{
				City:         r.Target.City,
				Country:      r.Target.Country,
				Runstamp:     run.Runstamp,
				Provider:     r.Provider,
				ObservedAt:   r.Observation.Timestamp,
				TempC:        r.Observation.TemperatureC,
				HumidityPct:  r.Observation.HumidityPct,
				WindSpeedMS:  r.Observation.WindSpeedMS,
				WindDirDeg:   r.Observation.WindDirDeg,
				PressureHpa:  r.Observation.PressureHpa,
				PrecipMm:     r.Observation.PrecipMm,
				Condition:    r.Observation.Condition,
				QualityScore: r.Score,
				AttemptCount: r.Attempts,
			})
		}

		if err := w.writeJSON(filepath.Join(w.dataDir, "raw"), fmt.Sprintf("weather_raw_%s.json", run.Runstamp), raws); err != nil {
			return fmt.Errorf("saving raw data: %w", err)
		}
		if err := w.writeJSON(filepath.Join(w.dataDir, "processed"), fmt.Sprintf("weather_processed_%s.json", run.Runstamp), processed); err != nil {
			return fmt.Errorf("saving processed data: %w", err)
		}
	}

	meta := metadataFile{
		MetadataVersion: "1.0",
		RunID:           run.RunID,
		Runstamp:        run.Runstamp,
		Settings:        settings,
		SummaryMetrics:  run.Stats,
		Schema:          processedSchema(),
	}
	if err := w.writeJSON(filepath.Join(w.dataDir, "metadata"), fmt.Sprintf("collection_metadata_%s.json", run.Runstamp), meta); err != nil {
		return fmt.Errorf("saving metadata: %w", err)
	}

	w.log.Infow("artifacts written", "run_id", run.RunID, "dir", w.dataDir, "records", len(run.Results))
	return nil
}

func (w *Writer) writeJSON(dir, name string, v any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}

func processedSchema() []schemaField {
	return []schemaField{
		{Field: "city", Type: "string", Description: "City name used in the provider request."},
		{Field: "country", Type: "string", Description: "Country code used in the provider request."},
		{Field: "collection_timestamp", Type: "string", Description: "Run timestamp (YYYYMMDD_HHMMSS) shared by all artifacts of this run."},
		{Field: "source_provider", Type: "string", Description: "Provider that produced the record."},
		{Field: "observed_at", Type: "string", Description: "Observation timestamp reported by the provider, UTC."},
		{Field: "current_temp_c", Type: "float", Description: "Temperature in Celsius; null if not reported."},
		{Field: "current_humidity_p", Type: "float", Description: "Relative humidity percentage; null if not reported."},
		{Field: "current_wind_speed_m_s", Type: "float", Description: "Wind speed in meters per second; null if not reported."},
		{Field: "current_wind_direction_deg", Type: "float", Description: "Wind direction in degrees; null if not reported."},
		{Field: "current_pressure_hpa", Type: "float", Description: "Pressure in hectopascals; null if not reported."},
		{Field: "current_precip_mm", Type: "float", Description: "Precipitation in millimeters; null if not reported."},
		{Field: "condition", Type: "string", Description: "Normalized condition code."},
		{Field: "quality_score", Type: "object", Description: "Completeness, validity, consistency, and composite scores (0-100)."},
		{Field: "attempt_count", Type: "integer", Description: "Requests spent on the winning provider for this target."},
	}
}
