package config

import (
	"strings"
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TARGET_CITIES", "Berlin,Paris")
	t.Setenv("TARGET_COUNTRIES", "DE,FR")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(cfg.Targets))
	}
	if cfg.Targets[0].City != "Berlin" || cfg.Targets[0].Country != "DE" {
		t.Fatalf("unexpected first target: %+v", cfg.Targets[0])
	}
	if cfg.RateInterval != time.Second {
		t.Fatalf("unexpected default rate interval: %v", cfg.RateInterval)
	}
	if cfg.MaxAttempts != 3 {
		t.Fatalf("unexpected default max attempts: %d", cfg.MaxAttempts)
	}
	if cfg.WeightCompleteness != 0.40 || cfg.WeightValidity != 0.35 || cfg.WeightConsistency != 0.25 {
		t.Fatalf("unexpected default weights: %+v", cfg)
	}
	if cfg.DataDir != "data" || cfg.ReportDir != "reports" {
		t.Fatalf("unexpected default directories: %s, %s", cfg.DataDir, cfg.ReportDir)
	}
}

func TestLoadTargetCoordinates(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TARGET_LATS", "52.52, 48.85")
	t.Setenv("TARGET_LONS", "13.40, 2.35")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	first := cfg.Targets[0]
	if first.Lat == nil || *first.Lat != 52.52 || first.Lon == nil || *first.Lon != 13.40 {
		t.Fatalf("unexpected coordinates: %+v", first)
	}
}

func TestLoadCountryMismatch(t *testing.T) {
	t.Setenv("TARGET_CITIES", "Berlin,Paris")
	t.Setenv("TARGET_COUNTRIES", "DE")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "same number") {
		t.Fatalf("expected mismatch error, got %v", err)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("RATE_LIMIT_INTERVAL", "soon")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "RATE_LIMIT_INTERVAL") {
		t.Fatalf("expected duration parse error, got %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("SELECTOR_WINDOW", "20")
	t.Setenv("COLLECT_WORKERS", "4")
	t.Setenv("QUALITY_WEIGHT_COMPLETENESS", "0.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.MaxAttempts != 5 || cfg.SelectorWindow != 20 || cfg.Workers != 4 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.WeightCompleteness != 0.5 {
		t.Fatalf("weight override not applied: %v", cfg.WeightCompleteness)
	}
}

func TestLoadRejectsInvalidTunables(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("RETRY_MAX_ATTEMPTS", "0")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("expected validation error, got %v", err)
	}
}
