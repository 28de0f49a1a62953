package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"weather-collector/internal/weather"
)

// AppConfig holds everything the collector reads at startup. It is loaded
// once and read-only afterwards.
type AppConfig struct {
	OpenWeatherAPIKey string
	WeatherAPIKey     string

	// Targets to collect for, in configured order.
	Targets []weather.Target

	// Minimum spacing between requests to any single provider.
	RateInterval time.Duration `validate:"gt=0"`

	// Retry policy for one provider attempt sequence.
	MaxAttempts       int           `validate:"gte=1"`
	BaseDelay         time.Duration `validate:"gt=0"`
	BackoffMultiplier float64       `validate:"gte=1"`
	MaxDelay          time.Duration
	Jitter            bool

	// Composite quality weighting; renormalized over the sum.
	WeightCompleteness float64 `validate:"gt=0"`
	WeightValidity     float64 `validate:"gt=0"`
	WeightConsistency  float64 `validate:"gt=0"`

	// Observations older than this count as a consistency violation.
	StalenessBound time.Duration

	// Adaptive selector tuning.
	SelectorWindow   int     `validate:"gte=1"`
	FailureThreshold float64 `validate:"gt=0,lte=1"`

	// Worker pool size and overall run deadline.
	Workers    int           `validate:"gte=1"`
	RunTimeout time.Duration `validate:"gt=0"`

	// Outbound HTTP timeout per request.
	HTTPTimeout time.Duration `validate:"gt=0"`

	// Artifact and report locations.
	DataDir   string `validate:"required"`
	ReportDir string `validate:"required"`

	// Daemon mode: scheduler interval, run retention, listen port.
	SchedulerInterval time.Duration `validate:"gt=0"`
	StoreMaxRuns      int
	StoreMaxAge       time.Duration
	Port              string `validate:"required"`

	LogLevel string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	// A missing .env file is fine; environment variables still apply.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")

	targets, err := loadTargets()
	if err != nil {
		return nil, err
	}
	cfg.Targets = targets

	cfg.RateInterval, err = getenvDuration("RATE_LIMIT_INTERVAL", time.Second)
	if err != nil {
		return nil, err
	}

	cfg.MaxAttempts = getenvInt("RETRY_MAX_ATTEMPTS", 3)
	cfg.BaseDelay, err = getenvDuration("RETRY_BASE_DELAY", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	cfg.BackoffMultiplier = getenvFloat("RETRY_MULTIPLIER", 2.0)
	cfg.MaxDelay, err = getenvDuration("RETRY_MAX_DELAY", 5*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.Jitter = getenvBool("RETRY_JITTER", true)

	cfg.WeightCompleteness = getenvFloat("QUALITY_WEIGHT_COMPLETENESS", 0.40)
	cfg.WeightValidity = getenvFloat("QUALITY_WEIGHT_VALIDITY", 0.35)
	cfg.WeightConsistency = getenvFloat("QUALITY_WEIGHT_CONSISTENCY", 0.25)

	cfg.StalenessBound, err = getenvDuration("QUALITY_STALENESS_BOUND", time.Hour)
	if err != nil {
		return nil, err
	}

	cfg.SelectorWindow = getenvInt("SELECTOR_WINDOW", 10)
	cfg.FailureThreshold = getenvFloat("SELECTOR_FAILURE_THRESHOLD", 0.5)

	cfg.Workers = getenvInt("COLLECT_WORKERS", 2)
	cfg.RunTimeout, err = getenvDuration("RUN_TIMEOUT", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg.DataDir = getenvDefault("DATA_DIR", "data")
	cfg.ReportDir = getenvDefault("REPORT_DIR", "reports")

	cfg.SchedulerInterval, err = getenvDuration("SCHEDULER_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.StoreMaxRuns = getenvInt("STORE_MAX_RUNS", 96)
	cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Settings returns the tunables snapshot recorded in run metadata.
func (c *AppConfig) Settings() map[string]any {
	return map[string]any{
		"targets":                     len(c.Targets),
		"rate_limit_interval":         c.RateInterval.String(),
		"retry_max_attempts":          c.MaxAttempts,
		"retry_base_delay":            c.BaseDelay.String(),
		"retry_multiplier":            c.BackoffMultiplier,
		"quality_weight_completeness": c.WeightCompleteness,
		"quality_weight_validity":     c.WeightValidity,
		"quality_weight_consistency":  c.WeightConsistency,
		"selector_window":             c.SelectorWindow,
		"selector_failure_threshold":  c.FailureThreshold,
		"collect_workers":             c.Workers,
	}
}

// loadTargets parses the comma-separated city/country lists, with optional
// parallel latitude/longitude lists.
func loadTargets() ([]weather.Target, error) {
	cityEnv := os.Getenv("TARGET_CITIES")
	if cityEnv == "" {
		return nil, nil
	}

	cities := splitTrim(cityEnv)
	countries := splitTrim(os.Getenv("TARGET_COUNTRIES"))
	if len(countries) > 0 && len(countries) != len(cities) {
		return nil, fmt.Errorf("TARGET_CITIES and TARGET_COUNTRIES must have the same number of entries")
	}

	lats, err := parseFloats(os.Getenv("TARGET_LATS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TARGET_LATS: %w", err)
	}
	lons, err := parseFloats(os.Getenv("TARGET_LONS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TARGET_LONS: %w", err)
	}
	if (len(lats) > 0 && len(lats) != len(cities)) || (len(lons) > 0 && len(lons) != len(cities)) {
		return nil, fmt.Errorf("TARGET_LATS and TARGET_LONS must match the number of cities")
	}

	targets := make([]weather.Target, 0, len(cities))
	for i, city := range cities {
		t := weather.Target{City: city}
		if len(countries) > 0 {
			t.Country = countries[i]
		}
		if len(lats) > 0 && len(lons) > 0 {
			lat, lon := lats[i], lons[i]
			t.Lat = &lat
			t.Lon = &lon
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func splitTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func parseFloats(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := splitTrim(s)
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
