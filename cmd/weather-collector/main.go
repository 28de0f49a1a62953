package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	httpapi "weather-collector/internal/api/http"
	"weather-collector/internal/artifact"
	"weather-collector/internal/collector"
	"weather-collector/internal/config"
	"weather-collector/internal/report"
	"weather-collector/internal/scheduler"
	"weather-collector/internal/store"
	"weather-collector/internal/weather"
	"weather-collector/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}

	zlog, err := newLogger(cfg.LogLevel)
	if err != nil {
		stdlog.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()
	log := zlog.Sugar()

	rootCmd := &cobra.Command{
		Use:   "weather-collector",
		Short: "Adaptive multi-source weather data collector",
		Long: "Collects current-weather observations for configured targets from " +
			"multiple providers, with adaptive fallback, quality scoring, and " +
			"raw/processed/metadata artifact output.",
	}

	collectCmd := &cobra.Command{
		Use:   "collect",
		Short: "Run a single collection and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			coll := buildCollector(cfg, log)
			_, err := runOnce(ctx, cfg, coll, log)
			if err == nil && ctx.Err() != nil {
				err = ctx.Err()
			}
			return err
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Collect on a schedule and serve run status over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfg, log)
		},
	}

	rootCmd.AddCommand(collectCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zcfg.Build()
}

func buildCollector(cfg *config.AppConfig, log *zap.SugaredLogger) *collector.Collector {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	provs := []weather.Provider{
		providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey),
		providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey),
	}

	ids := make([]string, 0, len(provs))
	for _, p := range provs {
		ids = append(ids, p.Name())
	}

	limiter := collector.NewRateLimiter(cfg.RateInterval)
	selector := collector.NewSelector(ids, cfg.SelectorWindow, cfg.FailureThreshold)
	assessor := collector.NewAssessor(collector.Weights{
		Completeness: cfg.WeightCompleteness,
		Validity:     cfg.WeightValidity,
		Consistency:  cfg.WeightConsistency,
	}, cfg.StalenessBound)

	return collector.New(provs, limiter, selector, assessor, collector.Options{
		Workers: cfg.Workers,
		Backoff: collector.BackoffPolicy{
			MaxAttempts: cfg.MaxAttempts,
			BaseDelay:   cfg.BaseDelay,
			Multiplier:  cfg.BackoffMultiplier,
			MaxDelay:    cfg.MaxDelay,
			Jitter:      cfg.Jitter,
		},
	}, log)
}

// runOnce executes one collection run and persists its artifacts and
// reports. Artifact and report errors are logged but do not fail the run;
// the dataset on disk should be as complete as the run allowed.
func runOnce(ctx context.Context, cfg *config.AppConfig, coll *collector.Collector, log *zap.SugaredLogger) (*collector.RunResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	run, err := coll.Run(runCtx, cfg.Targets)
	if err != nil {
		return nil, err
	}

	writer := artifact.NewWriter(cfg.DataDir, log)
	if err := writer.WriteRun(run, cfg.Settings()); err != nil {
		log.Errorw("failed to write artifacts", "run_id", run.RunID, "error", err)
	}

	gen := report.NewGenerator(cfg.ReportDir, log)
	if _, _, err := gen.Generate(run); err != nil {
		log.Errorw("failed to generate reports", "run_id", run.RunID, "error", err)
	}

	return run, nil
}

func serve(cfg *config.AppConfig, log *zap.SugaredLogger) error {
	coll := buildCollector(cfg, log)
	runs := store.NewRunStore(cfg.StoreMaxRuns, cfg.StoreMaxAge)

	job := func() {
		run, err := runOnce(context.Background(), cfg, coll, log)
		if err != nil {
			log.Errorw("scheduled run failed", "error", err)
			return
		}
		runs.Save(run)
	}

	sched := scheduler.New(cfg.SchedulerInterval, job, log)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-collector",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-collector",
		})
	})

	httpapi.RegisterRoutes(app, runs, coll.Selector())

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorw("fiber server stopped", "error", err)
		}
	}()

	// Run one collection immediately so the status API has data before the
	// first scheduled tick.
	go job()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorw("error during shutdown", "error", err)
	}
	return nil
}
