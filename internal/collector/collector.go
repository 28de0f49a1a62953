package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"weather-collector/internal/weather"
)

// ErrNoTargets is a total-configuration error: a run with zero targets is
// the only non-cancellation condition that aborts before collecting.
var ErrNoTargets = errors.New("no targets configured")

// TargetResult is everything collected for one succeeded target: the raw
// provider payload, the normalized observation, and its quality score.
type TargetResult struct {
	Target      weather.Target      `json:"target"`
	Provider    string              `json:"provider"`
	Attempts    int                 `json:"attempts"`
	Raw         []byte              `json:"-"`
	Observation weather.Observation `json:"observation"`
	Score       QualityScore        `json:"score"`
	CollectedAt time.Time           `json:"collectedAt"`
}

// RunResult bundles the records and statistics of one collection run.
type RunResult struct {
	RunID    string         `json:"runId"`
	Runstamp string         `json:"runstamp"`
	Stats    *RunStatistics `json:"stats"`
	Results  []TargetResult `json:"results"`
}

// Options tunes a Collector.
type Options struct {
	Workers int
	Backoff BackoffPolicy
}

// deadProviders is run-scoped exclusion state: a provider that rejects the
// credential once is never queried again for the rest of the run.
type deadProviders struct {
	mu  sync.Mutex
	ids map[string]bool
}

func (d *deadProviders) mark(id string) {
	d.mu.Lock()
	d.ids[id] = true
	d.mu.Unlock()
}

func (d *deadProviders) has(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ids[id]
}

// Collector drives the per-target pipeline: selector-ordered providers,
// rate-limited and retried fetches, normalization, and quality scoring.
type Collector struct {
	providers map[string]weather.Provider
	limiter   *RateLimiter
	selector  *Selector
	assessor  *Assessor
	policy    BackoffPolicy
	workers   int
	log       *zap.SugaredLogger
}

// New creates a Collector. Provider order fixes the selector tie-break.
func New(providers []weather.Provider, limiter *RateLimiter, selector *Selector, assessor *Assessor, opts Options, log *zap.SugaredLogger) *Collector {
	byID := make(map[string]weather.Provider, len(providers))
	for _, p := range providers {
		byID[p.Name()] = p
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	policy := opts.Backoff
	if policy.MaxAttempts < 1 {
		policy = DefaultBackoffPolicy()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Collector{
		providers: byID,
		limiter:   limiter,
		selector:  selector,
		assessor:  assessor,
		policy:    policy,
		workers:   workers,
		log:       log,
	}
}

// Selector exposes the shared provider-health state for status surfaces.
func (c *Collector) Selector() *Selector {
	return c.selector
}

// Run collects once for every target. Attempt-level errors never abort the
// run; it finishes and returns statistics even if every target hard-fails.
// Cancellation abandons in-flight attempts but preserves completed records.
func (c *Collector) Run(ctx context.Context, targets []weather.Target) (*RunResult, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	runID := uuid.NewString()
	runstamp := time.Now().UTC().Format("20060102_150405")
	stats := NewRunStatistics(runID, runstamp, len(targets))

	c.log.Infow("collection run starting",
		"run_id", runID,
		"targets", len(targets),
		"providers", len(c.providers),
		"workers", c.workers,
	)

	type job struct {
		idx    int
		target weather.Target
	}

	jobs := make(chan job)
	slots := make([]*TargetResult, len(targets))
	dead := &deadProviders{ids: make(map[string]bool)}

	var wg sync.WaitGroup
	for w := 0; w < c.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				slots[j.idx] = c.collectTarget(ctx, j.target, stats, dead)
			}
		}()
	}

	for i, t := range targets {
		jobs <- job{idx: i, target: t}
	}
	close(jobs)
	wg.Wait()

	results := make([]TargetResult, 0, len(targets))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}

	stats.Finalize()
	c.log.Infow("collection run finished",
		"run_id", runID,
		"records", stats.RecordsCollected,
		"requests", stats.RequestsSent,
		"hard_failures", stats.HardFailureCount(),
		"avg_quality", stats.AverageQuality(),
	)

	return &RunResult{
		RunID:    runID,
		Runstamp: runstamp,
		Stats:    stats,
		Results:  results,
	}, nil
}

// collectTarget walks the selector-ordered providers for one target. The
// first provider to yield a usable record wins; exhausting all providers is
// a hard failure. One selector outcome is recorded per provider per target,
// regardless of how many retries the attempt sequence burned. A provider
// that failed with an unauthorized error earlier in the run is skipped.
func (c *Collector) collectTarget(ctx context.Context, target weather.Target, stats *RunStatistics, dead *deadProviders) *TargetResult {
	if ctx.Err() != nil {
		stats.RecordHardFailure(target.Key(), fmt.Sprintf("run cancelled before %s was attempted", target.Key()))
		return nil
	}
	stats.RecordTargetAttempted()

	for _, pid := range c.selector.Order() {
		if ctx.Err() != nil {
			stats.RecordHardFailure(target.Key(), fmt.Sprintf("run cancelled before %s completed", target.Key()))
			return nil
		}

		p, ok := c.providers[pid]
		if !ok || dead.has(pid) {
			continue
		}

		var raw weather.RawPayload
		attempts, err := Execute(ctx, c.policy, func(ctx context.Context) error {
			if aerr := c.limiter.Acquire(ctx, pid); aerr != nil {
				return fmt.Errorf("%w: %v", weather.ErrUnreachable, aerr)
			}

			start := time.Now()
			rp, ferr := p.Fetch(ctx, target)
			c.logAttempt(stats, pid, target, start, rp.Status, ferr)
			if ferr != nil {
				return ferr
			}
			raw = rp
			return nil
		})
		if err != nil {
			c.selector.Record(pid, false)
			if weather.Classify(err) == weather.FailureUnauthorized {
				dead.mark(pid)
				c.log.Warnw("provider credential rejected, excluding for the rest of the run", "provider", pid)
			}
			stats.RecordProviderFailure(pid, fmt.Sprintf("%s failed for %s: %v", pid, target.Key(), err))
			c.log.Warnw("provider attempt sequence failed",
				"provider", pid, "target", target.Key(), "attempts", attempts,
				"class", string(weather.Classify(err)), "error", err,
			)
			continue
		}

		obs, nerr := p.Normalize(raw.Body, target)
		if nerr != nil {
			c.selector.Record(pid, false)
			stats.RecordProviderFailure(pid, fmt.Sprintf("%s returned unparseable data for %s: %v", pid, target.Key(), nerr))
			c.log.Warnw("normalization failed", "provider", pid, "target", target.Key(), "error", nerr)
			continue
		}

		score := c.assessor.Score(obs)
		if score.CoreMissing {
			c.selector.Record(pid, false)
			stats.RecordProviderFailure(pid, fmt.Sprintf("%s record for %s is missing core fields", pid, target.Key()))
			c.log.Warnw("record missing core fields", "provider", pid, "target", target.Key())
			continue
		}

		c.selector.Record(pid, true)
		stats.RecordSuccess(pid, score.Composite)
		c.log.Infow("target collected",
			"target", target.Key(), "provider", pid,
			"attempts", attempts, "quality", score.Composite,
		)

		return &TargetResult{
			Target:      target,
			Provider:    pid,
			Attempts:    attempts,
			Raw:         raw.Body,
			Observation: obs,
			Score:       score,
			CollectedAt: time.Now().UTC(),
		}
	}

	stats.RecordHardFailure(target.Key(), fmt.Sprintf("all providers exhausted for %s", target.Key()))
	c.log.Warnw("target hard-failed", "target", target.Key())
	return nil
}

func (c *Collector) logAttempt(stats *RunStatistics, pid string, target weather.Target, start time.Time, status int, err error) {
	outcome := OutcomeSuccess
	class := weather.Classify(err)
	switch class {
	case weather.FailureNone:
	case weather.FailureRateLimited, weather.FailureUnreachable:
		outcome = OutcomeSoftFailure
	default:
		outcome = OutcomeHardFailure
	}

	stats.RecordAttempt(ProviderAttempt{
		Provider:  pid,
		Target:    target.Key(),
		Timestamp: start.UTC(),
		Outcome:   outcome,
		Class:     class,
		LatencyMs: time.Since(start).Milliseconds(),
		Status:    status,
	})
}
