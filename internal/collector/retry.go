package collector

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"weather-collector/internal/weather"
)

// BackoffPolicy controls retry behaviour around a single provider call.
type BackoffPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
	Jitter      bool
}

func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Multiplier:  2.0,
		MaxDelay:    5 * time.Second,
		Jitter:      true,
	}
}

// delay returns the pause before attempt+1, growing exponentially from
// BaseDelay and clamped at MaxDelay. attempt is 1-based.
func (p BackoffPolicy) delay(attempt int) time.Duration {
	d := time.Duration(float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1)))
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if p.Jitter && d > 0 {
		// Up to 25% extra, so synchronized clients drift apart.
		d += time.Duration(rand.Int63n(int64(d)/4 + 1))
	}
	return d
}

// Execute runs op with bounded retries. Only transient failure classes
// (rate-limited, unreachable) are retried; unauthorized and malformed
// responses return immediately. On exhaustion the last error is wrapped so
// errors.Is still sees its classification. Returns the number of attempts
// actually made.
func Execute(ctx context.Context, policy BackoffPolicy, op func(ctx context.Context) error) (int, error) {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, fmt.Errorf("%w: %v", weather.ErrUnreachable, err)
		}

		err := op(ctx)
		if err == nil {
			return attempt, nil
		}
		lastErr = err

		if !weather.Retryable(err) {
			return attempt, err
		}
		if attempt >= policy.MaxAttempts {
			return attempt, fmt.Errorf("retries exhausted after %d attempts: %w", attempt, lastErr)
		}

		timer := time.NewTimer(policy.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, fmt.Errorf("%w: %v", weather.ErrUnreachable, ctx.Err())
		case <-timer.C:
		}
	}
}
