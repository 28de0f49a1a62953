package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"weather-collector/internal/weather"
)

var errNoHTTPClient = errors.New("http client not configured")

// doRequest executes a single HTTP request through the provider's circuit
// breaker and classifies the outcome onto the failure taxonomy. Retries are
// deliberately not handled here; the collection engine owns retry policy.
func doRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (weather.RawPayload, error) {
	if client == nil {
		return weather.RawPayload{}, errNoHTTPClient
	}
	if ctx.Err() != nil {
		return weather.RawPayload{}, fmt.Errorf("%w: %v", weather.ErrUnreachable, ctx.Err())
	}

	req, err := buildRequest()
	if err != nil {
		return weather.RawPayload{}, err
	}
	req = req.WithContext(ctx)

	var status int
	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, fmt.Errorf("%w: %v", weather.ErrUnreachable, execErr)
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("%w: reading body: %v", weather.ErrUnreachable, readErr)
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, fmt.Errorf("%w: status %d", weather.ErrUnauthorized, resp.StatusCode)
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, fmt.Errorf("%w: status %d", weather.ErrRateLimited, resp.StatusCode)
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: server status %d", weather.ErrUnreachable, resp.StatusCode)
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return nil, fmt.Errorf("%w: unexpected status %d", weather.ErrUnreachable, resp.StatusCode)
		}

		return body, nil
	})

	if err != nil {
		// An open breaker means the provider has been failing; report it as
		// unreachable so the engine backs off and falls back.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return weather.RawPayload{Status: status}, fmt.Errorf("%w: circuit breaker: %v", weather.ErrUnreachable, err)
		}
		return weather.RawPayload{Status: status}, err
	}

	body, ok := result.([]byte)
	if !ok {
		return weather.RawPayload{Status: status}, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return weather.RawPayload{Body: body, Status: status}, nil
}

func newFloat(v float64) *float64 { return &v }

// hasAny reports whether s contains any of the substrings, case-insensitively.
func hasAny(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
