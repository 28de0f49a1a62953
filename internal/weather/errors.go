package weather

import "errors"

// Failure taxonomy for provider attempts. Callers classify with errors.Is,
// so adapters wrap these sentinels with fmt.Errorf("%w: ...").
var (
	// ErrUnauthorized means the provider rejected our credential. Fatal for
	// that provider for the remainder of the run; never retried.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited means the provider asked us to slow down. Retryable.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnreachable covers network-level failures and provider-side server
	// errors. Retryable.
	ErrUnreachable = errors.New("unreachable")

	// ErrMalformedResponse means the provider returned data the adapter
	// cannot parse. Not retryable; counts as a failed attempt.
	ErrMalformedResponse = errors.New("malformed response")
)

// FailureClass names the taxonomy bucket of an attempt error.
type FailureClass string

const (
	FailureNone         FailureClass = ""
	FailureUnauthorized FailureClass = "unauthorized"
	FailureRateLimited  FailureClass = "rate_limited"
	FailureUnreachable  FailureClass = "unreachable"
	FailureMalformed    FailureClass = "malformed_response"
)

// Classify maps an attempt error onto the failure taxonomy. Unrecognized
// errors are treated as unreachable, the most conservative retryable class.
func Classify(err error) FailureClass {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrUnauthorized):
		return FailureUnauthorized
	case errors.Is(err, ErrRateLimited):
		return FailureRateLimited
	case errors.Is(err, ErrMalformedResponse):
		return FailureMalformed
	default:
		return FailureUnreachable
	}
}

// Retryable reports whether the error is transient. Unauthorized and
// malformed responses are contract problems, not transient faults.
func Retryable(err error) bool {
	switch Classify(err) {
	case FailureRateLimited, FailureUnreachable:
		return true
	default:
		return false
	}
}
