package weather

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want FailureClass
	}{
		{nil, FailureNone},
		{fmt.Errorf("%w: bad key", ErrUnauthorized), FailureUnauthorized},
		{fmt.Errorf("%w: status 429", ErrRateLimited), FailureRateLimited},
		{fmt.Errorf("%w: bad json", ErrMalformedResponse), FailureMalformed},
		{fmt.Errorf("%w: connection refused", ErrUnreachable), FailureUnreachable},
		{errors.New("something else"), FailureUnreachable},
	}

	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Errorf("Classify(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(ErrRateLimited) || !Retryable(ErrUnreachable) {
		t.Fatalf("transient classes must be retryable")
	}
	if Retryable(ErrUnauthorized) || Retryable(ErrMalformedResponse) || Retryable(nil) {
		t.Fatalf("terminal classes and nil must not be retryable")
	}
}
