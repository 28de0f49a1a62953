package scheduler

import (
	"testing"
	"time"
)

// Sub-minute intervals are scheduled as given, not rounded down to the
// 15-minute fallback.
func TestSchedulerRunsSubMinuteInterval(t *testing.T) {
	ran := make(chan struct{}, 1)
	s := New(50*time.Millisecond, func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}, nil)

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatalf("job did not run within 5s at a 50ms interval")
	}
}
