package collector

import (
	"reflect"
	"testing"
)

func TestOrderPrefersHealthyProvider(t *testing.T) {
	s := NewSelector([]string{"p1", "p2"}, 5, 0.5)

	for i := 0; i < 5; i++ {
		s.Record("p1", false)
		s.Record("p2", true)
	}

	order := s.Order()
	if order[0] != "p2" {
		t.Fatalf("expected fully successful provider first, got %v", order)
	}
	if order[len(order)-1] != "p1" {
		t.Fatalf("expected fully failing provider last, got %v", order)
	}
}

func TestOrderTieBreakIsConfiguredOrder(t *testing.T) {
	s := NewSelector([]string{"alpha", "beta", "gamma"}, 5, 0.5)

	// No history at all: configured order holds.
	if got := s.Order(); !reflect.DeepEqual(got, []string{"alpha", "beta", "gamma"}) {
		t.Fatalf("expected configured order with empty history, got %v", got)
	}

	// Identical histories: still configured order.
	for _, id := range []string{"alpha", "beta", "gamma"} {
		s.Record(id, true)
		s.Record(id, false)
	}
	if got := s.Order(); !reflect.DeepEqual(got, []string{"alpha", "beta", "gamma"}) {
		t.Fatalf("expected configured order with equal histories, got %v", got)
	}
}

// A struggling provider is deprioritized, not excluded: once the window
// slides past its failures it competes normally again.
func TestHistoryDecayAllowsRecovery(t *testing.T) {
	s := NewSelector([]string{"p1", "p2"}, 4, 0.5)

	for i := 0; i < 4; i++ {
		s.Record("p1", false)
	}
	s.Record("p2", true)
	s.Record("p2", false)

	if got := s.Order(); got[0] != "p2" {
		t.Fatalf("expected p2 first while p1 is deprioritized, got %v", got)
	}

	// p1 recovers: new successes push the failures out of the window.
	for i := 0; i < 4; i++ {
		s.Record("p1", true)
	}
	if got := s.Order(); got[0] != "p1" {
		t.Fatalf("expected recovered p1 (100%% window) ahead of p2 (50%%), got %v", got)
	}
}

func TestRecordUnknownProviderIsNoop(t *testing.T) {
	s := NewSelector([]string{"p1"}, 3, 0.5)
	s.Record("nope", true) // must not panic

	if got := s.Order(); !reflect.DeepEqual(got, []string{"p1"}) {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestHealthSnapshot(t *testing.T) {
	s := NewSelector([]string{"p1", "p2"}, 4, 0.5)

	s.Record("p1", true)
	s.Record("p1", false)
	s.Record("p1", false)
	s.Record("p1", false)

	health := s.Health()
	if len(health) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(health))
	}

	p1 := health[0]
	if p1.Provider != "p1" || p1.Successes != 1 || p1.Failures != 3 {
		t.Fatalf("unexpected p1 health: %+v", p1)
	}
	if !p1.Deprioritized {
		t.Fatalf("expected p1 deprioritized at 75%% failure rate")
	}

	p2 := health[1]
	if p2.Successes != 0 || p2.Failures != 0 || p2.Deprioritized {
		t.Fatalf("unexpected p2 health: %+v", p2)
	}
}
