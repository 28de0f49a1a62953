package collector

import (
	"sort"
	"sync"
)

// Selector orders providers by recent health so the engine favors a source
// that has been succeeding over one that has been struggling. Each provider
// keeps a sliding window of its last N outcomes; a provider whose windowed
// failure rate exceeds the threshold is deprioritized behind all healthy
// providers but never excluded, so it recovers as the window slides.
type Selector struct {
	window    int
	threshold float64 // failure rate above which a provider is deprioritized
	order     []string

	histories map[string]*history
}

// history is a fixed-size ring of attempt outcomes, one lock per provider.
type history struct {
	mu       sync.Mutex
	outcomes []bool
	next     int
	filled   int
}

// ProviderHealth is a read-only snapshot of one provider's recent history.
type ProviderHealth struct {
	Provider      string  `json:"provider"`
	Window        int     `json:"window"`
	Successes     int     `json:"successes"`
	Failures      int     `json:"failures"`
	SuccessRate   float64 `json:"successRate"`
	Deprioritized bool    `json:"deprioritized"`
}

// NewSelector creates a Selector for the given providers. providerIDs fixes
// the deterministic tie-break order (stable configuration order).
func NewSelector(providerIDs []string, window int, failureThreshold float64) *Selector {
	if window < 1 {
		window = 10
	}
	if failureThreshold <= 0 || failureThreshold > 1 {
		failureThreshold = 0.5
	}

	histories := make(map[string]*history, len(providerIDs))
	order := make([]string, len(providerIDs))
	copy(order, providerIDs)
	for _, id := range providerIDs {
		histories[id] = &history{outcomes: make([]bool, window)}
	}

	return &Selector{
		window:    window,
		threshold: failureThreshold,
		order:     order,
		histories: histories,
	}
}

// Record adds one outcome for a provider. The orchestrator calls this once
// per provider per target attempt sequence, so an exhausted retry loop
// counts as a single failure.
func (s *Selector) Record(providerID string, success bool) {
	h, ok := s.histories[providerID]
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.outcomes[h.next] = success
	h.next = (h.next + 1) % len(h.outcomes)
	if h.filled < len(h.outcomes) {
		h.filled++
	}
}

// rate returns the windowed success rate and sample count. With no samples
// the provider gets the benefit of the doubt.
func (s *Selector) rate(providerID string) (float64, int) {
	h := s.histories[providerID]

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.filled == 0 {
		return 1.0, 0
	}
	successes := 0
	for i := 0; i < h.filled; i++ {
		if h.outcomes[i] {
			successes++
		}
	}
	return float64(successes) / float64(h.filled), h.filled
}

// Order returns provider ids for the next target, best recent success rate
// first. Healthy providers always precede deprioritized ones; equal
// histories fall back to configured order.
func (s *Selector) Order() []string {
	type ranked struct {
		id      string
		rate    float64
		healthy bool
	}

	rs := make([]ranked, 0, len(s.order))
	for _, id := range s.order {
		rate, samples := s.rate(id)
		healthy := samples == 0 || (1.0-rate) <= s.threshold
		rs = append(rs, ranked{id: id, rate: rate, healthy: healthy})
	}

	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].healthy != rs[j].healthy {
			return rs[i].healthy
		}
		return rs[i].rate > rs[j].rate
	})

	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.id
	}
	return out
}

// Health reports per-provider history snapshots in configured order.
func (s *Selector) Health() []ProviderHealth {
	out := make([]ProviderHealth, 0, len(s.order))
	for _, id := range s.order {
		h := s.histories[id]

		h.mu.Lock()
		successes := 0
		for i := 0; i < h.filled; i++ {
			if h.outcomes[i] {
				successes++
			}
		}
		filled := h.filled
		h.mu.Unlock()

		rate := 1.0
		if filled > 0 {
			rate = float64(successes) / float64(filled)
		}
		out = append(out, ProviderHealth{
			Provider:      id,
			Window:        s.window,
			Successes:     successes,
			Failures:      filled - successes,
			SuccessRate:   rate,
			Deprioritized: filled > 0 && (1.0-rate) > s.threshold,
		})
	}
	return out
}
