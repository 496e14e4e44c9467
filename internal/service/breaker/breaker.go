package breaker

import (
	"sync"
	"time"

	"aaiti/internal/domain/models"
)

// State is the circuit breaker state for one provider.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// Valid transitions:
//
//	Closed   -> Open      on consecutive failures reaching the threshold
//	Open     -> HalfOpen  after the cooldown elapses (or a forced probe)
//	HalfOpen -> Closed    on probe success
//	HalfOpen -> Open      on probe failure
type health struct {
	mu                  sync.Mutex
	state               State
	consecutiveFailures int
	openedAt            time.Time
	requestCount        int64
	errorCount          int64
	latencySumMs        float64
}

// OnChange is invoked after every state transition. It runs while the
// provider lock is held; keep callbacks cheap.
type OnChange func(providerID string, from, to State)

// Registry tracks breaker state per provider. One health record per
// configured provider, each with its own lock.
type Registry struct {
	threshold int
	cooldown  time.Duration
	clock     func() time.Time
	onChange  OnChange

	providers map[string]*health
}

func NewRegistry(threshold int, cooldown time.Duration) *Registry {
	if threshold <= 0 {
		threshold = 3
	}
	return &Registry{
		threshold: threshold,
		cooldown:  cooldown,
		clock:     time.Now,
		providers: make(map[string]*health),
	}
}

// Register adds a provider in Closed state. Must be called before traffic.
func (r *Registry) Register(providerID string) {
	r.providers[providerID] = &health{state: Closed}
}

// WithOnChange sets the transition callback.
func (r *Registry) WithOnChange(fn OnChange) *Registry {
	r.onChange = fn
	return r
}

// SetClock overrides the time source for tests.
func (r *Registry) SetClock(fn func() time.Time) {
	r.clock = fn
}

// State returns the provider's current state, promoting Open to HalfOpen
// once the cooldown has elapsed.
func (r *Registry) State(providerID string) State {
	h, ok := r.providers[providerID]
	if !ok {
		return Closed
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	r.maybeHalfOpen(providerID, h)
	return h.state
}

// ForceProbe moves an Open provider to HalfOpen before its cooldown, used
// when every configured provider is open and the router must try someone.
func (r *Registry) ForceProbe(providerID string) {
	h, ok := r.providers[providerID]
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == Open {
		r.transition(providerID, h, HalfOpen)
	}
}

// RecordSuccess resets the failure streak and closes a half-open circuit.
func (r *Registry) RecordSuccess(providerID string, latency time.Duration) {
	h, ok := r.providers[providerID]
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requestCount++
	h.latencySumMs += float64(latency.Milliseconds())
	h.consecutiveFailures = 0
	if h.state == HalfOpen {
		r.transition(providerID, h, Closed)
	}
}

// RecordFailure bumps the failure streak; at the threshold the circuit
// opens. A failed half-open probe reopens immediately.
func (r *Registry) RecordFailure(providerID string, latency time.Duration) {
	h, ok := r.providers[providerID]
	if !ok {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requestCount++
	h.errorCount++
	h.latencySumMs += float64(latency.Milliseconds())
	h.consecutiveFailures++

	switch h.state {
	case HalfOpen:
		r.transition(providerID, h, Open)
	case Closed:
		if h.consecutiveFailures >= r.threshold {
			r.transition(providerID, h, Open)
		}
	}
}

// Health returns a snapshot for one provider.
func (r *Registry) Health(providerID string) (models.ProviderHealth, bool) {
	h, ok := r.providers[providerID]
	if !ok {
		return models.ProviderHealth{}, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	r.maybeHalfOpen(providerID, h)
	return r.snapshotLocked(providerID, h), true
}

// Snapshot returns health for all registered providers.
func (r *Registry) Snapshot() []models.ProviderHealth {
	out := make([]models.ProviderHealth, 0, len(r.providers))
	for id, h := range r.providers {
		h.mu.Lock()
		r.maybeHalfOpen(id, h)
		out = append(out, r.snapshotLocked(id, h))
		h.mu.Unlock()
	}
	return out
}

func (r *Registry) snapshotLocked(id string, h *health) models.ProviderHealth {
	avg := 0.0
	if h.requestCount > 0 {
		avg = h.latencySumMs / float64(h.requestCount)
	}
	return models.ProviderHealth{
		ProviderID:          id,
		State:               h.state.String(),
		ConsecutiveFailures: h.consecutiveFailures,
		OpenedAt:            h.openedAt,
		RequestCount:        h.requestCount,
		ErrorCount:          h.errorCount,
		AvgLatencyMs:        avg,
	}
}

func (r *Registry) maybeHalfOpen(id string, h *health) {
	if h.state == Open && r.cooldown > 0 && r.clock().Sub(h.openedAt) >= r.cooldown {
		r.transition(id, h, HalfOpen)
	}
}

func (r *Registry) transition(id string, h *health, to State) {
	from := h.state
	if from == to {
		return
	}
	h.state = to
	if to == Open {
		h.openedAt = r.clock()
	}
	if r.onChange != nil {
		r.onChange(id, from, to)
	}
}
