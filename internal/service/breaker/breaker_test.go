package breaker

import (
	"testing"
	"time"
)

func newTestRegistry(threshold int, cooldown time.Duration) (*Registry, *time.Time) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRegistry(threshold, cooldown)
	r.SetClock(func() time.Time { return now })
	r.Register("p")
	return r, &now
}

func TestTripAtThreshold(t *testing.T) {
	r, _ := newTestRegistry(3, time.Minute)

	r.RecordFailure("p", time.Millisecond)
	r.RecordFailure("p", time.Millisecond)
	if got := r.State("p"); got != Closed {
		t.Fatalf("state after 2 failures = %v, want Closed", got)
	}
	r.RecordFailure("p", time.Millisecond)
	if got := r.State("p"); got != Open {
		t.Fatalf("state after 3 failures = %v, want Open", got)
	}
}

func TestSuccessResetsStreak(t *testing.T) {
	r, _ := newTestRegistry(3, time.Minute)

	r.RecordFailure("p", 0)
	r.RecordFailure("p", 0)
	r.RecordSuccess("p", 0)
	r.RecordFailure("p", 0)
	r.RecordFailure("p", 0)
	if got := r.State("p"); got != Closed {
		t.Fatalf("state = %v, want Closed after streak reset", got)
	}
}

func TestCooldownPromotesToHalfOpen(t *testing.T) {
	r, now := newTestRegistry(1, 30*time.Second)

	r.RecordFailure("p", 0)
	if got := r.State("p"); got != Open {
		t.Fatalf("state = %v, want Open", got)
	}

	*now = now.Add(29 * time.Second)
	if got := r.State("p"); got != Open {
		t.Fatalf("state before cooldown = %v, want Open", got)
	}

	*now = now.Add(time.Second)
	if got := r.State("p"); got != HalfOpen {
		t.Fatalf("state after cooldown = %v, want HalfOpen", got)
	}
}

func TestHalfOpenProbeOutcomes(t *testing.T) {
	r, now := newTestRegistry(1, 10*time.Second)

	// Probe failure reopens immediately.
	r.RecordFailure("p", 0)
	*now = now.Add(10 * time.Second)
	if got := r.State("p"); got != HalfOpen {
		t.Fatalf("state = %v, want HalfOpen", got)
	}
	r.RecordFailure("p", 0)
	if got := r.State("p"); got != Open {
		t.Fatalf("state after failed probe = %v, want Open", got)
	}

	// Probe success closes.
	*now = now.Add(10 * time.Second)
	if got := r.State("p"); got != HalfOpen {
		t.Fatalf("state = %v, want HalfOpen", got)
	}
	r.RecordSuccess("p", 0)
	if got := r.State("p"); got != Closed {
		t.Fatalf("state after successful probe = %v, want Closed", got)
	}
}

func TestForceProbe(t *testing.T) {
	r, _ := newTestRegistry(1, time.Hour)

	r.RecordFailure("p", 0)
	if got := r.State("p"); got != Open {
		t.Fatalf("state = %v, want Open", got)
	}
	r.ForceProbe("p")
	if got := r.State("p"); got != HalfOpen {
		t.Fatalf("state after force probe = %v, want HalfOpen", got)
	}
}

func TestOnChangeFires(t *testing.T) {
	r, _ := newTestRegistry(1, time.Minute)

	type change struct{ from, to State }
	var changes []change
	r.WithOnChange(func(id string, from, to State) {
		if id != "p" {
			t.Fatalf("unexpected provider %s", id)
		}
		changes = append(changes, change{from, to})
	})

	r.RecordFailure("p", 0)
	r.ForceProbe("p")
	r.RecordSuccess("p", 0)

	want := []change{{Closed, Open}, {Open, HalfOpen}, {HalfOpen, Closed}}
	if len(changes) != len(want) {
		t.Fatalf("got %d transitions, want %d", len(changes), len(want))
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Fatalf("transition %d = %v, want %v", i, changes[i], want[i])
		}
	}
}

func TestHealthSnapshot(t *testing.T) {
	r, _ := newTestRegistry(3, time.Minute)

	r.RecordSuccess("p", 10*time.Millisecond)
	r.RecordFailure("p", 30*time.Millisecond)

	h, ok := r.Health("p")
	if !ok {
		t.Fatalf("expected health record")
	}
	if h.RequestCount != 2 || h.ErrorCount != 1 {
		t.Fatalf("counts = %d/%d, want 2/1", h.RequestCount, h.ErrorCount)
	}
	if h.AvgLatencyMs != 20 {
		t.Fatalf("avg latency = %v, want 20", h.AvgLatencyMs)
	}
	if h.State != "closed" {
		t.Fatalf("state = %s, want closed", h.State)
	}
}
