package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"aaiti/internal/domain/models"
	"aaiti/internal/service/breaker"
	"aaiti/internal/service/ratelimit"
)

func TestFailoverSecondProviderServes(t *testing.T) {
	a := &fakeAdapter{id: "a", fail: true}
	b := &fakeAdapter{id: "b", price: 50000}
	router, _ := newTestRouter(a, b)

	q, err := router.FetchPrice(context.Background(), "BTC", "USD")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if q.ProviderID != "b" || q.Price != 50000 {
		t.Fatalf("quote from %s price %v, want b/50000", q.ProviderID, q.Price)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Fatalf("calls a=%d b=%d, want 1/1", a.calls, b.calls)
	}
}

func TestFailoverAllProvidersFail(t *testing.T) {
	a := &fakeAdapter{id: "a", fail: true}
	b := &fakeAdapter{id: "b", fail: true}
	router, _ := newTestRouter(a, b)

	_, err := router.FetchPrice(context.Background(), "BTC", "USD")
	var ff *models.FetchFailed
	if !errors.As(err, &ff) {
		t.Fatalf("err = %T, want FetchFailed", err)
	}
	if len(ff.Attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(ff.Attempts))
	}
	if ff.Attempts[0].ProviderID != "a" || ff.Attempts[1].ProviderID != "b" {
		t.Fatalf("attempt order = %v", ff.Attempts)
	}
}

func TestFailoverSkipsOpenCircuit(t *testing.T) {
	a := &fakeAdapter{id: "a", fail: true}
	b := &fakeAdapter{id: "b", price: 3000}
	router, breakers := newTestRouter(a, b)

	for i := 0; i < 3; i++ {
		breakers.RecordFailure("a", 0)
	}
	if breakers.State("a") != breaker.Open {
		t.Fatalf("precondition: a not open")
	}

	q, err := router.FetchPrice(context.Background(), "ETH", "USD")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if q.ProviderID != "b" {
		t.Fatalf("quote from %s, want b", q.ProviderID)
	}
	if a.calls != 0 {
		t.Fatalf("open provider was called %d times", a.calls)
	}
}

func TestFailoverForcedProbeWhenAllOpen(t *testing.T) {
	a := &fakeAdapter{id: "a", price: 100}
	b := &fakeAdapter{id: "b", price: 200}
	router, breakers := newTestRouter(a, b)

	for i := 0; i < 3; i++ {
		breakers.RecordFailure("a", 0)
		breakers.RecordFailure("b", 0)
	}

	// Both circuits open: the highest-priority one is probed instead of
	// returning a guaranteed failure.
	q, err := router.FetchPrice(context.Background(), "BTC", "USD")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if q.ProviderID != "a" {
		t.Fatalf("probe hit %s, want a", q.ProviderID)
	}
	if breakers.State("a") != breaker.Closed {
		t.Fatalf("successful probe left a %v, want Closed", breakers.State("a"))
	}
	if breakers.State("b") != breaker.Open {
		t.Fatalf("b state = %v, want still Open", breakers.State("b"))
	}
}

func TestFailoverRateLimitedProviderSkipped(t *testing.T) {
	a := &fakeAdapter{id: "a", price: 100}
	b := &fakeAdapter{id: "b", price: 200}
	limiter := ratelimit.New()
	limiter.Register("a", 1, 0)
	router, _ := newTestRouterWithLimiter(limiter, a, b)

	if q, err := router.FetchPrice(context.Background(), "BTC", "USD"); err != nil || q.ProviderID != "a" {
		t.Fatalf("first fetch = %v/%v, want a", q, err)
	}

	// a's budget is spent; the chain moves on without recording a breaker
	// failure against it.
	q, err := router.FetchPrice(context.Background(), "BTC", "USD")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if q.ProviderID != "b" {
		t.Fatalf("second fetch from %s, want b", q.ProviderID)
	}
	if a.calls != 1 {
		t.Fatalf("a called %d times, want 1", a.calls)
	}
}

func TestFailoverRateLimitReasonInTerminalError(t *testing.T) {
	a := &fakeAdapter{id: "a", price: 100}
	limiter := ratelimit.New()
	limiter.Register("a", 0, 0)
	router, _ := newTestRouterWithLimiter(limiter, a)

	_, err := router.FetchPrice(context.Background(), "BTC", "USD")
	var ff *models.FetchFailed
	if !errors.As(err, &ff) {
		t.Fatalf("err = %T, want FetchFailed", err)
	}
	if len(ff.Attempts) != 1 || !strings.Contains(ff.Attempts[0].Reason, "rate limited") {
		t.Fatalf("attempts = %v, want rate limited reason", ff.Attempts)
	}
}

func TestFailoverHealthSnapshot(t *testing.T) {
	a := &fakeAdapter{id: "a", fail: true}
	router, _ := newTestRouter(a)

	_, _ = router.FetchPrice(context.Background(), "BTC", "USD")
	health := router.Health()
	if len(health) != 1 {
		t.Fatalf("health entries = %d, want 1", len(health))
	}
	if health[0].ErrorCount != 1 {
		t.Fatalf("error count = %d, want 1", health[0].ErrorCount)
	}
}
