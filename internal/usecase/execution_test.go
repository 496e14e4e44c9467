package usecase

import (
	"context"
	"testing"
	"time"

	"aaiti/internal/domain/models"
	"aaiti/internal/service/events"
	"aaiti/pkg/logger"
)

func newTestPipeline(ex *fakeExchange) (*ExecutionPipeline, *PositionLedger, *events.MemorySink) {
	gate := NewRiskGate(testPolicy())
	ledger := newTestLedger()
	sink := events.NewMemorySink()
	p := NewExecutionPipeline(gate, ledger, ex, sink, nil, time.Second, nopMetrics{}, logger.Nop())
	return p, ledger, sink
}

func eventKinds(sink *events.MemorySink) []models.EventKind {
	evs := sink.Events()
	kinds := make([]models.EventKind, len(evs))
	for i, ev := range evs {
		kinds[i] = ev.Kind
	}
	return kinds
}

func TestExecuteHoldShortCircuits(t *testing.T) {
	ex := &fakeExchange{result: &models.OrderResult{Status: models.OrderFilled}}
	p, ledger, _ := newTestPipeline(ex)

	res := p.Execute(context.Background(), &models.TradeSignal{
		Symbol: "BTC", Action: models.ActionHold, Confidence: 0.99,
	}, true)

	if !res.Success || res.Decision.Reason != models.ReasonHoldAction {
		t.Fatalf("result = %+v", res)
	}
	if ex.calls != 0 {
		t.Fatalf("exchange called for hold signal")
	}
	if len(ledger.Snapshot()) != 0 {
		t.Fatalf("hold signal touched the ledger")
	}
}

func TestExecuteConfidencePreFilter(t *testing.T) {
	ex := &fakeExchange{result: &models.OrderResult{Status: models.OrderFilled}}
	p, ledger, sink := newTestPipeline(ex)

	res := p.Execute(context.Background(), buySignal("BTC", 0.5, 100, 1), true)

	if res.Success || res.Decision.Reason != models.ReasonLowConfidence {
		t.Fatalf("result = %+v, want low_confidence rejection", res)
	}
	if ex.calls != 0 {
		t.Fatalf("exchange called below confidence floor")
	}
	if len(ledger.Snapshot()) != 0 {
		t.Fatalf("rejected signal touched the ledger")
	}
	kinds := eventKinds(sink)
	if len(kinds) != 1 || kinds[0] != models.EventRiskRejected {
		t.Fatalf("events = %v, want one risk_rejected", kinds)
	}
}

func TestExecuteDryRunHasNoSideEffects(t *testing.T) {
	ex := &fakeExchange{result: &models.OrderResult{Status: models.OrderFilled}}
	p, ledger, _ := newTestPipeline(ex)

	res := p.Execute(context.Background(), buySignal("BTC", 0.9, 100, 1), false)

	if !res.Success || !res.DryRun {
		t.Fatalf("result = %+v, want successful dry run", res)
	}
	if !res.Decision.Approved {
		t.Fatalf("decision = %+v, want approval", res.Decision)
	}
	if ex.calls != 0 {
		t.Fatalf("dry run hit the exchange")
	}
	if len(ledger.Snapshot()) != 0 || ledger.DailyTrades() != 0 {
		t.Fatalf("dry run mutated the ledger")
	}
}

func TestExecuteFillOpensPosition(t *testing.T) {
	ex := &fakeExchange{result: &models.OrderResult{OrderID: "ord-1", Status: models.OrderFilled}}
	p, ledger, sink := newTestPipeline(ex)

	res := p.Execute(context.Background(), buySignal("BTC", 0.9, 100, 2), true)

	if !res.Success || res.OrderStatus != models.OrderFilled {
		t.Fatalf("result = %+v", res)
	}
	if res.Position == nil || res.Position.Quantity != 2 || res.Position.EntryPrice != 100 {
		t.Fatalf("position = %+v", res.Position)
	}
	if len(ledger.Snapshot()) != 1 {
		t.Fatalf("open positions = %d, want 1", len(ledger.Snapshot()))
	}
	if ledger.DailyTrades() != 1 {
		t.Fatalf("daily trades = %d, want 1", ledger.DailyTrades())
	}
	kinds := eventKinds(sink)
	if len(kinds) != 1 || kinds[0] != models.EventFill {
		t.Fatalf("events = %v, want one fill", kinds)
	}
}

func TestExecuteSellOpensShort(t *testing.T) {
	ex := &fakeExchange{result: &models.OrderResult{Status: models.OrderFilled}}
	p, ledger, _ := newTestPipeline(ex)

	signal := buySignal("ETH", 0.9, 100, 1)
	signal.Action = models.ActionSell
	res := p.Execute(context.Background(), signal, true)

	if !res.Success {
		t.Fatalf("result = %+v", res)
	}
	if res.Position.Side != models.SideShort {
		t.Fatalf("side = %v, want short", res.Position.Side)
	}
	if len(ledger.Snapshot()) != 1 {
		t.Fatalf("open positions = %d", len(ledger.Snapshot()))
	}
}

func TestExecuteRejectedOrderLeavesLedgerUnchanged(t *testing.T) {
	ex := &fakeExchange{result: &models.OrderResult{Status: models.OrderRejected, Reason: "insufficient balance"}}
	p, ledger, _ := newTestPipeline(ex)

	res := p.Execute(context.Background(), buySignal("BTC", 0.9, 100, 1), true)

	if res.Success || res.OrderStatus != models.OrderRejected {
		t.Fatalf("result = %+v", res)
	}
	if len(ledger.Snapshot()) != 0 {
		t.Fatalf("rejected order touched the ledger")
	}
}

func TestExecuteTimeoutEmitsReconciliation(t *testing.T) {
	ex := &fakeExchange{err: context.DeadlineExceeded}
	p, ledger, sink := newTestPipeline(ex)

	res := p.Execute(context.Background(), buySignal("BTC", 0.9, 100, 1), true)

	if res.Success || res.OrderStatus != models.OrderTimedOut {
		t.Fatalf("result = %+v, want timed_out", res)
	}
	if len(ledger.Snapshot()) != 0 {
		t.Fatalf("timed-out order touched the ledger")
	}
	kinds := eventKinds(sink)
	if len(kinds) != 1 || kinds[0] != models.EventReconciliation {
		t.Fatalf("events = %v, want reconciliation_required", kinds)
	}
}

func TestExecuteRiskRejectionInsideLock(t *testing.T) {
	ex := &fakeExchange{result: &models.OrderResult{Status: models.OrderFilled}}
	p, ledger, sink := newTestPipeline(ex)

	// Fill the single per-symbol slot, then try again.
	if res := p.Execute(context.Background(), buySignal("BTC", 0.9, 100, 1), true); !res.Success {
		t.Fatalf("setup fill failed: %+v", res)
	}
	res := p.Execute(context.Background(), buySignal("BTC", 0.9, 100, 1), true)

	if res.Success || res.Decision.Reason != models.ReasonMaxPositions {
		t.Fatalf("result = %+v, want max_positions rejection", res)
	}
	if ex.calls != 1 {
		t.Fatalf("exchange calls = %d, want 1", ex.calls)
	}
	if len(ledger.Snapshot()) != 1 {
		t.Fatalf("open positions = %d, want 1", len(ledger.Snapshot()))
	}
	kinds := eventKinds(sink)
	if len(kinds) != 2 || kinds[1] != models.EventRiskRejected {
		t.Fatalf("events = %v, want fill then risk_rejected", kinds)
	}
}
