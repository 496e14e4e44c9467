package usecase

import (
	"context"
	"testing"
	"time"

	"aaiti/internal/domain/models"
	"aaiti/pkg/logger"
)

func newTestLedger() *PositionLedger {
	return NewPositionLedger(nil, nopMetrics{}, logger.Nop())
}

func fill(symbol string, side models.Side, qty, price float64) *models.Fill {
	return &models.Fill{
		OrderID:  "o1",
		Symbol:   symbol,
		Side:     side,
		Quantity: qty,
		Price:    price,
		FilledAt: time.Now().UTC(),
	}
}

func TestLedgerOpensPosition(t *testing.T) {
	l := newTestLedger()
	p := l.OpenOrAdjust(fill("BTC", models.SideLong, 2, 100))

	if p.ID == "" || p.Status != models.PositionOpen {
		t.Fatalf("position = %+v", p)
	}
	if p.Quantity != 2 || p.EntryPrice != 100 {
		t.Fatalf("qty/entry = %v/%v, want 2/100", p.Quantity, p.EntryPrice)
	}
	if got := len(l.Snapshot()); got != 1 {
		t.Fatalf("open positions = %d, want 1", got)
	}
}

func TestLedgerAdjustsSameSymbolAndSide(t *testing.T) {
	l := newTestLedger()
	first := l.OpenOrAdjust(fill("BTC", models.SideLong, 1, 100))
	second := l.OpenOrAdjust(fill("BTC", models.SideLong, 3, 200))

	if second.ID != first.ID {
		t.Fatalf("adjust created a new position")
	}
	if second.Quantity != 4 {
		t.Fatalf("quantity = %v, want 4", second.Quantity)
	}
	// Weighted entry: (1*100 + 3*200) / 4 = 175.
	if second.EntryPrice != 175 {
		t.Fatalf("entry price = %v, want 175", second.EntryPrice)
	}

	// Opposite side opens its own position.
	short := l.OpenOrAdjust(fill("BTC", models.SideShort, 1, 150))
	if short.ID == first.ID {
		t.Fatalf("short merged into long position")
	}
	if got := len(l.Snapshot()); got != 2 {
		t.Fatalf("open positions = %d, want 2", got)
	}
}

func TestLedgerSnapshotIsACopy(t *testing.T) {
	l := newTestLedger()
	l.OpenOrAdjust(fill("BTC", models.SideLong, 1, 100))

	snap := l.Snapshot()
	snap[0].Quantity = 999

	if got := l.Snapshot()[0].Quantity; got != 1 {
		t.Fatalf("ledger mutated through snapshot: quantity = %v", got)
	}
}

func TestLedgerCloseLong(t *testing.T) {
	l := newTestLedger()
	p := l.OpenOrAdjust(fill("BTC", models.SideLong, 2, 100))

	closed, err := l.Close(context.Background(), p.ID, 150, "take_profit")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.RealizedPnL != 100 {
		t.Fatalf("pnl = %v, want 100", closed.RealizedPnL)
	}
	if closed.Quantity != 2 {
		t.Fatalf("closed quantity = %v, want frozen at 2", closed.Quantity)
	}
	if closed.Status != models.PositionClosed {
		t.Fatalf("status = %v", closed.Status)
	}
	if got := len(l.Snapshot()); got != 0 {
		t.Fatalf("open positions = %d after close", got)
	}
	if got := len(l.Closed()); got != 1 {
		t.Fatalf("closed positions = %d, want 1", got)
	}

	// Closing twice fails.
	if _, err := l.Close(context.Background(), p.ID, 150, "again"); err == nil {
		t.Fatalf("second close succeeded")
	}
}

func TestLedgerCloseShortNegatesPnL(t *testing.T) {
	l := newTestLedger()
	p := l.OpenOrAdjust(fill("ETH", models.SideShort, 5, 100))

	closed, err := l.Close(context.Background(), p.ID, 90, "manual")
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	// Short profits when price drops: (90-100)*5 negated = 50.
	if closed.RealizedPnL != 50 {
		t.Fatalf("pnl = %v, want 50", closed.RealizedPnL)
	}
}

func TestLedgerUpdateStops(t *testing.T) {
	l := newTestLedger()
	p := l.OpenOrAdjust(fill("BTC", models.SideLong, 1, 100))

	if err := l.UpdateStops(p.ID, 90, 120); err != nil {
		t.Fatalf("update stops: %v", err)
	}
	snap := l.Snapshot()[0]
	if snap.StopLoss != 90 || snap.TakeProfit != 120 {
		t.Fatalf("stops = %v/%v, want 90/120", snap.StopLoss, snap.TakeProfit)
	}

	// Zero leaves a stop unchanged.
	if err := l.UpdateStops(p.ID, 0, 130); err != nil {
		t.Fatalf("update stops: %v", err)
	}
	snap = l.Snapshot()[0]
	if snap.StopLoss != 90 || snap.TakeProfit != 130 {
		t.Fatalf("stops = %v/%v, want 90/130", snap.StopLoss, snap.TakeProfit)
	}

	if err := l.UpdateStops("missing", 1, 2); err == nil {
		t.Fatalf("update on unknown position succeeded")
	}
}

func TestLedgerDailyTradesRollover(t *testing.T) {
	now := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	l := newTestLedger()
	l.SetClock(func() time.Time { return now })

	l.OpenOrAdjust(fill("BTC", models.SideLong, 1, 100))
	l.OpenOrAdjust(fill("BTC", models.SideLong, 1, 100))
	if got := l.DailyTrades(); got != 2 {
		t.Fatalf("daily trades = %d, want 2", got)
	}

	// UTC midnight resets the counter.
	now = now.Add(2 * time.Hour)
	if got := l.DailyTrades(); got != 0 {
		t.Fatalf("daily trades after rollover = %d, want 0", got)
	}
	l.OpenOrAdjust(fill("BTC", models.SideLong, 1, 100))
	if got := l.DailyTrades(); got != 1 {
		t.Fatalf("daily trades = %d, want 1", got)
	}
}
