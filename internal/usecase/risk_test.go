package usecase

import (
	"testing"

	"aaiti/internal/domain/models"
)

func testPolicy() RiskPolicy {
	return RiskPolicy{
		MinConfidence:         0.7,
		MaxPositionsPerSymbol: 1,
		MaxPortfolioExposure:  10000,
		MaxDailyTrades:        5,
		MaxPositionSize:       100,
		DefaultOrderNotional:  1000,
	}
}

func buySignal(symbol string, confidence, price, qty float64) *models.TradeSignal {
	return &models.TradeSignal{
		Symbol:         symbol,
		Action:         models.ActionBuy,
		Confidence:     confidence,
		SuggestedPrice: price,
		Quantity:       qty,
	}
}

func TestRiskRejectsLowConfidence(t *testing.T) {
	g := NewRiskGate(testPolicy())
	d := g.Evaluate(buySignal("BTC", 0.69, 100, 1), nil, 0)
	if d.Approved || d.Reason != models.ReasonLowConfidence {
		t.Fatalf("decision = %+v, want low_confidence rejection", d)
	}
}

func TestRiskRejectsMaxPositionsPerSymbol(t *testing.T) {
	g := NewRiskGate(testPolicy())
	positions := []models.Position{
		{Symbol: "BTC", Quantity: 1, EntryPrice: 100, Status: models.PositionOpen},
	}
	d := g.Evaluate(buySignal("BTC", 0.9, 100, 1), positions, 0)
	if d.Approved || d.Reason != models.ReasonMaxPositions {
		t.Fatalf("decision = %+v, want max_positions rejection", d)
	}

	// A different symbol is unaffected.
	d = g.Evaluate(buySignal("ETH", 0.9, 100, 1), positions, 0)
	if !d.Approved {
		t.Fatalf("decision = %+v, want approval for other symbol", d)
	}
}

func TestRiskRejectsExposure(t *testing.T) {
	g := NewRiskGate(testPolicy())
	positions := []models.Position{
		{Symbol: "ETH", Quantity: 99, EntryPrice: 100, Status: models.PositionOpen}, // 9900 exposure
	}
	// Proposed 2*100 = 200 pushes total to 10100 > 10000.
	d := g.Evaluate(buySignal("BTC", 0.9, 100, 2), positions, 0)
	if d.Approved || d.Reason != models.ReasonMaxExposure {
		t.Fatalf("decision = %+v, want max_exposure rejection", d)
	}

	// Exactly at the cap passes.
	d = g.Evaluate(buySignal("BTC", 0.9, 100, 1), positions, 0)
	if !d.Approved {
		t.Fatalf("decision = %+v, want approval at cap", d)
	}
}

func TestRiskClosedPositionsIgnored(t *testing.T) {
	g := NewRiskGate(testPolicy())
	positions := []models.Position{
		{Symbol: "BTC", Quantity: 100, EntryPrice: 100, Status: models.PositionClosed},
	}
	d := g.Evaluate(buySignal("BTC", 0.9, 100, 1), positions, 0)
	if !d.Approved {
		t.Fatalf("decision = %+v, closed position counted against limits", d)
	}
}

func TestRiskRejectsDailyTradeCap(t *testing.T) {
	g := NewRiskGate(testPolicy())
	d := g.Evaluate(buySignal("BTC", 0.9, 100, 1), nil, 5)
	if d.Approved || d.Reason != models.ReasonMaxDailyTrades {
		t.Fatalf("decision = %+v, want daily_trades rejection", d)
	}
}

func TestRiskSizingDefaultNotional(t *testing.T) {
	g := NewRiskGate(testPolicy())
	// No signal quantity: 1000 notional at price 50 implies 20 units.
	d := g.Evaluate(buySignal("BTC", 0.9, 50, 0), nil, 0)
	if !d.Approved {
		t.Fatalf("decision = %+v, want approval", d)
	}
	if d.AdjustedQuantity != 20 {
		t.Fatalf("adjusted quantity = %v, want 20", d.AdjustedQuantity)
	}
}

func TestRiskSizingCappedAtMaxPositionSize(t *testing.T) {
	g := NewRiskGate(testPolicy())
	d := g.Evaluate(buySignal("BTC", 0.9, 1, 500), nil, 0)
	if !d.Approved {
		t.Fatalf("decision = %+v, want approval", d)
	}
	if d.AdjustedQuantity != 100 {
		t.Fatalf("adjusted quantity = %v, want cap 100", d.AdjustedQuantity)
	}
}
