package usecase

import (
	"aaiti/internal/domain/models"
)

// RiskPolicy holds the hard limits every signal is checked against.
type RiskPolicy struct {
	MinConfidence         float64
	MaxPositionsPerSymbol int
	MaxPortfolioExposure  float64
	MaxDailyTrades        int
	MaxPositionSize       float64
	DefaultOrderNotional  float64
}

// RiskGate evaluates trade signals against policy. Every check must pass;
// the first failure short-circuits with its specific reason. Rejections are
// expected control flow, never logged as errors.
type RiskGate struct {
	policy RiskPolicy
}

func NewRiskGate(policy RiskPolicy) *RiskGate {
	return &RiskGate{policy: policy}
}

func (g *RiskGate) Policy() RiskPolicy {
	return g.policy
}

// Evaluate checks the signal against the open-position snapshot and today's
// trade count. Approved decisions carry the capped quantity; quantity never
// exceeds MaxPositionSize regardless of signal content.
func (g *RiskGate) Evaluate(signal *models.TradeSignal, positions []models.Position, dailyTrades int) models.RiskDecision {
	if signal.Confidence < g.policy.MinConfidence {
		return models.RiskDecision{Approved: false, Reason: models.ReasonLowConfidence}
	}

	openForSymbol := 0
	exposure := 0.0
	for i := range positions {
		if positions[i].Status != models.PositionOpen {
			continue
		}
		exposure += positions[i].Notional()
		if positions[i].Symbol == signal.Symbol {
			openForSymbol++
		}
	}

	if g.policy.MaxPositionsPerSymbol > 0 && openForSymbol >= g.policy.MaxPositionsPerSymbol {
		return models.RiskDecision{Approved: false, Reason: models.ReasonMaxPositions}
	}

	quantity := g.size(signal)
	proposed := quantity * signal.SuggestedPrice
	if g.policy.MaxPortfolioExposure > 0 && exposure+proposed > g.policy.MaxPortfolioExposure {
		return models.RiskDecision{Approved: false, Reason: models.ReasonMaxExposure}
	}

	if g.policy.MaxDailyTrades > 0 && dailyTrades >= g.policy.MaxDailyTrades {
		return models.RiskDecision{Approved: false, Reason: models.ReasonMaxDailyTrades}
	}

	return models.RiskDecision{Approved: true, AdjustedQuantity: quantity}
}

// size derives the order quantity: the signal-implied size when present,
// otherwise policy notional at the suggested price, capped at
// MaxPositionSize.
func (g *RiskGate) size(signal *models.TradeSignal) float64 {
	quantity := signal.Quantity
	if quantity <= 0 && signal.SuggestedPrice > 0 {
		quantity = g.policy.DefaultOrderNotional / signal.SuggestedPrice
	}
	if g.policy.MaxPositionSize > 0 && quantity > g.policy.MaxPositionSize {
		quantity = g.policy.MaxPositionSize
	}
	return quantity
}
