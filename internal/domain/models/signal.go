package models

import "time"

// Action is the direction a trade signal asks for.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// TradeSignal is the immutable output of a strategy or model,
// consumed exactly once by the execution pipeline.
type TradeSignal struct {
	Symbol         string    `json:"symbol"`
	Action         Action    `json:"action"`
	Confidence     float64   `json:"confidence"` // [0,1]
	SuggestedPrice float64   `json:"suggested_price"`
	Quantity       float64   `json:"quantity,omitempty"` // optional signal-implied size
	Timestamp      time.Time `json:"timestamp"`
	SourceModelID  string    `json:"source_model_id"`
}

// RiskDecision is produced fresh per evaluation and never mutated after.
type RiskDecision struct {
	Approved         bool    `json:"approved"`
	Reason           string  `json:"reason,omitempty"`
	AdjustedQuantity float64 `json:"adjusted_quantity,omitempty"`
}

// Risk rejection reasons. Rejections are expected control flow, not faults.
const (
	ReasonLowConfidence  = "low_confidence"
	ReasonMaxPositions   = "max_positions_per_symbol"
	ReasonMaxExposure    = "max_portfolio_exposure"
	ReasonMaxDailyTrades = "max_daily_trades"
	ReasonHoldAction     = "hold_action"
)

// OrderStatus tracks a submitted order's lifecycle.
type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderFilled   OrderStatus = "filled"
	OrderRejected OrderStatus = "rejected"
	OrderTimedOut OrderStatus = "timed_out"
)

// OrderResult is what an exchange adapter reports back for a submission.
type OrderResult struct {
	OrderID   string      `json:"order_id"`
	Status    OrderStatus `json:"status"`
	FillPrice float64     `json:"fill_price,omitempty"`
	FillQty   float64     `json:"fill_qty,omitempty"`
	Reason    string      `json:"reason,omitempty"`
}

// ExecutionResult is the pipeline's terminal answer for one signal.
type ExecutionResult struct {
	Success     bool         `json:"success"`
	DryRun      bool         `json:"dry_run"`
	Decision    RiskDecision `json:"decision"`
	OrderStatus OrderStatus  `json:"order_status,omitempty"`
	Reason      string       `json:"reason,omitempty"`
	Position    *Position    `json:"position,omitempty"`
}
