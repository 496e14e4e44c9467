package models

import "time"

// Side is the direction of an open position.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// PositionStatus marks whether a position is still live.
type PositionStatus string

const (
	PositionOpen   PositionStatus = "open"
	PositionClosed PositionStatus = "closed"
)

// Fill is a confirmed execution applied to the ledger.
type Fill struct {
	OrderID  string    `json:"order_id"`
	Symbol   string    `json:"symbol"`
	Side     Side      `json:"side"`
	Quantity float64   `json:"quantity"`
	Price    float64   `json:"price"`
	FilledAt time.Time `json:"filled_at"`
}

// Position is owned exclusively by the ledger. Quantity stays > 0 while
// open; closing freezes it at its last value for audit.
type Position struct {
	ID         string         `json:"id"`
	Symbol     string         `json:"symbol"`
	Side       Side           `json:"side"`
	Quantity   float64        `json:"quantity"`
	EntryPrice float64        `json:"entry_price"`
	StopLoss   float64        `json:"stop_loss,omitempty"`
	TakeProfit float64        `json:"take_profit,omitempty"`
	OpenedAt   time.Time      `json:"opened_at"`
	Status     PositionStatus `json:"status"`
}

// Notional returns the position's market value at its entry price.
func (p *Position) Notional() float64 {
	return p.Quantity * p.EntryPrice
}

// ClosedPosition is the archived form of a position after close.
type ClosedPosition struct {
	Position
	ExitPrice   float64   `json:"exit_price"`
	RealizedPnL float64   `json:"realized_pnl"`
	CloseReason string    `json:"close_reason"`
	ClosedAt    time.Time `json:"closed_at"`
}
