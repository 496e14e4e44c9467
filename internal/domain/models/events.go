package models

import "time"

// EventKind classifies emitted events.
type EventKind string

const (
	EventFill           EventKind = "fill"
	EventBreakerChange  EventKind = "breaker_state_change"
	EventRiskRejected   EventKind = "risk_rejected"
	EventReconciliation EventKind = "reconciliation_required"
	EventPositionClosed EventKind = "position_closed"
)

// Event is the structured record emitted on fills, breaker transitions and
// risk rejections for external logging/alerting. The core never persists
// or renders these itself.
type Event struct {
	Kind      EventKind   `json:"kind"`
	Symbol    string      `json:"symbol,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent stamps an event with the current time.
func NewEvent(kind EventKind, symbol string, payload interface{}) Event {
	return Event{Kind: kind, Symbol: symbol, Payload: payload, Timestamp: time.Now().UTC()}
}
