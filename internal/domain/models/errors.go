package models

import (
	"fmt"
	"strings"
)

// ProviderAttempt records why one provider in the failover chain failed.
type ProviderAttempt struct {
	ProviderID string `json:"provider_id"`
	Reason     string `json:"reason"`
}

// FetchFailed is the terminal data-fetch error: every configured provider
// failed. It carries the per-provider failure chain for diagnostics.
type FetchFailed struct {
	Key      string
	Attempts []ProviderAttempt
}

func (e *FetchFailed) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %s", a.ProviderID, a.Reason))
	}
	return fmt.Sprintf("fetch failed for %s: [%s]", e.Key, strings.Join(parts, "; "))
}

// RateLimited signals a provider skip due to budget exhaustion. It is
// internal to the failover router and never surfaces past it.
type RateLimited struct {
	ProviderID string
}

func (e *RateLimited) Error() string {
	return fmt.Sprintf("rate limited: %s", e.ProviderID)
}

// CircuitOpen signals a provider skip due to an open circuit. Informational
// unless every provider is open or failed.
type CircuitOpen struct {
	ProviderID string
}

func (e *CircuitOpen) Error() string {
	return fmt.Sprintf("circuit open: %s", e.ProviderID)
}

// ExecutionFailed means the exchange rejected the order or the submission
// errored; the ledger is guaranteed unchanged.
type ExecutionFailed struct {
	Reason string
}

func (e *ExecutionFailed) Error() string {
	return fmt.Sprintf("execution failed: %s", e.Reason)
}

// ExecutionUnknown means the submission timed out with an uncertain fill
// state. It requires reconciliation before any corrective order is sent.
type ExecutionUnknown struct {
	OrderID string
}

func (e *ExecutionUnknown) Error() string {
	return fmt.Sprintf("execution state unknown for order %s: reconciliation required", e.OrderID)
}
