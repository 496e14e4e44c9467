package exchange

import (
	"context"
	"fmt"
	"sync/atomic"

	"aaiti/internal/domain/models"

	"github.com/google/uuid"
)

// Paper is a simulated exchange that fills every valid order at the
// submitted price. Default adapter; no real money moves through it.
type Paper struct {
	id        string
	submitted atomic.Int64
}

func NewPaper() *Paper {
	return &Paper{id: "paper"}
}

func (p *Paper) ID() string { return p.id }

// SubmitOrder fills immediately at the submitted price.
func (p *Paper) SubmitOrder(ctx context.Context, symbol string, side models.Side, quantity, price float64) (*models.OrderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return &models.OrderResult{
			OrderID: uuid.NewString(),
			Status:  models.OrderRejected,
			Reason:  "quantity must be positive",
		}, nil
	}
	if price <= 0 {
		return &models.OrderResult{
			OrderID: uuid.NewString(),
			Status:  models.OrderRejected,
			Reason:  fmt.Sprintf("no reference price for %s", symbol),
		}, nil
	}

	p.submitted.Add(1)
	return &models.OrderResult{
		OrderID:   uuid.NewString(),
		Status:    models.OrderFilled,
		FillPrice: price,
		FillQty:   quantity,
	}, nil
}

// Submitted reports how many orders reached the simulator.
func (p *Paper) Submitted() int64 {
	return p.submitted.Load()
}
