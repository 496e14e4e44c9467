package exchange

import (
	"context"
	"testing"

	"aaiti/internal/domain/models"
)

func TestPaperFillsAtSubmittedPrice(t *testing.T) {
	p := NewPaper()

	r, err := p.SubmitOrder(context.Background(), "BTC", models.SideLong, 2, 50000)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if r.Status != models.OrderFilled {
		t.Fatalf("status = %v, want filled", r.Status)
	}
	if r.FillPrice != 50000 || r.FillQty != 2 {
		t.Fatalf("fill = %v@%v, want 2@50000", r.FillQty, r.FillPrice)
	}
	if r.OrderID == "" {
		t.Fatalf("missing order id")
	}
	if p.Submitted() != 1 {
		t.Fatalf("submitted = %d, want 1", p.Submitted())
	}
}

func TestPaperRejectsInvalidOrders(t *testing.T) {
	p := NewPaper()

	r, err := p.SubmitOrder(context.Background(), "BTC", models.SideLong, 0, 100)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if r.Status != models.OrderRejected {
		t.Fatalf("zero quantity status = %v, want rejected", r.Status)
	}

	r, err = p.SubmitOrder(context.Background(), "BTC", models.SideShort, 1, 0)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if r.Status != models.OrderRejected {
		t.Fatalf("zero price status = %v, want rejected", r.Status)
	}
	if p.Submitted() != 0 {
		t.Fatalf("rejected orders counted as submitted")
	}
}

func TestPaperHonorsCancelledContext(t *testing.T) {
	p := NewPaper()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.SubmitOrder(ctx, "BTC", models.SideLong, 1, 100); err == nil {
		t.Fatalf("expected context error")
	}
}
