package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aaiti/internal/domain/models"
	drepo "aaiti/internal/domain/repository"
	"aaiti/pkg/logger"

	"github.com/google/uuid"
)

// PositionLedger is the authoritative record of open positions. A single
// mutex guards every mutation so a read-then-write sequence (exposure
// check, then open) can run as one critical section via Locked.
//
// Positions are never deleted; closing archives them with quantity frozen.
type PositionLedger struct {
	mu     sync.Mutex
	open   map[string]*models.Position // by position ID
	closed []models.ClosedPosition

	tradeDay   time.Time
	tradeCount int

	archive drepo.PositionArchive // optional
	metrics drepo.Metrics
	log     *logger.Logger
	clock   func() time.Time
}

func NewPositionLedger(archive drepo.PositionArchive, metrics drepo.Metrics, log *logger.Logger) *PositionLedger {
	return &PositionLedger{
		open:    make(map[string]*models.Position),
		archive: archive,
		metrics: metrics,
		log:     log,
		clock:   time.Now,
	}
}

// SetClock overrides the time source for tests.
func (l *PositionLedger) SetClock(fn func() time.Time) {
	l.clock = fn
}

// Locked runs fn while holding the ledger mutex. The execution pipeline
// uses it to span the risk check and the fill application with one lock
// acquisition, so concurrent signals cannot both pass a stale exposure
// check.
func (l *PositionLedger) Locked(fn func(view *LedgerView)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(&LedgerView{ledger: l})
}

// LedgerView is the lock-held handle passed to Locked callbacks.
type LedgerView struct {
	ledger *PositionLedger
}

// Snapshot returns deep copies of all known positions.
func (v *LedgerView) Snapshot() []models.Position {
	return v.ledger.snapshotLocked()
}

// DailyTrades returns today's fill count.
func (v *LedgerView) DailyTrades() int {
	return v.ledger.dailyTradesLocked()
}

// Apply opens a new position or adjusts the existing one for the fill's
// symbol and side, and counts the trade against today's cap.
func (v *LedgerView) Apply(fill *models.Fill) *models.Position {
	return v.ledger.applyLocked(fill)
}

// Snapshot returns an immutable copy of all positions; callers can never
// mutate ledger state through it.
func (l *PositionLedger) Snapshot() []models.Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// OpenOrAdjust applies a confirmed fill outside of a Locked section.
func (l *PositionLedger) OpenOrAdjust(fill *models.Fill) *models.Position {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.applyLocked(fill)
}

// Close closes an open position at exitPrice, archiving it. The quantity
// freezes at its last value for audit.
func (l *PositionLedger) Close(ctx context.Context, positionID string, exitPrice float64, reason string) (*models.ClosedPosition, error) {
	l.mu.Lock()
	p, ok := l.open[positionID]
	if !ok {
		l.mu.Unlock()
		return nil, fmt.Errorf("position %s not found or already closed", positionID)
	}
	delete(l.open, positionID)

	p.Status = models.PositionClosed
	pnl := (exitPrice - p.EntryPrice) * p.Quantity
	if p.Side == models.SideShort {
		pnl = -pnl
	}
	closed := models.ClosedPosition{
		Position:    *p,
		ExitPrice:   exitPrice,
		RealizedPnL: pnl,
		CloseReason: reason,
		ClosedAt:    l.clock().UTC(),
	}
	l.closed = append(l.closed, closed)
	l.metrics.RecordOpenPositions(len(l.open))
	l.mu.Unlock()

	if l.archive != nil {
		if err := l.archive.ArchiveClosed(ctx, &closed); err != nil {
			l.log.Warn("position archive failed",
				logger.String("position_id", positionID),
				logger.Error(err))
		}
	}
	return &closed, nil
}

// UpdateStops sets stop-loss / take-profit on an open position. Zero means
// leave unchanged.
func (l *PositionLedger) UpdateStops(positionID string, stopLoss, takeProfit float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.open[positionID]
	if !ok {
		return fmt.Errorf("position %s not found or already closed", positionID)
	}
	if stopLoss > 0 {
		p.StopLoss = stopLoss
	}
	if takeProfit > 0 {
		p.TakeProfit = takeProfit
	}
	return nil
}

// Closed returns copies of archived positions.
func (l *PositionLedger) Closed() []models.ClosedPosition {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.ClosedPosition, len(l.closed))
	copy(out, l.closed)
	return out
}

// DailyTrades returns today's fill count.
func (l *PositionLedger) DailyTrades() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dailyTradesLocked()
}

func (l *PositionLedger) snapshotLocked() []models.Position {
	out := make([]models.Position, 0, len(l.open))
	for _, p := range l.open {
		out = append(out, *p)
	}
	return out
}

func (l *PositionLedger) dailyTradesLocked() int {
	day := l.clock().UTC().Truncate(24 * time.Hour)
	if !day.Equal(l.tradeDay) {
		return 0
	}
	return l.tradeCount
}

func (l *PositionLedger) applyLocked(fill *models.Fill) *models.Position {
	day := l.clock().UTC().Truncate(24 * time.Hour)
	if !day.Equal(l.tradeDay) {
		l.tradeDay = day
		l.tradeCount = 0
	}
	l.tradeCount++

	// Adjust an existing open position on the same symbol and side:
	// quantities add, entry price becomes quantity-weighted.
	for _, p := range l.open {
		if p.Symbol == fill.Symbol && p.Side == fill.Side {
			total := p.Quantity + fill.Quantity
			p.EntryPrice = (p.EntryPrice*p.Quantity + fill.Price*fill.Quantity) / total
			p.Quantity = total
			cp := *p
			return &cp
		}
	}

	p := &models.Position{
		ID:         uuid.NewString(),
		Symbol:     fill.Symbol,
		Side:       fill.Side,
		Quantity:   fill.Quantity,
		EntryPrice: fill.Price,
		OpenedAt:   fill.FilledAt,
		Status:     models.PositionOpen,
	}
	l.open[p.ID] = p
	l.metrics.RecordOpenPositions(len(l.open))
	cp := *p
	return &cp
}
