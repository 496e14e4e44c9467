package usecase

import (
	"context"
	"errors"
	"time"

	"aaiti/internal/domain/models"
	drepo "aaiti/internal/domain/repository"
	"aaiti/pkg/logger"
)

// ExecutionPipeline consumes trade signals: confidence pre-filter, risk
// gate, then (for auto-execute) exchange submission and ledger update on
// confirmed fill. Risk checks run before submission, never after — the
// pipeline fails closed.
type ExecutionPipeline struct {
	gate          *RiskGate
	ledger        *PositionLedger
	exchange      drepo.ExchangeAdapter
	events        drepo.EventSink
	archive       drepo.PositionArchive // optional
	submitTimeout time.Duration
	metrics       drepo.Metrics
	log           *logger.Logger
}

func NewExecutionPipeline(
	gate *RiskGate,
	ledger *PositionLedger,
	exchange drepo.ExchangeAdapter,
	events drepo.EventSink,
	archive drepo.PositionArchive,
	submitTimeout time.Duration,
	metrics drepo.Metrics,
	log *logger.Logger,
) *ExecutionPipeline {
	if submitTimeout == 0 {
		submitTimeout = 10 * time.Second
	}
	return &ExecutionPipeline{
		gate:          gate,
		ledger:        ledger,
		exchange:      exchange,
		events:        events,
		archive:       archive,
		submitTimeout: submitTimeout,
		metrics:       metrics,
		log:           log,
	}
}

// Execute runs one signal through the pipeline. With autoExecute=false no
// order is submitted and the ledger is never touched; only the decision is
// returned.
func (p *ExecutionPipeline) Execute(ctx context.Context, signal *models.TradeSignal, autoExecute bool) *models.ExecutionResult {
	if signal.Action == models.ActionHold {
		return &models.ExecutionResult{
			Success:  true,
			DryRun:   !autoExecute,
			Decision: models.RiskDecision{Approved: false, Reason: models.ReasonHoldAction},
		}
	}

	// Confidence pre-filter: below the floor the risk gate is never
	// consulted and the exchange is never touched.
	if signal.Confidence < p.gate.Policy().MinConfidence {
		decision := models.RiskDecision{Approved: false, Reason: models.ReasonLowConfidence}
		p.rejected(ctx, signal, decision)
		return &models.ExecutionResult{Success: false, DryRun: !autoExecute, Decision: decision, Reason: decision.Reason}
	}

	if !autoExecute {
		// Dry run: evaluate against the current snapshot and stop. No side
		// effects, no exchange call, no ledger mutation.
		decision := p.gate.Evaluate(signal, p.ledger.Snapshot(), p.ledger.DailyTrades())
		if !decision.Approved {
			p.rejected(ctx, signal, decision)
		}
		return &models.ExecutionResult{Success: true, DryRun: true, Decision: decision}
	}

	return p.executeLive(ctx, signal)
}

// executeLive evaluates risk and applies the fill inside one ledger lock
// acquisition, so two concurrent signals cannot both pass a stale exposure
// check. The exchange round-trip happens inside the critical section; with
// the configured submit timeout that bounds how long it is held.
func (p *ExecutionPipeline) executeLive(ctx context.Context, signal *models.TradeSignal) *models.ExecutionResult {
	var result *models.ExecutionResult
	p.ledger.Locked(func(view *LedgerView) {
		decision := p.gate.Evaluate(signal, view.Snapshot(), view.DailyTrades())
		if !decision.Approved {
			p.rejected(ctx, signal, decision)
			p.metrics.RecordExecution("risk_rejected")
			result = &models.ExecutionResult{Success: false, Decision: decision, Reason: decision.Reason}
			return
		}

		result = p.submit(ctx, view, signal, decision)
	})
	return result
}

func (p *ExecutionPipeline) submit(ctx context.Context, view *LedgerView, signal *models.TradeSignal, decision models.RiskDecision) *models.ExecutionResult {
	side := models.SideLong
	if signal.Action == models.ActionSell {
		side = models.SideShort
	}

	subCtx, cancel := context.WithTimeout(ctx, p.submitTimeout)
	defer cancel()

	order, err := p.exchange.SubmitOrder(subCtx, signal.Symbol, side, decision.AdjustedQuantity, signal.SuggestedPrice)
	if err != nil {
		// A timeout is the dangerous case: the fill state is unknown. Alert
		// for reconciliation and never auto-retry; a retry must be an
		// explicit new signal to avoid duplicate fills.
		if errors.Is(err, context.DeadlineExceeded) {
			p.metrics.RecordExecution("timed_out")
			p.events.Emit(ctx, models.NewEvent(models.EventReconciliation, signal.Symbol, map[string]interface{}{
				"source_model_id": signal.SourceModelID,
				"quantity":        decision.AdjustedQuantity,
			}))
			p.log.Error("order submission timed out, fill state unknown",
				logger.String("symbol", signal.Symbol))
			unknown := &models.ExecutionUnknown{}
			return &models.ExecutionResult{Success: false, Decision: decision, OrderStatus: models.OrderTimedOut, Reason: unknown.Error()}
		}

		p.metrics.RecordExecution("failed")
		p.log.Error("order submission failed",
			logger.String("symbol", signal.Symbol),
			logger.Error(err))
		failed := &models.ExecutionFailed{Reason: err.Error()}
		return &models.ExecutionResult{Success: false, Decision: decision, OrderStatus: models.OrderRejected, Reason: failed.Error()}
	}

	switch order.Status {
	case models.OrderFilled:
		// fall through to the ledger update below
	case models.OrderTimedOut:
		p.metrics.RecordExecution("timed_out")
		p.events.Emit(ctx, models.NewEvent(models.EventReconciliation, signal.Symbol, map[string]interface{}{
			"order_id": order.OrderID,
		}))
		unknown := &models.ExecutionUnknown{OrderID: order.OrderID}
		return &models.ExecutionResult{Success: false, Decision: decision, OrderStatus: order.Status, Reason: unknown.Error()}
	default:
		// Rejected or still pending: the ledger stays unchanged.
		p.metrics.RecordExecution("rejected")
		return &models.ExecutionResult{Success: false, Decision: decision, OrderStatus: order.Status, Reason: order.Reason}
	}

	fill := &models.Fill{
		OrderID:  order.OrderID,
		Symbol:   signal.Symbol,
		Side:     side,
		Quantity: order.FillQty,
		Price:    order.FillPrice,
		FilledAt: time.Now().UTC(),
	}
	position := view.Apply(fill)

	p.metrics.RecordExecution("filled")
	p.events.Emit(ctx, models.NewEvent(models.EventFill, signal.Symbol, fill))
	if p.archive != nil {
		if err := p.archive.ArchiveFill(ctx, fill); err != nil {
			p.log.Warn("fill archive failed",
				logger.String("order_id", fill.OrderID),
				logger.Error(err))
		}
	}
	p.log.Info("order filled",
		logger.String("symbol", signal.Symbol),
		logger.String("order_id", order.OrderID),
		logger.Float64("price", order.FillPrice),
		logger.Float64("quantity", order.FillQty))

	return &models.ExecutionResult{
		Success:     true,
		Decision:    decision,
		OrderStatus: models.OrderFilled,
		Position:    position,
	}
}

// rejected emits the risk-rejection event. Rejections are normal control
// flow and only logged at debug level.
func (p *ExecutionPipeline) rejected(ctx context.Context, signal *models.TradeSignal, decision models.RiskDecision) {
	p.events.Emit(ctx, models.NewEvent(models.EventRiskRejected, signal.Symbol, map[string]interface{}{
		"reason":          decision.Reason,
		"confidence":      signal.Confidence,
		"source_model_id": signal.SourceModelID,
	}))
	p.log.Debug("signal rejected",
		logger.String("symbol", signal.Symbol),
		logger.String("reason", decision.Reason))
}
