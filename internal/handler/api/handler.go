package api

import (
	"aaiti/internal/usecase"
	applogger "aaiti/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Handler exposes the market-data and trading endpoints over Echo.
type Handler struct {
	logger   *applogger.Logger
	market   *usecase.MarketData
	pipeline *usecase.ExecutionPipeline
	ledger   *usecase.PositionLedger
}

func NewHandler(
	logger *applogger.Logger,
	market *usecase.MarketData,
	pipeline *usecase.ExecutionPipeline,
	ledger *usecase.PositionLedger,
) *Handler {
	return &Handler{
		logger:   logger,
		market:   market,
		pipeline: pipeline,
		ledger:   ledger,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")

	g.GET("/price", h.Price)
	g.GET("/historical", h.Historical)
	g.GET("/sentiment", h.Sentiment)
	g.GET("/providers/health", h.ProviderHealth)

	g.POST("/signals/execute", h.ExecuteSignal)
	g.GET("/positions", h.Positions)
	g.GET("/positions/closed", h.ClosedPositions)
	g.POST("/positions/:id/close", h.ClosePosition)
	g.PUT("/positions/:id/stops", h.UpdateStops)
}
