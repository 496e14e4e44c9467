package api

import (
	"time"

	models "aaiti/internal/domain/models"
	xhttp "aaiti/pkg/http"
	applogger "aaiti/pkg/logger"

	"github.com/labstack/echo/v4"
)

func (h *Handler) ExecuteSignal(c echo.Context) error {
	req := &models.ExecuteRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	signal := &models.TradeSignal{
		Symbol:         req.Symbol,
		Action:         models.Action(req.Action),
		Confidence:     req.Confidence,
		SuggestedPrice: req.SuggestedPrice,
		Quantity:       req.Quantity,
		Timestamp:      time.Now().UTC(),
		SourceModelID:  req.SourceModelID,
	}

	result := h.pipeline.Execute(c.Request().Context(), signal, req.AutoExecute)
	return xhttp.SuccessResponse(c, result)
}

func (h *Handler) Positions(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.ledger.Snapshot())
}

func (h *Handler) ClosedPositions(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.ledger.Closed())
}

func (h *Handler) ClosePosition(c echo.Context) error {
	req := &models.ClosePositionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	id := c.Param("id")
	closed, err := h.ledger.Close(c.Request().Context(), id, req.ExitPrice, req.Reason)
	if err != nil {
		h.logger.Warn("close position failed", applogger.String("id", id), applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()))
	}
	return xhttp.SuccessResponse(c, closed)
}

func (h *Handler) UpdateStops(c echo.Context) error {
	req := &models.UpdateStopsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	id := c.Param("id")
	if err := h.ledger.UpdateStops(id, req.StopLoss, req.TakeProfit); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()))
	}
	return xhttp.NoContentResponse(c)
}
