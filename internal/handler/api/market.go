package api

import (
	"errors"
	"net/http"

	models "aaiti/internal/domain/models"
	xhttp "aaiti/pkg/http"
	applogger "aaiti/pkg/logger"

	"github.com/labstack/echo/v4"
)

func (h *Handler) Price(c echo.Context) error {
	req := &models.PriceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	quote, err := h.market.GetPrice(c.Request().Context(), req.Symbol, req.Currency)
	if err != nil {
		return h.fetchError(c, "price", err)
	}
	return xhttp.SuccessResponse(c, quote)
}

func (h *Handler) Historical(c echo.Context) error {
	req := &models.HistoricalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	series, err := h.market.GetHistorical(c.Request().Context(), req.Symbol, req.Currency, req.Days)
	if err != nil {
		return h.fetchError(c, "historical", err)
	}
	return xhttp.SuccessResponse(c, series)
}

func (h *Handler) Sentiment(c echo.Context) error {
	req := &models.SentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	score, err := h.market.GetSentiment(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fetchError(c, "sentiment", err)
	}
	return xhttp.SuccessResponse(c, score)
}

func (h *Handler) ProviderHealth(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.market.ProviderHealth())
}

// fetchError maps an exhausted failover chain to 502 with the per-provider
// failure detail; anything else is a plain 500.
func (h *Handler) fetchError(c echo.Context, op string, err error) error {
	h.logger.Error(op+" fetch error", applogger.Error(err))

	var ff *models.FetchFailed
	if errors.As(err, &ff) {
		return xhttp.DataResponse(c, http.StatusBadGateway, ff.Attempts)
	}
	return xhttp.InternalServerErrorResponse(c)
}
