package exchange

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"aaiti/internal/domain/models"

	gobinance "github.com/adshao/go-binance/v2"
)

// Binance submits market orders through the Binance spot API.
type Binance struct {
	id  string
	api *gobinance.Client
}

func NewBinance(apiKey, apiSecret string) *Binance {
	return &Binance{id: "binance", api: gobinance.NewClient(apiKey, apiSecret)}
}

func (b *Binance) ID() string { return b.id }

// SubmitOrder places a market order. The price argument is advisory only;
// market orders fill at the venue's price.
func (b *Binance) SubmitOrder(ctx context.Context, symbol string, side models.Side, quantity, price float64) (*models.OrderResult, error) {
	pair := strings.ToUpper(symbol) + "USDT"

	sideType := gobinance.SideTypeBuy
	if side == models.SideShort {
		sideType = gobinance.SideTypeSell
	}

	resp, err := b.api.NewCreateOrderService().
		Symbol(pair).
		Side(sideType).
		Type(gobinance.OrderTypeMarket).
		Quantity(strconv.FormatFloat(quantity, 'f', -1, 64)).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance submit %s: %w", pair, err)
	}

	result := &models.OrderResult{
		OrderID: strconv.FormatInt(resp.OrderID, 10),
	}

	switch resp.Status {
	case gobinance.OrderStatusTypeFilled:
		result.Status = models.OrderFilled
	case gobinance.OrderStatusTypeRejected, gobinance.OrderStatusTypeExpired, gobinance.OrderStatusTypeCanceled:
		result.Status = models.OrderRejected
		result.Reason = string(resp.Status)
		return result, nil
	default:
		// NEW / PARTIALLY_FILLED on a market order is transient; treat as
		// pending and let the caller decide.
		result.Status = models.OrderPending
		return result, nil
	}

	executed, err := strconv.ParseFloat(resp.ExecutedQuantity, 64)
	if err != nil {
		return nil, fmt.Errorf("binance submit %s: parse executed qty %q: %w", pair, resp.ExecutedQuantity, err)
	}
	result.FillQty = executed
	result.FillPrice = fillPrice(resp, price)
	return result, nil
}

// fillPrice averages fill legs weighted by quantity, falling back to the
// advisory price when the venue reports none.
func fillPrice(resp *gobinance.CreateOrderResponse, fallback float64) float64 {
	var notional, qty float64
	for _, f := range resp.Fills {
		p, perr := strconv.ParseFloat(f.Price, 64)
		q, qerr := strconv.ParseFloat(f.Quantity, 64)
		if perr != nil || qerr != nil {
			continue
		}
		notional += p * q
		qty += q
	}
	if qty > 0 {
		return notional / qty
	}
	return fallback
}
