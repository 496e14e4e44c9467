package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"aaiti/internal/domain/models"

	gobinance "github.com/adshao/go-binance/v2"
)

// Client is a Binance provider adapter built on the official-style SDK.
type Client struct {
	id  string
	api *gobinance.Client
}

func New(id, apiKey, apiSecret string, timeout time.Duration) *Client {
	api := gobinance.NewClient(apiKey, apiSecret)
	api.HTTPClient.Timeout = timeout
	return &Client{id: id, api: api}
}

func (c *Client) ID() string { return c.id }

// FetchPrice queries the ticker price for the symbol pair.
func (c *Client) FetchPrice(ctx context.Context, symbol, currency string) (*models.PriceQuote, error) {
	pair := tradingPair(symbol, currency)
	prices, err := c.api.NewListPricesService().Symbol(pair).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance price %s: %w", pair, err)
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("binance price %s: no ticker returned", pair)
	}
	p, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil {
		return nil, fmt.Errorf("binance price %s: parse %q: %w", pair, prices[0].Price, err)
	}

	return &models.PriceQuote{
		Symbol:     strings.ToUpper(symbol),
		Currency:   strings.ToUpper(currency),
		Price:      p,
		AsOf:       time.Now().UTC(),
		ProviderID: c.id,
	}, nil
}

// FetchHistorical queries daily klines, one candle per day.
func (c *Client) FetchHistorical(ctx context.Context, symbol, currency string, days int) (*models.CandleSeries, error) {
	pair := tradingPair(symbol, currency)
	klines, err := c.api.NewKlinesService().
		Symbol(pair).
		Interval("1d").
		Limit(days).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s: %w", pair, err)
	}
	if len(klines) == 0 {
		return nil, fmt.Errorf("binance klines %s: empty series", pair)
	}

	candles := make([]models.Candle, 0, len(klines))
	for _, k := range klines {
		candle, err := toCandle(k)
		if err != nil {
			return nil, fmt.Errorf("binance klines %s: %w", pair, err)
		}
		candles = append(candles, candle)
	}

	return &models.CandleSeries{
		Symbol:     strings.ToUpper(symbol),
		Currency:   strings.ToUpper(currency),
		Days:       days,
		Candles:    candles,
		ProviderID: c.id,
		AsOf:       time.Now().UTC(),
	}, nil
}

// Health pings the exchange.
func (c *Client) Health(ctx context.Context) error {
	return c.api.NewPingService().Do(ctx)
}

func toCandle(k *gobinance.Kline) (models.Candle, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return models.Candle{}, fmt.Errorf("parse open %q: %w", k.Open, err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return models.Candle{}, fmt.Errorf("parse high %q: %w", k.High, err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return models.Candle{}, fmt.Errorf("parse low %q: %w", k.Low, err)
	}
	cl, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return models.Candle{}, fmt.Errorf("parse close %q: %w", k.Close, err)
	}
	vol, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return models.Candle{}, fmt.Errorf("parse volume %q: %w", k.Volume, err)
	}
	return models.Candle{
		Bucket: time.UnixMilli(k.OpenTime).UTC(),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  cl,
		Volume: vol,
	}, nil
}

// tradingPair maps logical symbol/currency to a Binance trading pair.
// Binance quotes fiat USD via USDT.
func tradingPair(symbol, currency string) string {
	cur := strings.ToUpper(currency)
	if cur == "USD" {
		cur = "USDT"
	}
	return strings.ToUpper(symbol) + cur
}
