package coingecko

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aaiti/internal/domain/models"
	xhttp "aaiti/pkg/http"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

// coinIDs maps common tickers to CoinGecko coin ids. Unknown tickers fall
// back to the lowercased symbol.
var coinIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"XRP":  "ripple",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
	"DOT":  "polkadot",
	"LTC":  "litecoin",
	"LINK": "chainlink",
	"AVAX": "avalanche-2",
}

// Client is a CoinGecko REST provider adapter.
type Client struct {
	id      string
	baseURL string
	apiKey  string
	http    *xhttp.Client
}

func New(id, baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		id:      id,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (c *Client) ID() string { return c.id }

// FetchPrice queries the simple-price endpoint.
func (c *Client) FetchPrice(ctx context.Context, symbol, currency string) (*models.PriceQuote, error) {
	id := coinID(symbol)
	cur := strings.ToLower(currency)

	var body map[string]map[string]float64
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/simple/price",
		QueryParams: map[string][]string{
			"ids":           {id},
			"vs_currencies": {cur},
		},
		Headers: c.headers(),
	}, &body)
	if err != nil {
		return nil, fmt.Errorf("coingecko price %s/%s: %w", symbol, currency, err)
	}

	price, ok := body[id][cur]
	if !ok {
		return nil, fmt.Errorf("coingecko price %s/%s: pair missing in response", symbol, currency)
	}

	return &models.PriceQuote{
		Symbol:     strings.ToUpper(symbol),
		Currency:   strings.ToUpper(currency),
		Price:      price,
		AsOf:       time.Now().UTC(),
		ProviderID: c.id,
	}, nil
}

// FetchHistorical queries the OHLC endpoint. CoinGecko serves no volume on
// this surface, so candles carry zero volume.
func (c *Client) FetchHistorical(ctx context.Context, symbol, currency string, days int) (*models.CandleSeries, error) {
	id := coinID(symbol)

	var raw [][]float64
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/coins/%s/ohlc", c.baseURL, id),
		QueryParams: map[string][]string{
			"vs_currency": {strings.ToLower(currency)},
			"days":        {fmt.Sprintf("%d", days)},
		},
		Headers: c.headers(),
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("coingecko ohlc %s/%s: %w", symbol, currency, err)
	}

	candles := make([]models.Candle, 0, len(raw))
	for _, row := range raw {
		if len(row) < 5 {
			continue
		}
		candles = append(candles, models.Candle{
			Bucket: time.UnixMilli(int64(row[0])).UTC(),
			Open:   row[1],
			High:   row[2],
			Low:    row[3],
			Close:  row[4],
		})
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("coingecko ohlc %s/%s: empty series", symbol, currency)
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

// Health pings the /ping endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + "/ping",
		Headers: c.headers(),
	}, nil)
}

func (c *Client) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{"x-cg-demo-api-key": c.apiKey}
}

func coinID(symbol string) string {
	if id, ok := coinIDs[strings.ToUpper(symbol)]; ok {
		return id
	}
	return strings.ToLower(symbol)
}
