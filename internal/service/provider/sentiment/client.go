package sentiment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"aaiti/internal/domain/models"
	xhttp "aaiti/pkg/http"
)

const defaultBaseURL = "https://api.alternative.me"

// Client serves the Fear & Greed index as a normalized sentiment score.
// The index is market-wide; the requested symbol is echoed back so cache
// keys stay uniform with the other request kinds.
type Client struct {
	id      string
	baseURL string
	http    *xhttp.Client
}

func New(id, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		id:      id,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (c *Client) ID() string { return c.id }

type fngResponse struct {
	Data []struct {
		Value          string `json:"value"`
		Classification string `json:"value_classification"`
		Timestamp      string `json:"timestamp"`
	} `json:"data"`
}

// FetchSentiment returns the latest index reading scaled to [0,1].
func (c *Client) FetchSentiment(ctx context.Context, symbol string) (*models.SentimentScore, error) {
	var body fngResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/fng/",
		QueryParams: map[string][]string{"limit": {"1"}},
	}, &body)
	if err != nil {
		return nil, fmt.Errorf("sentiment fetch: %w", err)
	}
	if len(body.Data) == 0 {
		return nil, fmt.Errorf("sentiment fetch: empty response")
	}

	raw, err := strconv.ParseFloat(body.Data[0].Value, 64)
	if err != nil {
		return nil, fmt.Errorf("sentiment parse %q: %w", body.Data[0].Value, err)
	}
	asOf := time.Now().UTC()
	if ts, err := strconv.ParseInt(body.Data[0].Timestamp, 10, 64); err == nil {
		asOf = time.Unix(ts, 0).UTC()
	}

	return &models.SentimentScore{
		Symbol:     strings.ToUpper(symbol),
		Score:      raw / 100,
		Label:      body.Data[0].Classification,
		AsOf:       asOf,
		ProviderID: c.id,
	}, nil
}
