package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"aaiti/internal/domain/models"
	"aaiti/pkg/logger"

	"github.com/gorilla/websocket"
)

const defaultStreamURL = "wss://stream.binance.com:9443/stream"

// QuoteFunc receives each live quote read off the stream.
type QuoteFunc func(q *models.PriceQuote)

// Warmer keeps hot symbols fresh by streaming Binance miniTicker updates
// into the aggregation cache, so dashboard reads rarely hit a cold key.
type Warmer struct {
	url            string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	onQuote        QuoteFunc
	log            *logger.Logger

	conn *websocket.Conn
}

func NewWarmer(url string, symbols []string, reconnectDelay, pingInterval time.Duration, onQuote QuoteFunc, log *logger.Logger) *Warmer {
	if url == "" {
		url = defaultStreamURL
	}
	if reconnectDelay == 0 {
		reconnectDelay = 5 * time.Second
	}
	if pingInterval == 0 {
		pingInterval = 30 * time.Second
	}
	return &Warmer{
		url:            url,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		onQuote:        onQuote,
		log:            log,
	}
}

type miniTicker struct {
	Symbol string `json:"s"`
	Close  string `json:"c"`
	Time   int64  `json:"E"`
}

type streamMessage struct {
	Stream string     `json:"stream"`
	Data   miniTicker `json:"data"`
}

// Run connects and pumps quotes until ctx is cancelled, reconnecting on
// any read or dial failure.
func (w *Warmer) Run(ctx context.Context) {
	for {
		if err := w.connect(ctx); err != nil {
			w.log.Warn("stream connect failed", logger.Error(err))
		} else {
			w.pump(ctx)
		}

		select {
		case <-ctx.Done():
			w.close()
			return
		case <-time.After(w.reconnectDelay):
		}
	}
}

func (w *Warmer) connect(ctx context.Context) error {
	streams := make([]string, 0, len(w.symbols))
	for _, s := range w.symbols {
		streams = append(streams, strings.ToLower(s)+"usdt@miniTicker")
	}
	u := fmt.Sprintf("%s?streams=%s", w.url, strings.Join(streams, "/"))

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("stream dial: %w", err)
	}
	w.conn = conn
	w.log.Info("stream connected", logger.Strings("symbols", w.symbols))
	return nil
}

func (w *Warmer) pump(ctx context.Context) {
	defer w.close()

	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go w.pingLoop(pingCtx)

	for {
		if err := ctx.Err(); err != nil {
			return
		}
		_, raw, err := w.conn.ReadMessage()
		if err != nil {
			w.log.Warn("stream read failed", logger.Error(err))
			return
		}

		var msg streamMessage
		if err := json.Unmarshal(raw, &msg); err != nil || msg.Data.Symbol == "" {
			continue
		}
		price, err := strconv.ParseFloat(msg.Data.Close, 64)
		if err != nil {
			continue
		}

		symbol := strings.TrimSuffix(msg.Data.Symbol, "USDT")
		w.onQuote(&models.PriceQuote{
			Symbol:     symbol,
			Currency:   "USD",
			Price:      price,
			AsOf:       time.UnixMilli(msg.Data.Time).UTC(),
			ProviderID: "binance_ws",
		})
	}
}

func (w *Warmer) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(w.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(5 * time.Second)
			if err := w.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (w *Warmer) close() {
	if w.conn != nil {
		_ = w.conn.Close()
		w.conn = nil
	}
}
