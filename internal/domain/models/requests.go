package models

// PriceRequest binds GET /api/price query params.
type PriceRequest struct {
	Symbol   string `query:"symbol" validate:"required,min=1,max=16"`
	Currency string `query:"currency" default:"USD" validate:"required,min=3,max=8"`
}

// HistoricalRequest binds GET /api/historical query params.
type HistoricalRequest struct {
	Symbol   string `query:"symbol" validate:"required,min=1,max=16"`
	Currency string `query:"currency" default:"USD" validate:"required,min=3,max=8"`
	Days     int    `query:"days" default:"30" validate:"gte=1,lte=365"`
}

// SentimentRequest binds GET /api/sentiment query params.
type SentimentRequest struct {
	Symbol string `query:"symbol" validate:"required,min=1,max=16"`
}

// ExecuteRequest binds POST /api/signals/execute.
type ExecuteRequest struct {
	Symbol         string  `json:"symbol" validate:"required,min=1,max=16"`
	Action         string  `json:"action" validate:"required,oneof=buy sell hold"`
	Confidence     float64 `json:"confidence" validate:"gte=0,lte=1"`
	SuggestedPrice float64 `json:"suggested_price" validate:"gte=0"`
	Quantity       float64 `json:"quantity" validate:"gte=0"`
	SourceModelID  string  `json:"source_model_id"`
	AutoExecute    bool    `json:"auto_execute"`
}

// ClosePositionRequest binds POST /api/positions/:id/close.
type ClosePositionRequest struct {
	ExitPrice float64 `json:"exit_price" validate:"required,gt=0"`
	Reason    string  `json:"reason" default:"manual"`
}

// UpdateStopsRequest binds PUT /api/positions/:id/stops.
type UpdateStopsRequest struct {
	StopLoss   float64 `json:"stop_loss" validate:"gte=0"`
	TakeProfit float64 `json:"take_profit" validate:"gte=0"`
}
