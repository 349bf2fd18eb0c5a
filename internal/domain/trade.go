package domain

import "time"

// Order sides.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Trade reasons. SIGNAL covers crossover entries; the rest are risk exits.
const (
	ReasonSignal       = "SIGNAL"
	ReasonStopLoss     = "STOP_LOSS"
	ReasonTakeProfit   = "TAKE_PROFIT"
	ReasonTrailingStop = "TRAILING_STOP"
)

// Trade is an immutable record of one executed order. Duplicate order IDs are
// rejected by the repository, never overwritten.
type Trade struct {
	OrderID     int64     `json:"orderId"`
	Symbol      string    `json:"symbol"`
	Side        string    `json:"side"`
	Quantity    float64   `json:"quantity"`
	AvgPrice    float64   `json:"avgPrice"`
	QuoteAmount float64   `json:"quoteAmount"`
	Profit      float64   `json:"profit"` // Realized profit; 0 for BUY
	Reason      string    `json:"reason"`
	ExecutedAt  time.Time `json:"executedAt"`
}
