package domain

import (
	"errors"
	"time"
)

// Candle is one closed price bar from the market data feed. Only the close
// price and close time matter to the engine.
type Candle struct {
	Close     float64   `json:"close"`
	CloseTime time.Time `json:"closeTime"`
}

// SymbolFilters are the exchange-supplied trading constraints for a pair.
// Loaded once at startup and treated as read-only after that.
type SymbolFilters struct {
	Symbol      string  `json:"symbol"`
	TickSize    float64 `json:"tickSize"`    // Price granularity
	StepSize    float64 `json:"stepSize"`    // Quantity granularity
	MinNotional float64 `json:"minNotional"` // Minimum price*quantity per order
}

// OrderResult is the normalized response to a submitted market order.
type OrderResult struct {
	OrderID     int64   `json:"orderId"`
	Symbol      string  `json:"symbol"`
	Status      string  `json:"status"`
	ExecutedQty float64 `json:"executedQty"`
	CumQuote    float64 `json:"cumQuote"` // Cumulative quote amount actually traded
}

// rejectionError is implemented by errors that represent a definite
// exchange-side rejection, meaning the exchange received the request and
// refused it. Any other error from an Exchange call is ambiguous: the order
// may or may not exist on the exchange.
type rejectionError interface {
	ExchangeRejection() bool
}

// IsExchangeRejection reports whether an Exchange error is a clean rejection
// as opposed to an ambiguous transport failure.
func IsExchangeRejection(err error) bool {
	var rej rejectionError
	return errors.As(err, &rej) && rej.ExchangeRejection()
}

// Exchange is the trading surface the engine depends on. Implementations must
// surface exchange-side rejections as distinguishable errors, not silent
// no-ops; transport failures are returned as-is so callers can tell an
// ambiguous outcome from a clean rejection.
type Exchange interface {
	GetSymbolFilters(symbol string) (SymbolFilters, error)
	GetFreeBalance(asset string) (float64, error)
	SubmitMarketOrder(symbol, side string, quantity float64, clientOrderID string) (*OrderResult, error)
}
