package usecase

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"tradebot-backend/internal/domain"
)

// Fill is a confirmed execution, already recorded in the trade log and
// reflected in the daily stats by the time the executor returns it.
type Fill struct {
	OrderID     int64
	Quantity    float64
	AvgPrice    float64
	QuoteAmount float64
	Profit      float64 // Sells only; 0 for buys
}

// Rejection means no order reached the exchange (or the exchange cleanly
// refused it). Position state must not change on a rejection.
type Rejection struct {
	Reason string
}

// OrderExecutor submits quantized market orders with a single-flight
// guarantee: at most one order may be outstanding at a time, and a second
// attempt is rejected without contacting the exchange.
type OrderExecutor struct {
	exchange  domain.Exchange
	trades    domain.TradeRepository
	symbol    string
	precision int

	mu       sync.Mutex
	inFlight bool
}

func NewOrderExecutor(exchange domain.Exchange, trades domain.TradeRepository, symbol string, precision int) *OrderExecutor {
	return &OrderExecutor{
		exchange:  exchange,
		trades:    trades,
		symbol:    symbol,
		precision: precision,
	}
}

// acquire sets the in-flight flag before any validation begins. The caller
// must release on every exit path.
func (e *OrderExecutor) acquire() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return false
	}
	e.inFlight = true
	return true
}

func (e *OrderExecutor) release() {
	e.mu.Lock()
	e.inFlight = false
	e.mu.Unlock()
}

// Buy spends quoteAmount at the given price estimate. A nil Fill with a nil
// error means a clean rejection; a non-nil error means the outcome is
// ambiguous (the order may exist exchange-side) and must not be retried
// within the same tick.
func (e *OrderExecutor) Buy(quoteAmount, price float64, filters domain.SymbolFilters, availableQuote float64, stats *domain.DailyStats) (*Fill, *Rejection, error) {
	if !e.acquire() {
		return nil, &Rejection{Reason: "order already in flight"}, nil
	}
	defer e.release()

	if price <= 0 {
		return nil, &Rejection{Reason: "invalid price"}, nil
	}

	quantity := ApplyStepSize(quoteAmount/price, filters.StepSize, e.precision)
	if quantity <= 0 {
		return nil, &Rejection{Reason: "quantity is zero after step-size flooring"}, nil
	}
	if quantity*price < filters.MinNotional {
		return nil, &Rejection{Reason: fmt.Sprintf("notional %.4f below minimum %.4f", quantity*price, filters.MinNotional)}, nil
	}
	if quoteAmount > availableQuote {
		return nil, &Rejection{Reason: fmt.Sprintf("insufficient quote balance: need %.4f, have %.4f", quoteAmount, availableQuote)}, nil
	}

	result, err := e.submit(domain.SideBuy, quantity)
	if err != nil {
		if domain.IsExchangeRejection(err) {
			return nil, &Rejection{Reason: err.Error()}, nil
		}
		return nil, nil, fmt.Errorf("ambiguous order outcome: %w", err)
	}

	fill := e.normalize(result, 0)
	e.record(result, domain.SideBuy, domain.ReasonSignal, 0)
	stats.TradeCount++

	return fill, nil, nil
}

// Sell closes the position (or as much of it as the available base balance
// allows) at market. Realized profit is computed against the position's entry
// price from the actual average fill.
func (e *OrderExecutor) Sell(pos domain.Position, price float64, filters domain.SymbolFilters, availableBase float64, reason domain.ExitReason, stats *domain.DailyStats) (*Fill, *Rejection, error) {
	if !e.acquire() {
		return nil, &Rejection{Reason: "order already in flight"}, nil
	}
	defer e.release()

	rawQty := pos.Amount
	if availableBase < rawQty {
		// Sell what we can rather than fail outright; fees or dust can leave
		// the free balance slightly below the recorded position amount.
		log.Printf("sell: available %s %.8f below position %.8f, re-quantizing down", pos.BaseAsset, availableBase, rawQty)
		rawQty = availableBase
	}

	quantity := ApplyStepSize(rawQty, filters.StepSize, e.precision)
	if quantity <= 0 {
		return nil, &Rejection{Reason: "quantity is zero after step-size flooring"}, nil
	}
	if quantity*price < filters.MinNotional {
		return nil, &Rejection{Reason: fmt.Sprintf("notional %.4f below minimum %.4f", quantity*price, filters.MinNotional)}, nil
	}

	result, err := e.submit(domain.SideSell, quantity)
	if err != nil {
		if domain.IsExchangeRejection(err) {
			return nil, &Rejection{Reason: err.Error()}, nil
		}
		return nil, nil, fmt.Errorf("ambiguous order outcome: %w", err)
	}

	avgPrice := avgFillPrice(result)
	profit := (avgPrice - pos.EntryPrice) * result.ExecutedQty

	fill := e.normalize(result, profit)
	e.record(result, domain.SideSell, reason.TradeReason(), profit)
	stats.TradeCount++
	stats.Profit += profit

	return fill, nil, nil
}

func (e *OrderExecutor) submit(side string, quantity float64) (*domain.OrderResult, error) {
	clientOrderID := uuid.NewString()
	result, err := e.exchange.SubmitMarketOrder(e.symbol, side, quantity, clientOrderID)
	if err != nil {
		return nil, err
	}
	if result.ExecutedQty <= 0 {
		return nil, fmt.Errorf("order %d reported status %s with zero executed quantity", result.OrderID, result.Status)
	}
	return result, nil
}

func avgFillPrice(result *domain.OrderResult) float64 {
	if result.ExecutedQty <= 0 {
		return 0
	}
	return result.CumQuote / result.ExecutedQty
}

func (e *OrderExecutor) normalize(result *domain.OrderResult, profit float64) *Fill {
	return &Fill{
		OrderID:     result.OrderID,
		Quantity:    result.ExecutedQty,
		AvgPrice:    avgFillPrice(result),
		QuoteAmount: result.CumQuote,
		Profit:      profit,
	}
}

// record appends the confirmed fill to the trade log. A duplicate order ID is
// an expected retry artifact: logged and discarded.
func (e *OrderExecutor) record(result *domain.OrderResult, side, reason string, profit float64) {
	trade := &domain.Trade{
		OrderID:     result.OrderID,
		Symbol:      e.symbol,
		Side:        side,
		Quantity:    result.ExecutedQty,
		AvgPrice:    avgFillPrice(result),
		QuoteAmount: result.CumQuote,
		Profit:      profit,
		Reason:      reason,
		ExecutedAt:  time.Now(),
	}

	if err := e.trades.RecordTrade(trade); err != nil {
		if errors.Is(err, domain.ErrDuplicateTrade) {
			log.Printf("trade %d already recorded, skipping", trade.OrderID)
			return
		}
		// The fill happened; a failed log write must not unwind it.
		log.Printf("ERROR: failed to record trade %d: %v", trade.OrderID, err)
	}
}
