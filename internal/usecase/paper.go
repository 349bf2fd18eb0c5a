package usecase

import (
	"fmt"
	"sync"

	"tradebot-backend/internal/domain"
)

// paperError is a definite rejection from the simulated exchange.
type paperError struct {
	msg string
}

func (e *paperError) Error() string           { return e.msg }
func (e *paperError) ExchangeRejection() bool { return true }

// PaperExchange simulates fills at the last observed market price so the
// whole engine (including persistence) runs unchanged with real trading
// disabled. Balances start from configured amounts and move with each fill.
type PaperExchange struct {
	filters   domain.SymbolFilters
	baseAsset string

	mu        sync.Mutex
	markPrice float64
	balances  map[string]float64
	nextID    int64
}

func NewPaperExchange(filters domain.SymbolFilters, baseAsset, quoteAsset string, startingQuote float64) *PaperExchange {
	return &PaperExchange{
		filters:   filters,
		baseAsset: baseAsset,
		balances: map[string]float64{
			baseAsset:  0,
			quoteAsset: startingQuote,
		},
		nextID: 1,
	}
}

// SetMarkPrice updates the price the next simulated fill executes at. The
// trader calls this on every candle.
func (p *PaperExchange) SetMarkPrice(price float64) {
	p.mu.Lock()
	p.markPrice = price
	p.mu.Unlock()
}

func (p *PaperExchange) GetSymbolFilters(symbol string) (domain.SymbolFilters, error) {
	return p.filters, nil
}

func (p *PaperExchange) GetFreeBalance(asset string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balances[asset], nil
}

func (p *PaperExchange) SubmitMarketOrder(symbol, side string, quantity float64, clientOrderID string) (*domain.OrderResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.markPrice <= 0 {
		return nil, &paperError{msg: "paper exchange has no mark price yet"}
	}

	fillPrice := ApplyTickSize(p.markPrice, p.filters.TickSize, 8)
	quote := quantity * fillPrice
	quoteAsset := symbol[len(p.baseAsset):]

	switch side {
	case domain.SideBuy:
		if p.balances[quoteAsset] < quote {
			return nil, &paperError{msg: fmt.Sprintf("insufficient balance: need %.4f %s", quote, quoteAsset)}
		}
		p.balances[quoteAsset] -= quote
		p.balances[p.baseAsset] += quantity
	case domain.SideSell:
		if p.balances[p.baseAsset] < quantity {
			return nil, &paperError{msg: fmt.Sprintf("insufficient balance: need %.8f %s", quantity, p.baseAsset)}
		}
		p.balances[p.baseAsset] -= quantity
		p.balances[quoteAsset] += quote
	default:
		return nil, &paperError{msg: fmt.Sprintf("unknown side %q", side)}
	}

	id := p.nextID
	p.nextID++

	return &domain.OrderResult{
		OrderID:     id,
		Symbol:      symbol,
		Status:      "FILLED",
		ExecutedQty: quantity,
		CumQuote:    quote,
	}, nil
}

// compile-time check
var _ domain.Exchange = (*PaperExchange)(nil)
