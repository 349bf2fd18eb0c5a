package usecase

import (
	"tradebot-backend/internal/domain"
	"tradebot-backend/internal/infrastructure/indicators"
)

// SignalEngine keeps a bounded buffer of recent close prices, recomputes the
// short and long moving averages on every observation and detects crossovers.
type SignalEngine struct {
	maType      string // "SMA" or "EMA"
	shortPeriod int
	longPeriod  int
	maxPrices   int

	prices []float64

	shortMA, longMA         float64
	prevShortMA, prevLongMA float64
	computed                int // How many times both averages were available
}

func NewSignalEngine(maType string, shortPeriod, longPeriod int) *SignalEngine {
	return &SignalEngine{
		maType:      maType,
		shortPeriod: shortPeriod,
		longPeriod:  longPeriod,
		maxPrices:   2 * longPeriod,
	}
}

// Observe feeds one closed price and returns BUY/SELL on a crossover, NONE
// otherwise. No signal is possible before longPeriod prices were observed,
// and the crossover itself needs two consecutive computed average pairs.
func (e *SignalEngine) Observe(price float64) domain.Signal {
	e.prices = append(e.prices, price)
	if len(e.prices) > e.maxPrices {
		e.prices = e.prices[len(e.prices)-e.maxPrices:]
	}

	if len(e.prices) < e.longPeriod {
		return domain.SignalNone
	}

	e.prevShortMA, e.prevLongMA = e.shortMA, e.longMA
	e.shortMA = e.average(e.shortPeriod)
	e.longMA = e.average(e.longPeriod)
	e.computed++

	if e.computed < 2 {
		return domain.SignalNone
	}

	if e.prevShortMA <= e.prevLongMA && e.shortMA > e.longMA {
		return domain.SignalBuy
	}
	if e.prevShortMA >= e.prevLongMA && e.shortMA < e.longMA {
		return domain.SignalSell
	}
	return domain.SignalNone
}

// Warm reports whether the engine has enough history to emit signals.
func (e *SignalEngine) Warm() bool {
	return e.computed >= 2
}

// Averages returns the current short and long moving averages (0 until warm).
func (e *SignalEngine) Averages() (short, long float64) {
	return e.shortMA, e.longMA
}

func (e *SignalEngine) average(period int) float64 {
	if e.maType == "EMA" {
		return indicators.LastValue(indicators.CalculateEMA(e.prices, period))
	}
	return indicators.LastValue(indicators.CalculateSMA(e.prices, period))
}
