package domain

import "time"

// Position represents the single open spot position the bot may hold.
type Position struct {
	Holding      bool    `json:"holding"`
	Amount       float64 `json:"amount"`
	BaseAsset    string  `json:"baseAsset"`
	QuoteAsset   string  `json:"quoteAsset"`
	EntryPrice   float64 `json:"entryPrice"`
	HighestPrice float64 `json:"highestPrice"` // Highest price seen since entry, drives the trailing stop
}

// Clear resets the position after a confirmed exit. Holding=false implies
// amount, entry and highest price are all zero.
func (p *Position) Clear() {
	p.Holding = false
	p.Amount = 0
	p.EntryPrice = 0
	p.HighestPrice = 0
}

// Open sets the position after a confirmed entry fill.
func (p *Position) Open(amount, entryPrice float64) {
	p.Holding = true
	p.Amount = amount
	p.EntryPrice = entryPrice
	p.HighestPrice = entryPrice
}

// DailyProfit is one archived day of realized profit.
type DailyProfit struct {
	Day    time.Time `json:"day"`
	Profit float64   `json:"profit"`
}

// DailyStats tracks trades and realized profit for the current calendar day.
// TradeCount and Profit only cover the interval since StartTime.
type DailyStats struct {
	TradeCount int       `json:"tradeCount"`
	Profit     float64   `json:"profit"`
	StartTime  time.Time `json:"startTime"`
}

// NewDailyStats returns zeroed stats starting at the given time.
func NewDailyStats(start time.Time) DailyStats {
	return DailyStats{StartTime: start}
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
