package domain

import (
	"errors"
	"time"
)

// ErrDuplicateTrade is returned when a trade with an already-recorded order ID
// is inserted again. Callers treat this as a benign retry artifact.
var ErrDuplicateTrade = errors.New("trade with this order ID already recorded")

// ErrStateNotFound is returned by Load when no state exists yet for a bot ID.
var ErrStateNotFound = errors.New("no persisted state for bot")

// BotStateRepository persists the position and daily stats for one bot ID.
// Load applies the day-boundary rollover: if the persisted day differs from
// the current date, the old day's profit is archived, counters are reset and
// the reset state is persisted before Load returns.
type BotStateRepository interface {
	Load(botID string, now time.Time) (Position, DailyStats, error)
	Save(botID string, pos Position, stats DailyStats) error
	ArchiveDay(botID string, day time.Time, profit float64) error
	DailyHistory(botID string) ([]DailyProfit, error)
}

// TradeRepository is the append-only trade log keyed by exchange order ID.
type TradeRepository interface {
	RecordTrade(trade *Trade) error // ErrDuplicateTrade on a repeated order ID
	GetTrades(from time.Time) ([]*Trade, error)
}
