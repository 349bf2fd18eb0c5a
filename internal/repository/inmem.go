package repository

import (
	"sort"
	"sync"
	"time"

	"tradebot-backend/internal/domain"
)

// InMemoryStateRepository mirrors the Postgres state repository, including the
// day rollover in Load. Used by tests and by ad hoc runs without a database.
type InMemoryStateRepository struct {
	mu      sync.RWMutex
	state   map[string]botState
	history map[string][]domain.DailyProfit
}

type botState struct {
	pos   domain.Position
	stats domain.DailyStats
}

func NewInMemoryStateRepository() *InMemoryStateRepository {
	return &InMemoryStateRepository{
		state:   make(map[string]botState),
		history: make(map[string][]domain.DailyProfit),
	}
}

func (r *InMemoryStateRepository) Load(botID string, now time.Time) (domain.Position, domain.DailyStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.state[botID]
	if !ok {
		return domain.Position{}, domain.DailyStats{}, domain.ErrStateNotFound
	}

	if !domain.SameDay(st.stats.StartTime, now) {
		r.history[botID] = append(r.history[botID], domain.DailyProfit{
			Day:    st.stats.StartTime,
			Profit: st.stats.Profit,
		})
		st.stats = domain.NewDailyStats(now)
		r.state[botID] = st
	}

	return st.pos, st.stats, nil
}

func (r *InMemoryStateRepository) Save(botID string, pos domain.Position, stats domain.DailyStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state[botID] = botState{pos: pos, stats: stats}
	return nil
}

func (r *InMemoryStateRepository) ArchiveDay(botID string, day time.Time, profit float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history[botID] = append(r.history[botID], domain.DailyProfit{Day: day, Profit: profit})
	return nil
}

func (r *InMemoryStateRepository) DailyHistory(botID string) ([]domain.DailyProfit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := make([]domain.DailyProfit, len(r.history[botID]))
	copy(history, r.history[botID])
	sort.Slice(history, func(i, j int) bool { return history[i].Day.After(history[j].Day) })
	return history, nil
}

// InMemoryTradeRepository stores trades keyed by order ID. Duplicate order IDs
// are rejected, never overwritten.
type InMemoryTradeRepository struct {
	mu     sync.RWMutex
	trades map[int64]*domain.Trade
}

func NewInMemoryTradeRepository() *InMemoryTradeRepository {
	return &InMemoryTradeRepository{
		trades: make(map[int64]*domain.Trade),
	}
}

func (r *InMemoryTradeRepository) RecordTrade(trade *domain.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.trades[trade.OrderID]; exists {
		return domain.ErrDuplicateTrade
	}

	saved := *trade
	r.trades[trade.OrderID] = &saved
	return nil
}

func (r *InMemoryTradeRepository) GetTrades(from time.Time) ([]*domain.Trade, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	trades := make([]*domain.Trade, 0)
	for _, t := range r.trades {
		if !t.ExecutedAt.Before(from) {
			trades = append(trades, t)
		}
	}
	sort.Slice(trades, func(i, j int) bool { return trades[i].ExecutedAt.After(trades[j].ExecutedAt) })
	return trades, nil
}

// compile-time checks
var (
	_ domain.BotStateRepository = (*InMemoryStateRepository)(nil)
	_ domain.TradeRepository    = (*InMemoryTradeRepository)(nil)
)
