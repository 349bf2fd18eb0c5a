package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"tradebot-backend/internal/domain"
	"tradebot-backend/internal/metrics"
)

// TraderStatus is an immutable snapshot of the engine state for the HTTP and
// websocket delivery layers.
type TraderStatus struct {
	BotID      string            `json:"botId"`
	Symbol     string            `json:"symbol"`
	Mode       string            `json:"mode"` // "live" or "paper"
	Position   domain.Position   `json:"position"`
	DailyStats domain.DailyStats `json:"dailyStats"`
	ShortMA    float64           `json:"shortMa"`
	LongMA     float64           `json:"longMa"`
	Warm       bool              `json:"warm"`
	LastPrice  float64           `json:"lastPrice"`
	LastCandle time.Time         `json:"lastCandle"`
}

// Trader serializes candle events into decisions: signal evaluation, exit
// check, entry check and persistence, in that fixed order. It owns Position
// and DailyStats exclusively; other components receive them as parameters.
type Trader struct {
	botID            string
	symbol           string
	baseAsset        string
	quoteAsset       string
	tradeQuoteAmount float64
	mode             string

	engine   *SignalEngine
	risk     *RiskGovernor
	executor *OrderExecutor
	exchange domain.Exchange
	states   domain.BotStateRepository
	notifier Notifier
	filters  domain.SymbolFilters
	paper    *PaperExchange // Set in paper mode so fills track the candle price

	mu         sync.RWMutex
	pos        domain.Position
	stats      domain.DailyStats
	lastPrice  float64
	lastCandle time.Time
}

type TraderParams struct {
	BotID            string
	Symbol           string
	BaseAsset        string
	QuoteAsset       string
	TradeQuoteAmount float64

	Engine   *SignalEngine
	Risk     *RiskGovernor
	Executor *OrderExecutor
	Exchange domain.Exchange
	States   domain.BotStateRepository
	Notifier Notifier
	Filters  domain.SymbolFilters
	Paper    *PaperExchange
}

func NewTrader(p TraderParams) *Trader {
	mode := "live"
	if p.Paper != nil {
		mode = "paper"
	}
	return &Trader{
		botID:            p.BotID,
		symbol:           p.Symbol,
		baseAsset:        p.BaseAsset,
		quoteAsset:       p.QuoteAsset,
		tradeQuoteAmount: p.TradeQuoteAmount,
		mode:             mode,
		engine:           p.Engine,
		risk:             p.Risk,
		executor:         p.Executor,
		exchange:         p.Exchange,
		states:           p.States,
		notifier:         p.Notifier,
		filters:          p.Filters,
		paper:            p.Paper,
	}
}

// LoadState restores position and daily stats from the store, initializing
// fresh state on first run. The store applies the day rollover during load.
func (t *Trader) LoadState(now time.Time) error {
	pos, stats, err := t.states.Load(t.botID, now)
	if errors.Is(err, domain.ErrStateNotFound) {
		pos = domain.Position{BaseAsset: t.baseAsset, QuoteAsset: t.quoteAsset}
		stats = domain.NewDailyStats(now)
		if err := t.states.Save(t.botID, pos, stats); err != nil {
			return fmt.Errorf("initializing state: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	t.mu.Lock()
	t.pos = pos
	t.stats = stats
	t.mu.Unlock()

	metrics.SetHolding(pos.Holding)
	metrics.SetDailyProfit(stats.Profit)
	metrics.SetDailyTrades(stats.TradeCount)

	log.Printf("state loaded: holding=%v amount=%.8f entry=%.4f dayTrades=%d dayProfit=%.4f",
		pos.Holding, pos.Amount, pos.EntryPrice, stats.TradeCount, stats.Profit)
	return nil
}

// Backfill warms the signal engine from historical candles so signals resume
// immediately after a restart.
func (t *Trader) Backfill(candles []domain.Candle) {
	for _, c := range candles {
		t.engine.Observe(c.Close)
	}
	log.Printf("backfilled %d candles, engine warm=%v", len(candles), t.engine.Warm())
}

// Run consumes closed candles until the channel closes or ctx is cancelled.
// Each candle is processed to completion before the next is read.
func (t *Trader) Run(ctx context.Context, candles <-chan domain.Candle) {
	for {
		select {
		case <-ctx.Done():
			return
		case candle, ok := <-candles:
			if !ok {
				return
			}
			t.OnCandle(candle)
		}
	}
}

// OnCandle processes one closed candle. Failures are logged and isolated to
// this tick; the next candle is always processed.
func (t *Trader) OnCandle(candle domain.Candle) {
	t.mu.Lock()
	t.lastPrice = candle.Close
	t.lastCandle = candle.CloseTime
	t.mu.Unlock()

	if t.paper != nil {
		t.paper.SetMarkPrice(candle.Close)
	}

	t.rolloverIfNeeded(candle.CloseTime)

	signal := t.engine.Observe(candle.Close)
	if signal != domain.SignalNone {
		metrics.IncSignal(string(signal))
	}

	if err := t.step(candle, signal); err != nil {
		log.Printf("tick %s: %v", candle.CloseTime.Format(time.RFC3339), err)
	}
}

// step runs the exit and entry checks in the fixed order the engine requires.
func (t *Trader) step(candle domain.Candle, signal domain.Signal) error {
	price := candle.Close

	t.mu.RLock()
	pos := t.pos
	stats := t.stats
	t.mu.RUnlock()

	if pos.Holding {
		// Update the trailing high before the exit check so a fresh high in
		// this same tick participates in the trailing-stop calculation.
		if price > pos.HighestPrice {
			pos.HighestPrice = price
			t.setState(pos, stats)
			t.save(pos, stats)
		}

		exit := t.risk.CheckExit(pos, price)
		if exit == domain.ExitNone && signal == domain.SignalSell {
			exit = domain.ExitSignal
		}
		if exit != domain.ExitNone {
			return t.doSell(pos, stats, price, exit)
		}
		return nil
	}

	if signal == domain.SignalBuy {
		allowed, reason := t.risk.CheckDailyLimits(stats)
		if !allowed {
			log.Printf("entry blocked: %s", reason)
			t.notifier.NotifyDecision("Entry blocked", reason)
			return nil
		}
		return t.doBuy(pos, stats, price)
	}

	return nil
}

func (t *Trader) doBuy(pos domain.Position, stats domain.DailyStats, price float64) error {
	availableQuote, err := t.exchange.GetFreeBalance(t.quoteAsset)
	if err != nil {
		return fmt.Errorf("querying %s balance: %w", t.quoteAsset, err)
	}

	fill, rejection, err := t.executor.Buy(t.tradeQuoteAmount, price, t.filters, availableQuote, &stats)
	if err != nil {
		// Ambiguous outcome: do not resubmit this tick, leave position as-is.
		metrics.IncRejection(domain.SideBuy)
		t.notifier.NotifyAlert(fmt.Sprintf("buy outcome ambiguous: %v", err))
		return fmt.Errorf("AMBIGUOUS buy: %v", err)
	}
	if rejection != nil {
		metrics.IncRejection(domain.SideBuy)
		log.Printf("buy rejected: %s", rejection.Reason)
		return nil
	}

	pos.Open(fill.Quantity, fill.AvgPrice)
	t.setState(pos, stats)
	t.save(pos, stats)

	metrics.IncOrder(t.mode, domain.SideBuy)
	metrics.SetHolding(true)
	metrics.SetDailyTrades(stats.TradeCount)

	log.Printf("BUY filled: order=%d qty=%.8f avg=%.4f quote=%.4f", fill.OrderID, fill.Quantity, fill.AvgPrice, fill.QuoteAmount)
	t.notifier.NotifyTrade(domain.Trade{
		OrderID: fill.OrderID, Symbol: t.symbol, Side: domain.SideBuy,
		Quantity: fill.Quantity, AvgPrice: fill.AvgPrice, QuoteAmount: fill.QuoteAmount,
		Reason: domain.ReasonSignal,
	})
	return nil
}

func (t *Trader) doSell(pos domain.Position, stats domain.DailyStats, price float64, exit domain.ExitReason) error {
	reason := exit.TradeReason()
	log.Printf("exit triggered: %s at %.4f (entry %.4f, highest %.4f)", reason, price, pos.EntryPrice, pos.HighestPrice)
	t.notifier.NotifyDecision("Exit triggered", fmt.Sprintf("%s %s at %.4f", t.symbol, reason, price))

	availableBase, err := t.exchange.GetFreeBalance(t.baseAsset)
	if err != nil {
		return fmt.Errorf("querying %s balance: %w", t.baseAsset, err)
	}

	fill, rejection, err := t.executor.Sell(pos, price, t.filters, availableBase, exit, &stats)
	if err != nil {
		metrics.IncRejection(domain.SideSell)
		t.notifier.NotifyAlert(fmt.Sprintf("sell outcome ambiguous: %v", err))
		return fmt.Errorf("AMBIGUOUS sell: %v", err)
	}
	if rejection != nil {
		metrics.IncRejection(domain.SideSell)
		log.Printf("sell rejected: %s", rejection.Reason)
		return nil
	}

	pos.Clear()
	t.setState(pos, stats)
	t.save(pos, stats)

	metrics.IncOrder(t.mode, domain.SideSell)
	metrics.IncExit(reason)
	metrics.SetHolding(false)
	metrics.SetDailyProfit(stats.Profit)
	metrics.SetDailyTrades(stats.TradeCount)

	log.Printf("SELL filled: order=%d qty=%.8f avg=%.4f profit=%.4f reason=%s",
		fill.OrderID, fill.Quantity, fill.AvgPrice, fill.Profit, reason)
	t.notifier.NotifyTrade(domain.Trade{
		OrderID: fill.OrderID, Symbol: t.symbol, Side: domain.SideSell,
		Quantity: fill.Quantity, AvgPrice: fill.AvgPrice, QuoteAmount: fill.QuoteAmount,
		Profit: fill.Profit, Reason: reason,
	})
	return nil
}

// rolloverIfNeeded archives the finished day and resets counters when a candle
// lands on a new calendar day, so a long-running process rolls over without a
// restart. The store's Load applies the same rollover at startup.
func (t *Trader) rolloverIfNeeded(now time.Time) {
	t.mu.RLock()
	stats := t.stats
	pos := t.pos
	t.mu.RUnlock()

	if domain.SameDay(stats.StartTime, now) {
		return
	}

	if err := t.states.ArchiveDay(t.botID, stats.StartTime, stats.Profit); err != nil {
		log.Printf("ERROR: archiving day %s: %v", stats.StartTime.Format("2006-01-02"), err)
		t.notifier.NotifyAlert(fmt.Sprintf("failed to archive daily stats: %v", err))
	}
	log.Printf("day rollover: %s profit=%.4f trades=%d", stats.StartTime.Format("2006-01-02"), stats.Profit, stats.TradeCount)

	stats = domain.NewDailyStats(now)
	t.setState(pos, stats)
	t.save(pos, stats)

	metrics.SetDailyProfit(0)
	metrics.SetDailyTrades(0)
}

func (t *Trader) setState(pos domain.Position, stats domain.DailyStats) {
	t.mu.Lock()
	t.pos = pos
	t.stats = stats
	t.mu.Unlock()
}

// save persists write-through after every state mutation. A failed save keeps
// the in-memory state authoritative but is escalated, since a crash would now
// lose more than one event.
func (t *Trader) save(pos domain.Position, stats domain.DailyStats) {
	if err := t.states.Save(t.botID, pos, stats); err != nil {
		log.Printf("ERROR: persisting state failed: %v", err)
		t.notifier.NotifyAlert(fmt.Sprintf("state persistence failed: %v", err))
	}
}

// Shutdown persists the final state.
func (t *Trader) Shutdown() {
	t.mu.RLock()
	pos := t.pos
	stats := t.stats
	t.mu.RUnlock()
	t.save(pos, stats)
	log.Println("trader state saved on shutdown")
}

// Status returns a snapshot for the delivery layers.
func (t *Trader) Status() TraderStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()

	short, long := t.engine.Averages()
	return TraderStatus{
		BotID:      t.botID,
		Symbol:     t.symbol,
		Mode:       t.mode,
		Position:   t.pos,
		DailyStats: t.stats,
		ShortMA:    short,
		LongMA:     long,
		Warm:       t.engine.Warm(),
		LastPrice:  t.lastPrice,
		LastCandle: t.lastCandle,
	}
}
