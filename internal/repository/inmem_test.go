package repository

import (
	"errors"
	"testing"
	"time"

	"tradebot-backend/internal/domain"
)

func TestInMemoryState_DayRolloverHappensExactlyOnce(t *testing.T) {
	repo := NewInMemoryStateRepository()
	yesterday := time.Date(2026, 8, 28, 14, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 29, 0, 5, 0, 0, time.UTC)

	pos := domain.Position{Holding: true, Amount: 0.5, EntryPrice: 100, HighestPrice: 101}
	stats := domain.DailyStats{TradeCount: 4, Profit: 12.5, StartTime: yesterday}
	if err := repo.Save("bot", pos, stats); err != nil {
		t.Fatal(err)
	}

	gotPos, gotStats, err := repo.Load("bot", today)
	if err != nil {
		t.Fatal(err)
	}

	if gotStats.TradeCount != 0 || gotStats.Profit != 0 {
		t.Errorf("stats not reset after rollover: %+v", gotStats)
	}
	if !domain.SameDay(gotStats.StartTime, today) {
		t.Errorf("start time %v not moved to the new day", gotStats.StartTime)
	}
	if !gotPos.Holding || gotPos.Amount != 0.5 {
		t.Errorf("position must survive the rollover untouched: %+v", gotPos)
	}

	history, _ := repo.DailyHistory("bot")
	if len(history) != 1 || history[0].Profit != 12.5 {
		t.Fatalf("archive after rollover: %+v", history)
	}

	// A second load on the same day must not roll over again.
	_, gotStats, err = repo.Load("bot", today.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	history, _ = repo.DailyHistory("bot")
	if len(history) != 1 {
		t.Errorf("rollover applied twice: %d archive entries", len(history))
	}
	if gotStats.TradeCount != 0 {
		t.Errorf("stats changed on same-day load: %+v", gotStats)
	}
}

func TestInMemoryState_LoadUnknownBot(t *testing.T) {
	repo := NewInMemoryStateRepository()
	_, _, err := repo.Load("missing", time.Now())
	if !errors.Is(err, domain.ErrStateNotFound) {
		t.Errorf("got %v, want ErrStateNotFound", err)
	}
}

func TestInMemoryTrades_DuplicateOrderIDRejected(t *testing.T) {
	repo := NewInMemoryTradeRepository()

	trade := &domain.Trade{OrderID: 10, Symbol: "BTCUSDT", Side: domain.SideBuy, ExecutedAt: time.Now()}
	if err := repo.RecordTrade(trade); err != nil {
		t.Fatal(err)
	}

	dup := &domain.Trade{OrderID: 10, Symbol: "BTCUSDT", Side: domain.SideSell, ExecutedAt: time.Now()}
	if err := repo.RecordTrade(dup); !errors.Is(err, domain.ErrDuplicateTrade) {
		t.Errorf("got %v, want ErrDuplicateTrade", err)
	}

	trades, _ := repo.GetTrades(time.Time{})
	if len(trades) != 1 {
		t.Fatalf("persisted %d trades, want 1", len(trades))
	}
	if trades[0].Side != domain.SideBuy {
		t.Error("duplicate overwrote the original trade")
	}
}
