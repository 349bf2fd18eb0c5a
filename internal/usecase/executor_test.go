package usecase

import (
	"errors"
	"math"
	"testing"
	"time"

	"tradebot-backend/internal/domain"
	"tradebot-backend/internal/repository"
)

// fakeExchange counts submissions and serves a canned result. When blocked is
// set, SubmitMarketOrder parks until the channel is closed, which lets tests
// exercise the in-flight flag.
type fakeExchange struct {
	submits int
	result  *domain.OrderResult
	err     error

	entered chan struct{}
	blocked chan struct{}
}

func (f *fakeExchange) GetSymbolFilters(string) (domain.SymbolFilters, error) {
	return domain.SymbolFilters{}, nil
}

func (f *fakeExchange) GetFreeBalance(string) (float64, error) { return 0, nil }

func (f *fakeExchange) SubmitMarketOrder(symbol, side string, quantity float64, clientOrderID string) (*domain.OrderResult, error) {
	f.submits++
	if f.entered != nil {
		close(f.entered)
		f.entered = nil
	}
	if f.blocked != nil {
		<-f.blocked
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &domain.OrderResult{
		OrderID:     int64(f.submits),
		Symbol:      symbol,
		Status:      "FILLED",
		ExecutedQty: quantity,
		CumQuote:    quantity * 100,
	}, nil
}

// fakeRejection mimics an exchange-side order rejection.
type fakeRejection struct{ msg string }

func (e *fakeRejection) Error() string           { return e.msg }
func (e *fakeRejection) ExchangeRejection() bool { return true }

func testFilters() domain.SymbolFilters {
	return domain.SymbolFilters{TickSize: 0.01, StepSize: 0.001, MinNotional: 10}
}

func TestBuy_MinNotionalRejected(t *testing.T) {
	exch := &fakeExchange{}
	exec := NewOrderExecutor(exch, repository.NewInMemoryTradeRepository(), "BTCUSDT", 8)
	stats := domain.DailyStats{StartTime: time.Now()}

	// 5 quote at price 100 -> quantity 0.05, notional 5 < 10.
	fill, rejection, err := exec.Buy(5, 100, testFilters(), 1000, &stats)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fill != nil {
		t.Fatal("got a fill for a below-notional order")
	}
	if rejection == nil {
		t.Fatal("want a rejection")
	}
	if exch.submits != 0 {
		t.Errorf("exchange contacted %d times, rejection must not reach the exchange", exch.submits)
	}
	if stats.TradeCount != 0 || stats.Profit != 0 {
		t.Error("rejection mutated daily stats")
	}
}

func TestBuy_InsufficientBalanceRejected(t *testing.T) {
	exch := &fakeExchange{}
	exec := NewOrderExecutor(exch, repository.NewInMemoryTradeRepository(), "BTCUSDT", 8)
	stats := domain.DailyStats{StartTime: time.Now()}

	_, rejection, err := exec.Buy(50, 100, testFilters(), 49.99, &stats)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rejection == nil {
		t.Fatal("want a rejection when quote balance is short")
	}
	if exch.submits != 0 {
		t.Error("balance rejection must not reach the exchange")
	}
}

func TestBuy_FillRecordsTradeAndStats(t *testing.T) {
	exch := &fakeExchange{result: &domain.OrderResult{
		OrderID: 42, Status: "FILLED", ExecutedQty: 0.5, CumQuote: 50.5,
	}}
	trades := repository.NewInMemoryTradeRepository()
	exec := NewOrderExecutor(exch, trades, "BTCUSDT", 8)
	stats := domain.DailyStats{StartTime: time.Now()}

	fill, rejection, err := exec.Buy(50, 100, testFilters(), 1000, &stats)
	if err != nil || rejection != nil {
		t.Fatalf("want a fill, got rejection=%v err=%v", rejection, err)
	}
	if fill.OrderID != 42 {
		t.Errorf("fill order id = %d, want 42", fill.OrderID)
	}
	if math.Abs(fill.AvgPrice-101) > 1e-9 { // 50.5 / 0.5
		t.Errorf("avg fill price = %v, want 101", fill.AvgPrice)
	}
	if stats.TradeCount != 1 {
		t.Errorf("trade count = %d, want 1", stats.TradeCount)
	}
	if stats.Profit != 0 {
		t.Errorf("buy accrued profit %v, want 0", stats.Profit)
	}

	recorded, _ := trades.GetTrades(time.Time{})
	if len(recorded) != 1 || recorded[0].OrderID != 42 || recorded[0].Reason != domain.ReasonSignal {
		t.Errorf("unexpected trade log: %+v", recorded)
	}
}

func TestSell_ComputesRealizedProfit(t *testing.T) {
	exch := &fakeExchange{result: &domain.OrderResult{
		OrderID: 7, Status: "FILLED", ExecutedQty: 0.05, CumQuote: 5.25, // avg 105
	}}
	trades := repository.NewInMemoryTradeRepository()
	exec := NewOrderExecutor(exch, trades, "BTCUSDT", 8)
	stats := domain.DailyStats{StartTime: time.Now()}
	pos := domain.Position{Holding: true, Amount: 0.05, EntryPrice: 100, HighestPrice: 106, BaseAsset: "BTC"}

	fill, rejection, err := exec.Sell(pos, 105, domain.SymbolFilters{StepSize: 0.001, MinNotional: 1}, 0.05, domain.ExitTakeProfit, &stats)
	if err != nil || rejection != nil {
		t.Fatalf("want a fill, got rejection=%v err=%v", rejection, err)
	}

	want := (105.0 - 100.0) * 0.05
	if math.Abs(fill.Profit-want) > 1e-9 {
		t.Errorf("profit = %v, want %v", fill.Profit, want)
	}
	if math.Abs(stats.Profit-want) > 1e-9 {
		t.Errorf("stats profit = %v, want %v", stats.Profit, want)
	}

	recorded, _ := trades.GetTrades(time.Time{})
	if len(recorded) != 1 || recorded[0].Reason != domain.ReasonTakeProfit {
		t.Errorf("unexpected trade log: %+v", recorded)
	}
}

func TestSell_RequantizesDownToAvailableBalance(t *testing.T) {
	exch := &fakeExchange{}
	exec := NewOrderExecutor(exch, repository.NewInMemoryTradeRepository(), "BTCUSDT", 8)
	stats := domain.DailyStats{StartTime: time.Now()}
	pos := domain.Position{Holding: true, Amount: 0.05, EntryPrice: 100, BaseAsset: "BTC"}

	// Free balance below the recorded amount: sell what is there, floored.
	fill, rejection, err := exec.Sell(pos, 100, domain.SymbolFilters{StepSize: 0.001, MinNotional: 1}, 0.0304, domain.ExitStopLoss, &stats)
	if err != nil || rejection != nil {
		t.Fatalf("want a fill, got rejection=%v err=%v", rejection, err)
	}
	if math.Abs(fill.Quantity-0.030) > 1e-9 {
		t.Errorf("quantity = %v, want 0.030", fill.Quantity)
	}
}

func TestSell_ZeroQuantityAfterFlooringIsHardRejection(t *testing.T) {
	exch := &fakeExchange{}
	exec := NewOrderExecutor(exch, repository.NewInMemoryTradeRepository(), "BTCUSDT", 8)
	stats := domain.DailyStats{StartTime: time.Now()}
	pos := domain.Position{Holding: true, Amount: 0.0009, EntryPrice: 100, BaseAsset: "BTC"}

	_, rejection, err := exec.Sell(pos, 100, domain.SymbolFilters{StepSize: 0.001, MinNotional: 1}, 0.0009, domain.ExitStopLoss, &stats)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rejection == nil {
		t.Fatal("want a hard rejection for dust")
	}
	if exch.submits != 0 {
		t.Error("dust rejection must not reach the exchange")
	}
}

func TestSecondOrderWhileInFlightIsRejected(t *testing.T) {
	exch := &fakeExchange{
		entered: make(chan struct{}),
		blocked: make(chan struct{}),
	}
	entered := exch.entered
	exec := NewOrderExecutor(exch, repository.NewInMemoryTradeRepository(), "BTCUSDT", 8)
	stats := domain.DailyStats{StartTime: time.Now()}

	done := make(chan struct{})
	go func() {
		defer close(done)
		exec.Buy(50, 100, testFilters(), 1000, &stats)
	}()

	<-entered // First order is now sitting inside the exchange call.

	pos := domain.Position{Holding: true, Amount: 0.5, EntryPrice: 100, BaseAsset: "BTC"}
	_, rejection, err := exec.Sell(pos, 100, testFilters(), 0.5, domain.ExitStopLoss, &stats)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rejection == nil {
		t.Fatal("second order while one is in flight must be rejected")
	}
	if exch.submits != 1 {
		t.Errorf("exchange contacted %d times, the rejected call must not reach it", exch.submits)
	}

	close(exch.blocked)
	<-done

	// Flag cleared after the first call finished: a new order goes through.
	_, rejection, err = exec.Sell(pos, 100, testFilters(), 0.5, domain.ExitStopLoss, &stats)
	if err != nil || rejection != nil {
		t.Fatalf("order after release failed: rejection=%v err=%v", rejection, err)
	}
}

func TestAmbiguousTransportErrorIsNotARejection(t *testing.T) {
	exch := &fakeExchange{err: errors.New("connection reset")}
	exec := NewOrderExecutor(exch, repository.NewInMemoryTradeRepository(), "BTCUSDT", 8)
	stats := domain.DailyStats{StartTime: time.Now()}

	fill, rejection, err := exec.Buy(50, 100, testFilters(), 1000, &stats)
	if fill != nil || rejection != nil {
		t.Fatal("transport failure must not produce a fill or clean rejection")
	}
	if err == nil {
		t.Fatal("want an error for the ambiguous outcome")
	}
	if stats.TradeCount != 0 {
		t.Error("ambiguous outcome mutated daily stats")
	}
}

func TestExchangeRejectionIsClean(t *testing.T) {
	exch := &fakeExchange{err: &fakeRejection{msg: "Filter failure: MIN_NOTIONAL"}}
	exec := NewOrderExecutor(exch, repository.NewInMemoryTradeRepository(), "BTCUSDT", 8)
	stats := domain.DailyStats{StartTime: time.Now()}

	fill, rejection, err := exec.Buy(50, 100, testFilters(), 1000, &stats)
	if err != nil {
		t.Fatalf("exchange rejection must not surface as an error, got %v", err)
	}
	if fill != nil || rejection == nil {
		t.Fatal("want a clean rejection")
	}
}

func TestDuplicateOrderIDRecordedOnce(t *testing.T) {
	exch := &fakeExchange{result: &domain.OrderResult{
		OrderID: 99, Status: "FILLED", ExecutedQty: 0.5, CumQuote: 50,
	}}
	trades := repository.NewInMemoryTradeRepository()
	exec := NewOrderExecutor(exch, trades, "BTCUSDT", 8)
	stats := domain.DailyStats{StartTime: time.Now()}

	for i := 0; i < 2; i++ {
		if _, rejection, err := exec.Buy(50, 100, testFilters(), 1000, &stats); err != nil || rejection != nil {
			t.Fatalf("buy %d failed: rejection=%v err=%v", i, rejection, err)
		}
	}

	recorded, _ := trades.GetTrades(time.Time{})
	if len(recorded) != 1 {
		t.Errorf("persisted %d trades for one order id, want exactly 1", len(recorded))
	}
}
