package usecase

import (
	"testing"

	"tradebot-backend/internal/domain"
)

func TestSignalEngine_NoSignalBeforeWarmup(t *testing.T) {
	engine := NewSignalEngine("SMA", 3, 5)

	prices := []float64{100, 101, 99, 102}
	for i, p := range prices {
		if sig := engine.Observe(p); sig != domain.SignalNone {
			t.Errorf("observation %d: got %s before longPeriod prices, want NONE", i, sig)
		}
	}
	if engine.Warm() {
		t.Error("engine reports warm after 4 of 5 required prices")
	}
}

func TestSignalEngine_BuyCrossover(t *testing.T) {
	// short=2, long=3 SMA. Flat at 10: both averages equal. The jump to 13
	// lifts the short average above the long one on exactly one tick.
	engine := NewSignalEngine("SMA", 2, 3)

	for _, p := range []float64{10, 10, 10, 10} {
		if sig := engine.Observe(p); sig != domain.SignalNone {
			t.Fatalf("got %s on flat prices, want NONE", sig)
		}
	}

	// short: (10+13)/2 = 11.5, long: (10+10+13)/3 = 11
	if sig := engine.Observe(13); sig != domain.SignalBuy {
		t.Fatalf("got %s at the crossing tick, want BUY", sig)
	}

	// Ordering holds (short stays above long): no further signal.
	if sig := engine.Observe(13); sig != domain.SignalNone {
		t.Errorf("got %s after the cross, want NONE", sig)
	}
}

func TestSignalEngine_SellCrossover(t *testing.T) {
	engine := NewSignalEngine("SMA", 2, 3)

	for _, p := range []float64{10, 10, 10, 10, 13, 13} {
		engine.Observe(p)
	}

	// short: (13+9)/2 = 11, long: (13+13+9)/3 = 11.67
	if sig := engine.Observe(9); sig != domain.SignalSell {
		t.Fatalf("got %s at the downward cross, want SELL", sig)
	}
	if sig := engine.Observe(9); sig != domain.SignalNone {
		t.Errorf("got %s after the cross, want NONE", sig)
	}
}

func TestSignalEngine_BufferStaysBounded(t *testing.T) {
	engine := NewSignalEngine("EMA", 3, 5)

	for i := 0; i < 1000; i++ {
		engine.Observe(float64(100 + i%7))
	}

	if len(engine.prices) > 2*5 {
		t.Errorf("price buffer grew to %d entries, cap is %d", len(engine.prices), 2*5)
	}
	if !engine.Warm() {
		t.Error("engine not warm after 1000 observations")
	}
}
