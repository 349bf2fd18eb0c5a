package indicators

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculateSMA(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	sma := CalculateSMA(data, 2)

	want := []float64{0, 1.5, 2.5, 3.5}
	for i := range want {
		if !almostEqual(sma[i], want[i]) {
			t.Errorf("sma[%d] = %v, want %v", i, sma[i], want[i])
		}
	}
}

func TestCalculateSMA_NotEnoughData(t *testing.T) {
	sma := CalculateSMA([]float64{1, 2}, 5)
	for i, v := range sma {
		if v != 0 {
			t.Errorf("sma[%d] = %v, want 0 with insufficient data", i, v)
		}
	}
}

func TestCalculateEMA_SeedsFromSimpleAverage(t *testing.T) {
	// period=3, k=0.5. The first EMA value must be the SMA of the first 3
	// prices (2.0), not the first price.
	data := []float64{1, 2, 3, 4, 5}
	ema := CalculateEMA(data, 3)

	if !almostEqual(ema[2], 2.0) {
		t.Fatalf("ema[2] = %v, want 2.0 (SMA seed)", ema[2])
	}
	if !almostEqual(ema[3], 3.0) { // 4*0.5 + 2*0.5
		t.Errorf("ema[3] = %v, want 3.0", ema[3])
	}
	if !almostEqual(ema[4], 4.0) { // 5*0.5 + 3*0.5
		t.Errorf("ema[4] = %v, want 4.0", ema[4])
	}
}

func TestLastValue(t *testing.T) {
	if got := LastValue(nil); got != 0 {
		t.Errorf("LastValue(nil) = %v, want 0", got)
	}
	if got := LastValue([]float64{1, 2, 7}); got != 7 {
		t.Errorf("LastValue = %v, want 7", got)
	}
}
