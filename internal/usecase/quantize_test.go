package usecase

import (
	"math"
	"testing"
)

func TestApplyStepSize(t *testing.T) {
	tests := []struct {
		value, step float64
		precision   int
		want        float64
	}{
		{1.23456, 0.001, 8, 1.234}, // Floor, not round
		{0.0009, 0.001, 8, 0},      // Below one step
		{1.234, 0.001, 8, 1.234},   // Exact multiple survives float division
		{7.6923077, 0.0001, 8, 7.6923},
		{5, 1, 8, 5},
		{2.5, 0, 2, 2.5}, // No step configured: only precision rounding
	}

	for _, tt := range tests {
		got := ApplyStepSize(tt.value, tt.step, tt.precision)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ApplyStepSize(%v, %v, %d) = %v, want %v", tt.value, tt.step, tt.precision, got, tt.want)
		}
	}
}

func TestApplyTickSize(t *testing.T) {
	if got := ApplyTickSize(108.937, 0.01, 8); math.Abs(got-108.93) > 1e-12 {
		t.Errorf("ApplyTickSize(108.937, 0.01) = %v, want 108.93", got)
	}
}
