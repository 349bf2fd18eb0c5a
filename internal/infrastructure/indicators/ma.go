package indicators

// CalculateSMA computes the Simple Moving Average series. Values before
// index period-1 are zero (not enough data).
func CalculateSMA(data []float64, period int) []float64 {
	sma := make([]float64, len(data))
	if len(data) < period || period <= 0 {
		return sma
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += data[i]
	}
	sma[period-1] = sum / float64(period)

	for i := period; i < len(data); i++ {
		sum += data[i] - data[i-period]
		sma[i] = sum / float64(period)
	}

	return sma
}

// CalculateEMA computes the Exponential Moving Average series. The first EMA
// value is seeded with the simple average of the first period prices, not the
// first price alone.
func CalculateEMA(data []float64, period int) []float64 {
	ema := make([]float64, len(data))
	if len(data) < period || period <= 0 {
		return ema
	}

	k := 2.0 / (float64(period) + 1.0)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += data[i]
	}
	ema[period-1] = sum / float64(period)

	for i := period; i < len(data); i++ {
		prevEma := ema[i-1]
		ema[i] = (data[i] * k) + (prevEma * (1 - k))
	}

	return ema
}

// LastValue returns the final element of a series, or 0 for an empty one.
func LastValue(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}
