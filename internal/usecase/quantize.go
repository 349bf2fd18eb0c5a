package usecase

import "math"

// ApplyStepSize floors a quantity to the exchange step size, then rounds the
// result to the display precision. Flooring (never rounding up) keeps the
// order inside the filter.
func ApplyStepSize(value, stepSize float64, precision int) float64 {
	if stepSize <= 0 {
		return roundTo(value, precision)
	}
	// The small offset absorbs float error in value/stepSize so an exact
	// multiple of the step is not floored one step down.
	steps := math.Floor(value/stepSize + 1e-9)
	return roundTo(steps*stepSize, precision)
}

// ApplyTickSize floors a price to the exchange tick size.
func ApplyTickSize(price, tickSize float64, precision int) float64 {
	return ApplyStepSize(price, tickSize, precision)
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
