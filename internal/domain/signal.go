package domain

// Signal is the output of the moving-average crossover engine.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalNone Signal = "NONE"
)

// ExitReason is the output of the risk governor's exit check.
type ExitReason string

const (
	ExitNone         ExitReason = "NONE"
	ExitStopLoss     ExitReason = "STOP_LOSS"
	ExitTakeProfit   ExitReason = "TAKE_PROFIT"
	ExitTrailingStop ExitReason = "TRAILING_STOP"

	// ExitSignal is a crossover-driven exit. The risk governor never returns
	// it; the orchestrator uses it when a SELL signal closes the position.
	ExitSignal ExitReason = "SIGNAL"
)

// TradeReason maps an exit reason to the reason code stored on a Trade.
func (r ExitReason) TradeReason() string {
	switch r {
	case ExitStopLoss:
		return ReasonStopLoss
	case ExitTakeProfit:
		return ReasonTakeProfit
	case ExitTrailingStop:
		return ReasonTrailingStop
	}
	return ReasonSignal
}
