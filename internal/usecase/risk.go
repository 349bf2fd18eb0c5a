package usecase

import (
	"fmt"

	"tradebot-backend/internal/domain"
)

// RiskLimits are the configured per-position and per-day risk thresholds.
type RiskLimits struct {
	StopLossPct     float64 // Negative
	TakeProfitPct   float64
	TrailingStopPct float64
	MaxDailyLoss    float64 // Positive quote amount
	MaxDailyTrades  int
}

// RiskGovernor evaluates position-exit conditions and the daily entry gate.
// It holds no mutable state; everything it judges is passed in.
type RiskGovernor struct {
	limits RiskLimits
}

func NewRiskGovernor(limits RiskLimits) *RiskGovernor {
	return &RiskGovernor{limits: limits}
}

// CheckExit evaluates stop loss, take profit and trailing stop, in that
// order. First match wins. The caller must update HighestPrice before calling
// so a fresh high participates in the trailing calculation this tick.
func (g *RiskGovernor) CheckExit(pos domain.Position, currentPrice float64) domain.ExitReason {
	if !pos.Holding || pos.EntryPrice <= 0 {
		return domain.ExitNone
	}

	pnlPct := (currentPrice - pos.EntryPrice) / pos.EntryPrice

	if pnlPct <= g.limits.StopLossPct {
		return domain.ExitStopLoss
	}
	if pnlPct >= g.limits.TakeProfitPct {
		return domain.ExitTakeProfit
	}
	if pos.HighestPrice > pos.EntryPrice && currentPrice <= pos.HighestPrice*(1-g.limits.TrailingStopPct) {
		return domain.ExitTrailingStop
	}

	return domain.ExitNone
}

// CheckDailyLimits gates new entries only; it never forces an existing
// position closed. A reached limit is a normal outcome, not an error.
func (g *RiskGovernor) CheckDailyLimits(stats domain.DailyStats) (allowed bool, reason string) {
	if stats.Profit <= -g.limits.MaxDailyLoss {
		return false, fmt.Sprintf("daily loss limit reached (%.2f <= -%.2f)", stats.Profit, g.limits.MaxDailyLoss)
	}
	if stats.TradeCount >= g.limits.MaxDailyTrades {
		return false, fmt.Sprintf("daily trade limit reached (%d/%d)", stats.TradeCount, g.limits.MaxDailyTrades)
	}
	return true, ""
}
