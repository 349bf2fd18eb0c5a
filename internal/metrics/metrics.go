// Package metrics exposes Prometheus instrumentation for the engine:
//
//   - bot_signals_total{signal}: crossover signals emitted
//   - bot_orders_total{mode,side}: orders placed (mode: paper|live)
//   - bot_order_rejections_total{side}: rejected submissions
//   - bot_exit_reasons_total{reason}: position exits by reason
//   - bot_daily_profit: realized profit for the current day
//   - bot_daily_trades: trade count for the current day
//   - bot_position_holding: 1 while a position is open
//
// Registered in init() and served at /metrics by the HTTP server in cmd/server.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	signals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_signals_total",
			Help: "Crossover signals emitted",
		},
		[]string{"signal"},
	)

	orders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_orders_total",
			Help: "Orders placed",
		},
		[]string{"mode", "side"},
	)

	rejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_order_rejections_total",
			Help: "Order submissions rejected before or by the exchange",
		},
		[]string{"side"},
	)

	exitReasons = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_exit_reasons_total",
			Help: "Position exits by reason",
		},
		[]string{"reason"},
	)

	dailyProfit = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_daily_profit",
			Help: "Realized profit for the current day, in quote units",
		},
	)

	dailyTrades = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_daily_trades",
			Help: "Trade count for the current day",
		},
	)

	positionHolding = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_position_holding",
			Help: "1 while a position is open, 0 otherwise",
		},
	)
)

func init() {
	prometheus.MustRegister(signals, orders, rejections, exitReasons, dailyProfit, dailyTrades, positionHolding)
}

func IncSignal(signal string)     { signals.WithLabelValues(signal).Inc() }
func IncOrder(mode, side string)  { orders.WithLabelValues(mode, side).Inc() }
func IncRejection(side string)    { rejections.WithLabelValues(side).Inc() }
func IncExit(reason string)       { exitReasons.WithLabelValues(reason).Inc() }
func SetDailyProfit(v float64)    { dailyProfit.Set(v) }
func SetDailyTrades(n int)        { dailyTrades.Set(float64(n)) }
func SetHolding(holding bool) {
	if holding {
		positionHolding.Set(1)
	} else {
		positionHolding.Set(0)
	}
}
