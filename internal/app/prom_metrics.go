package app

import "github.com/prometheus/client_golang/prometheus"

// Prometheus series the trading loop updates every cycle, served at /metrics
// by the admin HTTP surface. Grounded on chidi150c-coinbase/metrics.go's
// CounterVec/GaugeVec registration pattern (package-level vars, MustRegister
// in init, thin Inc/Set helpers called from the event sites).
var (
	metricDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trader_decisions_total",
			Help: "Strategy decisions recorded, by direction.",
		},
		[]string{"direction"},
	)

	metricOrdersSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trader_orders_submitted_total",
			Help: "Orders submitted to the execution module.",
		},
	)

	metricOrdersFilledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trader_orders_filled_total",
			Help: "Orders observed filled.",
		},
	)

	metricRiskBlocksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trader_risk_blocks_total",
			Help: "Risk gate denials, by reason.",
		},
		[]string{"reason"},
	)

	metricBreakerActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trader_breaker_active",
			Help: "1 when any circuit breaker or the consecutive-loss cooldown is active.",
		},
	)

	metricRealisedPnLUSD = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "trader_realised_pnl_usd",
			Help: "Realised PnL in USD for the current UTC day.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		metricDecisionsTotal,
		metricOrdersSubmittedTotal,
		metricOrdersFilledTotal,
		metricRiskBlocksTotal,
		metricBreakerActive,
		metricRealisedPnLUSD,
	)
}
