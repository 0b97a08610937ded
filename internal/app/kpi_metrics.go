package app

import (
	"math"
	"sync"
	"time"
)

const kpiWindow30d = 30 * 24 * time.Hour

type kpiPnLSample struct {
	at       time.Time
	realized float64
}

// kpiCollector accumulates the daily and trailing-30-day operational
// counters an admin surface would want: decisions by direction, orders
// submitted/filled, risk-gate denials by reason, breaker-active duration,
// and realised PnL. Adapted from the teacher's kpi_metrics.go — the same
// day-bucketed, mutex-guarded collector shape, with the maker/taker
// spread-capture and signal-realization tracking (market-making concerns,
// explicitly out of scope here) removed in favor of counters this
// architecture's decisions/orders/breakers actually produce.
type kpiCollector struct {
	mu sync.Mutex

	dayStartUTC time.Time
	lastUpdated time.Time

	decisionCountDaily      map[string]int // by domain.Direction
	submittedOrdersDaily    int
	filledOrdersDaily       int
	riskBlockEventsDaily    int
	riskBlockEventsByReason map[string]int

	breakerActive              bool
	breakerActiveSinceUTC      time.Time
	breakerActiveDurationDaily time.Duration

	currentRealizedPnL float64
	dailyBaselineSet   bool

	closedDayPnL []kpiPnLSample // one finalized daily total per completed UTC day
}

func newKPICollector() *kpiCollector {
	now := time.Now().UTC()
	return &kpiCollector{
		dayStartUTC:             startOfUTCDay(now),
		lastUpdated:             now,
		decisionCountDaily:      make(map[string]int),
		riskBlockEventsByReason: make(map[string]int),
	}
}

func startOfUTCDay(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

func (c *kpiCollector) ensureDayLocked(now time.Time) {
	day := startOfUTCDay(now)
	if day.Equal(c.dayStartUTC) {
		return
	}
	if c.breakerActive {
		since := c.breakerActiveSinceUTC
		if since.Before(c.dayStartUTC) {
			since = c.dayStartUTC
		}
		if day.After(since) {
			c.breakerActiveDurationDaily += day.Sub(since)
		}
		c.breakerActiveSinceUTC = day
	}
	if c.dailyBaselineSet {
		c.closedDayPnL = append(c.closedDayPnL, kpiPnLSample{at: c.dayStartUTC, realized: c.currentRealizedPnL})
	}
	cutoff := now.Add(-kpiWindow30d)
	for len(c.closedDayPnL) > 0 && c.closedDayPnL[0].at.Before(cutoff) {
		c.closedDayPnL = c.closedDayPnL[1:]
	}

	c.dayStartUTC = day
	c.decisionCountDaily = make(map[string]int)
	c.submittedOrdersDaily = 0
	c.filledOrdersDaily = 0
	c.riskBlockEventsDaily = 0
	c.riskBlockEventsByReason = make(map[string]int)
	c.breakerActiveDurationDaily = 0
	c.currentRealizedPnL = 0
	c.dailyBaselineSet = false
}

func (c *kpiCollector) recordDecision(now time.Time, direction string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureDayLocked(now)
	c.decisionCountDaily[direction]++
	c.lastUpdated = now
	metricDecisionsTotal.WithLabelValues(direction).Inc()
}

func (c *kpiCollector) recordOrderSubmitted(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureDayLocked(now)
	c.submittedOrdersDaily++
	c.lastUpdated = now
	metricOrdersSubmittedTotal.Inc()
}

func (c *kpiCollector) recordFill(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureDayLocked(now)
	c.filledOrdersDaily++
	c.lastUpdated = now
	metricOrdersFilledTotal.Inc()
}

func (c *kpiCollector) recordRiskBlock(now time.Time, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureDayLocked(now)
	c.riskBlockEventsDaily++
	if reason == "" {
		reason = "unknown"
	}
	c.riskBlockEventsByReason[reason]++
	c.lastUpdated = now
	metricRiskBlocksTotal.WithLabelValues(reason).Inc()
}

func (c *kpiCollector) setBreakerActive(now time.Time, active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureDayLocked(now)
	if c.breakerActive == active {
		return
	}
	if active {
		c.breakerActive = true
		c.breakerActiveSinceUTC = now
	} else {
		since := c.breakerActiveSinceUTC
		if since.Before(c.dayStartUTC) {
			since = c.dayStartUTC
		}
		if now.After(since) {
			c.breakerActiveDurationDaily += now.Sub(since)
		}
		c.breakerActive = false
		c.breakerActiveSinceUTC = time.Time{}
	}
	c.lastUpdated = now
	if active {
		metricBreakerActive.Set(1)
	} else {
		metricBreakerActive.Set(0)
	}
}

// recordPnLSample records realizedPnL, the running total for the UTC day
// containing now (per store.DailyPnLFor, which resets to zero each day).
func (c *kpiCollector) recordPnLSample(now time.Time, realizedPnL float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureDayLocked(now)
	c.currentRealizedPnL = realizedPnL
	c.dailyBaselineSet = true
	c.lastUpdated = now
	metricRealisedPnLUSD.Set(realizedPnL)
}

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }

// snapshot returns a point-in-time view suitable for an admin/status
// endpoint; it mutates nothing callers can observe beyond day-rollover.
func (c *kpiCollector) snapshot(now time.Time) map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureDayLocked(now)

	breakerDuration := c.breakerActiveDurationDaily
	if c.breakerActive {
		since := c.breakerActiveSinceUTC
		if since.Before(c.dayStartUTC) {
			since = c.dayStartUTC
		}
		if now.After(since) {
			breakerDuration += now.Sub(since)
		}
	}

	netPnL30d := 0.0
	for _, s := range c.closedDayPnL {
		netPnL30d += s.realized
	}
	dailyPnL := 0.0
	if c.dailyBaselineSet {
		dailyPnL = c.currentRealizedPnL
	}
	netPnL30d += dailyPnL

	decisions := make(map[string]any, len(c.decisionCountDaily))
	for k, v := range c.decisionCountDaily {
		decisions[k] = v
	}
	byReason := make(map[string]any, len(c.riskBlockEventsByReason))
	for k, v := range c.riskBlockEventsByReason {
		byReason[k] = v
	}

	return map[string]any{
		"decision_count_daily":              decisions,
		"submitted_orders_daily":            c.submittedOrdersDaily,
		"filled_orders_daily":               c.filledOrdersDaily,
		"risk_block_events_daily":           c.riskBlockEventsDaily,
		"risk_block_events_daily_by_reason": byReason,
		"breaker_active":                    c.breakerActive,
		"breaker_active_duration_s_daily":   round6(breakerDuration.Seconds()),
		"net_pnl_30d_realized_usd":          round6(netPnL30d),
		"net_pnl_daily_realized_usd":        round6(dailyPnL),
		"last_updated_at_utc":               now.UTC().Format(time.RFC3339),
	}
}
