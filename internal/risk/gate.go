// Package risk is the Risk Gate (§4.4): the authoritative yes/no for every
// state change and every candidate order, plus the exit-pricing formulas the
// Position Manager's exit pass consumes. Grounded on the teacher's
// risk/manager.go — a mutex-protected Manager wrapping Config, returning
// fmt.Errorf reasons from layered checks, exposing a Snapshot() — widened
// from the teacher's in-memory counters to the full persisted state machine
// and named-breaker set in internal/store.
package risk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/polybot/updown-trader/internal/config"
	"github.com/polybot/updown-trader/internal/domain"
	"github.com/polybot/updown-trader/internal/store"
	"github.com/shopspring/decimal"
)

const feeBuffer = 0.02

// Gate evaluates state transitions and candidate orders against persisted
// risk state. It holds no authoritative state itself beyond the teacher's
// consecutive-loss cooldown, which §9 treats as a soft gate layered on top
// of, not a replacement for, the named breakers.
type Gate struct {
	st       *store.Store
	notifier Notifier

	mu                sync.Mutex
	consecutiveLosses int
	cooldownUntil     time.Time
	maxConsecutive    int
	cooldown          time.Duration

	// critSection serializes Evaluate against EvaluateAndSubmit's own submit
	// step so two candidate orders can never both observe the same
	// exposure/open-count/daily-loss state as passing before either one's
	// order is inserted — the "pass-then-insert" critical section, held here
	// as an application-level mutex
	// rather than a DB transaction since the submit step reaches out over
	// the network (orderbook fetch, venue POST) and a held-open SQL
	// transaction across that round trip would be worse practice than this.
	critSection sync.Mutex
}

// Notifier is the subset of notify.Notifier the Risk Gate alerts through
// when a breaker trips or a consecutive-loss cooldown engages.
type Notifier interface {
	NotifyBreakerTripped(ctx context.Context, name, reason string) error
	NotifyHalted(ctx context.Context, state, reason string) error
	NotifyRiskCooldown(ctx context.Context, consecutiveLosses, maxConsecutiveLosses int, cooldownRemaining time.Duration) error
}

func NewGate(st *store.Store, maxConsecutiveLosses int, cooldown time.Duration) *Gate {
	return &Gate{st: st, maxConsecutive: maxConsecutiveLosses, cooldown: cooldown}
}

// SetNotifier wires an alert sink into the gate. Optional: a Gate with no
// notifier just skips the alert calls.
func (g *Gate) SetNotifier(n Notifier) { g.notifier = n }

// Decision is the Risk Gate's verdict on one candidate order.
type Decision struct {
	Allow  bool
	Reason string
}

func deny(format string, args ...any) Decision {
	return Decision{Allow: false, Reason: fmt.Sprintf(format, args...)}
}

// Evaluate runs the seven layered checks in §4.4's order for a candidate
// order of sizeUSD on asset, given the live trading config and portfolio
// value. The daily-loss check (layer 3) force-transitions BotState itself
// when it fires.
func (g *Gate) Evaluate(ctx context.Context, asset string, sizeUSD float64, cfg config.TradingConfig) (Decision, error) {
	g.critSection.Lock()
	defer g.critSection.Unlock()
	return g.evaluateLocked(ctx, asset, sizeUSD, cfg)
}

// EvaluateAndSubmit runs the same checks as Evaluate, and on an Allow verdict
// calls submit before releasing the critical section — so the caller's order
// insert can never straddle two concurrent candidates that both read the gate
// as passing. submit is only called when the verdict allows the trade.
func (g *Gate) EvaluateAndSubmit(ctx context.Context, asset string, sizeUSD float64, cfg config.TradingConfig, submit func() error) (Decision, error) {
	g.critSection.Lock()
	defer g.critSection.Unlock()
	decision, err := g.evaluateLocked(ctx, asset, sizeUSD, cfg)
	if err != nil || !decision.Allow {
		return decision, err
	}
	if err := submit(); err != nil {
		return decision, err
	}
	return decision, nil
}

func (g *Gate) evaluateLocked(ctx context.Context, asset string, sizeUSD float64, cfg config.TradingConfig) (Decision, error) {
	// 1. Bot state.
	state, err := g.st.CurrentBotState(ctx)
	if err != nil {
		return Decision{}, err
	}
	if state != domain.StateRunning {
		return deny("bot state is %s, not RUNNING", state), nil
	}

	// 2. Tripped breakers.
	tripped, name, err := g.st.AnyTripped(ctx)
	if err != nil {
		return Decision{}, err
	}
	if tripped {
		return deny("breaker %s is tripped", name), nil
	}

	// 3. Daily loss.
	today, err := g.st.DailyPnLFor(ctx, time.Now())
	if err != nil {
		return Decision{}, err
	}
	if today.RealisedPnL.Neg().GreaterThanOrEqual(decimal.NewFromFloat(cfg.DailyLossLimitUSD)) {
		if err := g.tripDailyLoss(ctx, today.RealisedPnL); err != nil {
			return Decision{}, err
		}
		return deny("daily realised loss %s >= limit %.2f", today.RealisedPnL.String(), cfg.DailyLossLimitUSD), nil
	}

	// Soft gate: consecutive-loss cooldown (not a named breaker, kept from the teacher).
	if g.InCooldown() {
		return deny("consecutive-loss cooldown active: %s remaining", g.CooldownRemaining()), nil
	}

	portfolioValue := cfg.PortfolioSizeUSD

	// 4. Trade size.
	if sizeUSD > portfolioValue*cfg.PortfolioTradePct/100 {
		return deny("size %.2f exceeds portfolio_trade_pct cap %.2f", sizeUSD, portfolioValue*cfg.PortfolioTradePct/100), nil
	}

	// 5. Per-market cap.
	if sizeUSD > cfg.MaxMarketUSD {
		return deny("size %.2f exceeds max_market_usd %.2f", sizeUSD, cfg.MaxMarketUSD), nil
	}

	// 6. Correlation basket.
	totalExposure, err := g.totalExposure(ctx)
	if err != nil {
		return Decision{}, err
	}
	basketCap := portfolioValue * cfg.CorrelationMaxBasketPct / 100
	totalF, _ := totalExposure.Float64()
	_ = g.st.RecordRiskMetric(ctx, asset, "total_exposure_usd", totalF)
	if totalF+sizeUSD > basketCap {
		return deny("basket exposure %.2f + size %.2f exceeds cap %.2f", totalF, sizeUSD, basketCap), nil
	}

	// 7. Open positions.
	open, err := g.st.OpenPositions(ctx)
	if err != nil {
		return Decision{}, err
	}
	_ = g.st.RecordRiskMetric(ctx, asset, "open_position_count", float64(len(open)))
	if len(open) >= cfg.MaxOpenPositions {
		return deny("open position count %d >= max_open_positions %d", len(open), cfg.MaxOpenPositions), nil
	}

	return Decision{Allow: true}, nil
}

func (g *Gate) tripDailyLoss(ctx context.Context, pnl decimal.Decimal) error {
	reason := fmt.Sprintf("daily realised pnl %s", pnl)
	if err := g.st.TripBreaker(ctx, domain.BreakerDailyLossLimit, reason); err != nil {
		return err
	}
	if g.notifier != nil {
		_ = g.notifier.NotifyBreakerTripped(ctx, domain.BreakerDailyLossLimit, reason)
	}
	// §4.4: tripping daily_loss_limit force-transitions to HALTED_CIRCUIT_BREAKER;
	// this supersedes the HALTED_DAILY_LOSS label itself, which remains reachable
	// via an explicit administrative transition for operators who want a lighter
	// pause than a breaker trip (see DESIGN.md).
	if err := g.st.TransitionBotState(ctx, domain.StateHaltedCircuitBreaker, "risk_gate", "daily loss limit breached"); err != nil {
		return err
	}
	if g.notifier != nil {
		_ = g.notifier.NotifyHalted(ctx, string(domain.StateHaltedCircuitBreaker), "daily loss limit breached")
	}
	return nil
}

// Exposure computes Σ(position.size * avg_entry_price) for asset's open positions.
func (g *Gate) Exposure(ctx context.Context, asset string) (decimal.Decimal, error) {
	positions, err := g.st.OpenPositionsForAsset(ctx, asset)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, p := range positions {
		sum = sum.Add(p.Exposure())
	}
	return sum, nil
}

func (g *Gate) totalExposure(ctx context.Context) (decimal.Decimal, error) {
	positions, err := g.st.OpenPositions(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, p := range positions {
		sum = sum.Add(p.Exposure())
	}
	return sum, nil
}

// RecordTradeResult feeds a closing trade's realised PnL into the
// consecutive-loss cooldown, mirroring the teacher's RecordTradeResult.
func (g *Gate) RecordTradeResult(realisedDelta decimal.Decimal) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if realisedDelta.IsNegative() {
		g.consecutiveLosses++
	} else if realisedDelta.IsPositive() {
		g.consecutiveLosses = 0
	}
	if g.maxConsecutive <= 0 || g.consecutiveLosses < g.maxConsecutive {
		return false
	}
	cooldown := g.cooldown
	if cooldown <= 0 {
		cooldown = 15 * time.Minute
	}
	g.cooldownUntil = time.Now().Add(cooldown)
	if g.notifier != nil {
		_ = g.notifier.NotifyRiskCooldown(context.Background(), g.consecutiveLosses, g.maxConsecutive, cooldown)
	}
	return true
}

func (g *Gate) InCooldown() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inCooldownLocked()
}

func (g *Gate) inCooldownLocked() bool {
	return !g.cooldownUntil.IsZero() && time.Now().Before(g.cooldownUntil)
}

func (g *Gate) CooldownRemaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.inCooldownLocked() {
		return 0
	}
	return time.Until(g.cooldownUntil)
}
