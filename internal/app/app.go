// Package app is the Worker/Orchestrator: it owns the concurrency model of
// §5 (T1 price poll, T2 candle refresh piggybacked on T1, T3 the trading
// loop, T4 shutdown) and wires every other package into one running process.
// Grounded on the teacher's app.go — a struct holding every collaborator,
// a Run(ctx) loop built from tickers and a select, and a Shutdown(ctx) that
// cancels outstanding orders before returning.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/polybot/updown-trader/internal/config"
	"github.com/polybot/updown-trader/internal/discovery"
	"github.com/polybot/updown-trader/internal/domain"
	"github.com/polybot/updown-trader/internal/execution"
	"github.com/polybot/updown-trader/internal/feed"
	"github.com/polybot/updown-trader/internal/portfolio"
	"github.com/polybot/updown-trader/internal/risk"
	"github.com/polybot/updown-trader/internal/store"
	"github.com/polybot/updown-trader/internal/strategy"
	"github.com/shopspring/decimal"
)

// App wires the full pipeline together and drives the T1-T4 loops.
type App struct {
	cfg      config.Config
	st       *store.Store
	ingest   *feed.Ingester
	disc     *discovery.Discoverer
	gate     *risk.Gate
	exec     *execution.Module
	pm       *portfolio.Manager
	reload   *config.HotReloader
	kpi      *kpiCollector
	notifier Notifier
}

// Notifier is the subset of notify.Notifier the orchestrator alerts through
// directly (the risk gate and position manager each hold their own copy for
// the alerts they trigger).
type Notifier interface {
	NotifyBreakerTripped(ctx context.Context, name, reason string) error
}

func New(cfg config.Config, st *store.Store, ingest *feed.Ingester, disc *discovery.Discoverer, gate *risk.Gate, exec *execution.Module, pm *portfolio.Manager, reload *config.HotReloader) *App {
	return &App{cfg: cfg, st: st, ingest: ingest, disc: disc, gate: gate, exec: exec, pm: pm, reload: reload, kpi: newKPICollector()}
}

// SetNotifier wires an alert sink into the app. Optional: an App with no
// notifier just skips the alert call.
func (a *App) SetNotifier(n Notifier) { a.notifier = n }

// KPISnapshot exposes the operational counters for an admin/status surface.
func (a *App) KPISnapshot() map[string]any {
	return a.kpi.snapshot(time.Now().UTC())
}

// Run drives T1 (price poll), T2 (candle refresh, piggybacked on T1 inside
// feed.Ingester.Run), T3 (the trading loop), and listens for T4 (shutdown)
// until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	go a.ingest.Run(ctx, a.cfg.PricePollInterval, a.cfg.CandleRefreshInterval)
	go a.pm.Run(ctx, a.cfg.LoopInterval)

	loopInterval := a.cfg.LoopInterval
	if loopInterval <= 0 {
		loopInterval = 60 * time.Second
	}
	ticker := time.NewTicker(loopInterval)
	defer ticker.Stop()

	log.Printf("trading loop started: assets=%v interval=%s", a.cfg.Assets, loopInterval)

	for {
		select {
		case <-ctx.Done():
			return a.shutdown()
		case <-ticker.C:
			a.runCycle(ctx)
		}
	}
}

// runCycle fans out sequentially over configured assets, per §5 ("T3...
// sequential fan-out over assets" — no asset's decision races another's
// within the same tick).
func (a *App) runCycle(ctx context.Context) {
	cfg := a.reload.Current(ctx)
	now := time.Now().UTC()

	if daily, err := a.st.DailyPnLFor(ctx, now); err == nil {
		rp, _ := daily.RealisedPnL.Float64()
		a.kpi.recordPnLSample(now, rp)
	}
	if tripped, _, err := a.st.AnyTripped(ctx); err == nil {
		a.kpi.setBreakerActive(now, tripped || a.gate.InCooldown())
	}

	for _, asset := range a.cfg.Assets {
		if err := ctx.Err(); err != nil {
			return
		}
		a.evaluateAsset(ctx, asset, cfg)
	}
}

func (a *App) evaluateAsset(ctx context.Context, asset string, cfg config.TradingConfig) {
	threshold := time.Duration(cfg.StaleDataThresholdSeconds) * time.Second
	if a.ingest.IsStale(asset, threshold) {
		reason := "price feed stale for " + asset
		_ = a.st.TripBreaker(ctx, domain.BreakerStaleData, reason)
		if a.notifier != nil {
			_ = a.notifier.NotifyBreakerTripped(ctx, domain.BreakerStaleData, reason)
		}
		return
	}

	closeBuffer := time.Duration(cfg.MarketCloseBufferMinutes) * time.Minute
	market, ok, err := a.disc.TradableMarket(ctx, asset, time.Now().UTC(), closeBuffer)
	if err != nil {
		log.Printf("app: discover market for %s: %v", asset, err)
		return
	}
	if !ok {
		return
	}

	candles := a.ingest.Candles(asset, 0)
	sig := strategy.Evaluate(candles)
	decision := strategy.NewDecision(asset, market.ConditionID, time.Now().UTC(), sig)
	decisionID, err := a.st.RecordDecision(ctx, decision)
	if err != nil {
		log.Printf("app: record decision for %s: %v", asset, err)
		return
	}
	a.kpi.recordDecision(time.Now().UTC(), string(sig.Direction))
	if sig.Direction == domain.DirectionNeutral {
		return
	}

	tokenID := tokenForDirection(market, sig.Direction)

	ok, err = a.disc.HasLiquidity(ctx, market.ConditionID, tokenID, cfg.MinLiquidityUSD)
	if err != nil || !ok {
		return
	}

	// The exposure/open-count/daily-loss checks below and the order insert
	// Submit performs inside the callback run under the gate's own critical
	// section (§5/§9), so two assets evaluated concurrently can never both
	// pass the same check before either one's order lands.
	sizeUSD := cfg.PortfolioSizeUSD * cfg.PortfolioTradePct / 100
	var price, size decimal.Decimal
	var order domain.Order
	riskDecision, err := a.gate.EvaluateAndSubmit(ctx, asset, sizeUSD, cfg, func() error {
		ob, err := a.disc.Orderbook(ctx, market.ConditionID, tokenID)
		if err != nil {
			return fmt.Errorf("orderbook: %w", err)
		}
		price, err = execution.MarketableLimitPrice(ob, domain.SideBuy, cfg.SlippageBps)
		if err != nil {
			return fmt.Errorf("marketable limit: %w", err)
		}
		size = priceToSize(price, sizeUSD)

		order, err = a.exec.Submit(ctx, domain.Order{
			ConditionID: market.ConditionID,
			DecisionID:  &decisionID,
			TokenID:     tokenID,
			Side:        domain.SideBuy,
			Price:       price,
			Size:        size,
		})
		return err
	})
	if err != nil {
		log.Printf("app: risk gate/submit for %s: %v", asset, err)
		return
	}
	if !riskDecision.Allow {
		log.Printf("app: risk gate denied %s: %s", asset, riskDecision.Reason)
		a.kpi.recordRiskBlock(time.Now().UTC(), riskDecision.Reason)
		return
	}
	a.kpi.recordOrderSubmitted(time.Now().UTC())
	if order.Status == domain.OrderSimulated {
		// a simulated order has no venue round trip to confirm a fill against,
		// so it counts as filled - and folded into the position - the moment
		// it is accepted locally. A venue-accepted order instead waits for a
		// live fill-confirmation channel this build does not have wired (see
		// DESIGN.md).
		a.kpi.recordFill(time.Now().UTC())
		positionSide := domain.PositionYes
		if sig.Direction == domain.DirectionDown {
			positionSide = domain.PositionNo
		}
		// entries always submit a marketable limit too, so the fee side is taker.
		fee := execution.CalculateOrderValue(price, size, false).Fee
		if _, err := a.pm.ApplyFill(ctx, asset, market.ConditionID, tokenID, positionSide, price, size, fee, time.Now().UTC()); err != nil {
			log.Printf("app: apply fill for %s: %v", asset, err)
		}
	}
	if order.Status != domain.OrderRejected && order.Status != domain.OrderError {
		_ = a.st.MarkDecisionExecuted(ctx, decisionID, order.ID)
	}
}

func tokenForDirection(m domain.Market, dir domain.Direction) string {
	if dir == domain.DirectionUp {
		return m.YesTokenID
	}
	return m.NoTokenID
}

func priceToSize(price decimal.Decimal, sizeUSD float64) decimal.Decimal {
	if price.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromFloat(sizeUSD).Div(price)
}

// shutdown finishes in-flight work, cancels every outstanding order, and
// returns — §5 T4's contract.
func (a *App) shutdown() error {
	log.Println("shutting down: cancelling outstanding orders")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.exec.CancelAll(ctx); err != nil {
		log.Printf("app: cancel all on shutdown: %v", err)
		return err
	}
	log.Println("shutdown complete")
	return nil
}
