// Package portfolio is the Position Manager (§4.6): it folds fills into
// positions, runs the per-cycle exit pass against the live order book, and
// keeps the daily PnL ledger. Grounded on the teacher's portfolio/tracker.go
// for its mutex-guarded periodic-sync shape (Sync/Run/ticker), widened from
// syncing a remote Data API into folding locally-observed fills.
package portfolio

import (
	"context"
	"log"
	"time"

	"github.com/polybot/updown-trader/internal/discovery"
	"github.com/polybot/updown-trader/internal/domain"
	"github.com/polybot/updown-trader/internal/execution"
	"github.com/polybot/updown-trader/internal/risk"
	"github.com/polybot/updown-trader/internal/store"
	"github.com/shopspring/decimal"
)

// Manager folds fills into positions and runs the exit pass.
type Manager struct {
	st       *store.Store
	disc     *discovery.Discoverer
	exec     *execution.Module
	gate     *risk.Gate
	notifier Notifier
	takeProf float64
	stopLoss float64
}

// Notifier is the subset of notify.Notifier the Position Manager alerts
// through when a position closes.
type Notifier interface {
	NotifyExit(ctx context.Context, assetID, reason string, realisedPnL float64) error
}

func NewManager(st *store.Store, disc *discovery.Discoverer, exec *execution.Module, gate *risk.Gate, takeProfitPct, stopLossPct float64) *Manager {
	return &Manager{st: st, disc: disc, exec: exec, gate: gate, takeProf: takeProfitPct, stopLoss: stopLossPct}
}

// SetNotifier wires an alert sink into the manager. Optional: a Manager with
// no notifier just skips the alert call.
func (m *Manager) SetNotifier(n Notifier) { m.notifier = n }

// ApplyFill folds one trade fill into the position for (conditionID, tokenID,
// asset, side), per §4.6: size-weighted average entry when growing, a
// proportional realized-PnL decrement (closing when it reaches zero) when
// shrinking.
func (m *Manager) ApplyFill(ctx context.Context, asset, conditionID, tokenID string, side domain.PositionSide, fillPrice, sizeChange decimal.Decimal, fee decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	existing, found, err := m.st.PositionForToken(ctx, conditionID, tokenID)
	if err != nil {
		return decimal.Zero, err
	}

	pos := existing
	if !found {
		pos = domain.Position{
			ConditionID:   conditionID,
			Asset:         asset,
			TokenID:       tokenID,
			Side:          side,
			Status:        domain.PositionOpen,
			OpenedAt:      at,
			AvgEntryPrice: fillPrice,
		}
	}

	pos, realised := foldFill(pos, fillPrice, sizeChange, at)

	if err := m.st.UpsertPosition(ctx, pos); err != nil {
		return decimal.Zero, err
	}

	if !realised.IsZero() {
		if err := m.st.ApplyRealisedFill(ctx, at, realised, fee); err != nil {
			return decimal.Zero, err
		}
		m.gate.RecordTradeResult(realised)
	}
	return realised, nil
}

// foldFill applies one fill to pos and returns the updated position plus
// any realised PnL booked by it — the size-weighted-average-entry /
// proportional-realisation rule of §4.6, pulled out as a pure function so it
// can be tested without a store.
func foldFill(pos domain.Position, fillPrice, sizeChange decimal.Decimal, at time.Time) (domain.Position, decimal.Decimal) {
	var realised decimal.Decimal
	if sizeChange.GreaterThan(decimal.Zero) {
		totalCost := pos.AvgEntryPrice.Mul(pos.Size).Add(fillPrice.Mul(sizeChange))
		pos.Size = pos.Size.Add(sizeChange)
		if pos.Size.GreaterThan(decimal.Zero) {
			pos.AvgEntryPrice = totalCost.Div(pos.Size)
		}
		return pos, realised
	}

	closing := sizeChange.Neg()
	if closing.GreaterThan(pos.Size) {
		closing = pos.Size
	}
	realised = fillPrice.Sub(pos.AvgEntryPrice).Mul(closing)
	pos.RealisedPnL = pos.RealisedPnL.Add(realised)
	pos.Size = pos.Size.Sub(closing)
	if pos.Size.LessThanOrEqual(decimal.Zero) {
		pos.Size = decimal.Zero
		pos.Status = domain.PositionClosed
		now := at
		pos.ClosedAt = &now
	}
	return pos, realised
}

// RunExitPass evaluates every open position's exit predicate against the
// live order book and submits a marketable SELL on a hit. A position whose
// order book is unavailable is skipped — §4.6 forbids a forced exit without
// a quote.
func (m *Manager) RunExitPass(ctx context.Context) {
	positions, err := m.st.OpenPositions(ctx)
	if err != nil {
		log.Printf("portfolio: list open positions: %v", err)
		return
	}
	for _, p := range positions {
		if err := m.evaluateExit(ctx, p); err != nil {
			log.Printf("portfolio: exit pass %s/%s: %v", p.ConditionID, p.TokenID, err)
		}
	}
}

func (m *Manager) evaluateExit(ctx context.Context, p domain.Position) error {
	ob, err := m.disc.Orderbook(ctx, p.ConditionID, p.TokenID)
	if err != nil {
		return nil // no-book: skip, no forced exit
	}
	bid, okBid := ob.BestBid()
	ask, okAsk := ob.BestAsk()
	if !okBid || !okAsk {
		return nil
	}
	mid := bid.Price.Add(ask.Price).Div(decimal.NewFromInt(2))
	midF, _ := mid.Float64()
	entryF, _ := p.AvgEntryPrice.Float64()

	levels := risk.ComputeExitLevels(p.Side, entryF, m.takeProf, m.stopLoss)
	if !risk.ShouldExit(p.Side, midF, levels) {
		return nil
	}
	reason := exitReason(p.Side, midF, levels)

	price, err := execution.MarketableLimitPrice(ob, domain.SideSell, execution.DefaultSlippageBps)
	if err != nil {
		return err
	}
	order, err := m.exec.Submit(ctx, domain.Order{
		ConditionID: p.ConditionID,
		TokenID:     p.TokenID,
		Side:        domain.SideSell,
		Price:       price,
		Size:        p.Size,
	})
	if err != nil {
		return err
	}

	if order.Status == domain.OrderSimulated {
		// see the matching note in app.evaluateAsset: a simulated order folds
		// into the position immediately since there is no venue fill to wait on.
		// Exits always submit a marketable limit, so the fee side is always taker.
		fee := execution.CalculateOrderValue(price, p.Size, false).Fee
		realised, err := m.ApplyFill(ctx, p.Asset, p.ConditionID, p.TokenID, p.Side, price, p.Size.Neg(), fee, time.Now().UTC())
		if err != nil {
			return err
		}
		if m.notifier != nil {
			realisedF, _ := realised.Float64()
			_ = m.notifier.NotifyExit(ctx, p.Asset, reason, realisedF)
		}
	}
	return nil
}

// exitReason names which exit level the mid price crossed, for alerting.
func exitReason(side domain.PositionSide, mid float64, levels risk.ExitLevels) string {
	hitTake := (side == domain.PositionNo && mid <= levels.TakeProfit) || (side != domain.PositionNo && mid >= levels.TakeProfit)
	if hitTake {
		return "take_profit"
	}
	return "stop_loss"
}

// Run ticks RunExitPass on an interval; cancellation stops it.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.RunExitPass(ctx)
		}
	}
}
