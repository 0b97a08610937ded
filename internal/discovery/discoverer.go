package discovery

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/polybot/updown-trader/internal/domain"
	"github.com/polybot/updown-trader/internal/store"
)

// Discoverer resolves the {asset-prefix}-updown-15m-{boundary} slug protocol
// into concrete markets and serves their orderbooks.
type Discoverer struct {
	gamma *GammaClient
	clob  *CLOBClient
	st    *store.Store

	prefixes map[string]string // asset -> slug prefix, usually identical to the asset code
}

func NewDiscoverer(gamma *GammaClient, clob *CLOBClient, st *store.Store, prefixes map[string]string) *Discoverer {
	return &Discoverer{gamma: gamma, clob: clob, st: st, prefixes: prefixes}
}

// TradableMarket scans the {previous, current, next} 15-minute boundaries
// around now and returns the earliest-ending market that is active, matches
// asset, and will not close before now+closeBuffer (§4.1).
func (d *Discoverer) TradableMarket(ctx context.Context, asset string, now time.Time, closeBuffer time.Duration) (domain.Market, bool, error) {
	prefix, ok := d.prefixes[asset]
	if !ok {
		return domain.Market{}, false, fmt.Errorf("discovery: no slug prefix configured for asset %q", asset)
	}
	current := SnapTo900(now)
	boundaries := []int64{current - 900, current, current + 900}

	var candidates []domain.Market
	for _, b := range boundaries {
		slug := Slug(prefix, b)
		m, found, err := d.gamma.EventBySlug(ctx, slug)
		if err != nil {
			continue // a missing/malformed candidate is not fatal; try the others
		}
		if !found {
			continue
		}
		if d.st != nil {
			_ = d.st.UpsertMarket(ctx, m)
		}
		candidates = append(candidates, m)
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].EndTime.Before(candidates[j].EndTime) })
	for _, m := range candidates {
		if m.TradableAt(asset, now, closeBuffer) {
			return m, true, nil
		}
	}
	return domain.Market{}, false, nil
}

// Orderbook fetches the current book for tokenID and records a snapshot.
func (d *Discoverer) Orderbook(ctx context.Context, conditionID, tokenID string) (domain.Orderbook, error) {
	ob, err := d.clob.Orderbook(ctx, tokenID)
	if err != nil {
		return domain.Orderbook{}, err
	}
	if d.st != nil {
		_ = d.st.RecordMarketSnapshot(ctx, conditionID, ob)
	}
	return ob, nil
}

// HasLiquidity reports whether tokenID's top-10-level size depth on both
// sides, summed, is at least minUSD (§4.1 — bid_depth + ask_depth, the raw
// size sum domain.Depth already computes for market snapshots, not a
// notional price*size figure).
func (d *Discoverer) HasLiquidity(ctx context.Context, conditionID, tokenID string, minUSD float64) (bool, error) {
	ob, err := d.Orderbook(ctx, conditionID, tokenID)
	if err != nil {
		return false, err
	}
	depth := domain.Depth(ob.Bids, 10).Add(domain.Depth(ob.Asks, 10))
	f, _ := depth.Float64()
	return f >= minUSD, nil
}
