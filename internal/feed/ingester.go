package feed

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/polybot/updown-trader/internal/domain"
	"github.com/polybot/updown-trader/internal/store"
)

type priceEntry struct {
	price domain.SpotPrice
	at    time.Time
}

// Ingester owns the volatile in-memory latest-price cache named in §4.1 —
// no other component is allowed to hold its own copy of the latest tick.
// Structurally this replaces the teacher's BookSnapshot (internal/feed/feed.go),
// which cached orderbook events off the SDK's websocket client; this version
// caches spot ticks off the polling Client instead, guarded the same way
// (sync.RWMutex over a map keyed by symbol).
type Ingester struct {
	client *Client
	st     *store.Store
	pairs  map[string]string // asset -> venue pair, e.g. "BTC" -> "BTC-USD"

	mu     sync.RWMutex
	latest map[string]priceEntry

	candleMu sync.RWMutex
	candles  map[string][]domain.Candle
}

func NewIngester(client *Client, st *store.Store, pairs map[string]string) *Ingester {
	return &Ingester{
		client: client,
		st:     st,
		pairs:  pairs,
		latest: make(map[string]priceEntry),
		candles: make(map[string][]domain.Candle),
	}
}

// LatestPrice returns the most recent cached tick for asset.
func (in *Ingester) LatestPrice(asset string) (domain.SpotPrice, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	e, ok := in.latest[asset]
	if !ok {
		return domain.SpotPrice{}, false
	}
	return e.price, true
}

// IsStale reports whether asset's cached price is older than threshold, or
// whether no price has ever been observed.
func (in *Ingester) IsStale(asset string, threshold time.Duration) bool {
	in.mu.RLock()
	e, ok := in.latest[asset]
	in.mu.RUnlock()
	if !ok {
		return true
	}
	return time.Since(e.at) > threshold
}

// Candles returns the last n cached 15-minute bars for asset, oldest first;
// n <= 0 returns every cached bar.
func (in *Ingester) Candles(asset string, n int) []domain.Candle {
	in.candleMu.RLock()
	defer in.candleMu.RUnlock()
	all := in.candles[asset]
	if n <= 0 || len(all) <= n {
		out := make([]domain.Candle, len(all))
		copy(out, all)
		return out
	}
	out := make([]domain.Candle, n)
	copy(out, all[len(all)-n:])
	return out
}

// ChangePct15m returns (close[-1] - close[-2]) / close[-2] * 100 over the two
// most recently cached 15-minute candles, or (0, false) if fewer than two are
// cached.
func (in *Ingester) ChangePct15m(asset string) (float64, bool) {
	cs := in.Candles(asset, 2)
	if len(cs) < 2 {
		return 0, false
	}
	prev, last := cs[0], cs[1]
	if prev.Close.IsZero() {
		return 0, false
	}
	pct, _ := last.Close.Sub(prev.Close).Div(prev.Close).Float64()
	return pct * 100, true
}

// Run polls spot prices every pollInterval (T1) and refreshes candles every
// candleInterval on the same ticker (T2 piggybacked on T1, per §4.1/§4.7),
// until ctx is cancelled.
func (in *Ingester) Run(ctx context.Context, pollInterval, candleInterval time.Duration) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	lastCandleRefresh := make(map[string]time.Time, len(in.pairs))

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for asset, pair := range in.pairs {
				in.pollOne(ctx, asset, pair)
				if last, ok := lastCandleRefresh[asset]; !ok || now.Sub(last) >= candleInterval {
					in.refreshCandles(ctx, asset, pair)
					lastCandleRefresh[asset] = now
				}
			}
		}
	}
}

func (in *Ingester) pollOne(ctx context.Context, asset, pair string) {
	sp, err := in.client.Spot(ctx, pair)
	if err != nil {
		log.Printf("feed: spot poll %s: %v", asset, err)
		return
	}
	sp.Symbol = asset
	in.mu.Lock()
	in.latest[asset] = priceEntry{price: sp, at: time.Now().UTC()}
	in.mu.Unlock()
	if in.st != nil {
		if err := in.st.RecordPrice(ctx, sp); err != nil {
			log.Printf("feed: record price %s: %v", asset, err)
		}
	}
}

func (in *Ingester) refreshCandles(ctx context.Context, asset, pair string) {
	cs, err := in.client.Candles(ctx, pair)
	if err != nil {
		log.Printf("feed: candle refresh %s: %v", asset, err)
		return
	}
	for i := range cs {
		cs[i].Symbol = asset
	}
	in.candleMu.Lock()
	in.candles[asset] = cs
	in.candleMu.Unlock()
	if in.st == nil {
		return
	}
	for _, c := range cs {
		if err := in.st.UpsertCandle(ctx, c); err != nil {
			log.Printf("feed: upsert candle %s: %v", asset, err)
		}
	}
}

// AssetFor returns the configured venue pair for an asset, for callers that
// need to report misconfiguration explicitly rather than silently skip it.
func (in *Ingester) AssetFor(asset string) (string, error) {
	pair, ok := in.pairs[asset]
	if !ok {
		return "", fmt.Errorf("feed: no pair configured for asset %q", asset)
	}
	return pair, nil
}
