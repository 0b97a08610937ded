package feed

import (
	"testing"
	"time"

	"github.com/polybot/updown-trader/internal/domain"
	"github.com/shopspring/decimal"
)

func newTestIngester() *Ingester {
	return NewIngester(NewClient("http://example.invalid"), nil, map[string]string{"BTC": "BTC-USD"})
}

func TestIngesterLatestPriceMissing(t *testing.T) {
	in := newTestIngester()
	if _, ok := in.LatestPrice("BTC"); ok {
		t.Fatal("expected no cached price before first poll")
	}
	if !in.IsStale("BTC", time.Second) {
		t.Fatal("expected asset with no observations to be stale")
	}
}

func TestIngesterLatestPriceAndStaleness(t *testing.T) {
	in := newTestIngester()
	in.mu.Lock()
	in.latest["BTC"] = priceEntry{
		price: domain.SpotPrice{Symbol: "BTC", Price: decimal.NewFromInt(65000), Timestamp: time.Now().UTC()},
		at:    time.Now().UTC(),
	}
	in.mu.Unlock()

	p, ok := in.LatestPrice("BTC")
	if !ok {
		t.Fatal("expected cached price")
	}
	if !p.Price.Equal(decimal.NewFromInt(65000)) {
		t.Fatalf("expected 65000, got %s", p.Price)
	}
	if in.IsStale("BTC", time.Minute) {
		t.Fatal("expected fresh price to not be stale")
	}

	in.mu.Lock()
	in.latest["BTC"] = priceEntry{price: p, at: time.Now().Add(-time.Hour)}
	in.mu.Unlock()
	if !in.IsStale("BTC", time.Minute) {
		t.Fatal("expected hour-old price to be stale against a one-minute threshold")
	}
}

func TestIngesterChangePct15m(t *testing.T) {
	in := newTestIngester()
	in.candleMu.Lock()
	in.candles["BTC"] = []domain.Candle{
		{Symbol: "BTC", Open: decimal.NewFromInt(95), Close: decimal.NewFromInt(100)},
		{Symbol: "BTC", Open: decimal.NewFromInt(100), Close: decimal.NewFromInt(105)},
	}
	in.candleMu.Unlock()

	pct, ok := in.ChangePct15m("BTC")
	if !ok {
		t.Fatal("expected a change percentage with two cached candles")
	}
	if pct < 4.99 || pct > 5.01 {
		t.Fatalf("expected ~5%%, got %f", pct)
	}
}

func TestIngesterChangePct15mInsufficientCandles(t *testing.T) {
	in := newTestIngester()
	in.candleMu.Lock()
	in.candles["BTC"] = []domain.Candle{
		{Symbol: "BTC", Open: decimal.NewFromInt(100), Close: decimal.NewFromInt(105)},
	}
	in.candleMu.Unlock()

	if _, ok := in.ChangePct15m("BTC"); ok {
		t.Fatal("expected no change percentage with fewer than two cached candles")
	}
}

func TestIngesterCandlesWindow(t *testing.T) {
	in := newTestIngester()
	in.candleMu.Lock()
	in.candles["BTC"] = []domain.Candle{
		{OpenTime: time.Unix(1, 0)},
		{OpenTime: time.Unix(2, 0)},
		{OpenTime: time.Unix(3, 0)},
	}
	in.candleMu.Unlock()

	got := in.Candles("BTC", 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(got))
	}
	if got[1].OpenTime.Unix() != 3 {
		t.Fatalf("expected most recent candle last, got open_time %d", got[1].OpenTime.Unix())
	}
}

func TestIngesterAssetForUnknown(t *testing.T) {
	in := newTestIngester()
	if _, err := in.AssetFor("DOGE"); err == nil {
		t.Fatal("expected error for unconfigured asset")
	}
}
