package discovery

import (
	"testing"
	"time"

	"github.com/polybot/updown-trader/internal/domain"
	"github.com/shopspring/decimal"
)

func decimalFromFloat(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestSnapTo900(t *testing.T) {
	// 2026-01-01T00:07:30Z is 450s past midnight; snaps back to midnight.
	tm := time.Date(2026, 1, 1, 0, 7, 30, 0, time.UTC)
	got := SnapTo900(tm)
	want := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	if got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestSlugAndAssetFromSlug(t *testing.T) {
	slug := Slug("BTC", 1700000000)
	if slug != "btc-updown-15m-1700000000" {
		t.Fatalf("unexpected slug: %s", slug)
	}
	if asset := assetFromSlug(slug); asset != "BTC" {
		t.Fatalf("expected BTC, got %s", asset)
	}
}

func TestParseTokenIDs(t *testing.T) {
	yes, no, err := parseTokenIDs(`["yes-id","no-id"]`)
	if err != nil {
		t.Fatal(err)
	}
	if yes != "yes-id" || no != "no-id" {
		t.Fatalf("unexpected token ids: %s %s", yes, no)
	}
	if _, _, err := parseTokenIDs(`["only-one"]`); err == nil {
		t.Fatal("expected error for fewer than 2 token ids")
	}
}

// HasLiquidity sums domain.Depth over both sides; this checks that Depth adds
// raw sizes (150), not price*size notional (70).
func TestHasLiquidityUsesSizeDepthNotNotional(t *testing.T) {
	levels := []domain.OrderbookLevel{
		{Price: decimalFromFloat(0.5), Size: decimalFromFloat(100)},
		{Price: decimalFromFloat(0.4), Size: decimalFromFloat(50)},
	}
	got := domain.Depth(levels, 2)
	f, _ := got.Float64()
	if f < 149.9 || f > 150.1 {
		t.Fatalf("expected raw size sum ~150, got %f", f)
	}
}
