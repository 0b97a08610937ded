package portfolio

import (
	"testing"
	"time"

	"github.com/polybot/updown-trader/internal/domain"
	"github.com/shopspring/decimal"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func TestFoldFillOpensNewPosition(t *testing.T) {
	pos := domain.Position{AvgEntryPrice: dec(0.60)}
	pos, realised := foldFill(pos, dec(0.60), dec(10), time.Now())
	if !pos.Size.Equal(dec(10)) {
		t.Fatalf("expected size 10, got %s", pos.Size)
	}
	if !realised.IsZero() {
		t.Fatalf("expected no realised pnl on open, got %s", realised)
	}
}

func TestFoldFillAveragesEntryOnAdd(t *testing.T) {
	pos := domain.Position{Size: dec(10), AvgEntryPrice: dec(0.50)}
	pos, _ = foldFill(pos, dec(0.70), dec(10), time.Now())
	if !pos.Size.Equal(dec(20)) {
		t.Fatalf("expected size 20, got %s", pos.Size)
	}
	if !pos.AvgEntryPrice.Equal(dec(0.60)) {
		t.Fatalf("expected avg entry 0.60, got %s", pos.AvgEntryPrice)
	}
}

func TestFoldFillPartialCloseRealisesPnL(t *testing.T) {
	pos := domain.Position{Size: dec(10), AvgEntryPrice: dec(0.50), Status: domain.PositionOpen}
	pos, realised := foldFill(pos, dec(0.70), dec(-4), time.Now())
	if !realised.Equal(dec(0.80)) {
		t.Fatalf("expected realised pnl 0.80, got %s", realised)
	}
	if !pos.Size.Equal(dec(6)) {
		t.Fatalf("expected remaining size 6, got %s", pos.Size)
	}
	if pos.Status != domain.PositionOpen {
		t.Fatalf("expected position to stay open, got %s", pos.Status)
	}
}

func TestFoldFillFullCloseTransitionsClosed(t *testing.T) {
	pos := domain.Position{Size: dec(10), AvgEntryPrice: dec(0.50), Status: domain.PositionOpen}
	at := time.Now()
	pos, realised := foldFill(pos, dec(0.80), dec(-10), at)
	if !realised.Equal(dec(3.0)) {
		t.Fatalf("expected realised pnl 3.0, got %s", realised)
	}
	if pos.Status != domain.PositionClosed {
		t.Fatalf("expected position closed, got %s", pos.Status)
	}
	if pos.ClosedAt == nil {
		t.Fatal("expected ClosedAt to be set")
	}
	if !pos.Size.IsZero() {
		t.Fatalf("expected size 0, got %s", pos.Size)
	}
}

func TestFoldFillOverclosingClampsToPositionSize(t *testing.T) {
	pos := domain.Position{Size: dec(5), AvgEntryPrice: dec(0.50), Status: domain.PositionOpen}
	pos, realised := foldFill(pos, dec(0.60), dec(-100), time.Now())
	if !realised.Equal(dec(0.50)) {
		t.Fatalf("expected realised pnl for only 5 units closed, got %s", realised)
	}
	if !pos.Size.IsZero() {
		t.Fatalf("expected size clamped to 0, got %s", pos.Size)
	}
}
