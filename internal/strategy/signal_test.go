package strategy

import (
	"testing"
	"time"

	"github.com/polybot/updown-trader/internal/domain"
	"github.com/shopspring/decimal"
)

func candle(i int, close float64) domain.Candle {
	d := decimal.NewFromFloat(close)
	return domain.Candle{
		Symbol:    "BTC",
		OpenTime:  time.Unix(int64(i)*900, 0),
		Open:      d,
		High:      d.Add(decimal.NewFromFloat(0.5)),
		Low:       d.Sub(decimal.NewFromFloat(0.5)),
		Close:     d,
		Volume:    decimal.NewFromInt(100),
	}
}

func TestEvaluateInsufficientData(t *testing.T) {
	sig := Evaluate(make([]domain.Candle, 5))
	if sig.Direction != domain.DirectionNeutral {
		t.Fatalf("expected NEUTRAL, got %s", sig.Direction)
	}
	if sig.Confidence != 0 {
		t.Fatalf("expected 0 confidence, got %f", sig.Confidence)
	}
	if sig.Reason != "insufficient data" {
		t.Fatalf("expected insufficient-data reason, got %q", sig.Reason)
	}
}

func TestEvaluateStrongUptrend(t *testing.T) {
	candles := make([]domain.Candle, 25)
	price := 100.0
	for i := range candles {
		candles[i] = candle(i, price)
		price *= 1.01 // steady 1% per bar climb
	}
	sig := Evaluate(candles)
	if sig.Direction != domain.DirectionUp {
		t.Fatalf("expected UP for a steady uptrend, got %s (features=%v)", sig.Direction, sig.Features)
	}
	if sig.Confidence <= 0 || sig.Confidence > 0.95 {
		t.Fatalf("expected confidence in (0, 0.95], got %f", sig.Confidence)
	}
}

func TestEvaluateStrongDowntrend(t *testing.T) {
	candles := make([]domain.Candle, 25)
	price := 100.0
	for i := range candles {
		candles[i] = candle(i, price)
		price *= 0.99
	}
	sig := Evaluate(candles)
	if sig.Direction != domain.DirectionDown {
		t.Fatalf("expected DOWN for a steady downtrend, got %s", sig.Direction)
	}
}

func TestEvaluateFlatIsNeutral(t *testing.T) {
	candles := make([]domain.Candle, 25)
	for i := range candles {
		candles[i] = candle(i, 100)
	}
	sig := Evaluate(candles)
	if sig.Direction != domain.DirectionNeutral {
		t.Fatalf("expected NEUTRAL for a flat series, got %s", sig.Direction)
	}
	if sig.Confidence != 0 {
		t.Fatalf("expected 0 confidence for NEUTRAL, got %f", sig.Confidence)
	}
}

func TestRSINoLosses(t *testing.T) {
	returns := make([]float64, 14)
	for i := range returns {
		returns[i] = 0.01
	}
	if got := rsi(returns, 14); got != 100 {
		t.Fatalf("expected 100 with no losses, got %f", got)
	}
}

func TestRSIUnderWindowed(t *testing.T) {
	if got := rsi([]float64{0.01, -0.01}, 14); got != 50 {
		t.Fatalf("expected 50 when under-windowed, got %f", got)
	}
}

func TestTrendSlopeSign(t *testing.T) {
	up := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if s := trendSlope(up, 10); s <= 0 {
		t.Fatalf("expected positive slope for rising series, got %f", s)
	}
	down := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	if s := trendSlope(down, 10); s >= 0 {
		t.Fatalf("expected negative slope for falling series, got %f", s)
	}
}
