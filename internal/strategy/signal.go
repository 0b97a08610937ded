// Package strategy holds the Signal Generator (§4.3): a fixed, transparent
// scoring function over technical features computed from 15-minute candles.
// The indicator math (SMA/RSI/ZScore-style rolling windows) is grounded on
// chidi150c-coinbase/indicators.go's style — small, allocation-light,
// float64 functions over a slice of candles — generalized from "one
// indicator over the whole series" into "one evaluation over the most
// recent lookback window", since the scoring table only ever looks at the
// latest value of each feature.
package strategy

import (
	"math"
	"time"

	"github.com/polybot/updown-trader/internal/domain"
)

const lookback = 20

// Signal is the Signal Generator's evaluation of one asset at one instant.
type Signal struct {
	Direction  domain.Direction
	Confidence float64
	Reason     string
	Features   map[string]float64
}

// Evaluate maps a window of recent 15-minute candles (oldest first) to a
// direction and confidence. Fewer than lookback candles is insufficient data.
func Evaluate(candles []domain.Candle) Signal {
	if len(candles) < lookback {
		return Signal{Direction: domain.DirectionNeutral, Reason: "insufficient data", Features: map[string]float64{}}
	}

	closes := closesOf(candles)
	n := len(closes)
	last := closes[n-1]

	returns := oneStepReturns(closes)

	features := map[string]float64{}
	for _, k := range []int{1, 3, 5} {
		features[featureName("return", k)] = sumLastReturns(returns, k)
	}
	for _, p := range []int{3, 5, 10} {
		features[featureName("momentum", p)] = momentum(closes, p)
	}
	ma5 := sma(closes, 5)
	ma10 := sma(closes, 10)
	ma20 := sma(closes, 20)
	for p, ma := range map[int]float64{5: ma5, 10: ma10, 20: ma20} {
		features[featureName("ma", p)] = ma
		features["price_vs_"+featureName("ma", p)] = priceVsMA(last, ma)
	}
	features["ma_5_10_cross"] = crossSign(ma5, ma10)
	features["ma_5_20_cross"] = crossSign(ma5, ma20)
	features["rsi"] = rsi(returns, 14)
	features["volatility"] = stdev(lastN(returns, 14))
	mean20 := sma(closes, 20)
	sd20 := stdev(lastN(closes, 20))
	features["zscore"] = zscore(last, mean20, sd20)
	features["range_position"] = rangePosition(candles, 20)
	features["volume_ratio"] = volumeRatio(candles, 10)
	features["trend_slope"] = trendSlope(closes, 10)

	bullish, bearish, totalWeight := score(features)
	net := 0.0
	if totalWeight > 0 {
		net = (bullish - bearish) / totalWeight
	}

	if net > 0.3 {
		return Signal{Direction: domain.DirectionUp, Confidence: math.Min(net, 0.95), Features: features, Reason: "net score above threshold"}
	}
	if net < -0.3 {
		return Signal{Direction: domain.DirectionDown, Confidence: math.Min(-net, 0.95), Features: features, Reason: "net score below threshold"}
	}
	return Signal{Direction: domain.DirectionNeutral, Confidence: 0, Features: features, Reason: "net score within neutral band"}
}

// NewDecision packages an Evaluate result into a persistable Decision.
func NewDecision(asset, conditionID string, at time.Time, sig Signal) domain.Decision {
	return domain.Decision{
		Timestamp:   at,
		Asset:       asset,
		ConditionID: conditionID,
		Direction:   sig.Direction,
		Confidence:  sig.Confidence,
		Features:    sig.Features,
		Reason:      sig.Reason,
	}
}

type weighted struct {
	weight           float64
	bullish, bearish bool
}

func score(f map[string]float64) (bullish, bearish, totalWeight float64) {
	terms := []weighted{
		momentumTerm(f["momentum_3"]),
		momentumTerm(f["momentum_5"]),
		momentumTerm(f["momentum_10"]),
		{weight: 1.5, bullish: f["ma_5_10_cross"] > 0, bearish: f["ma_5_10_cross"] < 0},
		{weight: 1.5, bullish: f["ma_5_20_cross"] > 0, bearish: f["ma_5_20_cross"] < 0},
		{weight: 1.5, bullish: f["rsi"] < 30, bearish: f["rsi"] > 70},
		{weight: 1.0, bullish: f["zscore"] < -1.5, bearish: f["zscore"] > 1.5},
		{weight: 2.0, bullish: f["trend_slope"] > 0, bearish: f["trend_slope"] < 0},
	}
	for _, t := range terms {
		totalWeight += t.weight
		if t.bullish {
			bullish += t.weight
		} else if t.bearish {
			bearish += t.weight
		}
	}
	return bullish, bearish, totalWeight
}

func momentumTerm(v float64) weighted {
	return weighted{weight: 2.0, bullish: v > 0.005, bearish: v < -0.005}
}
