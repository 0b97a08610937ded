package strategy

import (
	"fmt"
	"math"

	"github.com/polybot/updown-trader/internal/domain"
)

func closesOf(candles []domain.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i], _ = c.Close.Float64()
	}
	return out
}

func featureName(prefix string, n int) string { return fmt.Sprintf("%s_%d", prefix, n) }

// oneStepReturns returns (v[i]-v[i-1])/v[i-1] for i in [1,len(v)); length len(v)-1.
func oneStepReturns(v []float64) []float64 {
	if len(v) < 2 {
		return nil
	}
	out := make([]float64, len(v)-1)
	for i := 1; i < len(v); i++ {
		if v[i-1] == 0 {
			out[i-1] = 0
			continue
		}
		out[i-1] = (v[i] - v[i-1]) / v[i-1]
	}
	return out
}

// sumLastReturns sums the last k one-step returns.
func sumLastReturns(returns []float64, k int) float64 {
	if k > len(returns) {
		k = len(returns)
	}
	var sum float64
	for _, r := range lastN(returns, k) {
		sum += r
	}
	return sum
}

// momentum is (close[-1]-close[-p-1])/close[-p-1].
func momentum(closes []float64, p int) float64 {
	n := len(closes)
	idx := n - 1 - p
	if idx < 0 || closes[idx] == 0 {
		return 0
	}
	return (closes[n-1] - closes[idx]) / closes[idx]
}

func sma(v []float64, n int) float64 {
	w := lastN(v, n)
	if len(w) == 0 {
		return 0
	}
	var sum float64
	for _, x := range w {
		sum += x
	}
	return sum / float64(len(w))
}

func priceVsMA(last, ma float64) float64 {
	if ma == 0 {
		return 0
	}
	return (last - ma) / ma
}

func crossSign(a, b float64) float64 {
	if a >= b {
		return 1
	}
	return -1
}

// rsi computes the 14-period RSI from one-step returns using a simple
// (non-recursive) mean of gains and losses over the window, matching §4.3's
// "Wilder-style simple mean" rather than chidi150c-coinbase's recursively
// smoothed variant. Returns 50 when under-windowed, 100 when there are no
// losses in the window.
func rsi(returns []float64, n int) float64 {
	w := lastN(returns, n)
	if len(w) < n {
		return 50
	}
	var gainSum, lossSum float64
	for _, r := range w {
		if r > 0 {
			gainSum += r
		} else {
			lossSum -= r
		}
	}
	avgGain := gainSum / float64(n)
	avgLoss := lossSum / float64(n)
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

func stdev(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	mean := sma(v, len(v))
	var sumSq float64
	for _, x := range v {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(v)))
}

func zscore(last, mean, sd float64) float64 {
	if sd == 0 {
		return 0
	}
	return (last - mean) / sd
}

// rangePosition is (close[-1]-min(low,n))/(max(high,n)-min(low,n)).
func rangePosition(candles []domain.Candle, n int) float64 {
	w := lastNCandles(candles, n)
	if len(w) == 0 {
		return 0
	}
	lo, _ := w[0].Low.Float64()
	hi, _ := w[0].High.Float64()
	for _, c := range w[1:] {
		l, _ := c.Low.Float64()
		h, _ := c.High.Float64()
		if l < lo {
			lo = l
		}
		if h > hi {
			hi = h
		}
	}
	last, _ := w[len(w)-1].Close.Float64()
	if hi == lo {
		return 0
	}
	return (last - lo) / (hi - lo)
}

func volumeRatio(candles []domain.Candle, n int) float64 {
	w := lastNCandles(candles, n)
	if len(w) == 0 {
		return 0
	}
	var sum float64
	for _, c := range w {
		v, _ := c.Volume.Float64()
		sum += v
	}
	mean := sum / float64(len(w))
	if mean == 0 {
		return 0
	}
	last, _ := w[len(w)-1].Volume.Float64()
	return last / mean
}

// trendSlope fits a least-squares line to the last n closes (x = 0..n-1) and
// normalizes the slope by close[-n].
func trendSlope(closes []float64, n int) float64 {
	w := lastN(closes, n)
	if len(w) < 2 || w[0] == 0 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range w {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	nf := float64(len(w))
	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	slope := (nf*sumXY - sumX*sumY) / denom
	return slope / w[0]
}

func lastN(v []float64, n int) []float64 {
	if n > len(v) {
		n = len(v)
	}
	if n <= 0 {
		return nil
	}
	return v[len(v)-n:]
}

func lastNCandles(v []domain.Candle, n int) []domain.Candle {
	if n > len(v) {
		n = len(v)
	}
	if n <= 0 {
		return nil
	}
	return v[len(v)-n:]
}
