package risk

import "github.com/polybot/updown-trader/internal/domain"

// ExitLevels are the take-profit and stop-loss prices a position should
// close at, derived from the average entry price per §4.4 (the Position
// Manager recomputes them on every exit pass).
type ExitLevels struct {
	TakeProfit float64
	StopLoss   float64
}

func clampPrice(p float64) float64 {
	if p < 0.01 {
		return 0.01
	}
	if p > 0.99 {
		return 0.99
	}
	return p
}

// ComputeExitLevels derives the take/stop prices for a position entered at
// entry on side (YES or NO), given take_profit_pct/stop_loss_pct (percentage
// points, matching TradingConfig's scale) and a fixed fee buffer.
func ComputeExitLevels(side domain.PositionSide, entry, takeProfitPct, stopLossPct float64) ExitLevels {
	tp := takeProfitPct / 100
	sl := stopLossPct / 100

	var take, stop float64
	switch side {
	case domain.PositionNo:
		take = entry * (1 - tp - feeBuffer)
		stop = entry * (1 + sl + feeBuffer)
	default: // YES
		take = entry * (1 + tp + feeBuffer)
		stop = entry * (1 - sl - feeBuffer)
	}
	return ExitLevels{TakeProfit: clampPrice(take), StopLoss: clampPrice(stop)}
}

// ShouldExit reports whether current price has crossed either exit level for
// the given side.
func ShouldExit(side domain.PositionSide, current float64, levels ExitLevels) bool {
	switch side {
	case domain.PositionNo:
		return current <= levels.TakeProfit || current >= levels.StopLoss
	default: // YES
		return current >= levels.TakeProfit || current <= levels.StopLoss
	}
}
