package store

import (
	"context"
	"time"

	"github.com/polybot/updown-trader/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func dayKey(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func rowToDailyPnL(r DailyPnLRow) domain.DailyPnL {
	return domain.DailyPnL{
		Date:        r.Date,
		RealisedPnL: dec(r.RealisedPnL),
		Fees:        dec(r.Fees),
		TradeCount:  r.TradeCount,
		WinCount:    r.WinCount,
		LossCount:   r.LossCount,
	}
}

// DailyPnLFor returns the accounting row for t's UTC day, zero-valued if none exists yet.
func (s *Store) DailyPnLFor(ctx context.Context, t time.Time) (domain.DailyPnL, error) {
	var row DailyPnLRow
	err := s.db.WithContext(ctx).Where("date = ?", dayKey(t)).First(&row).Error
	if err != nil {
		if isNotFound(err) {
			return domain.DailyPnL{Date: dayKey(t)}, nil
		}
		return domain.DailyPnL{}, err
	}
	return rowToDailyPnL(row), nil
}

// ApplyRealisedFill updates the current UTC day's running totals on a closing
// fill (§4.6): increments trade_count, adds realised pnl and fees, and bumps
// win_count for a positive pnl or loss_count for a negative one (neither for
// a zero pnl).
func (s *Store) ApplyRealisedFill(ctx context.Context, at time.Time, pnl, fee decimal.Decimal) error {
	key := dayKey(at)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row DailyPnLRow
		err := tx.Where("date = ?", key).First(&row).Error
		switch {
		case err == nil:
		case isNotFound(err):
			row = DailyPnLRow{Date: key}
		default:
			return err
		}
		row.RealisedPnL = decStr(dec(row.RealisedPnL).Add(pnl))
		row.Fees = decStr(dec(row.Fees).Add(fee))
		row.TradeCount++
		if pnl.IsPositive() {
			row.WinCount++
		} else if pnl.IsNegative() {
			row.LossCount++
		}
		return tx.Save(&row).Error
	})
}
