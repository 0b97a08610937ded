package store

import (
	"context"

	"github.com/polybot/updown-trader/internal/domain"
	"gorm.io/gorm/clause"
)

// RecordPrice appends one spot tick (§6 prices table is append-only).
func (s *Store) RecordPrice(ctx context.Context, p domain.SpotPrice) error {
	return s.db.WithContext(ctx).Create(&PriceRow{
		Symbol:    p.Symbol,
		Price:     decStr(p.Price),
		Timestamp: p.Timestamp,
	}).Error
}

// UpsertCandle writes or replaces one bar, keyed on (symbol, timeframe,
// open_time) per §6's unique constraint. The signal generator re-reads
// still-forming candles every poll (Open Question (d)), so repeated upserts
// for the same open_time before the bar closes are expected, not an error.
func (s *Store) UpsertCandle(ctx context.Context, c domain.Candle) error {
	row := CandleRow{
		Symbol:        c.Symbol,
		TimeframeSecs: int(c.Timeframe.Seconds()),
		OpenTime:      c.OpenTime,
		CloseTime:     c.CloseTime,
		Open:          decStr(c.Open),
		High:          decStr(c.High),
		Low:           decStr(c.Low),
		Close:         decStr(c.Close),
		Volume:        decStr(c.Volume),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "timeframe_secs"}, {Name: "open_time"}},
		DoUpdates: clause.AssignmentColumns([]string{"close_time", "open", "high", "low", "close", "volume", "updated_at"}),
	}).Create(&row).Error
}

// RecentCandles returns the last n candles for symbol/timeframe, oldest
// first, matching the lookback window the signal generator consumes (§4.2).
func (s *Store) RecentCandles(ctx context.Context, symbol string, timeframe int, n int) ([]domain.Candle, error) {
	var rows []CandleRow
	err := s.db.WithContext(ctx).
		Where("symbol = ? AND timeframe_secs = ?", symbol, timeframe).
		Order("open_time DESC").
		Limit(n).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Candle, len(rows))
	for i, r := range rows {
		out[len(rows)-1-i] = domain.Candle{
			Symbol:    r.Symbol,
			Timeframe: secondsToDuration(r.TimeframeSecs),
			OpenTime:  r.OpenTime,
			CloseTime: r.CloseTime,
			Open:      dec(r.Open),
			High:      dec(r.High),
			Low:       dec(r.Low),
			Close:     dec(r.Close),
			Volume:    dec(r.Volume),
		}
	}
	return out, nil
}
