package store

import (
	"context"

	"github.com/polybot/updown-trader/internal/domain"
	"gorm.io/gorm/clause"
)

func rowToMarket(r MarketRow) domain.Market {
	return domain.Market{
		ConditionID: r.ConditionID,
		Asset:       r.Asset,
		Question:    r.Question,
		EndTime:     r.EndTime,
		YesTokenID:  r.YesTokenID,
		NoTokenID:   r.NoTokenID,
		Active:      r.Active,
	}
}

// UpsertMarket records a discovered market, keyed on condition_id (§6).
func (s *Store) UpsertMarket(ctx context.Context, m domain.Market) error {
	row := MarketRow{
		ConditionID: m.ConditionID,
		Asset:       m.Asset,
		Question:    m.Question,
		EndTime:     m.EndTime,
		YesTokenID:  m.YesTokenID,
		NoTokenID:   m.NoTokenID,
		Active:      m.Active,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "condition_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"question", "end_time", "active", "updated_at"}),
	}).Create(&row).Error
}

// MarketsForAsset returns every market recorded for an asset, earliest end
// time first, so a candidate scan can pick the earliest-ending tradable one
// (§4.1).
func (s *Store) MarketsForAsset(ctx context.Context, asset string) ([]domain.Market, error) {
	var rows []MarketRow
	if err := s.db.WithContext(ctx).Where("asset = ?", asset).Order("end_time ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Market, len(rows))
	for i, r := range rows {
		out[i] = rowToMarket(r)
	}
	return out, nil
}

// RecordMarketSnapshot appends one orderbook observation for a token (§6).
func (s *Store) RecordMarketSnapshot(ctx context.Context, conditionID string, ob domain.Orderbook) error {
	bestBid, _ := ob.BestBid()
	bestAsk, _ := ob.BestAsk()
	return s.db.WithContext(ctx).Create(&MarketSnapshotRow{
		ConditionID: conditionID,
		TokenID:     ob.TokenID,
		BestBid:     decStr(bestBid.Price),
		BestAsk:     decStr(bestAsk.Price),
		BidDepth:    decStr(domain.Depth(ob.Bids, 10)),
		AskDepth:    decStr(domain.Depth(ob.Asks, 10)),
		Timestamp:   ob.Snapshot,
	}).Error
}
