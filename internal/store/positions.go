package store

import (
	"context"

	"github.com/polybot/updown-trader/internal/domain"
)

func rowToPosition(r PositionRow) domain.Position {
	return domain.Position{
		ID:            r.ID,
		ConditionID:   r.ConditionID,
		Asset:         r.Asset,
		TokenID:       r.TokenID,
		Side:          domain.PositionSide(r.Side),
		Size:          dec(r.Size),
		AvgEntryPrice: dec(r.AvgEntryPrice),
		Status:        domain.PositionStatus(r.Status),
		RealisedPnL:   dec(r.RealisedPnL),
		OpenedAt:      r.OpenedAt,
		ClosedAt:      r.ClosedAt,
	}
}

// OpenPositions returns every position still carrying size, the set the
// position manager's exit pass iterates every cycle (§4.6).
func (s *Store) OpenPositions(ctx context.Context) ([]domain.Position, error) {
	var rows []PositionRow
	if err := s.db.WithContext(ctx).Where("status = ?", string(domain.PositionOpen)).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Position, len(rows))
	for i, r := range rows {
		out[i] = rowToPosition(r)
	}
	return out, nil
}

// OpenPositionsForAsset is OpenPositions filtered to one asset, the shape the
// risk gate's per-asset exposure and correlation-basket checks need (§4.4).
func (s *Store) OpenPositionsForAsset(ctx context.Context, asset string) ([]domain.Position, error) {
	var rows []PositionRow
	err := s.db.WithContext(ctx).
		Where("status = ? AND asset = ?", string(domain.PositionOpen), asset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Position, len(rows))
	for i, r := range rows {
		out[i] = rowToPosition(r)
	}
	return out, nil
}

// PositionForToken fetches the single open position for (conditionID, tokenID),
// since §6 enforces uniqueness on (condition_id, token_id, status=open).
func (s *Store) PositionForToken(ctx context.Context, conditionID, tokenID string) (domain.Position, bool, error) {
	var row PositionRow
	err := s.db.WithContext(ctx).
		Where("condition_id = ? AND token_id = ? AND status = ?", conditionID, tokenID, string(domain.PositionOpen)).
		First(&row).Error
	if err != nil {
		if isNotFound(err) {
			return domain.Position{}, false, nil
		}
		return domain.Position{}, false, err
	}
	return rowToPosition(row), true, nil
}

// UpsertPosition writes the position-manager's post-fill state: creates the
// row if absent, or updates size/avg-entry/status on an existing one (§4.6).
func (s *Store) UpsertPosition(ctx context.Context, p domain.Position) error {
	existing, found, err := s.PositionForToken(ctx, p.ConditionID, p.TokenID)
	if err != nil {
		return err
	}
	row := PositionRow{
		ConditionID:   p.ConditionID,
		Asset:         p.Asset,
		TokenID:       p.TokenID,
		Side:          string(p.Side),
		Size:          decStr(p.Size),
		AvgEntryPrice: decStr(p.AvgEntryPrice),
		Status:        string(p.Status),
		RealisedPnL:   decStr(p.RealisedPnL),
		OpenedAt:      p.OpenedAt,
		ClosedAt:      p.ClosedAt,
	}
	if found {
		row.ID = existing.ID
	}
	return s.db.WithContext(ctx).Save(&row).Error
}
