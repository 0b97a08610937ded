package store

import (
	"context"

	"github.com/polybot/updown-trader/internal/domain"
	"gorm.io/gorm"
)

// RecordDecision writes one signal-generator evaluation. Called unconditionally
// on every evaluation cycle, whether or not it leads to an order (§4.2).
func (s *Store) RecordDecision(ctx context.Context, d domain.Decision) (uint, error) {
	row := DecisionRow{
		Timestamp:   d.Timestamp,
		Asset:       d.Asset,
		ConditionID: d.ConditionID,
		Direction:   string(d.Direction),
		Confidence:  d.Confidence,
		Reason:      d.Reason,
		Features:    FeaturesFrom(d.Features),
		Executed:    d.Executed,
		OrderID:     d.OrderID,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

// MarkDecisionExecuted links a decision to the order it produced.
func (s *Store) MarkDecisionExecuted(ctx context.Context, decisionID, orderID uint) error {
	return s.db.WithContext(ctx).Model(&DecisionRow{}).
		Where("id = ?", decisionID).
		Updates(map[string]any{"executed": true, "order_id": orderID}).Error
}

// RecordDecisionTx is RecordDecision run inside an existing transaction, for
// callers composing it into the pass-then-insert critical section (§5/§9).
func RecordDecisionTx(tx *gorm.DB, d domain.Decision) (uint, error) {
	row := DecisionRow{
		Timestamp:   d.Timestamp,
		Asset:       d.Asset,
		ConditionID: d.ConditionID,
		Direction:   string(d.Direction),
		Confidence:  d.Confidence,
		Reason:      d.Reason,
		Features:    FeaturesFrom(d.Features),
		Executed:    d.Executed,
		OrderID:     d.OrderID,
	}
	if err := tx.Create(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}
