package store

import (
	"context"

	"github.com/polybot/updown-trader/internal/domain"
	"gorm.io/gorm"
)

// CurrentBotState returns the most recently recorded state, defaulting to
// RUNNING if the table is empty (fresh deployment, §4.4).
func (s *Store) CurrentBotState(ctx context.Context) (domain.BotStateValue, error) {
	var row BotStateRow
	err := s.db.WithContext(ctx).Order("id DESC").First(&row).Error
	if err != nil {
		if isNotFound(err) {
			return domain.StateRunning, nil
		}
		return "", err
	}
	return domain.BotStateValue(row.Value), nil
}

// TransitionBotState appends a new state row and an audit event in the same
// transaction; §4.4 requires every transition to be persisted and audited.
func (s *Store) TransitionBotState(ctx context.Context, value domain.BotStateValue, actor, reason string) error {
	return s.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&BotStateRow{Value: string(value), Actor: actor, Reason: reason}).Error; err != nil {
			return err
		}
		return tx.Create(&AuditLogRow{
			Timestamp: nowUTC(),
			Kind:      "bot_state_transition",
			Actor:     actor,
			Details: JSONMap{
				"value":  string(value),
				"reason": reason,
			},
		}).Error
	})
}
