package store

import (
	"context"

	"github.com/polybot/updown-trader/internal/domain"
	"gorm.io/gorm"
)

func rowToBreaker(r CircuitBreakerRow) domain.CircuitBreaker {
	return domain.CircuitBreaker{
		Name:          r.BreakerName,
		Tripped:       r.Tripped,
		TripCount:     r.TripCount,
		LastReason:    r.LastReason,
		LastTrippedAt: r.LastTrippedAt,
		LastResetAt:   r.LastResetAt,
	}
}

// Breakers returns every named breaker, including ones never tripped, by
// seeding the four well-known names from domain so a fresh deployment's
// admin breaker listing always shows all of them.
func (s *Store) Breakers(ctx context.Context) ([]domain.CircuitBreaker, error) {
	var rows []CircuitBreakerRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(rows))
	out := make([]domain.CircuitBreaker, 0, len(rows))
	for _, r := range rows {
		out = append(out, rowToBreaker(r))
		seen[r.BreakerName] = true
	}
	for _, name := range []string{
		domain.BreakerStaleData,
		domain.BreakerDailyLossLimit,
		domain.BreakerReconciliationMismatch,
		domain.BreakerEmergency,
	} {
		if !seen[name] {
			out = append(out, domain.CircuitBreaker{Name: name})
		}
	}
	return out, nil
}

// AnyTripped reports whether any breaker currently blocks trading (§4.4 check 2).
func (s *Store) AnyTripped(ctx context.Context) (bool, string, error) {
	var row CircuitBreakerRow
	err := s.db.WithContext(ctx).Where("tripped = ?", true).Order("last_tripped_at DESC").First(&row).Error
	if err != nil {
		if isNotFound(err) {
			return false, "", nil
		}
		return false, "", err
	}
	return true, row.BreakerName, nil
}

// TripBreaker marks a named breaker tripped, upserting the row if it has
// never fired before. Tripping daily_loss_limit or reconciliation_mismatch is
// the caller's cue to also force the bot state transition (§4.4).
func (s *Store) TripBreaker(ctx context.Context, name, reason string) error {
	now := nowUTC()
	row := CircuitBreakerRow{
		BreakerName:   name,
		Tripped:       true,
		LastReason:    reason,
		LastTrippedAt: &now,
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing CircuitBreakerRow
		err := tx.Where("breaker_name = ?", name).First(&existing).Error
		switch {
		case err == nil:
			row.TripCount = existing.TripCount + 1
			return tx.Save(&row).Error
		case isNotFound(err):
			row.TripCount = 1
			return tx.Create(&row).Error
		default:
			return err
		}
	})
}

// ResetBreaker clears a tripped breaker. §4.4 and §4.3 require this to be an
// explicit human action for daily_loss_limit and reconciliation_mismatch; the
// Risk Gate itself never calls this for those two names.
func (s *Store) ResetBreaker(ctx context.Context, name, actor string) error {
	now := nowUTC()
	return s.db.WithContext(ctx).Model(&CircuitBreakerRow{}).
		Where("breaker_name = ?", name).
		Updates(map[string]any{"tripped": false, "last_reset_at": &now}).Error
}
