package store

import (
	"context"

	"gorm.io/gorm/clause"
)

// SetConfigValue upserts one config key. Values are arbitrary JSON so a
// single row can hold a number, string, or nested object (§6 config surface).
func (s *Store) SetConfigValue(ctx context.Context, key string, value any) error {
	row := ConfigRow{Key: key, Value: JSONMap{"v": value}}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

// ConfigValues returns every config row as a plain map, for the config
// package's hot-reload overlay to merge over its file-backed defaults.
func (s *Store) ConfigValues(ctx context.Context) (map[string]any, error) {
	var rows []ConfigRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]any, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value["v"]
	}
	return out, nil
}

// RecordAudit appends one audit_log row (§6). Used for events that are not
// bot-state transitions (those go through TransitionBotState, which audits
// atomically with the state write).
func (s *Store) RecordAudit(ctx context.Context, kind, actor string, details map[string]any) error {
	return s.db.WithContext(ctx).Create(&AuditLogRow{
		Timestamp: nowUTC(),
		Kind:      kind,
		Actor:     actor,
		Details:   JSONMap(details),
	}).Error
}
