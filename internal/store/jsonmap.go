package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap is a generic JSON column backed by encoding/json. The teacher's own
// dependency graph never pulls in gorm.io/datatypes, so rather than adding a
// library the pack doesn't otherwise exercise, JSON columns implement
// sql.Scanner/driver.Valuer directly against TEXT/JSON columns — the same
// approach gorm.io/datatypes itself uses internally.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("store: unsupported JSONMap scan type %T", value)
	}
	if len(b) == 0 {
		*m = JSONMap{}
		return nil
	}
	out := JSONMap{}
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

// FeaturesFrom converts a float64 feature map into a JSONMap column value.
func FeaturesFrom(features map[string]float64) JSONMap {
	m := make(JSONMap, len(features))
	for k, v := range features {
		m[k] = v
	}
	return m
}

// ToFeatures converts a JSONMap column value back into a float64 feature map.
func ToFeatures(m JSONMap) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		switch n := v.(type) {
		case float64:
			out[k] = n
		}
	}
	return out
}
