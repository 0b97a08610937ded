package store

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// nowUTC centralizes the clock so every timestamp written by this package is
// UTC, matching the UTC day-key convention used for daily_pnl (§4.6).
func nowUTC() time.Time { return time.Now().UTC() }

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// dec parses a stored decimal column, treating an empty string as zero so a
// freshly-migrated NOT NULL column with no default never panics a reader.
func dec(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decStr(d decimal.Decimal) string { return d.String() }

func secondsToDuration(n int) time.Duration { return time.Duration(n) * time.Second }
