// Package store is the State Store named in §6: every table the trading
// pipeline reads from or appends to, behind a single GORM handle. The
// connection and migration pattern follows
// ChoSanghyuk-blackholedex/internal/db/transaction_recorder.go's
// gorm.Open(mysql.Open(dsn), ...) + AutoMigrate shape; this package just
// widens it from one row type to the full schema.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var txSerializable = &sql.TxOptions{Isolation: sql.LevelSerializable}

// Store wraps a GORM handle bound to the schema in AllModels.
type Store struct {
	db *gorm.DB
}

// Open connects to MySQL and migrates the schema.
// dsn format: "user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=UTC"
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	return OpenWithDB(db)
}

// OpenWithDB wraps an already-constructed GORM handle, migrating it in place.
// The package tests build a go-sqlmock-backed *gorm.DB and construct Store
// directly instead, so no AutoMigrate statements reach the mock.
func OpenWithDB(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// DB returns the underlying GORM handle for callers that need raw queries.
func (s *Store) DB() *gorm.DB { return s.db }

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("store: underlying db: %w", err)
	}
	return sqlDB.Close()
}

// WithTx runs fn inside one serialized transaction and commits only if fn
// returns nil. The risk-gate read that precedes an order insert is not part
// of this transaction: risk.Gate serializes its checks and the submit step
// that follows them with its own mutex (see Gate.critSection).
func (s *Store) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn, txSerializable)
}
