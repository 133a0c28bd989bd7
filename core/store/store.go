package store

import (
	"context"
	"errors"
	"fmt"

	"commerce-sync/core/database"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a looked up row does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the relational store of tenants and synced commerce data.
// It is constructed explicitly and passed to whoever needs it.
type Store struct {
	db *gorm.DB
}

// New wraps an existing gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to the configured database.
func Open(cfg database.Config) (*Store, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// DB exposes the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Migrate creates or updates every table and its unique indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// SchemaReport maps a table to the columns it is missing.
type SchemaReport map[string][]string

// CheckSchema compares the live tables with the models.
func (s *Store) CheckSchema(ctx context.Context) (SchemaReport, error) {
	report := SchemaReport{}
	db := s.db.WithContext(ctx)

	for _, model := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model: %w", err)
		}
		missing, err := database.MissingColumns(db, stmt.Schema.Table, stmt.Schema.DBNames)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			report[stmt.Schema.Table] = missing
		}
	}
	return report, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
