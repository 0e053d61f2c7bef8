package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"laundry-state-backend/internal/model"
)

// ErrNegativeTimeRemaining is returned when a write would persist a machine
// with a negative remaining time. The validator should have rejected such a
// snapshot already; the store enforces the invariant independently as the
// last line of defense.
var ErrNegativeTimeRemaining = errors.New("timeRemaining cannot be negative")

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// GetMachine returns the stored record for the given opaque identifier,
	// or (nil, nil) when the machine has never been seen.
	GetMachine(ctx context.Context, opaqueID string) (*model.Machine, error)

	// UpsertMachine writes the record, replacing all mutable columns when a
	// row for the same opaque identifier already exists.
	UpsertMachine(ctx context.Context, m *model.Machine) error

	UpsertRooms(ctx context.Context, rooms []model.Room) error
	UpsertLocations(ctx context.Context, locations []model.Location) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) GetMachine(ctx context.Context, opaqueID string) (*model.Machine, error) {
	var m model.Machine
	err := s.db.WithContext(ctx).First(&m, "opaque_id = ?", opaqueID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch machine %s: %w", opaqueID, err)
	}
	return &m, nil
}

func (s *gormStore) UpsertMachine(ctx context.Context, m *model.Machine) error {
	if m.TimeRemaining < 0 {
		return fmt.Errorf("machine %s: %w", m.OpaqueID, ErrNegativeTimeRemaining)
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "opaque_id"}},
		UpdateAll: true,
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("failed to upsert machine %s: %w", m.OpaqueID, err)
	}
	return nil
}

// UpsertRooms replaces room reference data, last write wins.
func (s *gormStore) UpsertRooms(ctx context.Context, rooms []model.Room) error {
	if len(rooms) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}},
		UpdateAll: true,
	}).Create(&rooms).Error
	if err != nil {
		return fmt.Errorf("batch upsert rooms failed: %w", err)
	}
	return nil
}

// UpsertLocations replaces location reference data, last write wins.
func (s *gormStore) UpsertLocations(ctx context.Context, locations []model.Location) error {
	if len(locations) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "location_id"}},
		UpdateAll: true,
	}).Create(&locations).Error
	if err != nil {
		return fmt.Errorf("batch upsert locations failed: %w", err)
	}
	return nil
}
