package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"laundry-state-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestGormStore_GetMachine(t *testing.T) {
	t.Run("existing machine is returned", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB)

		now := time.Now().UTC()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "machines"`)).
			WithArgs("W1", 1).
			WillReturnRows(sqlmock.NewRows([]string{"opaque_id", "type", "time_remaining", "last_user", "last_updated"}).
				AddRow("W1", "washer", 45, "Unknown", now))

		m, err := s.GetMachine(context.Background(), "W1")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "W1", m.OpaqueID)
		assert.Equal(t, 45, m.TimeRemaining)
		assert.Equal(t, model.UnknownUser, m.LastUser)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent machine is not an error", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "machines"`)).
			WithArgs("nope", 1).
			WillReturnRows(sqlmock.NewRows([]string{"opaque_id"}))

		m, err := s.GetMachine(context.Background(), "nope")
		assert.NoError(t, err)
		assert.Nil(t, m)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStore_UpsertMachine(t *testing.T) {
	t.Run("negative timeRemaining never reaches the database", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB)

		err := s.UpsertMachine(context.Background(), &model.Machine{
			OpaqueID:      "W1",
			TimeRemaining: -5,
		})
		assert.ErrorIs(t, err, ErrNegativeTimeRemaining)

		// No SQL was expected and none may have been issued.
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("valid record is upserted on conflict", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "machines"`)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := s.UpsertMachine(context.Background(), &model.Machine{
			OpaqueID:      "W1",
			Type:          "washer",
			TimeRemaining: 0,
			LastUser:      model.UnknownUser,
			LastUpdated:   time.Now().UTC(),
		})
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStore_UpsertReferenceData(t *testing.T) {
	t.Run("empty batches issue no SQL", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB)

		assert.NoError(t, s.UpsertRooms(context.Background(), nil))
		assert.NoError(t, s.UpsertLocations(context.Background(), nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rooms are batch upserted", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "rooms"`)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		rooms := []model.Room{
			{RoomID: "R1", Label: "Basement", LocationID: "L1", WasherCount: 4, DryerCount: 4},
			{RoomID: "R2", Label: "2nd Floor", LocationID: "L1", WasherCount: 2, DryerCount: 2},
		}
		assert.NoError(t, s.UpsertRooms(context.Background(), rooms))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
