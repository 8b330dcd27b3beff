package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"stayfinder/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	logger := zerolog.Nop()
	return newDB(sqlDB, &logger), mock
}

func mockReservation() *models.Reservation {
	return &models.Reservation{
		ID:        "r-1",
		ListingID: "l-1",
		GuestID:   "g-1",
		CheckIn:   models.NewDate(2024, 3, 1),
		CheckOut:  models.NewDate(2024, 3, 4),
		Guests:    2,
		Status:    models.StatusConfirmed,
	}
}

func TestCreateReservation_RollbackPaths(t *testing.T) {
	ctx := context.Background()

	t.Run("InsertFailure", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM listings").
			WithArgs("l-1").
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(models.ListingActive))
		mock.ExpectQuery("SELECT COUNT").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec("INSERT INTO reservations").
			WillReturnError(errors.New("disk I/O error"))
		mock.ExpectRollback()

		err := db.CreateReservationIfAvailable(ctx, mockReservation())
		assert.ErrorContains(t, err, "disk I/O error")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("OverlapRollsBack", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM listings").
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(models.ListingActive))
		mock.ExpectQuery("SELECT COUNT").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err := db.CreateReservationIfAvailable(ctx, mockReservation())
		assert.ErrorIs(t, err, ErrDoubleBooked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CommitFailure", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status FROM listings").
			WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(models.ListingActive))
		mock.ExpectQuery("SELECT COUNT").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec("INSERT INTO reservations").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit().WillReturnError(errors.New("database is locked"))

		r := mockReservation()
		err := db.CreateReservationIfAvailable(ctx, r)
		assert.ErrorContains(t, err, "database is locked")
		assert.Zero(t, r.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("BeginFailure", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin().WillReturnError(errors.New("busy"))

		err := db.CreateReservationIfAvailable(ctx, mockReservation())
		assert.ErrorContains(t, err, "failed to begin transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteListing_CascadeFailureRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	ctx := context.Background()

	listingCols := []string{
		"id", "slug", "title", "location", "price_per_night", "max_guests", "property_type",
		"description", "images", "amenities", "bedrooms", "bathrooms", "host_id", "host_name", "status",
		"created_at", "updated_at",
	}
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM listings WHERE id = \\? AND host_id = \\?").
		WillReturnRows(sqlmock.NewRows(listingCols).AddRow(
			"l-1", "loft", "Loft", "NYC", 180, 2, "apartment",
			"", "[]", "[]", 1, 1, "h-1", "Host", models.ListingActive,
			created, created,
		))
	mock.ExpectQuery("SELECT id FROM reservations").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("r-1"))
	mock.ExpectExec("UPDATE reservations SET status").
		WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	_, err := db.DeleteListing(ctx, "l-1", "h-1", models.DeletePolicyCascadeCancel, models.NewDate(2024, 3, 1))
	assert.ErrorContains(t, err, "failed to cancel reservations")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_ClosedErrorPaths(t *testing.T) {
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	db.Close()

	ctx := context.Background()

	t.Run("Ready", func(t *testing.T) {
		assert.Error(t, db.Ready(ctx))
	})

	t.Run("CreateUser", func(t *testing.T) {
		assert.Error(t, db.CreateUser(ctx, &models.User{ID: "u"}))
	})

	t.Run("ListActiveListings", func(t *testing.T) {
		_, err := db.ListActiveListings(ctx, nil)
		assert.Error(t, err)
	})

	t.Run("CreateReservation", func(t *testing.T) {
		assert.Error(t, db.CreateReservationIfAvailable(ctx, mockReservation()))
	})

	t.Run("ListReservationsByHost", func(t *testing.T) {
		_, err := db.ListReservationsByHost(ctx, "h")
		assert.Error(t, err)
	})

	t.Run("GetUserNotMappedToNotFound", func(t *testing.T) {
		_, err := db.GetUserByID(ctx, "u")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}
