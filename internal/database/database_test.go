package database

import (
	"context"
	"path/filepath"
	"testing"

	"stayfinder/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, name string, isHost bool) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
		IsHost:       isHost,
	}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

func createTestListing(t *testing.T, db *DB, host *models.User, price int64, maxGuests int) *models.Listing {
	t.Helper()
	l := &models.Listing{
		ID:            uuid.NewString(),
		Slug:          "listing-" + uuid.NewString(),
		Title:         "Modern Downtown Loft",
		Location:      "New York, NY",
		PricePerNight: price,
		MaxGuests:     maxGuests,
		PropertyType:  "apartment",
		Images:        []string{"https://img/1.jpg", "https://img/2.jpg"},
		Amenities:     []string{"WiFi", "Kitchen"},
		Bedrooms:      1,
		Bathrooms:     1,
		HostID:        host.ID,
		HostName:      host.Name,
	}
	require.NoError(t, db.CreateListing(context.Background(), l))
	return l
}

func stay(in, out string) models.DateRange {
	checkIn, err := models.ParseDate(in)
	if err != nil {
		panic(err)
	}
	checkOut, err := models.ParseDate(out)
	if err != nil {
		panic(err)
	}
	return models.DateRange{CheckIn: checkIn, CheckOut: checkOut}
}

func newReservation(listing *models.Listing, guest *models.User, rng models.DateRange) *models.Reservation {
	return &models.Reservation{
		ID:         uuid.NewString(),
		ListingID:  listing.ID,
		GuestID:    guest.ID,
		CheckIn:    rng.CheckIn,
		CheckOut:   rng.CheckOut,
		Guests:     1,
		TotalPrice: int64(rng.Nights()) * listing.PricePerNight,
		Status:     models.StatusConfirmed,
	}
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
}

func TestNewDB_SchemaIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.createTables())
}

func TestDB_Ready(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.Ready(context.Background()))
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "data/app.db?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", dsn("data/app.db"))
	assert.Equal(t, "file:x.db?cache=shared&_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", dsn("file:x.db?cache=shared"))
}
