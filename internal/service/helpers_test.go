package service

import (
	"context"
	"testing"
	"time"

	"stayfinder/internal/config"
	"stayfinder/internal/database"
	"stayfinder/internal/domain"
	"stayfinder/internal/events"
	"stayfinder/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fixedNow precedes every stay used in these tests.
var fixedNow = time.Date(2024, 2, 15, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fixture struct {
	db       *database.DB
	bus      *events.EventBus
	booking  *BookingService
	listings *ListingService
	host     *models.User
	guest    *models.User
	loft     *models.Listing
	events   map[string]int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{db: db, bus: events.NewEventBus(), events: make(map[string]int)}
	f.bus.SubscribeAll(func(e *events.Event) error {
		f.events[e.Type]++
		return nil
	})

	f.booking = NewBookingService(db, f.bus, config.BookingConfig{MaxNights: 30, MaxAdvanceDays: 365}, &logger).
		WithClock(fixedClock)
	f.listings = NewListingService(db, f.bus, config.CatalogConfig{}, &logger).WithClock(fixedClock)

	f.host = f.createUser(t, "Sarah Johnson", true)
	f.guest = f.createUser(t, "Guest User", false)
	f.loft = f.createListing(t, f.host, "Modern Downtown Loft", 180, 2)
	return f
}

func (f *fixture) createUser(t *testing.T, name string, isHost bool) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        uuid.NewString() + "@stayfinder.com",
		PasswordHash: "x",
		IsHost:       isHost,
	}
	require.NoError(t, f.db.CreateUser(context.Background(), user))
	return user
}

func (f *fixture) createListing(t *testing.T, host *models.User, title string, price int64, maxGuests int) *models.Listing {
	t.Helper()
	l, err := f.listings.CreateListing(context.Background(), host.Identity(), &models.Listing{
		Title:         title,
		Location:      "New York, NY",
		PricePerNight: price,
		MaxGuests:     maxGuests,
		PropertyType:  "apartment",
	})
	require.NoError(t, err)
	return l
}

func (f *fixture) request(listing *models.Listing, guest *models.User, checkIn, checkOut string, guests int) (*models.BookingResult, error) {
	return f.booking.RequestBooking(context.Background(), domain.BookingRequest{
		ListingID:   listing.ID,
		RequesterID: guest.ID,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Guests:      guests,
	})
}
