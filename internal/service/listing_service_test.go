package service

import (
	"context"
	"testing"

	"stayfinder/internal/config"
	"stayfinder/internal/database"
	"stayfinder/internal/domain"
	"stayfinder/internal/events"
	"stayfinder/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, "modern-downtown-loft", f.loft.Slug)
	assert.Equal(t, models.ListingActive, f.loft.Status)
	assert.Equal(t, f.host.ID, f.loft.HostID)
	assert.Equal(t, "Sarah Johnson", f.loft.HostName)
	assert.Equal(t, models.PlaceholderImages, f.loft.Images)
	assert.Equal(t, 1, f.events[events.EventListingCreated])

	second := f.createListing(t, f.host, "Modern Downtown Loft", 200, 4)
	third := f.createListing(t, f.host, "Modern Downtown Loft", 220, 4)
	assert.Equal(t, "modern-downtown-loft-2", second.Slug)
	assert.Equal(t, "modern-downtown-loft-3", third.Slug)

	bySlug, err := f.listings.GetListing(ctx, "modern-downtown-loft-2")
	require.NoError(t, err)
	assert.Equal(t, second.ID, bySlug.ID)

	byID, err := f.listings.GetListing(ctx, third.ID)
	require.NoError(t, err)
	assert.Equal(t, "modern-downtown-loft-3", byID.Slug)

	_, err = f.listings.GetListing(ctx, "nowhere")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateListing_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.listings.CreateListing(ctx, f.guest.Identity(), &models.Listing{
		Title: "Guest Cabin", Location: "Aspen, CO", PricePerNight: 100, MaxGuests: 2,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	cases := map[string]*models.Listing{
		"NoTitle":     {Location: "Aspen, CO", PricePerNight: 100, MaxGuests: 2},
		"NoLocation":  {Title: "Cabin", PricePerNight: 100, MaxGuests: 2},
		"ZeroPrice":   {Title: "Cabin", Location: "Aspen, CO", MaxGuests: 2},
		"ZeroGuests":  {Title: "Cabin", Location: "Aspen, CO", PricePerNight: 100},
		"NegativeFee": {Title: "Cabin", Location: "Aspen, CO", PricePerNight: -5, MaxGuests: 2},
	}
	for name, listing := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.listings.CreateListing(ctx, f.host.Identity(), listing)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCreateListing_KeepsProvidedImages(t *testing.T) {
	f := newFixture(t)

	l, err := f.listings.CreateListing(context.Background(), f.host.Identity(), &models.Listing{
		Title:         "Cozy Mountain Cabin",
		Location:      "Aspen, CO",
		PricePerNight: 250,
		MaxGuests:     6,
		Images:        []string{"https://images.example.com/cabin.jpg"},
		Amenities:     []string{"Fireplace", "Hot Tub"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://images.example.com/cabin.jpg"}, l.Images)
	assert.Equal(t, "cozy-mountain-cabin", l.Slug)
}

func TestCreateListing_SlugRaceRetries(t *testing.T) {
	repo := new(mockRepo)
	logger := zerolog.Nop()
	svc := NewListingService(repo, nil, config.CatalogConfig{}, &logger)
	ctx := context.Background()
	host := models.Identity{ID: "h-1", Name: "Host", IsHost: true}

	repo.On("SlugExists", ctx, "beach-house").Return(false, nil).Once()
	repo.On("CreateListing", ctx, mock.MatchedBy(func(l *models.Listing) bool { return l.Slug == "beach-house" })).
		Return(database.ErrSlugTaken).Once()
	repo.On("SlugExists", ctx, "beach-house-2").Return(false, nil).Once()
	repo.On("CreateListing", ctx, mock.MatchedBy(func(l *models.Listing) bool { return l.Slug == "beach-house-2" })).
		Return(nil).Once()

	l, err := svc.CreateListing(ctx, host, &models.Listing{
		Title: "Beach House", Location: "Malibu, CA", PricePerNight: 400, MaxGuests: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, "beach-house-2", l.Slug)
	repo.AssertExpectations(t)
}

func TestListActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cabin, err := f.listings.CreateListing(ctx, f.host.Identity(), &models.Listing{
		Title: "Cozy Mountain Cabin", Location: "Aspen, CO", PricePerNight: 250, MaxGuests: 6, PropertyType: "cabin",
	})
	require.NoError(t, err)
	hidden := f.createListing(t, f.host, "Hidden Studio", 90, 2)
	require.NoError(t, f.listings.SetListingStatus(ctx, f.host.Identity(), hidden.ID, models.ListingInactive))

	all, err := f.listings.ListActive(ctx, models.ListingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	aspen, err := f.listings.ListActive(ctx, models.ListingFilter{Location: "aspen"})
	require.NoError(t, err)
	require.Len(t, aspen, 1)
	assert.Equal(t, cabin.ID, aspen[0].ID)

	big, err := f.listings.ListActive(ctx, models.ListingFilter{Guests: 4})
	require.NoError(t, err)
	require.Len(t, big, 1)
	assert.Equal(t, cabin.ID, big[0].ID)

	_, err = f.request(f.loft, f.guest, "2024-03-01", "2024-03-04", 2)
	require.NoError(t, err)

	stay := models.DateRange{CheckIn: models.NewDate(2024, 3, 2), CheckOut: models.NewDate(2024, 3, 3)}
	free, err := f.listings.ListActive(ctx, models.ListingFilter{Stay: &stay})
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, cabin.ID, free[0].ID)

	bad := models.DateRange{CheckIn: stay.CheckOut, CheckOut: stay.CheckIn}
	_, err = f.listings.ListActive(ctx, models.ListingFilter{Stay: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestListByHost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.createUser(t, "Michael Chen", true)
	f.createListing(t, other, "Beach House", 400, 8)

	mine, err := f.listings.ListByHost(ctx, f.host.Identity())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.loft.ID, mine[0].ID)

	_, err = f.listings.ListByHost(ctx, f.guest.Identity())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	title := "Renovated Downtown Loft"
	price := int64(210)

	updated, err := f.listings.UpdateListing(ctx, f.host.Identity(), f.loft.ID, models.ListingUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, 1, f.events[events.EventListingUpdated])

	other := f.createUser(t, "Michael Chen", true)
	_, err = f.listings.UpdateListing(ctx, other.Identity(), f.loft.ID, models.ListingUpdate{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	zero := int64(0)
	_, err = f.listings.UpdateListing(ctx, f.host.Identity(), f.loft.ID, models.ListingUpdate{PricePerNight: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.request(f.loft, f.guest, "2024-03-01", "2024-03-04", 2)
	require.NoError(t, err)

	_, err = f.listings.UpdateListing(ctx, f.host.Identity(), f.loft.ID, models.ListingUpdate{PricePerNight: &price})
	assert.ErrorIs(t, err, domain.ErrListingLocked)
	assert.ErrorIs(t, err, domain.ErrConflict)

	description := "Now with a balcony"
	updated, err = f.listings.UpdateListing(ctx, f.host.Identity(), f.loft.ID, models.ListingUpdate{Description: &description})
	require.NoError(t, err)
	assert.Equal(t, int64(180), updated.PricePerNight)
	assert.Equal(t, description, updated.Description)
}

func TestSetListingStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.listings.SetListingStatus(ctx, f.host.Identity(), f.loft.ID, models.ListingDeleted)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = f.listings.SetListingStatus(ctx, f.guest.Identity(), f.loft.ID, models.ListingInactive)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, f.listings.SetListingStatus(ctx, f.host.Identity(), f.loft.ID, models.ListingInactive))
	l, err := f.listings.GetListing(ctx, f.loft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingInactive, l.Status)
}

func TestDeleteListing_RejectPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.request(f.loft, f.guest, "2024-03-01", "2024-03-04", 2)
	require.NoError(t, err)

	err = f.listings.DeleteListing(ctx, f.host.Identity(), f.loft.ID)
	assert.ErrorIs(t, err, domain.ErrHasActiveReservations)

	_, err = f.listings.GetListing(ctx, f.loft.ID)
	assert.NoError(t, err)
}

func TestDeleteListing_CascadeCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	logger := zerolog.Nop()
	cascading := NewListingService(f.db, f.bus, config.CatalogConfig{DeletePolicy: models.DeletePolicyCascadeCancel}, &logger).
		WithClock(fixedClock)

	result, err := f.request(f.loft, f.guest, "2024-03-01", "2024-03-04", 2)
	require.NoError(t, err)

	require.NoError(t, cascading.DeleteListing(ctx, f.host.Identity(), f.loft.ID))
	assert.Equal(t, 1, f.events[events.EventListingDeleted])

	_, err = f.listings.GetListing(ctx, f.loft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	r, err := f.db.GetReservation(ctx, result.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, r.Status)

	// The cancelled reservation stays readable by its guest.
	detail, err := f.booking.GetReservation(ctx, result.ReservationID, f.guest.ID)
	require.NoError(t, err)
	assert.Equal(t, "Modern Downtown Loft", detail.ListingTitle)

	err = cascading.DeleteListing(ctx, f.host.Identity(), f.loft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
