package service

import (
	"context"

	"stayfinder/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateUser(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) CreateListing(ctx context.Context, listing *models.Listing) error {
	return m.Called(ctx, listing).Error(0)
}

func (m *mockRepo) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if l := args.Get(0); l != nil {
		return l.(*models.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) GetListingBySlug(ctx context.Context, slug string) (*models.Listing, error) {
	args := m.Called(ctx, slug)
	if l := args.Get(0); l != nil {
		return l.(*models.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) ListActiveListings(ctx context.Context, stay *models.DateRange) ([]*models.Listing, error) {
	args := m.Called(ctx, stay)
	return args.Get(0).([]*models.Listing), args.Error(1)
}

func (m *mockRepo) ListListingsByHost(ctx context.Context, hostID string) ([]*models.Listing, error) {
	args := m.Called(ctx, hostID)
	return args.Get(0).([]*models.Listing), args.Error(1)
}

func (m *mockRepo) UpdateListing(ctx context.Context, id, hostID string, update models.ListingUpdate) (*models.Listing, error) {
	args := m.Called(ctx, id, hostID, update)
	if l := args.Get(0); l != nil {
		return l.(*models.Listing), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) SetListingStatus(ctx context.Context, id, hostID, status string) error {
	return m.Called(ctx, id, hostID, status).Error(0)
}

func (m *mockRepo) DeleteListing(ctx context.Context, id, hostID, policy string, today models.Date) ([]string, error) {
	args := m.Called(ctx, id, hostID, policy, today)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockRepo) CreateReservationIfAvailable(ctx context.Context, reservation *models.Reservation) error {
	return m.Called(ctx, reservation).Error(0)
}

func (m *mockRepo) FindOverlapping(ctx context.Context, listingID string, rng models.DateRange) ([]*models.Reservation, error) {
	args := m.Called(ctx, listingID, rng)
	return args.Get(0).([]*models.Reservation), args.Error(1)
}

func (m *mockRepo) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*models.Reservation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) GetReservationDetail(ctx context.Context, id string) (*models.ReservationDetail, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*models.ReservationDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) UpdateReservationStatusWithVersion(ctx context.Context, id string, version int64, status string) error {
	return m.Called(ctx, id, version, status).Error(0)
}

func (m *mockRepo) ListReservationsByGuest(ctx context.Context, guestID string) ([]*models.ReservationDetail, error) {
	args := m.Called(ctx, guestID)
	return args.Get(0).([]*models.ReservationDetail), args.Error(1)
}

func (m *mockRepo) ListReservationsByHost(ctx context.Context, hostID string) ([]*models.ReservationDetail, error) {
	args := m.Called(ctx, hostID)
	return args.Get(0).([]*models.ReservationDetail), args.Error(1)
}
