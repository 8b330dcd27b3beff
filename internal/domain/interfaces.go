package domain

import (
	"context"
	"time"

	"stayfinder/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type ListingRepository interface {
	CreateListing(ctx context.Context, listing *models.Listing) error
	GetListing(ctx context.Context, id string) (*models.Listing, error)
	GetListingBySlug(ctx context.Context, slug string) (*models.Listing, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListActiveListings(ctx context.Context, stay *models.DateRange) ([]*models.Listing, error)
	ListListingsByHost(ctx context.Context, hostID string) ([]*models.Listing, error)
	UpdateListing(ctx context.Context, id, hostID string, update models.ListingUpdate) (*models.Listing, error)
	SetListingStatus(ctx context.Context, id, hostID, status string) error
	DeleteListing(ctx context.Context, id, hostID, policy string, today models.Date) ([]string, error)
}

type ReservationRepository interface {
	CreateReservationIfAvailable(ctx context.Context, reservation *models.Reservation) error
	FindOverlapping(ctx context.Context, listingID string, rng models.DateRange) ([]*models.Reservation, error)
	GetReservation(ctx context.Context, id string) (*models.Reservation, error)
	GetReservationDetail(ctx context.Context, id string) (*models.ReservationDetail, error)
	UpdateReservationStatusWithVersion(ctx context.Context, id string, version int64, status string) error
	ListReservationsByGuest(ctx context.Context, guestID string) ([]*models.ReservationDetail, error)
	ListReservationsByHost(ctx context.Context, hostID string) ([]*models.ReservationDetail, error)
}

// Repository is the full relational store as implemented by *database.DB.
type Repository interface {
	UserRepository
	ListingRepository
	ReservationRepository
}

// AttemptStore counts events per key inside a sliding expiry window.
type AttemptStore interface {
	Attempts(ctx context.Context, key string) (int, error)
	RecordAttempt(ctx context.Context, key string, window time.Duration) (int, error)
	ResetAttempts(ctx context.Context, key string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type AuthService interface {
	Register(ctx context.Context, name, email, password string, wantsHost bool) (*models.Identity, string, error)
	Login(ctx context.Context, email, password string) (*models.Identity, string, error)
	Verify(ctx context.Context, token string) (*models.Identity, error)
}

type ListingService interface {
	GetListing(ctx context.Context, idOrSlug string) (*models.Listing, error)
	ListActive(ctx context.Context, filter models.ListingFilter) ([]*models.Listing, error)
	ListByHost(ctx context.Context, host models.Identity) ([]*models.Listing, error)
	CreateListing(ctx context.Context, host models.Identity, listing *models.Listing) (*models.Listing, error)
	UpdateListing(ctx context.Context, host models.Identity, id string, update models.ListingUpdate) (*models.Listing, error)
	SetListingStatus(ctx context.Context, host models.Identity, id, status string) error
	DeleteListing(ctx context.Context, host models.Identity, id string) error
}

type BookingService interface {
	RequestBooking(ctx context.Context, req BookingRequest) (*models.BookingResult, error)
	CancelBooking(ctx context.Context, reservationID, requesterID string) (*models.Reservation, error)
	GetReservation(ctx context.Context, reservationID, requesterID string) (*models.ReservationDetail, error)
	ListGuestReservations(ctx context.Context, guestID string) ([]*models.ReservationDetail, error)
	ListHostReservations(ctx context.Context, host models.Identity) ([]*models.ReservationDetail, error)
	Quote(ctx context.Context, listingID, checkIn, checkOut string, guests int) (*models.Quote, error)
	Availability(ctx context.Context, listingID, from, to string) ([]models.BookedRange, error)
}

// BookingRequest carries raw booking input. Dates are YYYY-MM-DD strings and are validated by the
// booking service, which also ignores any client-supplied total.
type BookingRequest struct {
	ListingID   string
	RequesterID string
	CheckIn     string
	CheckOut    string
	Guests      int
}
