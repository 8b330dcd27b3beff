package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stayfinder/internal/config"
	"stayfinder/internal/domain"
	"stayfinder/internal/events"
	"stayfinder/internal/metrics"
	"stayfinder/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// defaultAvailabilityWindow bounds availability queries without an explicit end date.
const defaultAvailabilityWindow = 90

type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	policy   config.BookingConfig
	locks    *keyedMutex
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, policy config.BookingConfig, logger *zerolog.Logger) *BookingService {
	if policy.MaxNights <= 0 {
		policy.MaxNights = models.DefaultMaxNights
	}
	if policy.MaxAdvanceDays <= 0 {
		policy.MaxAdvanceDays = models.DefaultMaxAdvanceDays
	}
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		policy:   policy,
		locks:    newKeyedMutex(),
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the time source used for calendar policy checks.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

func (s *BookingService) today() models.Date {
	return models.DateOf(s.now().UTC())
}

// activeListing loads a listing that accepts bookings; inactive listings read as absent.
func (s *BookingService) activeListing(ctx context.Context, listingID string) (*models.Listing, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.IsActive() {
		return nil, fmt.Errorf("listing %s is %s: %w", listingID, listing.Status, domain.ErrNotFound)
	}
	return listing, nil
}

// parseRange validates the raw dates against the calendar policy.
func (s *BookingService) parseRange(checkIn, checkOut string) (models.DateRange, error) {
	in, err := models.ParseDate(checkIn)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("%w: check-in: %v", domain.ErrInvalidRange, err)
	}
	out, err := models.ParseDate(checkOut)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("%w: check-out: %v", domain.ErrInvalidRange, err)
	}

	rng := models.DateRange{CheckIn: in, CheckOut: out}
	if !rng.Valid() {
		return rng, fmt.Errorf("%w: check-in must be before check-out", domain.ErrInvalidRange)
	}

	today := s.today()
	if !s.policy.AllowPastCheckIn && rng.CheckIn.Before(today) {
		return rng, fmt.Errorf("%w: check-in %s is in the past", domain.ErrInvalidRange, rng.CheckIn)
	}
	if models.DaysBetween(today, rng.CheckIn) > s.policy.MaxAdvanceDays {
		return rng, fmt.Errorf("%w: check-in is more than %d days ahead", domain.ErrInvalidRange, s.policy.MaxAdvanceDays)
	}
	if rng.Nights() > s.policy.MaxNights {
		return rng, fmt.Errorf("%w: stay exceeds %d nights", domain.ErrInvalidRange, s.policy.MaxNights)
	}
	return rng, nil
}

func checkCapacity(listing *models.Listing, guests int) error {
	if guests < 1 {
		return fmt.Errorf("%w: at least one guest is required", domain.ErrCapacityExceeded)
	}
	if guests > listing.MaxGuests {
		return fmt.Errorf("%w: %d guests requested, listing allows %d", domain.ErrCapacityExceeded, guests, listing.MaxGuests)
	}
	return nil
}

// price computes nights and total for a validated range. The result never depends on caller input.
func price(listing *models.Listing, rng models.DateRange) (int, int64, error) {
	nights := rng.Nights()
	if nights <= 0 {
		return 0, 0, fmt.Errorf("%w: stay must be at least one night", domain.ErrInvalidRange)
	}
	return nights, int64(nights) * listing.PricePerNight, nil
}

// RequestBooking validates the request, then checks for overlaps and inserts the reservation as
// one atomic unit per listing.
func (s *BookingService) RequestBooking(ctx context.Context, req domain.BookingRequest) (*models.BookingResult, error) {
	result, err := s.requestBooking(ctx, req)
	metrics.IncBooking(bookingOutcome(err))
	if err != nil {
		s.logger.Debug().Err(err).
			Str("listing_id", req.ListingID).
			Str("guest_id", req.RequesterID).
			Msg("Booking request rejected")
		return nil, err
	}
	return result, nil
}

func (s *BookingService) requestBooking(ctx context.Context, req domain.BookingRequest) (*models.BookingResult, error) {
	listing, err := s.activeListing(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetUserByID(ctx, req.RequesterID); err != nil {
		return nil, fmt.Errorf("requester: %w", err)
	}

	rng, err := s.parseRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	if err := checkCapacity(listing, req.Guests); err != nil {
		return nil, err
	}
	nights, total, err := price(listing, rng)
	if err != nil {
		return nil, err
	}

	reservation := &models.Reservation{
		ID:         uuid.NewString(),
		ListingID:  listing.ID,
		GuestID:    req.RequesterID,
		CheckIn:    rng.CheckIn,
		CheckOut:   rng.CheckOut,
		Guests:     req.Guests,
		TotalPrice: total,
		Status:     models.StatusConfirmed,
	}

	if err := s.insertLocked(ctx, reservation); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("reservation_id", reservation.ID).
		Str("listing_id", listing.ID).
		Str("check_in", rng.CheckIn.String()).
		Str("check_out", rng.CheckOut.String()).
		Int64("total_price", total).
		Msg("Reservation confirmed")
	s.publishEvent(events.EventReservationCreated, reservation, req.RequesterID)

	return &models.BookingResult{
		ReservationID: reservation.ID,
		ListingID:     listing.ID,
		CheckIn:       rng.CheckIn,
		CheckOut:      rng.CheckOut,
		Guests:        req.Guests,
		Nights:        nights,
		TotalPrice:    total,
		Status:        reservation.Status,
	}, nil
}

// insertLocked runs the availability check and insert while holding the listing's lock.
func (s *BookingService) insertLocked(ctx context.Context, reservation *models.Reservation) error {
	unlock := s.locks.Lock(reservation.ListingID)
	defer unlock()
	return s.repo.CreateReservationIfAvailable(ctx, reservation)
}

// CancelBooking moves a reservation to cancelled. Cancelling twice succeeds without a second event.
func (s *BookingService) CancelBooking(ctx context.Context, reservationID, requesterID string) (*models.Reservation, error) {
	detail, err := s.GetReservation(ctx, reservationID, requesterID)
	if err != nil {
		return nil, err
	}
	reservation := detail.Reservation
	if reservation.IsCancelled() {
		return &reservation, nil
	}

	err = s.repo.UpdateReservationStatusWithVersion(ctx, reservation.ID, reservation.Version, models.StatusCancelled)
	if errors.Is(err, domain.ErrConcurrentModification) {
		current, getErr := s.repo.GetReservation(ctx, reservation.ID)
		if getErr == nil && current.IsCancelled() {
			return current, nil
		}
	}
	if err != nil {
		return nil, err
	}

	reservation.Status = models.StatusCancelled
	reservation.Version++
	metrics.IncCancellation()
	s.logger.Info().
		Str("reservation_id", reservation.ID).
		Str("cancelled_by", requesterID).
		Msg("Reservation cancelled")
	s.publishEvent(events.EventReservationCancelled, &reservation, requesterID)

	return &reservation, nil
}

// GetReservation returns the joined reservation if requesterID is its guest or the listing host.
func (s *BookingService) GetReservation(ctx context.Context, reservationID, requesterID string) (*models.ReservationDetail, error) {
	detail, err := s.repo.GetReservationDetail(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !detail.CanBeAccessedBy(requesterID) {
		return nil, fmt.Errorf("reservation %s: %w", reservationID, domain.ErrForbidden)
	}
	return detail, nil
}

func (s *BookingService) ListGuestReservations(ctx context.Context, guestID string) ([]*models.ReservationDetail, error) {
	return s.repo.ListReservationsByGuest(ctx, guestID)
}

func (s *BookingService) ListHostReservations(ctx context.Context, host models.Identity) ([]*models.ReservationDetail, error) {
	if !host.IsHost {
		return nil, fmt.Errorf("host reservations: %w", domain.ErrForbidden)
	}
	return s.repo.ListReservationsByHost(ctx, host.ID)
}

// Quote prices a request without persisting it and reports whether the range is currently free.
func (s *BookingService) Quote(ctx context.Context, listingID, checkIn, checkOut string, guests int) (*models.Quote, error) {
	listing, err := s.activeListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	rng, err := s.parseRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if err := checkCapacity(listing, guests); err != nil {
		return nil, err
	}
	nights, total, err := price(listing, rng)
	if err != nil {
		return nil, err
	}

	overlapping, err := s.repo.FindOverlapping(ctx, listing.ID, rng)
	if err != nil {
		return nil, err
	}

	return &models.Quote{
		ListingID:     listing.ID,
		CheckIn:       rng.CheckIn,
		CheckOut:      rng.CheckOut,
		Guests:        guests,
		Nights:        nights,
		PricePerNight: listing.PricePerNight,
		TotalPrice:    total,
		Available:     len(overlapping) == 0,
	}, nil
}

// Availability lists booked ranges intersecting [from, to). Empty bounds default to today and
// defaultAvailabilityWindow days after from.
func (s *BookingService) Availability(ctx context.Context, listingID, from, to string) ([]models.BookedRange, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	window := models.DateRange{CheckIn: s.today()}
	if from != "" {
		if window.CheckIn, err = models.ParseDate(from); err != nil {
			return nil, fmt.Errorf("%w: from: %v", domain.ErrInvalidRange, err)
		}
	}
	window.CheckOut = window.CheckIn.AddDays(defaultAvailabilityWindow)
	if to != "" {
		if window.CheckOut, err = models.ParseDate(to); err != nil {
			return nil, fmt.Errorf("%w: to: %v", domain.ErrInvalidRange, err)
		}
	}
	if !window.Valid() {
		return nil, fmt.Errorf("%w: from must be before to", domain.ErrInvalidRange)
	}

	reservations, err := s.repo.FindOverlapping(ctx, listing.ID, window)
	if err != nil {
		return nil, err
	}

	booked := make([]models.BookedRange, 0, len(reservations))
	for _, r := range reservations {
		booked = append(booked, models.BookedRange{CheckIn: r.CheckIn, CheckOut: r.CheckOut})
	}
	return booked, nil
}

func (s *BookingService) publishEvent(eventType string, r *models.Reservation, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.ReservationEventPayload{
		ReservationID: r.ID,
		ListingID:     r.ListingID,
		GuestID:       r.GuestID,
		CheckIn:       r.CheckIn.String(),
		CheckOut:      r.CheckOut.String(),
		Guests:        r.Guests,
		Nights:        r.Nights(),
		TotalPrice:    r.TotalPrice,
		Status:        r.Status,
		ChangedBy:     changedBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("reservation_id", r.ID).Msg("publish event error")
	}
}

func bookingOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeConfirmed
	case errors.Is(err, domain.ErrDoubleBooked):
		return metrics.OutcomeDoubleBooked
	case errors.Is(err, domain.ErrInvalidRange):
		return metrics.OutcomeInvalidRange
	case errors.Is(err, domain.ErrCapacityExceeded):
		return metrics.OutcomeCapacityExceeded
	case errors.Is(err, domain.ErrNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}
