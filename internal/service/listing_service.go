package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stayfinder/internal/config"
	"stayfinder/internal/database"
	"stayfinder/internal/domain"
	"stayfinder/internal/events"
	"stayfinder/internal/metrics"
	"stayfinder/internal/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
)

const maxSlugAttempts = 50

type ListingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	catalog  config.CatalogConfig
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewListingService(repo domain.Repository, eventBus domain.EventPublisher, catalog config.CatalogConfig, logger *zerolog.Logger) *ListingService {
	if catalog.DeletePolicy == "" {
		catalog.DeletePolicy = models.DeletePolicyReject
	}
	if len(catalog.PlaceholderImages) == 0 {
		catalog.PlaceholderImages = models.PlaceholderImages
	}
	return &ListingService{
		repo:     repo,
		eventBus: eventBus,
		catalog:  catalog,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *ListingService) WithClock(now func() time.Time) *ListingService {
	s.now = now
	return s
}

func requireHost(identity models.Identity) error {
	if !identity.IsHost {
		return fmt.Errorf("host account required: %w", domain.ErrForbidden)
	}
	return nil
}

// GetListing resolves a listing by id, then by slug.
func (s *ListingService) GetListing(ctx context.Context, idOrSlug string) (*models.Listing, error) {
	listing, err := s.repo.GetListing(ctx, idOrSlug)
	if errors.Is(err, domain.ErrNotFound) {
		return s.repo.GetListingBySlug(ctx, idOrSlug)
	}
	return listing, err
}

func (s *ListingService) ListActive(ctx context.Context, filter models.ListingFilter) ([]*models.Listing, error) {
	if filter.Stay != nil && !filter.Stay.Valid() {
		return nil, fmt.Errorf("%w: check-in must be before check-out", domain.ErrInvalidRange)
	}
	listings, err := s.repo.ListActiveListings(ctx, filter.Stay)
	if err != nil {
		return nil, err
	}

	matched := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if filter.Matches(l) {
			matched = append(matched, l)
		}
	}
	return matched, nil
}

func (s *ListingService) ListByHost(ctx context.Context, host models.Identity) ([]*models.Listing, error) {
	if err := requireHost(host); err != nil {
		return nil, err
	}
	return s.repo.ListListingsByHost(ctx, host.ID)
}

func validateListing(l *models.Listing) error {
	switch {
	case strings.TrimSpace(l.Title) == "":
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	case strings.TrimSpace(l.Location) == "":
		return fmt.Errorf("%w: location is required", domain.ErrInvalidInput)
	case l.PricePerNight <= 0:
		return fmt.Errorf("%w: price must be positive", domain.ErrInvalidInput)
	case l.MaxGuests <= 0:
		return fmt.Errorf("%w: max guests must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// CreateListing stores a new active listing owned by host with a unique slug derived from the title.
func (s *ListingService) CreateListing(ctx context.Context, host models.Identity, listing *models.Listing) (*models.Listing, error) {
	if err := requireHost(host); err != nil {
		return nil, err
	}
	if err := validateListing(listing); err != nil {
		return nil, err
	}

	listing.ID = uuid.NewString()
	listing.HostID = host.ID
	listing.HostName = host.Name
	listing.Status = models.ListingActive
	if len(listing.Images) == 0 {
		listing.Images = append([]string(nil), s.catalog.PlaceholderImages...)
	}
	if listing.Amenities == nil {
		listing.Amenities = []string{}
	}

	base := slug.Make(listing.Title)
	if base == "" {
		base = "listing"
	}
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		candidate := base
		if attempt > 1 {
			candidate = fmt.Sprintf("%s-%d", base, attempt)
		}
		taken, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		listing.Slug = candidate
		err = s.repo.CreateListing(ctx, listing)
		if errors.Is(err, database.ErrSlugTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.logger.Info().Str("listing_id", listing.ID).Str("slug", listing.Slug).Str("host_id", host.ID).Msg("Listing created")
		s.publishEvent(events.EventListingCreated, events.ListingEventPayload{
			ListingID: listing.ID,
			HostID:    host.ID,
			Title:     listing.Title,
			Status:    listing.Status,
		})
		return listing, nil
	}
	return nil, fmt.Errorf("no free slug for %q after %d attempts", base, maxSlugAttempts)
}

// UpdateListing edits an owned listing. Price and capacity are frozen while reservations exist.
func (s *ListingService) UpdateListing(ctx context.Context, host models.Identity, id string, update models.ListingUpdate) (*models.Listing, error) {
	if err := requireHost(host); err != nil {
		return nil, err
	}
	if update.PricePerNight != nil && *update.PricePerNight <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrInvalidInput)
	}
	if update.MaxGuests != nil && *update.MaxGuests <= 0 {
		return nil, fmt.Errorf("%w: max guests must be positive", domain.ErrInvalidInput)
	}

	listing, err := s.repo.UpdateListing(ctx, id, host.ID, update)
	if err != nil {
		return nil, err
	}

	s.publishEvent(events.EventListingUpdated, events.ListingEventPayload{
		ListingID: listing.ID,
		HostID:    host.ID,
		Title:     listing.Title,
		Status:    listing.Status,
	})
	return listing, nil
}

// SetListingStatus hides (inactive) or shows (active) an owned listing.
func (s *ListingService) SetListingStatus(ctx context.Context, host models.Identity, id, status string) error {
	if err := requireHost(host); err != nil {
		return err
	}
	if status != models.ListingActive && status != models.ListingInactive {
		return fmt.Errorf("%w: status must be active or inactive", domain.ErrInvalidInput)
	}
	if err := s.repo.SetListingStatus(ctx, id, host.ID, status); err != nil {
		return err
	}

	s.publishEvent(events.EventListingUpdated, events.ListingEventPayload{ListingID: id, HostID: host.ID, Status: status})
	return nil
}

// DeleteListing soft-deletes an owned listing under the configured reservation policy.
func (s *ListingService) DeleteListing(ctx context.Context, host models.Identity, id string) error {
	if err := requireHost(host); err != nil {
		return err
	}

	today := models.DateOf(s.now().UTC())
	cancelled, err := s.repo.DeleteListing(ctx, id, host.ID, s.catalog.DeletePolicy, today)
	if err != nil {
		return err
	}

	for range cancelled {
		metrics.IncCancellation()
	}
	s.logger.Info().
		Str("listing_id", id).
		Str("policy", s.catalog.DeletePolicy).
		Int("cancelled_reservations", len(cancelled)).
		Msg("Listing deleted")
	s.publishEvent(events.EventListingDeleted, events.ListingEventPayload{
		ListingID:             id,
		HostID:                host.ID,
		Status:                models.ListingDeleted,
		CancelledReservations: cancelled,
	})
	return nil
}

func (s *ListingService) publishEvent(eventType string, payload events.ListingEventPayload) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("listing_id", payload.ListingID).Msg("publish event error")
	}
}
