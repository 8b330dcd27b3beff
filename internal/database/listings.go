package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"stayfinder/internal/models"
)

const listingColumns = `id, slug, title, location, price_per_night, max_guests, property_type,
	description, images, amenities, bedrooms, bathrooms, host_id, host_name, status,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*models.Listing, error) {
	var (
		l                 models.Listing
		images, amenities string
	)
	err := row.Scan(
		&l.ID, &l.Slug, &l.Title, &l.Location, &l.PricePerNight, &l.MaxGuests, &l.PropertyType,
		&l.Description, &images, &amenities, &l.Bedrooms, &l.Bathrooms, &l.HostID, &l.HostName, &l.Status,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := decodeList(images, &l.Images); err != nil {
		return nil, fmt.Errorf("listing %s images: %w", l.ID, err)
	}
	if err := decodeList(amenities, &l.Amenities); err != nil {
		return nil, fmt.Errorf("listing %s amenities: %w", l.ID, err)
	}
	return &l, nil
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeList(raw string, out *[]string) error {
	if raw == "" {
		*out = []string{}
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}

func (db *DB) CreateListing(ctx context.Context, l *models.Listing) error {
	return insertListing(ctx, db, l)
}

func insertListing(ctx context.Context, ex execer, l *models.Listing) error {
	images, err := encodeList(l.Images)
	if err != nil {
		return fmt.Errorf("failed to encode images: %w", err)
	}
	amenities, err := encodeList(l.Amenities)
	if err != nil {
		return fmt.Errorf("failed to encode amenities: %w", err)
	}
	if l.Status == "" {
		l.Status = models.ListingActive
	}
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now

	query := `INSERT INTO listings (` + listingColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = ex.ExecContext(ctx, query,
		l.ID, l.Slug, l.Title, l.Location, l.PricePerNight, l.MaxGuests, l.PropertyType,
		l.Description, images, amenities, l.Bedrooms, l.Bathrooms, l.HostID, l.HostName, l.Status,
		l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

// GetListing returns a non-deleted listing by id.
func (db *DB) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = ? AND status != ?`
	l, err := scanListing(db.QueryRowContext(ctx, query, id, models.ListingDeleted))
	if err != nil {
		return nil, notFound(err, "listing")
	}
	return l, nil
}

func (db *DB) GetListingBySlug(ctx context.Context, slug string) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE slug = ? AND status != ?`
	l, err := scanListing(db.QueryRowContext(ctx, query, slug, models.ListingDeleted))
	if err != nil {
		return nil, notFound(err, "listing")
	}
	return l, nil
}

func (db *DB) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM listings WHERE slug = ?)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// ListActiveListings returns active listings in creation order. When stay is set, listings with a
// non-cancelled reservation overlapping it are excluded.
func (db *DB) ListActiveListings(ctx context.Context, stay *models.DateRange) ([]*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings l WHERE l.status = ?`
	args := []interface{}{models.ListingActive}
	if stay != nil {
		query += ` AND NOT EXISTS (
			SELECT 1 FROM reservations r
			WHERE r.listing_id = l.id AND r.status != ? AND r.check_in < ? AND ? < r.check_out)`
		args = append(args, models.StatusCancelled, stay.CheckOut, stay.CheckIn)
	}
	query += ` ORDER BY l.created_at ASC, l.id ASC`
	return db.queryListings(ctx, query, args...)
}

// ListListingsByHost returns every non-deleted listing of the host, newest first.
func (db *DB) ListListingsByHost(ctx context.Context, hostID string) ([]*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings
              WHERE host_id = ? AND status != ? ORDER BY created_at DESC, id ASC`
	return db.queryListings(ctx, query, hostID, models.ListingDeleted)
}

func (db *DB) queryListings(ctx context.Context, query string, args ...interface{}) ([]*models.Listing, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	listings := []*models.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// getOwnedListingTx loads a non-deleted listing owned by hostID inside tx.
func getOwnedListingTx(ctx context.Context, tx *sql.Tx, id, hostID string) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = ? AND host_id = ? AND status != ?`
	l, err := scanListing(tx.QueryRowContext(ctx, query, id, hostID, models.ListingDeleted))
	if err != nil {
		return nil, notFound(err, "listing")
	}
	return l, nil
}

func hasReservationsTx(ctx context.Context, tx *sql.Tx, listingID string) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM reservations WHERE listing_id = ? AND status != ?)`,
		listingID, models.StatusCancelled).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check reservations: %w", err)
	}
	return exists, nil
}

// UpdateListing applies a partial edit to a listing owned by hostID. Price and capacity changes
// are refused with ErrListingLocked while any non-cancelled reservation references the listing.
func (db *DB) UpdateListing(ctx context.Context, id, hostID string, update models.ListingUpdate) (*models.Listing, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	l, err := getOwnedListingTx(ctx, tx, id, hostID)
	if err != nil {
		return nil, err
	}

	if update.ChangesTerms(l) {
		locked, err := hasReservationsTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if locked {
			return nil, ErrListingLocked
		}
	}

	update.Apply(l)
	amenities, err := encodeList(l.Amenities)
	if err != nil {
		return nil, fmt.Errorf("failed to encode amenities: %w", err)
	}
	l.UpdatedAt = time.Now().UTC()

	query := `UPDATE listings SET title = ?, location = ?, price_per_night = ?, max_guests = ?,
	                 property_type = ?, description = ?, amenities = ?, bedrooms = ?, bathrooms = ?,
	                 updated_at = ?
              WHERE id = ?`
	_, err = tx.ExecContext(ctx, query,
		l.Title, l.Location, l.PricePerNight, l.MaxGuests,
		l.PropertyType, l.Description, amenities, l.Bedrooms, l.Bathrooms,
		l.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit listing update: %w", err)
	}
	return l, nil
}

// SetListingStatus toggles a listing between active and inactive.
func (db *DB) SetListingStatus(ctx context.Context, id, hostID, status string) error {
	query := `UPDATE listings SET status = ?, updated_at = ? WHERE id = ? AND host_id = ? AND status != ?`
	result, err := db.ExecContext(ctx, query, status, time.Now().UTC(), id, hostID, models.ListingDeleted)
	if err != nil {
		return fmt.Errorf("failed to update listing status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("listing: %w", ErrNotFound)
	}
	return nil
}

// DeleteListing soft-deletes a listing owned by hostID. Reservations with check_out after today
// either block the delete (reject) or are cancelled in the same transaction (cascade_cancel).
// It returns the ids of cancelled reservations.
func (db *DB) DeleteListing(ctx context.Context, id, hostID, policy string, today models.Date) ([]string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := getOwnedListingTx(ctx, tx, id, hostID); err != nil {
		return nil, err
	}

	upcoming, err := upcomingReservationIDsTx(ctx, tx, id, today)
	if err != nil {
		return nil, err
	}

	if len(upcoming) > 0 {
		if policy != models.DeletePolicyCascadeCancel {
			return nil, ErrHasActiveReservations
		}
		query := `UPDATE reservations SET status = ?, version = version + 1, updated_at = ?
                  WHERE listing_id = ? AND status != ? AND check_out > ?`
		_, err := tx.ExecContext(ctx, query,
			models.StatusCancelled, time.Now().UTC(), id, models.StatusCancelled, today)
		if err != nil {
			return nil, fmt.Errorf("failed to cancel reservations: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `UPDATE listings SET status = ?, updated_at = ? WHERE id = ?`,
		models.ListingDeleted, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete listing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit listing delete: %w", err)
	}
	return upcoming, nil
}

func upcomingReservationIDsTx(ctx context.Context, tx *sql.Tx, listingID string, today models.Date) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM reservations WHERE listing_id = ? AND status != ? AND check_out > ? ORDER BY check_in`,
		listingID, models.StatusCancelled, today)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming reservations: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan reservation id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (db *DB) CountListings(ctx context.Context) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM listings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}
