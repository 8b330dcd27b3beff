package database

import (
	"context"
	"fmt"
	"time"

	"stayfinder/internal/models"
)

const reservationColumns = `r.id, r.listing_id, r.guest_id, r.check_in, r.check_out, r.guests,
	r.total_price, r.status, r.version, r.created_at, r.updated_at`

const detailQuery = `SELECT ` + reservationColumns + `,
	       l.title, l.location, l.images, l.host_id, COALESCE(u.name, '')
	FROM reservations r
	JOIN listings l ON l.id = r.listing_id
	LEFT JOIN users u ON u.id = r.guest_id`

func scanReservation(row rowScanner, extra ...interface{}) (*models.Reservation, error) {
	var r models.Reservation
	dest := append([]interface{}{
		&r.ID, &r.ListingID, &r.GuestID, &r.CheckIn, &r.CheckOut, &r.Guests,
		&r.TotalPrice, &r.Status, &r.Version, &r.CreatedAt, &r.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &r, nil
}

func scanReservationDetail(row rowScanner) (*models.ReservationDetail, error) {
	var (
		d      models.ReservationDetail
		images string
	)
	r, err := scanReservation(row, &d.ListingTitle, &d.ListingLocation, &images, &d.HostID, &d.GuestName)
	if err != nil {
		return nil, err
	}
	d.Reservation = *r
	d.Nights = r.Nights()

	var gallery []string
	if err := decodeList(images, &gallery); err != nil {
		return nil, fmt.Errorf("reservation %s listing images: %w", r.ID, err)
	}
	if len(gallery) > 0 {
		d.ListingImage = gallery[0]
	}
	return &d, nil
}

// CreateReservationIfAvailable inserts r only if no non-cancelled reservation of the same listing
// overlaps [CheckIn, CheckOut). The overlap check and the insert share one IMMEDIATE transaction.
func (db *DB) CreateReservationIfAvailable(ctx context.Context, r *models.Reservation) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM listings WHERE id = ?`, r.ListingID).Scan(&status)
	if err != nil {
		return notFound(err, "listing")
	}
	if status != models.ListingActive {
		return fmt.Errorf("listing: %w", ErrNotFound)
	}

	var overlapping int
	queryCount := `SELECT COUNT(*) FROM reservations
                   WHERE listing_id = ? AND status != ? AND check_in < ? AND ? < check_out`
	err = tx.QueryRowContext(ctx, queryCount,
		r.ListingID, models.StatusCancelled, r.CheckOut, r.CheckIn).Scan(&overlapping)
	if err != nil {
		return fmt.Errorf("failed to check availability in tx: %w", err)
	}
	if overlapping > 0 {
		return ErrDoubleBooked
	}

	now := time.Now().UTC()
	queryInsert := `INSERT INTO reservations (
				id, listing_id, guest_id, check_in, check_out, guests,
				total_price, status, version, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, queryInsert,
		r.ID,
		r.ListingID,
		r.GuestID,
		r.CheckIn,
		r.CheckOut,
		r.Guests,
		r.TotalPrice,
		r.Status,
		1,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reservation: %w", err)
	}
	r.Version = 1
	r.CreatedAt = now
	r.UpdatedAt = now
	return nil
}

// FindOverlapping returns the non-cancelled reservations of a listing intersecting rng.
func (db *DB) FindOverlapping(ctx context.Context, listingID string, rng models.DateRange) ([]*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations r
              WHERE r.listing_id = ? AND r.status != ? AND r.check_in < ? AND ? < r.check_out
              ORDER BY r.check_in ASC`
	rows, err := db.QueryContext(ctx, query, listingID, models.StatusCancelled, rng.CheckOut, rng.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping reservations: %w", err)
	}
	defer rows.Close()

	reservations := []*models.Reservation{}
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

func (db *DB) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations r WHERE r.id = ?`
	r, err := scanReservation(db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "reservation")
	}
	return r, nil
}

// GetReservationDetail joins a reservation with its listing summary and guest name.
func (db *DB) GetReservationDetail(ctx context.Context, id string) (*models.ReservationDetail, error) {
	d, err := scanReservationDetail(db.QueryRowContext(ctx, detailQuery+` WHERE r.id = ?`, id))
	if err != nil {
		return nil, notFound(err, "reservation")
	}
	return d, nil
}

func (db *DB) UpdateReservationStatusWithVersion(ctx context.Context, id string, fromVersion int64, status string) error {
	query := `UPDATE reservations SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now().UTC(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// ListReservationsByGuest returns the guest's reservations, newest first.
func (db *DB) ListReservationsByGuest(ctx context.Context, guestID string) ([]*models.ReservationDetail, error) {
	return db.queryDetails(ctx, detailQuery+` WHERE r.guest_id = ? ORDER BY r.created_at DESC, r.id ASC`, guestID)
}

// ListReservationsByHost returns reservations across all listings of the host, newest first.
func (db *DB) ListReservationsByHost(ctx context.Context, hostID string) ([]*models.ReservationDetail, error) {
	return db.queryDetails(ctx, detailQuery+` WHERE l.host_id = ? ORDER BY r.created_at DESC, r.id ASC`, hostID)
}

func (db *DB) queryDetails(ctx context.Context, query string, args ...interface{}) ([]*models.ReservationDetail, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	details := []*models.ReservationDetail{}
	for rows.Next() {
		d, err := scanReservationDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
