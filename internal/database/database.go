package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stayfinder/internal/domain"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Storage-level sentinels are the domain error kinds so callers can use errors.Is across layers.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrDoubleBooked           = domain.ErrDoubleBooked
	ErrEmailTaken             = domain.ErrEmailTaken
	ErrListingLocked          = domain.ErrListingLocked
	ErrHasActiveReservations  = domain.ErrHasActiveReservations
	ErrConcurrentModification = domain.ErrConcurrentModification
	ErrSlugTaken              = errors.New("slug already in use")
)

type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

// NewDB opens (creating when needed) the sqlite database at path and applies the schema.
// Writes are funnelled through a single connection and transactions start IMMEDIATE, which
// makes every check-then-write transaction serializable against the others.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := newDB(sqlDB, logger)
	if err := db.createTables(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("Database initialized")
	return db, nil
}

func newDB(sqlDB *sql.DB, logger *zerolog.Logger) *DB {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &DB{DB: sqlDB, logger: logger}
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE COLLATE NOCASE,
            password_hash TEXT NOT NULL,
            is_host BOOLEAN NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS listings (
            id TEXT PRIMARY KEY,
            slug TEXT NOT NULL UNIQUE,
            title TEXT NOT NULL,
            location TEXT NOT NULL,
            price_per_night INTEGER NOT NULL CHECK (price_per_night > 0),
            max_guests INTEGER NOT NULL CHECK (max_guests > 0),
            property_type TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            images TEXT NOT NULL DEFAULT '[]',
            amenities TEXT NOT NULL DEFAULT '[]',
            bedrooms INTEGER NOT NULL DEFAULT 0,
            bathrooms INTEGER NOT NULL DEFAULT 0,
            host_id TEXT NOT NULL REFERENCES users(id),
            host_name TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'active',
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS reservations (
            id TEXT PRIMARY KEY,
            listing_id TEXT NOT NULL REFERENCES listings(id),
            guest_id TEXT NOT NULL REFERENCES users(id),
            check_in TEXT NOT NULL,
            check_out TEXT NOT NULL,
            guests INTEGER NOT NULL,
            total_price INTEGER NOT NULL,
            status TEXT NOT NULL DEFAULT 'confirmed',
            version INTEGER NOT NULL DEFAULT 1,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            CHECK (check_in < check_out)
        )`,

		`CREATE INDEX IF NOT EXISTS idx_listings_host_id ON listings(host_id)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_listing_range ON reservations(listing_id, check_in, check_out)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_guest_id ON reservations(guest_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_status ON reservations(status)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// Ready reports whether the store answers a round trip.
func (db *DB) Ready(ctx context.Context) error {
	return db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", what, err)
}
