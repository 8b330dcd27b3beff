package database

import (
	"context"
	"fmt"

	"stayfinder/internal/models"
)

// ImportCatalog inserts users and then listings in one transaction. Nothing is written on error.
func (db *DB) ImportCatalog(ctx context.Context, users []*models.User, listings []*models.Listing) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, u := range users {
		if err := insertUser(ctx, tx, u); err != nil {
			return fmt.Errorf("user %s: %w", u.ID, err)
		}
	}
	for _, l := range listings {
		if err := insertListing(ctx, tx, l); err != nil {
			return fmt.Errorf("listing %s: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}
