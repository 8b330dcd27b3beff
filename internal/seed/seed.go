// Package seed loads the sample marketplace (users and listings) into an empty database.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"stayfinder/internal/models"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v2"
)

type File struct {
	Users    []User           `yaml:"users"`
	Listings []models.Listing `yaml:"listings"`
}

// User is a seed account; Password is plain text and hashed on import.
type User struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	IsHost   bool   `yaml:"is_host"`
}

type Store interface {
	CountUsers(ctx context.Context) (int, error)
	ImportCatalog(ctx context.Context, users []*models.User, listings []*models.Listing) error
}

type Result struct {
	Skipped  bool
	Users    int
	Listings int
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	ids := make(map[string]*User, len(f.Users))
	for i := range f.Users {
		u := &f.Users[i]
		if u.ID == "" || u.Email == "" || u.Password == "" {
			return fmt.Errorf("seed user %d: id, email and password are required", i)
		}
		ids[u.ID] = u
	}
	for i, l := range f.Listings {
		if l.ID == "" || l.Title == "" {
			return fmt.Errorf("seed listing %d: id and title are required", i)
		}
		host, ok := ids[l.HostID]
		if !ok {
			return fmt.Errorf("seed listing %s: unknown host %q", l.ID, l.HostID)
		}
		if !host.IsHost {
			return fmt.Errorf("seed listing %s: user %s is not a host", l.ID, host.ID)
		}
		if l.PricePerNight <= 0 || l.MaxGuests <= 0 {
			return fmt.Errorf("seed listing %s: price and max_guests must be positive", l.ID)
		}
	}
	return nil
}

// Apply imports f unless the store already has users. The import is all-or-nothing.
// Listings without a slug get one from their title.
func Apply(ctx context.Context, store Store, f *File, bcryptCost int, logger *zerolog.Logger) (Result, error) {
	count, err := store.CountUsers(ctx)
	if err != nil {
		return Result{}, err
	}
	if count > 0 {
		logger.Debug().Int("users", count).Msg("Database already populated, skipping seed")
		return Result{Skipped: true}, nil
	}

	now := time.Now().UTC()
	users := make([]*models.User, 0, len(f.Users))
	names := make(map[string]string, len(f.Users))
	for _, u := range f.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcryptCost)
		if err != nil {
			return Result{}, fmt.Errorf("hash password for %s: %w", u.ID, err)
		}
		users = append(users, &models.User{
			ID:           u.ID,
			Name:         u.Name,
			Email:        strings.ToLower(strings.TrimSpace(u.Email)),
			PasswordHash: string(hash),
			IsHost:       u.IsHost,
			CreatedAt:    now,
		})
		names[u.ID] = u.Name
	}

	listings := make([]*models.Listing, 0, len(f.Listings))
	for i := range f.Listings {
		l := f.Listings[i]
		if l.Slug == "" {
			l.Slug = slug.Make(l.Title)
		}
		if l.HostName == "" {
			l.HostName = names[l.HostID]
		}
		if l.Images == nil {
			l.Images = append([]string(nil), models.PlaceholderImages...)
		}
		if l.Amenities == nil {
			l.Amenities = []string{}
		}
		l.Status = models.ListingActive
		l.CreatedAt = now
		listings = append(listings, &l)
	}

	if err := store.ImportCatalog(ctx, users, listings); err != nil {
		return Result{}, fmt.Errorf("import seed: %w", err)
	}

	res := Result{Users: len(users), Listings: len(listings)}
	logger.Info().Int("users", res.Users).Int("listings", res.Listings).Msg("Seed data imported")
	return res, nil
}
