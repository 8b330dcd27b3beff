package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"stayfinder/internal/database"
	"stayfinder/internal/seed"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		seedPath = flag.String("seed", "configs/seed.yaml", "path to seed.yaml")
		dbPath   = flag.String("db", "./data/stayfinder.db", "path to sqlite db")
		cost     = flag.Int("bcrypt-cost", bcrypt.DefaultCost, "bcrypt cost for seeded passwords")
	)
	flag.Parse()

	f, err := seed.Load(*seedPath)
	if err != nil {
		return err
	}
	if len(f.Users) == 0 {
		return fmt.Errorf("no users in seed file")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := seed.Apply(ctx, db, f, *cost, &logger)
	if err != nil {
		return err
	}
	if res.Skipped {
		logger.Info().Str("db", *dbPath).Msg("Database already has users, nothing imported")
		return nil
	}
	logger.Info().Int("users", res.Users).Int("listings", res.Listings).Str("db", *dbPath).Msg("Seed complete")
	return nil
}
