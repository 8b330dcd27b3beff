package repository

import (
	"context"
	"sync/atomic"
	"time"

	"stayfinder/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverAttemptStore sends calls to primary until it errors, then to fallback, retrying the
// primary at most once per recoveryInterval.
type FailoverAttemptStore struct {
	primary   domain.AttemptStore
	fallback  domain.AttemptStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverAttemptStore(primary, fallback domain.AttemptStore, logger *zerolog.Logger) *FailoverAttemptStore {
	return &FailoverAttemptStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverAttemptStore) markDown(err error) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary attempt store failed, falling back to memory")
	}
	r.lastCheck.Store(time.Now().UnixNano())
}

// usePrimary reports whether the primary should be tried for this call.
func (r *FailoverAttemptStore) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	return time.Since(time.Unix(0, r.lastCheck.Load())) > recoveryInterval
}

func (r *FailoverAttemptStore) recovered() {
	if r.isDown.Swap(false) {
		r.logger.Info().Msg("Primary attempt store recovered")
	}
}

func (r *FailoverAttemptStore) Attempts(ctx context.Context, key string) (int, error) {
	if r.usePrimary() {
		count, err := r.primary.Attempts(ctx, key)
		if err == nil {
			r.recovered()
			return count, nil
		}
		r.markDown(err)
	}
	return r.fallback.Attempts(ctx, key)
}

func (r *FailoverAttemptStore) RecordAttempt(ctx context.Context, key string, window time.Duration) (int, error) {
	if r.usePrimary() {
		count, err := r.primary.RecordAttempt(ctx, key, window)
		if err == nil {
			r.recovered()
			return count, nil
		}
		r.markDown(err)
	}
	return r.fallback.RecordAttempt(ctx, key, window)
}

func (r *FailoverAttemptStore) ResetAttempts(ctx context.Context, key string) error {
	// Both stores may hold a counter for key, depending on when the primary failed.
	fallbackErr := r.fallback.ResetAttempts(ctx, key)
	if r.usePrimary() {
		err := r.primary.ResetAttempts(ctx, key)
		if err == nil {
			r.recovered()
			return fallbackErr
		}
		r.markDown(err)
	}
	return fallbackErr
}
