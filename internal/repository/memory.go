package repository

import (
	"context"
	"sync"
	"time"
)

// sweepInterval is the minimum time between full scans for expired entries.
const sweepInterval = time.Minute

// MemoryAttemptStore is the in-process AttemptStore used when Redis is absent or down.
type MemoryAttemptStore struct {
	mu        sync.Mutex
	entries   map[string]*attemptEntry
	now       func() time.Time
	lastSweep time.Time
}

type attemptEntry struct {
	count     int
	expiresAt time.Time
}

func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{
		entries: make(map[string]*attemptEntry),
		now:     time.Now,
	}
}

func (r *MemoryAttemptStore) Attempts(_ context.Context, key string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key]
	if !ok {
		return 0, nil
	}
	if r.now().After(entry.expiresAt) {
		delete(r.entries, key)
		return 0, nil
	}
	return entry.count, nil
}

func (r *MemoryAttemptStore) RecordAttempt(_ context.Context, key string, window time.Duration) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)
	entry, ok := r.entries[key]
	if !ok || now.After(entry.expiresAt) {
		entry = &attemptEntry{expiresAt: now.Add(window)}
		r.entries[key] = entry
	}
	entry.count++
	return entry.count, nil
}

// sweep drops expired entries at most once per sweepInterval. Callers hold r.mu.
func (r *MemoryAttemptStore) sweep(now time.Time) {
	if now.Sub(r.lastSweep) < sweepInterval {
		return
	}
	r.lastSweep = now
	for key, entry := range r.entries {
		if now.After(entry.expiresAt) {
			delete(r.entries, key)
		}
	}
}

func (r *MemoryAttemptStore) ResetAttempts(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
	return nil
}
