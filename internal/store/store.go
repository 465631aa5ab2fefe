// backend/internal/store/store.go

// Package store holds the most recent completed snapshot and serves it to
// query callers without re-crawling. Publishing is an atomic swap, so a
// reader sees either the previous complete snapshot or the new one.
package store

import (
	"context"
	"sync/atomic"

	"github.com/bolagsplatsen-sys/backend/internal/domain"
)

// Store is the snapshot persistence boundary.
type Store interface {
	// Latest returns the last published snapshot, or
	// domain.ErrSnapshotUnavailable before the first crawl completes.
	Latest() (domain.Snapshot, error)
	// Publish atomically replaces the visible snapshot.
	Publish(ctx context.Context, snap domain.Snapshot) error
	// Load restores the last persisted snapshot at startup, if any.
	Load(ctx context.Context) error
}

// MemoryStore keeps the snapshot in process memory only.
type MemoryStore struct {
	current atomic.Pointer[domain.Snapshot]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Latest() (domain.Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return domain.Snapshot{}, domain.ErrSnapshotUnavailable
	}
	return *snap, nil
}

func (s *MemoryStore) Publish(_ context.Context, snap domain.Snapshot) error {
	s.current.Store(&snap)
	return nil
}

func (s *MemoryStore) Load(context.Context) error { return nil }
