// backend/internal/store/file.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bolagsplatsen-sys/backend/internal/domain"
)

// snapshotDocument is the persisted form of a snapshot: one JSON document
// keyed by product id, with a top-level timestamp. The order slice keeps
// the page-then-document discovery order that the map loses.
type snapshotDocument struct {
	CompletedAt        time.Time                 `json:"completed_at"`
	SourcePagesVisited int                       `json:"source_pages_visited"`
	Order              []string                  `json:"order"`
	Listings           map[string]domain.Listing `json:"listings"`
}

// FileStore persists the latest snapshot to a single JSON file and serves
// reads from memory.
type FileStore struct {
	mem  MemoryStore
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Latest() (domain.Snapshot, error) {
	return s.mem.Latest()
}

func (s *FileStore) Publish(ctx context.Context, snap domain.Snapshot) error {
	doc := toDocument(snap)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	// Write-then-rename so a crash never leaves a torn document behind.
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil && filepath.Dir(s.path) != "." {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}

	return s.mem.Publish(ctx, snap)
}

func (s *FileStore) Load(ctx context.Context) error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil // no previous crawl, queries get ErrSnapshotUnavailable
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return s.mem.Publish(ctx, fromDocument(doc))
}

func toDocument(snap domain.Snapshot) snapshotDocument {
	doc := snapshotDocument{
		CompletedAt:        snap.CompletedAt,
		SourcePagesVisited: snap.SourcePagesVisited,
		Listings:           make(map[string]domain.Listing, len(snap.Listings)),
	}
	for _, l := range snap.Listings {
		doc.Order = append(doc.Order, l.ProductID)
		doc.Listings[l.ProductID] = l
	}
	return doc
}

func fromDocument(doc snapshotDocument) domain.Snapshot {
	snap := domain.Snapshot{
		CompletedAt:        doc.CompletedAt,
		SourcePagesVisited: doc.SourcePagesVisited,
	}
	for _, id := range doc.Order {
		if l, ok := doc.Listings[id]; ok {
			snap.Listings = append(snap.Listings, l)
		}
	}
	snap.ItemCount = len(snap.Listings)
	return snap
}
