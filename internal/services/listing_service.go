// backend/internal/services/listing_service.go
package services

import (
	"strings"

	"github.com/bolagsplatsen-sys/backend/internal/domain"
	"github.com/bolagsplatsen-sys/backend/internal/store"
)

// ListingService exposes pure projections over the last published
// snapshot: filtering, pagination, single-id lookup, and free-text
// search. It never triggers a crawl.
type ListingService struct {
	store store.Store
}

func NewListingService(s store.Store) *ListingService {
	return &ListingService{store: s}
}

// Snapshot returns the last published snapshot.
func (s *ListingService) Snapshot() (domain.Snapshot, error) {
	return s.store.Latest()
}

// Filter returns listings matching the given category and location (empty
// means any), windowed by offset and limit (limit <= 0 means no limit).
func (s *ListingService) Filter(category, location string, offset, limit int) ([]domain.Listing, error) {
	snap, err := s.store.Latest()
	if err != nil {
		return nil, err
	}

	listings := snap.Listings
	if category != "" || location != "" {
		filtered := make([]domain.Listing, 0, len(listings))
		for _, l := range listings {
			if category != "" && l.Category != category {
				continue
			}
			if location != "" && l.Location != location {
				continue
			}
			filtered = append(filtered, l)
		}
		listings = filtered
	}

	if offset > 0 {
		if offset >= len(listings) {
			return []domain.Listing{}, nil
		}
		listings = listings[offset:]
	}
	if limit > 0 && limit < len(listings) {
		listings = listings[:limit]
	}
	return listings, nil
}

// ByProductID looks up a single listing.
func (s *ListingService) ByProductID(id string) (domain.Listing, error) {
	snap, err := s.store.Latest()
	if err != nil {
		return domain.Listing{}, err
	}
	for _, l := range snap.Listings {
		if l.ProductID == id {
			return l, nil
		}
	}
	return domain.Listing{}, domain.ErrListingNotFound
}

// Search matches q as a case-insensitive substring over title, company,
// category and location, returning at most limit results.
func (s *ListingService) Search(q string, limit int) ([]domain.Listing, error) {
	snap, err := s.store.Latest()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	query := strings.ToLower(q)
	var results []domain.Listing
	for _, l := range snap.Listings {
		fields := []string{l.Title, l.Company, l.Category, l.Location}
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f), query) {
				results = append(results, l)
				break
			}
		}
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}
