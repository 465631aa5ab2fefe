// backend/internal/services/scraper_service.go
package services

import (
	"context"
	"fmt"

	"github.com/bolagsplatsen-sys/backend/internal/domain"
	"github.com/bolagsplatsen-sys/backend/internal/scraping/crawler"
	"github.com/bolagsplatsen-sys/backend/internal/store"
	"github.com/bolagsplatsen-sys/backend/pkg/logger"
)

// ScraperService ties the crawl orchestrator to the snapshot store: one
// successful run publishes exactly one snapshot; on failure the previous
// snapshot stays visible.
type ScraperService struct {
	crawler *crawler.Crawler
	store   store.Store
	log     *logger.Logger
}

func NewScraperService(c *crawler.Crawler, s store.Store, log *logger.Logger) *ScraperService {
	return &ScraperService{crawler: c, store: s, log: log}
}

// ScrapeAndStore runs a crawl and publishes the resulting snapshot.
func (s *ScraperService) ScrapeAndStore(ctx context.Context, opts crawler.Options) (domain.Snapshot, error) {
	snap, err := s.crawler.Run(ctx, opts)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := s.store.Publish(ctx, snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("publish snapshot: %w", err)
	}
	return snap, nil
}
