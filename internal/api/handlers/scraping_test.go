// backend/internal/api/handlers/scraping_test.go
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/bolagsplatsen-sys/backend/internal/domain"
	"github.com/bolagsplatsen-sys/backend/internal/normalize"
	"github.com/bolagsplatsen-sys/backend/internal/scraping/crawler"
	"github.com/bolagsplatsen-sys/backend/internal/scraping/fetch"
	"github.com/bolagsplatsen-sys/backend/internal/services"
	"github.com/bolagsplatsen-sys/backend/internal/store"
	"github.com/bolagsplatsen-sys/backend/pkg/logger"
)

type fixtureFetcher struct {
	pages map[string]string
}

func (f *fixtureFetcher) Get(_ context.Context, url string) ([]byte, error) {
	body, ok := f.pages[url]
	if !ok {
		return nil, &domain.FetchError{URL: url, StatusCode: 404}
	}
	return []byte(body), nil
}

func newScrapeRouter(t *testing.T, pages map[string]string) (*mux.Router, *store.MemoryStore) {
	t.Helper()
	log := logger.NewWithWriter(io.Discard, "test ")

	c := crawler.New(crawler.Config{
		BaseURL:     "https://test.local",
		ListingPath: "/sida/%d",
		MaxPages:    10,
		MaxWorkers:  1,
	}, normalize.New(), log)
	c.NewFetcher = func(fetch.Config) crawler.Fetcher {
		return &fixtureFetcher{pages: pages}
	}

	s := &store.MemoryStore{}
	r := mux.NewRouter()
	NewScrapingHandler(services.NewScraperService(c, s, log), context.Background(), log).RegisterRoutes(r)
	return r, s
}

func TestScrapeTriggerPublishesSnapshot(t *testing.T) {
	pages := map[string]string{
		"https://test.local/sida/1": `<html><body>
			<div class="object-list-item"><h3 class="object-title">
				<a href="/objekt/bageri-11">Bageri i Lund</a></h3></div>
		</body></html>`,
		"https://test.local/objekt/bageri-11": "<html><body></body></html>",
	}
	r, s := newScrapeRouter(t, pages)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scrape", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var listings []domain.Listing
	if err := json.Unmarshal(rec.Body.Bytes(), &listings); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(listings) != 1 || listings[0].Title != "Bageri i Lund" {
		t.Errorf("body = %+v", listings)
	}

	// The trigger also published the snapshot for the query routes.
	snap, err := s.Latest()
	if err != nil {
		t.Fatalf("Latest after scrape: %v", err)
	}
	if snap.ItemCount != 1 {
		t.Errorf("published %d listings, want 1", snap.ItemCount)
	}
}

func TestScrapeTriggerReportsFetchFailure(t *testing.T) {
	r, s := newScrapeRouter(t, map[string]string{}) // page 1 missing: terminal 404

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scrape", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}

	// A failed run must not publish anything.
	if _, err := s.Latest(); err == nil {
		t.Error("failed crawl published a snapshot")
	}
}
