// backend/internal/api/handlers/scraping.go
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/bolagsplatsen-sys/backend/internal/scraping/crawler"
	"github.com/bolagsplatsen-sys/backend/internal/services"
	"github.com/bolagsplatsen-sys/backend/pkg/logger"
)

// ScrapingHandler exposes the crawl trigger. The crawl runs under the
// application context, not the request context, so a client disconnect
// does not abort an in-progress crawl; shutdown still cancels it.
type ScrapingHandler struct {
	scraperService *services.ScraperService
	appCtx         context.Context
	log            *logger.Logger
}

func NewScrapingHandler(svc *services.ScraperService, appCtx context.Context, log *logger.Logger) *ScrapingHandler {
	return &ScrapingHandler{scraperService: svc, appCtx: appCtx, log: log}
}

func (h *ScrapingHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/scrape", h.HandleScrape).Methods(http.MethodGet)
}

func (h *ScrapingHandler) HandleScrape(w http.ResponseWriter, r *http.Request) {
	opts := crawlOptions(r)

	snap, err := h.scraperService.ScrapeAndStore(h.appCtx, opts)
	if err != nil {
		h.log.Error("crawl failed: %v", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snap.Listings)
}

func crawlOptions(r *http.Request) crawler.Options {
	q := r.URL.Query()
	var opts crawler.Options
	if v, err := strconv.Atoi(q.Get("maxPages")); err == nil && v > 0 {
		opts.MaxPages = v
	}
	if v, err := strconv.Atoi(q.Get("requestDelayMs")); err == nil && v > 0 {
		opts.RequestDelay = time.Duration(v) * time.Millisecond
	}
	if v, err := strconv.Atoi(q.Get("maxRetries")); err == nil && v > 0 {
		opts.MaxRetries = v
	}
	return opts
}
