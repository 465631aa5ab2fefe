// backend/internal/api/handlers/api.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/bolagsplatsen-sys/backend/internal/domain"
	"github.com/bolagsplatsen-sys/backend/internal/services"
)

// APIHandler serves read queries over the last published snapshot.
type APIHandler struct {
	listings *services.ListingService
}

func NewAPIHandler(listings *services.ListingService) *APIHandler {
	return &APIHandler{listings: listings}
}

func (h *APIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/listings", h.handleListings).Methods(http.MethodGet)
	r.HandleFunc("/listings/{product_id}", h.handleListing).Methods(http.MethodGet)
	r.HandleFunc("/search", h.handleSearch).Methods(http.MethodGet)
}

func (h *APIHandler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Bolagsplatsen Scraper API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"/api/scrape":            "Trigger a crawl and return the fresh listings",
			"/listings":              "Get all scraped listings",
			"/listings/{product_id}": "Get specific listing by product ID",
			"/search":                "Search listings by query parameters",
		},
	})
}

func (h *APIHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *APIHandler) handleListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	listings, err := h.listings.Filter(q.Get("category"), q.Get("location"), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

func (h *APIHandler) handleListing(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["product_id"]

	listing, err := h.listings.ByProductID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *APIHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "query parameter q is required"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.listings.Search(q, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":       q,
		"results":     results,
		"total_found": len(results),
	})
}

// writeError maps domain errors to API responses. A missing snapshot is
// an explicit 404, never an empty 200: "never crawled" and "no matches"
// are distinguishable outcomes for callers.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSnapshotUnavailable):
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No data available or scraping failed."})
	case errors.Is(err, domain.ErrListingNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Listing not found"})
	case errors.Is(err, domain.ErrCrawlInProgress):
		writeJSON(w, http.StatusConflict, map[string]string{"detail": "A crawl is already in progress"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
