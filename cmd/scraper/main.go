// backend/cmd/scraper/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bolagsplatsen-sys/backend/internal/config"
	"github.com/bolagsplatsen-sys/backend/internal/normalize"
	"github.com/bolagsplatsen-sys/backend/internal/scraping/crawler"
	"github.com/bolagsplatsen-sys/backend/internal/scraping/fetch"
	"github.com/bolagsplatsen-sys/backend/internal/store"
	"github.com/bolagsplatsen-sys/backend/pkg/logger"
)

// One-shot crawl: runs the full pipeline once, persists the snapshot to
// the configured file and prints the normalized listings as JSON.
func main() {
	maxPages := flag.Int("max-pages", 0, "override the configured page bound")
	flag.Parse()

	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg := logger.New("scraper ")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	crawlCfg := crawler.Config{
		BaseURL:     cfg.Scraping.BaseURL,
		ListingPath: cfg.Scraping.ListingPath,
		MaxPages:    cfg.Scraping.MaxPages,
		MaxWorkers:  cfg.Scraping.MaxWorkers,
		Fetch: fetch.Config{
			UserAgent:  cfg.Scraping.UserAgent,
			Timeout:    cfg.Scraping.RequestTimeout(),
			Delay:      cfg.Scraping.RequestDelay(),
			MaxRetries: cfg.Scraping.MaxRetries,
		},
	}

	c := crawler.New(crawlCfg, normalize.New(), lg)
	snap, err := c.Run(ctx, crawler.Options{MaxPages: *maxPages})
	if err != nil {
		log.Fatalf("Error running scraper: %v", err)
	}

	st := store.NewFileStore(cfg.Storage.FilePath)
	if err := st.Publish(ctx, snap); err != nil {
		log.Fatalf("Error persisting snapshot: %v", err)
	}

	jsonData, err := json.MarshalIndent(snap.Listings, "", "  ")
	if err != nil {
		log.Fatalf("Error marshaling to JSON: %v", err)
	}

	fmt.Println(string(jsonData))
}
