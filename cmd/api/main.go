// backend/cmd/api/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/bolagsplatsen-sys/backend/internal/api/handlers"
	"github.com/bolagsplatsen-sys/backend/internal/config"
	"github.com/bolagsplatsen-sys/backend/internal/normalize"
	"github.com/bolagsplatsen-sys/backend/internal/scraping/crawler"
	"github.com/bolagsplatsen-sys/backend/internal/scraping/fetch"
	"github.com/bolagsplatsen-sys/backend/internal/services"
	"github.com/bolagsplatsen-sys/backend/internal/store"
	"github.com/bolagsplatsen-sys/backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment as-is")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg := logger.New("api ")

	// Shutdown cancels the context; an in-flight crawl stops scheduling
	// new fetches and no partial snapshot is published.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatalf("init store: %v", err)
	}
	defer closeStore()

	if err := st.Load(ctx); err != nil {
		lg.Warn("could not restore persisted snapshot: %v", err)
	}

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

	scraperSvc := services.NewScraperService(crawler.New(crawlCfg, normalize.New(), lg), st, lg)
	listingSvc := services.NewListingService(st)

	r := mux.NewRouter()
	handlers.NewAPIHandler(listingSvc).RegisterRoutes(r)
	handlers.NewScrapingHandler(scraperSvc, ctx, lg).RegisterRoutes(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	lg.Info("server running on :%d", cfg.App.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	if cfg.Storage.Driver == "mongo" && cfg.Storage.MongoURI != "" {
		ms, err := store.NewMongoStore(ctx, cfg.Storage.MongoURI, cfg.Storage.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		return ms, func() { ms.Close(context.Background()) }, nil
	}
	return store.NewFileStore(cfg.Storage.FilePath), func() {}, nil
}
