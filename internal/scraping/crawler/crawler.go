// backend/internal/scraping/crawler/crawler.go

// Package crawler drives the paginated catalogue crawl: listing-page
// discovery, per-listing detail enrichment, deduplication, and snapshot
// assembly.
package crawler

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bolagsplatsen-sys/backend/internal/domain"
	"github.com/bolagsplatsen-sys/backend/internal/normalize"
	"github.com/bolagsplatsen-sys/backend/internal/scraping/extract"
	"github.com/bolagsplatsen-sys/backend/internal/scraping/fetch"
	"github.com/bolagsplatsen-sys/backend/pkg/logger"
)

// Fetcher is the page retrieval dependency.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Config fixes the crawl target and its politeness bounds.
type Config struct {
	BaseURL     string
	ListingPath string // fmt template with one %d page-number verb
	MaxPages    int
	MaxWorkers  int // detail-fetch parallelism; 1 keeps the crawl strictly sequential
	Fetch       fetch.Config
}

// Options are per-run overrides accepted by the crawl trigger.
type Options struct {
	MaxPages     int
	RequestDelay time.Duration
	MaxRetries   int
}

// Crawler runs one crawl at a time; a concurrent trigger gets
// domain.ErrCrawlInProgress instead of racing to publish.
type Crawler struct {
	cfg        Config
	normalizer *normalize.Normalizer
	log        *logger.Logger
	running    atomic.Bool

	// NewFetcher builds the fetcher for one run so trigger overrides
	// (delay, retries) apply; tests swap in a stub.
	NewFetcher func(fetch.Config) Fetcher
}

func New(cfg Config, n *normalize.Normalizer, log *logger.Logger) *Crawler {
	c := &Crawler{cfg: cfg, normalizer: n, log: log}
	c.NewFetcher = func(fc fetch.Config) Fetcher { return fetch.New(fc, log) }
	return c
}

// Run crawls the catalogue from page 1 and returns a completed snapshot.
// A terminal listing-page failure aborts the run; callers keep serving
// the previously published snapshot. Detail-page failures only degrade
// the affected record to listing-only data.
func (c *Crawler) Run(ctx context.Context, opts Options) (domain.Snapshot, error) {
	if !c.running.CompareAndSwap(false, true) {
		return domain.Snapshot{}, domain.ErrCrawlInProgress
	}
	defer c.running.Store(false)

	fetchCfg := c.cfg.Fetch
	if opts.RequestDelay > 0 {
		fetchCfg.Delay = opts.RequestDelay
	}
	if opts.MaxRetries > 0 {
		fetchCfg.MaxRetries = opts.MaxRetries
	}
	maxPages := c.cfg.MaxPages
	if opts.MaxPages > 0 {
		maxPages = opts.MaxPages
	}
	if maxPages <= 0 {
		maxPages = 10
	}
	workers := c.cfg.MaxWorkers
	if workers < 1 {
		workers = 1
	}

	fetcher := c.NewFetcher(fetchCfg)

	cur := newCrawlCursor()
	var records []domain.ListingRecord

	for cur.pagesVisited < maxPages {
		if err := ctx.Err(); err != nil {
			return domain.Snapshot{}, err
		}

		pageURL := c.pageURL(cur.page)
		c.log.Info("crawling page %d: %s", cur.page, pageURL)

		body, err := fetcher.Get(ctx, pageURL)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("listing page %d: %w", cur.page, err)
		}
		cur.pagesVisited++

		res, err := extract.ExtractListings(body, c.cfg.BaseURL)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("parse page %d: %w", cur.page, err)
		}
		if len(res.Records) == 0 {
			// No usable containers: treat as end of pagination.
			break
		}

		c.fetchDetails(ctx, fetcher, res.Records, workers)
		records = append(records, res.Records...)

		if !res.HasNext {
			break
		}
		cur.advance(res.NextPage)
	}

	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}

	listings := c.finalize(cur, records)
	c.log.Info("crawl complete: %d listings from %d pages", len(listings), cur.pagesVisited)

	return domain.Snapshot{
		Listings:           listings,
		CompletedAt:        time.Now(),
		SourcePagesVisited: cur.pagesVisited,
		ItemCount:          len(listings),
	}, nil
}

// crawlCursor is the transient state of one crawl: page bookkeeping plus
// the dedup sets consulted at snapshot assembly. It lives for a single
// Run and is discarded with it.
type crawlCursor struct {
	page         int
	pagesVisited int
	seenTitles   map[string]struct{}
	seenLinks    map[string]struct{}
	seenIDs      map[string]struct{}
}

func newCrawlCursor() *crawlCursor {
	return &crawlCursor{
		page:       1,
		seenTitles: make(map[string]struct{}),
		seenLinks:  make(map[string]struct{}),
		seenIDs:    make(map[string]struct{}),
	}
}

// advance moves to the page number the pagination link named, or to the
// next sequential page when the link carried none.
func (cur *crawlCursor) advance(nextPage int) {
	if nextPage > 0 {
		cur.page = nextPage
	} else {
		cur.page++
	}
}

// admit records l's dedup keys and reports whether l is the first record
// seen under both its title and its link. Ids stay unique within the
// snapshot: a colliding id (two URLs sharing a trailing number) is
// re-keyed from title and link before being claimed.
func (cur *crawlCursor) admit(l *domain.Listing) bool {
	if _, dup := cur.seenTitles[l.Title]; dup {
		return false
	}
	if _, dup := cur.seenLinks[l.Link]; dup {
		return false
	}
	if _, dup := cur.seenIDs[l.ProductID]; dup {
		l.ProductID = extract.DerivedID(l.Title, l.Link)
		if _, still := cur.seenIDs[l.ProductID]; still {
			return false
		}
	}
	cur.seenTitles[l.Title] = struct{}{}
	cur.seenLinks[l.Link] = struct{}{}
	cur.seenIDs[l.ProductID] = struct{}{}
	return true
}

// fetchDetails enriches records in place from their detail pages,
// bounded to the configured worker count. Cancellation stops scheduling
// new fetches; in-flight ones finish or time out on their own.
func (c *Crawler) fetchDetails(ctx context.Context, fetcher Fetcher, records []domain.ListingRecord, workers int) {
	var g errgroup.Group
	g.SetLimit(workers)

	for i := range records {
		if records[i].URL == "" {
			continue
		}
		i := i
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			body, err := fetcher.Get(ctx, records[i].URL)
			if err != nil {
				c.log.Warn("detail fetch failed, keeping listing-only data for %q: %v", records[i].Title, err)
				return nil
			}
			records[i] = extract.ExtractDetail(body, records[i])
			return nil
		})
	}
	g.Wait()
}

// finalize normalizes the records and drops duplicates. The first record
// seen under a given title or a given link wins; a match on either field
// rejects the item. Known limitation carried over deliberately: two
// distinct listings that share a title collapse into one.
func (c *Crawler) finalize(cur *crawlCursor, records []domain.ListingRecord) []domain.Listing {
	var listings []domain.Listing
	for _, rec := range records {
		l := c.normalizer.Normalize(rec)
		if cur.admit(&l) {
			listings = append(listings, l)
		}
	}
	return listings
}

func (c *Crawler) pageURL(page int) string {
	return fmt.Sprintf(strings.TrimRight(c.cfg.BaseURL, "/")+c.cfg.ListingPath, page)
}
