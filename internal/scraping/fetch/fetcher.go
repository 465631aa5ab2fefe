// backend/internal/scraping/fetch/fetcher.go
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/bolagsplatsen-sys/backend/internal/domain"
	"github.com/bolagsplatsen-sys/backend/pkg/logger"
)

// Config controls fetcher politeness and retry behavior.
type Config struct {
	UserAgent  string
	Timeout    time.Duration
	Delay      time.Duration // minimum spacing between requests to the origin
	MaxRetries int
	Backoff    time.Duration // base backoff, doubled per attempt
}

// Fetcher issues rate-limited HTTP GETs against the origin site. One
// fetcher is shared by all page and detail requests of a crawl so the
// aggregate request rate stays under the configured ceiling.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	cfg     Config
	log     *logger.Logger
}

func New(cfg Config, log *logger.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Delay <= 0 {
		cfg.Delay = time.Second
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 2 * time.Second
	}
	return &Fetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(cfg.Delay), 1),
		cfg:     cfg,
		log:     log,
	}
}

// Get fetches url, retrying transient failures with exponential backoff
// up to MaxRetries. The returned error is a *domain.FetchError once all
// attempts are exhausted or the failure is terminal.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := f.cfg.Backoff * time.Duration(1<<uint(attempt-1))
			f.log.Warn("retry %d/%d for %s in %v: %v", attempt, f.cfg.MaxRetries, url, wait, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := f.do(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !domain.IsTransientFetch(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

func (f *Fetcher) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Timeouts and connection resets are worth another attempt.
		return nil, &domain.FetchError{URL: url, Transient: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return nil, &domain.FetchError{URL: url, StatusCode: resp.StatusCode, Transient: true}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &domain.FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Transient: true, Err: err}
	}
	return body, nil
}
