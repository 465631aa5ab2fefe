// backend/internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSnapshotUnavailable is returned by the store before the first
	// crawl has ever completed. The API maps it to a distinct not-found
	// response rather than an empty success.
	ErrSnapshotUnavailable = errors.New("no snapshot available")

	// ErrCrawlInProgress is returned when a crawl trigger races a crawl
	// that is already running.
	ErrCrawlInProgress = errors.New("crawl already in progress")

	// ErrListingNotFound is returned on a single-id lookup miss.
	ErrListingNotFound = errors.New("listing not found")
)

// FetchError is a typed fetch failure. Transient failures (timeouts,
// connection resets, 5xx, 429) are retried with backoff; everything else
// is terminal for the page or item being fetched.
type FetchError struct {
	URL        string
	StatusCode int
	Transient  bool
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsTransientFetch reports whether err is a FetchError marked retryable.
func IsTransientFetch(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Transient
}
