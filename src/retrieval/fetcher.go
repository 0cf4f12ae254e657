package retrieval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tracerdata/cotracer/src/logger"
)

// ErrEmptyResponse is returned when the portal answers 200 with a zero-byte
// body, which it does occasionally for years it has no data for.
var ErrEmptyResponse = errors.New("empty response body from portal")

// NetworkError wraps a transport failure, timeout, or non-success status
// from the portal. Retrying is the caller's decision; the fetcher makes a
// single attempt per URL.
type NetworkError struct {
	URL        string
	StatusCode int // zero when the request never got a response
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RawArchive is the downloaded archive body plus its source URL. Transient;
// discarded after extraction.
type RawArchive struct {
	URL  string
	Body []byte
}

// Fetcher downloads report archives from the portal with a bounded timeout.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a fetcher whose requests time out after the given
// duration. A zero timeout falls back to 60s.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: "cotracer/1.0",
	}
}

// Fetch performs a single HTTP GET for the given URL. It returns a
// *NetworkError on connection failure, timeout, or non-2xx status, and
// ErrEmptyResponse when a successful response has a zero-length body.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*RawArchive, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	if logger.L != nil {
		logger.L.Debug("Fetching report archive", "url", url)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResponse, url)
	}

	return &RawArchive{URL: url, Body: body}, nil
}
