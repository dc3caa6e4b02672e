// Package fetch implements partial content retrieval over HTTP range requests.
//
// [RangeFetcher] downloads a bounded byte range of a remote resource, enough
// for metadata extraction without pulling whole files. It performs no retries
// itself; callers wrap it with [Do] to apply the engine's backoff policy.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"musebox/internal/shared"
)

// HTTPError represents an HTTP error response from the remote.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error %d: %s", e.StatusCode, e.Status)
}

// RangeFetcher issues HTTP range requests with a hard per-request timeout.
type RangeFetcher struct {
	httpClient *http.Client
	logger     *log.Logger
	userAgent  string
}

// NewRangeFetcher creates a fetcher with the given per-request timeout.
//
// A zero timeout defaults to 30 seconds; a stuck remote would otherwise hold
// one of the pipeline's worker slots indefinitely.
func NewRangeFetcher(timeout time.Duration, logger *log.Logger) *RangeFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &RangeFetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger:    logger,
		userAgent: "musebox/1.0",
	}
}

// FetchRange requests bytes [start, end) of the resource at url and returns
// the response body stream.
//
// Returns [shared.ErrNoBody] when the server answers without a body and
// [shared.ErrFetch] wrapping transport or HTTP failures. The caller owns
// closing the returned reader.
func (f *RangeFetcher) FetchRange(ctx context.Context, url string, start, end int64) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid request: %v", shared.ErrFetch, err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end-1))

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetch, err)
	}

	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %v", shared.ErrFetch, &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status})
	}

	if resp.StatusCode == http.StatusNoContent || resp.Body == http.NoBody {
		resp.Body.Close()
		return nil, shared.ErrNoBody
	}

	f.logger.Debug("range fetched", "url", url, "start", start, "end", end, "status", resp.StatusCode)
	return resp.Body, nil
}
