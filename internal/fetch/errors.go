package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
)

// ErrCacheBusy is surfaced by response-cache implementations on lock
// contention. It is a transient error: retried with the same backoff policy
// as network failures, no distinct locking protocol.
var ErrCacheBusy = errors.New("fetch: response cache busy")

// ErrLengthMismatch is surfaced by response-cache implementations when a
// response's Content-Length header contradicts the actual body. Some upstream
// servers send gzip-mismatched lengths; the fetch layer repairs the header
// and retries the write once.
var ErrLengthMismatch = errors.New("fetch: content-length does not match body")

// StatusError reports a non-success HTTP status. Error statuses are retried:
// the sites involved throw transient 5xx (and the odd bogus 4xx) routinely.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

// retryReason classifies an error for backoff metrics, or returns "" when the
// error is not retryable.
func retryReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCacheBusy):
		return "cache_busy"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "malformed_body"
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return "http_status"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "timeout"
		}
		return "connection"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return "connection"
	}

	return ""
}
