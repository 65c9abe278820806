// Package retry holds the retry policy shared by the net/http host transport.
package retry

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ShouldRetry returns true if the HTTP status code indicates a retryable error.
// Retryable errors include:
//   - 408 (Request Timeout)
//   - 429 (Too Many Requests)
//   - 5xx (Server Errors) except 501 (Not Implemented)
func ShouldRetry(statusCode int) bool {
	switch {
	case statusCode == http.StatusRequestTimeout, statusCode == http.StatusTooManyRequests:
		return true
	case statusCode == http.StatusNotImplemented:
		return false
	default:
		return statusCode >= http.StatusInternalServerError
	}
}

// ParseRetryAfter parses a Retry-After header value relative to now.
// Both delta-seconds ("120") and HTTP-date forms are accepted.
// Returns 0 if the header is empty, malformed, or already in the past.
func ParseRetryAfter(header string, now time.Time) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	when, err := http.ParseTime(header)
	if err != nil {
		return 0
	}

	if wait := when.Sub(now); wait > 0 {
		return wait
	}
	return 0
}

// Backoff returns initial * 2^attempt, capped at limit when limit > 0.
func Backoff(initial, limit time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	wait := initial
	for range attempt {
		wait *= 2
		if limit > 0 && wait >= limit {
			return limit
		}
	}

	if limit > 0 && wait > limit {
		return limit
	}
	return wait
}
