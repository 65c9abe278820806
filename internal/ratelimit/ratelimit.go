// Package ratelimit builds token bucket limiters for the host transport.
package ratelimit

import "golang.org/x/time/rate"

// NewRateLimiter creates a limiter allowing requestsPerMinute requests per
// minute, replenished continuously, with a burst equal to requestsPerMinute.
// A non-positive value disables limiting and returns nil.
func NewRateLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute)
}

// NewBurstLimiter creates a limiter with an explicit burst size.
// A non-positive burst falls back to one request.
func NewBurstLimiter(requestsPerMinute, burst int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
}
