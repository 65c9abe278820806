package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-apiclient/internal/ratelimit"
)

func TestNewRateLimiter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		requestsPerMinute int
		wantRate          float64
		wantBurst         int
	}{
		{name: "one per second", requestsPerMinute: 60, wantRate: 1, wantBurst: 60},
		{name: "hundred per minute", requestsPerMinute: 100, wantRate: 100.0 / 60.0, wantBurst: 100},
		{name: "high throughput", requestsPerMinute: 6000, wantRate: 100, wantBurst: 6000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			limiter := ratelimit.NewRateLimiter(tt.requestsPerMinute)
			require.NotNil(t, limiter)
			assert.InDelta(t, tt.wantRate, float64(limiter.Limit()), 1e-9)
			assert.Equal(t, tt.wantBurst, limiter.Burst())
		})
	}
}

func TestNewRateLimiterDisabled(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ratelimit.NewRateLimiter(0))
	assert.Nil(t, ratelimit.NewRateLimiter(-10))
	assert.Nil(t, ratelimit.NewBurstLimiter(0, 5))
}

func TestNewBurstLimiter(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewBurstLimiter(120, 0)
	require.NotNil(t, limiter)
	assert.Equal(t, 1, limiter.Burst())
	assert.InDelta(t, 2.0, float64(limiter.Limit()), 1e-9)
}

func TestRateLimiterContextCancellation(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewBurstLimiter(1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, limiter.Wait(ctx))

	cancel()
	err := limiter.Wait(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRateLimiterBurstIsImmediate(t *testing.T) {
	t.Parallel()

	limiter := ratelimit.NewRateLimiter(600)
	start := time.Now()
	for range 100 {
		require.NoError(t, limiter.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), time.Second)
}
