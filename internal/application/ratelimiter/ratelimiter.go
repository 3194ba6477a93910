package ratelimiter

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"ecert/internal/adapters/logger"
)

var (
	// ErrRateLimitExceeded is returned when the rate limit is exceeded
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// RateLimiter admits at most maxCalls calls within a sliding window.
type RateLimiter struct {
	mu             sync.Mutex
	maxCalls       int
	windowDuration time.Duration
	callTimestamps []time.Time
	logger         *logger.Logger
}

// NewRateLimiter creates a new rate limiter with the specified max calls and
// window duration. A nil logger disables rejection logging.
func NewRateLimiter(maxCalls int, windowDuration time.Duration, log *logger.Logger) *RateLimiter {
	if maxCalls <= 0 {
		maxCalls = 1 // Minimum 1 call
	}
	if windowDuration <= 0 {
		windowDuration = time.Minute
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &RateLimiter{
		maxCalls:       maxCalls,
		windowDuration: windowDuration,
		callTimestamps: make([]time.Time, 0, maxCalls),
		logger:         log,
	}
}

// Allow records a call or returns ErrRateLimitExceeded. It never blocks.
func (rl *RateLimiter) Allow(_ context.Context) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.evict(now)

	if len(rl.callTimestamps) >= rl.maxCalls {
		rl.logger.Warn("rate limit exceeded",
			zap.Int("max_calls", rl.maxCalls),
			zap.Duration("window", rl.windowDuration),
		)
		return ErrRateLimitExceeded
	}

	rl.callTimestamps = append(rl.callTimestamps, now)
	return nil
}

// evict drops timestamps that fell out of the window.
func (rl *RateLimiter) evict(now time.Time) {
	cutoff := now.Add(-rl.windowDuration)
	valid := rl.callTimestamps[:0]
	for _, ts := range rl.callTimestamps {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}
	rl.callTimestamps = valid
}
