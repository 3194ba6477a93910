package ratelimiter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"ecert/internal/adapters/logger"
)

func TestNewRateLimiter(t *testing.T) {
	tests := []struct {
		name           string
		maxCalls       int
		windowDuration time.Duration
		wantMaxCalls   int
		wantWindow     time.Duration
	}{
		{
			name:           "positive calls with minute window",
			maxCalls:       10,
			windowDuration: time.Minute,
			wantMaxCalls:   10,
			wantWindow:     time.Minute,
		},
		{
			name:           "zero calls defaults to 1",
			maxCalls:       0,
			windowDuration: time.Minute,
			wantMaxCalls:   1,
			wantWindow:     time.Minute,
		},
		{
			name:           "negative calls defaults to 1",
			maxCalls:       -5,
			windowDuration: time.Second,
			wantMaxCalls:   1,
			wantWindow:     time.Second,
		},
		{
			name:           "zero duration defaults to minute",
			maxCalls:       3,
			windowDuration: 0,
			wantMaxCalls:   3,
			wantWindow:     time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRateLimiter(tt.maxCalls, tt.windowDuration, nil)
			if rl.maxCalls != tt.wantMaxCalls {
				t.Errorf("NewRateLimiter() maxCalls = %d, want %d", rl.maxCalls, tt.wantMaxCalls)
			}
			if rl.windowDuration != tt.wantWindow {
				t.Errorf("NewRateLimiter() windowDuration = %v, want %v", rl.windowDuration, tt.wantWindow)
			}
			if rl.logger == nil {
				t.Error("NewRateLimiter() logger should default to a no-op logger")
			}
		})
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name          string
		maxCalls      int
		numCalls      int
		wantSuccesses int
	}{
		{name: "within limit", maxCalls: 5, numCalls: 5, wantSuccesses: 5},
		{name: "exceeding limit", maxCalls: 3, numCalls: 5, wantSuccesses: 3},
		{name: "single call limit", maxCalls: 1, numCalls: 2, wantSuccesses: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRateLimiter(tt.maxCalls, time.Minute, nil)
			ctx := context.Background()
			successes := 0

			for i := 0; i < tt.numCalls; i++ {
				err := rl.Allow(ctx)
				switch {
				case err == nil:
					successes++
				case !errors.Is(err, ErrRateLimitExceeded):
					t.Errorf("Allow() error = %v, want ErrRateLimitExceeded", err)
				}
			}

			if successes != tt.wantSuccesses {
				t.Errorf("Allow() got %d successes, want %d", successes, tt.wantSuccesses)
			}
		})
	}
}

func TestRateLimiter_Allow_Concurrent(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	var successes, rejections atomic.Int32
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := rl.Allow(ctx); err != nil {
				rejections.Add(1)
				return
			}
			successes.Add(1)
		}()
	}
	wg.Wait()

	if successes.Load() != 5 {
		t.Errorf("Allow() got %d successes, want 5", successes.Load())
	}
	if rejections.Load() != 35 {
		t.Errorf("Allow() got %d rejections, want 35", rejections.Load())
	}
}

func TestRateLimiter_Allow_WindowExpires(t *testing.T) {
	rl := NewRateLimiter(2, 200*time.Millisecond, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := rl.Allow(ctx); err != nil {
			t.Fatalf("Allow() call %d failed unexpectedly: %v", i+1, err)
		}
	}
	if err := rl.Allow(ctx); !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("Allow() 3rd call should fail, got: %v", err)
	}

	time.Sleep(250 * time.Millisecond)

	if err := rl.Allow(ctx); err != nil {
		t.Errorf("Allow() after window expired failed: %v", err)
	}
}

func TestRateLimiter_Allow_LogsRejection(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	rl := NewRateLimiter(1, time.Minute, logger.New(zap.New(core)))
	ctx := context.Background()

	_ = rl.Allow(ctx)
	_ = rl.Allow(ctx)

	entries := logs.FilterMessage("rate limit exceeded").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 rejection log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["max_calls"]; got != int64(1) {
		t.Errorf("max_calls field = %v, want 1", got)
	}
}
