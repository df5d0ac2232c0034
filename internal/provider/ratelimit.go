package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mvoronin/jobscout/internal/model"
)

// BoardRateLimiter enforces a minimum delay between requests to the same
// job board, shared across all users of the bot.
type BoardRateLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: board name
	minDelay time.Duration
}

// NewBoardRateLimiter creates a limiter that enforces minDelay between
// consecutive requests to the same board. A zero minDelay disables waiting.
func NewBoardRateLimiter(minDelay time.Duration) *BoardRateLimiter {
	return &BoardRateLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last request to the
// given board. Returns an error if the context is cancelled while waiting.
func (r *BoardRateLimiter) Wait(ctx context.Context, board string) error {
	if r.minDelay <= 0 {
		return nil
	}

	r.mu.Lock()
	last, ok := r.lastCall[board]
	now := time.Now()

	if !ok || now.Sub(last) >= r.minDelay {
		r.lastCall[board] = now
		r.mu.Unlock()
		return nil
	}

	remaining := r.minDelay - now.Sub(last)
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", board, ctx.Err())
	case <-time.After(remaining):
	}

	r.mu.Lock()
	r.lastCall[board] = time.Now()
	r.mu.Unlock()

	return nil
}

// RateLimitedProvider is a decorator that waits for the board's rate limiter
// before delegating to the wrapped provider.
type RateLimitedProvider struct {
	inner   model.SearchProvider
	limiter *BoardRateLimiter
}

// NewRateLimitedProvider wraps a SearchProvider with board-level rate
// limiting. All sessions share the same limiter instance.
func NewRateLimitedProvider(inner model.SearchProvider, limiter *BoardRateLimiter) *RateLimitedProvider {
	return &RateLimitedProvider{inner: inner, limiter: limiter}
}

func (p *RateLimitedProvider) Name() string { return p.inner.Name() }

func (p *RateLimitedProvider) Search(ctx context.Context, settings model.Settings) ([]model.Posting, error) {
	if err := p.limiter.Wait(ctx, p.inner.Name()); err != nil {
		return nil, err
	}
	return p.inner.Search(ctx, settings)
}
