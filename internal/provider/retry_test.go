package provider

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mvoronin/jobscout/internal/model"
)

// scriptedProvider returns one queued result per call.
type scriptedProvider struct {
	results []scriptedResult
	calls   int
}

type scriptedResult struct {
	postings []model.Posting
	err      error
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Search(_ context.Context, _ model.Settings) ([]model.Posting, error) {
	if p.calls >= len(p.results) {
		return nil, errors.New("script exhausted")
	}
	r := p.results[p.calls]
	p.calls++
	return r.postings, r.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRetry_TransientErrorThenSuccess(t *testing.T) {
	inner := &scriptedProvider{results: []scriptedResult{
		{err: &HTTPError{StatusCode: 503}},
		{postings: []model.Posting{{Title: "Go Developer"}}},
	}}

	p := NewRetryProvider(inner, 2, time.Millisecond, testLogger())
	postings, err := p.Search(context.Background(), model.Settings{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("got %d postings, want 1", len(postings))
	}
	if inner.calls != 2 {
		t.Errorf("calls = %d, want 2", inner.calls)
	}
}

func TestRetry_NonRetryableStops(t *testing.T) {
	inner := &scriptedProvider{results: []scriptedResult{
		{err: &HTTPError{StatusCode: 404}},
		{postings: []model.Posting{{Title: "unreachable"}}},
	}}

	p := NewRetryProvider(inner, 2, time.Millisecond, testLogger())
	if _, err := p.Search(context.Background(), model.Settings{}); err == nil {
		t.Fatal("Search: expected error")
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1 (404 must not be retried)", inner.calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	inner := &scriptedProvider{results: []scriptedResult{
		{err: &HTTPError{StatusCode: 500}},
		{err: &HTTPError{StatusCode: 500}},
		{err: &HTTPError{StatusCode: 500}},
	}}

	p := NewRetryProvider(inner, 2, time.Millisecond, testLogger())
	if _, err := p.Search(context.Background(), model.Settings{}); err == nil {
		t.Fatal("Search: expected error after exhausting retries")
	}
	if inner.calls != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", inner.calls)
	}
}

func TestRetry_ContextCancellationNotRetried(t *testing.T) {
	inner := &scriptedProvider{results: []scriptedResult{
		{err: context.DeadlineExceeded},
	}}

	p := NewRetryProvider(inner, 2, time.Millisecond, testLogger())
	if _, err := p.Search(context.Background(), model.Settings{}); err == nil {
		t.Fatal("Search: expected error")
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1", inner.calls)
	}
}

func TestRateLimiter_FirstCallDoesNotWait(t *testing.T) {
	limiter := NewBoardRateLimiter(time.Hour)

	start := time.Now()
	if err := limiter.Wait(context.Background(), "board"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("first Wait blocked")
	}
}

func TestRateLimiter_SecondCallRespectsContext(t *testing.T) {
	limiter := NewBoardRateLimiter(time.Hour)
	if err := limiter.Wait(context.Background(), "board"); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, "board"); err == nil {
		t.Fatal("Wait: expected context error while rate limited")
	}
}

func TestRateLimiter_ZeroDelayDisabled(t *testing.T) {
	limiter := NewBoardRateLimiter(0)
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(context.Background(), "board"); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
}

func TestRateLimitedProvider_Delegates(t *testing.T) {
	inner := &scriptedProvider{results: []scriptedResult{
		{postings: []model.Posting{{Title: "Go Developer"}}},
	}}

	p := NewRateLimitedProvider(inner, NewBoardRateLimiter(0))
	if p.Name() != "scripted" {
		t.Errorf("Name = %q", p.Name())
	}
	postings, err := p.Search(context.Background(), model.Settings{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(postings) != 1 {
		t.Errorf("got %d postings", len(postings))
	}
}
