package digest

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mvoronin/jobscout/internal/model"
	"github.com/mvoronin/jobscout/internal/store"
)

type countingRunner struct {
	calls atomic.Int32

	mu    sync.Mutex
	users []int64
}

func (r *countingRunner) RunSearch(_ context.Context, userID int64) {
	r.calls.Add(1)
	r.mu.Lock()
	r.users = append(r.users, userID)
	r.mu.Unlock()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seededStore(t *testing.T, users ...int64) *store.MemoryStore {
	t.Helper()
	st := store.NewMemoryStore()
	for _, id := range users {
		if _, err := st.Upsert(context.Background(), id, model.Patch{}); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
	return st
}

func TestRun_CancelReturnsPromptly(t *testing.T) {
	d := New(seededStore(t, 1), &countingRunner{}, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error on cancel, got: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("digest did not return within 2s after cancel")
	}
}

func TestRun_ImmediateFirstCycle(t *testing.T) {
	runner := &countingRunner{}
	d := New(seededStore(t, 1, 2), runner, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	if got := runner.calls.Load(); got != 2 {
		t.Errorf("runner calls = %d, want 2 (one per user, first cycle runs without waiting)", got)
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()
	if len(runner.users) != 2 || runner.users[0] != 1 || runner.users[1] != 2 {
		t.Errorf("users searched = %v, want [1 2]", runner.users)
	}
}

func TestRun_TicksOnInterval(t *testing.T) {
	runner := &countingRunner{}
	d := New(seededStore(t, 1), runner, 50*time.Millisecond, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()
	<-done

	if got := runner.calls.Load(); got < 2 {
		t.Errorf("runner calls = %d, want >= 2", got)
	}
}

func TestRun_NoUsersIsQuiet(t *testing.T) {
	runner := &countingRunner{}
	d := New(store.NewMemoryStore(), runner, time.Hour, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	if got := runner.calls.Load(); got != 0 {
		t.Errorf("runner calls = %d, want 0", got)
	}
}
