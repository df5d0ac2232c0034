// Package digest pushes periodic search results to every known user.
package digest

import (
	"context"
	"log/slog"
	"time"

	"github.com/mvoronin/jobscout/internal/model"
)

// Runner is the search entry point the digest drives. The session
// orchestrator satisfies it.
type Runner interface {
	RunSearch(ctx context.Context, userID int64)
}

// Digest owns the push loop: ticks on an interval and runs a search for each
// user with stored settings.
type Digest struct {
	store    model.SettingsStore
	runner   Runner
	interval time.Duration
	logger   *slog.Logger
}

// New creates a digest that searches for all users at the given interval.
func New(store model.SettingsStore, runner Runner, interval time.Duration, logger *slog.Logger) *Digest {
	return &Digest{
		store:    store,
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the digest loop. It runs one immediate cycle, then ticks on the
// configured interval. It returns nil when ctx is cancelled (graceful shutdown).
func (d *Digest) Run(ctx context.Context) error {
	d.logger.Info("starting digest", "interval", d.interval.String())

	d.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("shutting down digest")
			return nil
		case <-time.After(d.interval):
			d.cycle(ctx)
		}
	}
}

// cycle runs one search per known user sequentially. A failure for one user
// must not block the rest.
func (d *Digest) cycle(ctx context.Context) {
	users, err := d.store.Users(ctx)
	if err != nil {
		d.logger.Error("listing users for digest", "error", err)
		return
	}

	d.logger.Info("digest cycle", "users", len(users))

	for _, userID := range users {
		if ctx.Err() != nil {
			return
		}
		d.runner.RunSearch(ctx, userID)
	}
}
