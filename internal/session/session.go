// Package session wires inbound chat messages to the dialog machine and the
// search providers, and dispatches the resulting messages.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mvoronin/jobscout/internal/dialog"
	"github.com/mvoronin/jobscout/internal/format"
	"github.com/mvoronin/jobscout/internal/model"
)

// Session owns all per-user conversation state. Updates for the same user
// are serialized through a per-user lock; different users proceed in
// parallel.
type Session struct {
	store         model.SettingsStore
	providers     []model.SearchProvider
	sender        model.Sender
	machine       *dialog.Machine
	searchTimeout time.Duration
	logger        *slog.Logger

	mu    sync.Mutex
	steps map[int64]dialog.Step
	locks map[int64]*sync.Mutex
}

// New creates a session orchestrator. Providers are searched in the given
// order; their results are aggregated in that same order.
func New(
	store model.SettingsStore,
	providers []model.SearchProvider,
	sender model.Sender,
	searchTimeout time.Duration,
	logger *slog.Logger,
) *Session {
	return &Session{
		store:         store,
		providers:     providers,
		sender:        sender,
		machine:       dialog.NewMachine(store, logger),
		searchTimeout: searchTimeout,
		logger:        logger,
		steps:         make(map[int64]dialog.Step),
		locks:         make(map[int64]*sync.Mutex),
	}
}

// userLock returns the mutex serializing one user's updates.
func (s *Session) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

func (s *Session) step(userID int64) dialog.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps[userID]
}

func (s *Session) setStep(userID int64, step dialog.Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps[userID] = step
}

// HandleMessage processes one inbound message. It never panics or returns an
// error to the transport: every fault is logged and answered with a short
// notice where appropriate.
func (s *Session) HandleMessage(ctx context.Context, userID int64, text string) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	trimmed := strings.TrimSpace(text)

	switch trimmed {
	case "/start":
		s.setStep(userID, dialog.StepIdle)
		s.send(ctx, userID, dialog.Reply{Text: format.Welcome()})
		return
	case "/help":
		s.send(ctx, userID, dialog.Reply{Text: format.Help()})
		return
	case "/settings":
		s.setStep(userID, dialog.StepIdle)
		s.send(ctx, userID, s.machine.SettingsMenuReply(ctx, userID))
		return
	case "/search":
		s.runSearch(ctx, userID)
		return
	}

	step := s.step(userID)
	ev := dialog.Classify(step, trimmed)
	next, replies := s.machine.Handle(ctx, userID, step, ev)
	s.setStep(userID, next)

	for _, r := range replies {
		s.send(ctx, userID, r)
	}
}

// RunSearch executes the full search flow for one user. Exposed for the
// digest loop, which pushes results without an inbound message.
func (s *Session) RunSearch(ctx context.Context, userID int64) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	s.runSearch(ctx, userID)
}

// runSearch assumes the caller holds the user's lock.
func (s *Session) runSearch(ctx context.Context, userID int64) {
	placeholderID, err := s.sender.Send(ctx, userID, format.Searching(), model.SendOptions{})
	if err != nil {
		s.logger.Error("sending search placeholder", "user_id", userID, "error", err)
		placeholderID = 0
	}

	settings, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		s.logger.Error("loading settings for search", "user_id", userID, "error", err)
		s.respond(ctx, userID, placeholderID, format.ErrLoadingSettings())
		return
	}
	if !ok {
		settings = model.DefaultSettings()
	}

	postings := s.searchAll(ctx, settings)

	if len(postings) == 0 {
		s.respond(ctx, userID, placeholderID, format.NoResults())
		return
	}

	s.respond(ctx, userID, placeholderID, format.FoundCount(len(postings)))

	for _, p := range postings {
		if _, err := s.sender.Send(ctx, userID, format.PostingCard(p), model.SendOptions{}); err != nil {
			// A single broken card must not abort the batch.
			s.logger.Error("sending posting", "user_id", userID, "title", p.Title, "error", err)
		}
	}
}

// searchAll fans out to every provider concurrently, each under its own
// timeout, and concatenates the results preserving provider order. A
// provider fault contributes zero postings and nothing else.
func (s *Session) searchAll(ctx context.Context, settings model.Settings) []model.Posting {
	results := make([][]model.Posting, len(s.providers))

	var wg sync.WaitGroup
	for i, p := range s.providers {
		wg.Add(1)
		go func(i int, p model.SearchProvider) {
			defer wg.Done()

			searchCtx, cancel := context.WithTimeout(ctx, s.searchTimeout)
			defer cancel()

			postings, err := p.Search(searchCtx, settings)
			if err != nil {
				s.logger.Error("provider search failed", "provider", p.Name(), "error", err)
				return
			}
			results[i] = postings
			s.logger.Info("provider search complete", "provider", p.Name(), "postings", len(postings))
		}(i, p)
	}
	wg.Wait()

	var all []model.Posting
	for _, r := range results {
		all = append(all, r...)
	}
	return all
}

// respond edits the placeholder message in place, falling back to a fresh
// message when there is no placeholder or the edit fails.
func (s *Session) respond(ctx context.Context, userID, messageID int64, text string) {
	if messageID != 0 {
		if err := s.sender.Edit(ctx, userID, messageID, text); err == nil {
			return
		} else {
			s.logger.Warn("editing message failed, sending new one", "user_id", userID, "error", err)
		}
	}
	if _, err := s.sender.Send(ctx, userID, text, model.SendOptions{}); err != nil {
		s.logger.Error("sending message", "user_id", userID, "error", err)
	}
}

// send delivers one dialog reply, logging delivery faults.
func (s *Session) send(ctx context.Context, userID int64, r dialog.Reply) {
	opts := model.SendOptions{
		Keyboard:       r.Keyboard,
		RemoveKeyboard: r.RemoveKeyboard,
	}
	if _, err := s.sender.Send(ctx, userID, r.Text, opts); err != nil {
		s.logger.Error("sending reply", "user_id", userID, "error", err)
	}
}
