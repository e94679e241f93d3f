// ABOUTME: This file tracks whether an authenticated publish has ever succeeded
// ABOUTME: The false-to-true transition fires the notification signal exactly once

package service

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"description-publisher/repository"
)

// EditStateTracker owns the persisted hasAuthenticatedEdit flag. The flag
// transitions only false→true and is never reset; the persisted value gates
// re-firing of the notification signal across process restarts.
type EditStateTracker struct {
	store  repository.KeyValueStore
	logger *slog.Logger
	notify func()

	mu     sync.Mutex
	cached *bool
}

// NewEditStateTracker creates a tracker. notify is the fire-once signal to
// the notification collaborator; it may be nil.
func NewEditStateTracker(store repository.KeyValueStore, notify func(), logger *slog.Logger) *EditStateTracker {
	if logger == nil {
		logger = slog.Default()
	}

	return &EditStateTracker{
		store:  store,
		logger: logger,
		notify: notify,
	}
}

// HasSucceededBefore reads the persisted edit state.
func (t *EditStateTracker) HasSucceededBefore(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.load(ctx)
}

// MarkSucceeded sets the flag on its first call and fires the notification
// signal. Subsequent calls are no-ops, even across restarts.
func (t *EditStateTracker) MarkSucceeded(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.load(ctx) {
		return
	}

	succeeded := true
	t.cached = &succeeded

	if err := t.store.Set(ctx, repository.HasAuthenticatedEditKey, strconv.FormatBool(true)); err != nil {
		t.logger.Error("Failed to persist authenticated-edit flag", "error", err)
	}

	t.logger.Info("First authenticated publish recorded, signalling notification subsystem")
	if t.notify != nil {
		t.notify()
	}
}

// load reads the flag, consulting persistence once. Callers must hold the
// lock.
func (t *EditStateTracker) load(ctx context.Context) bool {
	if t.cached != nil {
		return *t.cached
	}

	value, ok, err := t.store.Get(ctx, repository.HasAuthenticatedEditKey)
	if err != nil {
		t.logger.Error("Failed to read authenticated-edit flag", "error", err)
		return false
	}

	succeeded := ok && value == "true"
	t.cached = &succeeded
	return succeeded
}
