// ABOUTME: This file implements the persisted per-language publish policy
// ABOUTME: Holds the blocklist of language codes with a built-in fallback entry

package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"description-publisher/models"
	"description-publisher/repository"
)

// LanguagePolicyStore owns the persisted PolicySet. Reads and writes of the
// persisted entry are serialized internally; concurrent IsBlocked callers
// observe either the old or the new set, never a partial update.
type LanguagePolicyStore struct {
	store  repository.KeyValueStore
	logger *slog.Logger

	mu     sync.RWMutex
	policy models.PolicySet
	loaded bool
}

// NewLanguagePolicyStore creates a policy store backed by the shared
// key-value capability.
func NewLanguagePolicyStore(store repository.KeyValueStore, logger *slog.Logger) *LanguagePolicyStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &LanguagePolicyStore{
		store:  store,
		logger: logger,
	}
}

// IsBlocked reports whether languageCode is a member of the current
// PolicySet. Safe to call from any goroutine.
func (s *LanguagePolicyStore) IsBlocked(ctx context.Context, languageCode string) bool {
	s.mu.RLock()
	if s.loaded {
		blocked := s.policy.Contains(languageCode)
		s.mu.RUnlock()
		return blocked
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.policy = s.loadPersisted(ctx)
		s.loaded = true
	}
	return s.policy.Contains(languageCode)
}

// ReplacePolicy atomically replaces the PolicySet with the given codes. The
// previous set is discarded, not merged. Persistence is best-effort: on
// failure the next process start falls back to the built-in default.
func (s *LanguagePolicyStore) ReplacePolicy(ctx context.Context, codes []string) {
	replacement := models.NewPolicySet(codes...)

	s.mu.Lock()
	s.policy = replacement
	s.loaded = true
	s.mu.Unlock()

	payload, err := json.Marshal(replacement.Codes())
	if err != nil {
		s.logger.Error("Failed to encode policy set", "error", err)
		return
	}

	if err := s.store.Set(ctx, repository.BlockedLanguagesKey, string(payload)); err != nil {
		s.logger.Error("Failed to persist policy set, keeping in-memory value",
			"error", err,
			"codes", replacement.Codes())
		return
	}

	s.logger.Info("Replaced blocked-language policy", "codes", replacement.Codes())
}

// CurrentPolicy returns the member codes of the current set.
func (s *LanguagePolicyStore) CurrentPolicy(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		s.policy = s.loadPersisted(ctx)
		s.loaded = true
	}
	return s.policy.Codes()
}

// loadPersisted reads the persisted set, falling back to the built-in
// default when nothing has been persisted or the entry is unreadable.
// Callers must hold the write lock.
func (s *LanguagePolicyStore) loadPersisted(ctx context.Context) models.PolicySet {
	value, ok, err := s.store.Get(ctx, repository.BlockedLanguagesKey)
	if err != nil {
		s.logger.Error("Failed to read persisted policy set, using default", "error", err)
		return models.DefaultPolicySet()
	}
	if !ok {
		return models.DefaultPolicySet()
	}

	var codes []string
	if err := json.Unmarshal([]byte(value), &codes); err != nil {
		s.logger.Error("Persisted policy set is corrupt, using default", "error", err)
		return models.DefaultPolicySet()
	}

	return models.NewPolicySet(codes...)
}
