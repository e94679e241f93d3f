// ABOUTME: Repository layer common interfaces for clean architecture
// ABOUTME: Defines the shared key-value persistence capability

package repository

import "context"

// KeyValueStore is the persisted key-value capability shared by the policy
// store and the edit-state tracker. Implementations must tolerate concurrent
// callers; serialization of logical state transitions is owned by the
// components above this layer.
type KeyValueStore interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error
}

// Persisted state layout: two keyed entries in the shared store.
const (
	BlockedLanguagesKey     = "policy:blocked_languages"
	HasAuthenticatedEditKey = "edit_state:has_authenticated_edit"
)
