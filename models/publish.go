// ABOUTME: This file defines domain models for description publish attempts
// ABOUTME: Covers article references, resolved publish targets and per-call requests

package models

import (
	"time"

	"github.com/google/uuid"
)

// ArticleReference is the caller-supplied locator for the article whose
// description is being edited. All three fields must be resolvable before a
// publish attempt can proceed.
type ArticleReference struct {
	EntityTitle    string `json:"entity_title"`
	LanguageCode   string `json:"language_code"`
	SiteIdentifier string `json:"site_identifier"`
}

// PublishTarget identifies the entity and locale to update. Immutable once
// constructed via ResolveTarget.
type PublishTarget struct {
	EntityTitle    string
	LanguageCode   string
	SiteIdentifier string
}

// ResolveTarget derives a fully resolved PublishTarget from the reference.
// Returns ErrMalformedTarget when any field is missing.
func (r ArticleReference) ResolveTarget() (PublishTarget, error) {
	if r.EntityTitle == "" || r.LanguageCode == "" || r.SiteIdentifier == "" {
		return PublishTarget{}, ErrMalformedTarget
	}
	return PublishTarget{
		EntityTitle:    r.EntityTitle,
		LanguageCode:   r.LanguageCode,
		SiteIdentifier: r.SiteIdentifier,
	}, nil
}

// PublishRequest is constructed per publish call and never persisted.
type PublishRequest struct {
	ID             uuid.UUID
	Target         PublishTarget
	NewDescription string
	StartedAt      time.Time
}

// NewPublishRequest creates a publish request with a fresh attempt ID for
// log correlation.
func NewPublishRequest(target PublishTarget, description string) *PublishRequest {
	return &PublishRequest{
		ID:             uuid.New(),
		Target:         target,
		NewDescription: description,
		StartedAt:      time.Now(),
	}
}
