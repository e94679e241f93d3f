// ABOUTME: Orchestrator for the description publish pipeline
// ABOUTME: Validates the target, enforces policy, submits and classifies the result

package service

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"description-publisher/driver"
	"description-publisher/models"
)

// Fixed wire constants for the write operation. The anti-forgery token is
// carried in the form body under tokenField.
const (
	writeAction = "wbsetdescription"
	tokenField  = "token"
)

// SubmitClient performs one token-gated write exchange.
type SubmitClient interface {
	Submit(ctx context.Context, endpoint string, query, body url.Values, tokenField string) (*driver.SubmitResult, bool, error)
}

// PolicyChecker gates publishing per language.
type PolicyChecker interface {
	IsBlocked(ctx context.Context, languageCode string) bool
}

// EditTracker records the first authenticated success.
type EditTracker interface {
	MarkSucceeded(ctx context.Context)
}

// EventSink consumes discrete named analytics events with optional numeric
// measures.
type EventSink interface {
	Event(name string, measures map[string]float64)
}

// DescriptionPublisher drives one publish attempt through a strictly
// sequential pipeline: validate target, check policy, submit, classify,
// then update edit state on authenticated success.
type DescriptionPublisher struct {
	client    SubmitClient
	policy    PolicyChecker
	tracker   EditTracker
	analytics EventSink
	endpoint  string
	logger    *slog.Logger
}

// NewDescriptionPublisher creates a publisher submitting to the given API
// endpoint path.
func NewDescriptionPublisher(
	client SubmitClient,
	policy PolicyChecker,
	tracker EditTracker,
	analytics EventSink,
	endpoint string,
	logger *slog.Logger,
) *DescriptionPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &DescriptionPublisher{
		client:    client,
		policy:    policy,
		tracker:   tracker,
		analytics: analytics,
		endpoint:  endpoint,
		logger:    logger,
	}
}

// Publish publishes newDescription for the referenced article. It is
// non-blocking: the completion callback is invoked exactly once with the
// outcome error, nil on success. Only a malformed target is delivered
// synchronously; every other branch completes from a background goroutine.
// Cancellation is not supported once submission has started.
func (p *DescriptionPublisher) Publish(newDescription string, ref models.ArticleReference, completion func(error)) {
	target, err := ref.ResolveTarget()
	if err != nil {
		p.emitOutcome(models.OutcomeMalformedTarget, 0)
		completion(err)
		return
	}

	go p.run(models.NewPublishRequest(target, newDescription), completion)
}

func (p *DescriptionPublisher) run(req *models.PublishRequest, completion func(error)) {
	// No cancellation or deadline beyond the transport's own; a hung remote
	// call hangs this attempt.
	ctx := context.Background()

	outcome := p.attempt(ctx, req)
	p.emitOutcome(models.ClassifyOutcome(outcome), time.Since(req.StartedAt))
	completion(outcome)
}

// attempt runs the policy and submit stages and classifies the result.
// On authenticated success the edit-state transition is kicked off
// asynchronously so the completion callback is not delayed by persistence.
func (p *DescriptionPublisher) attempt(ctx context.Context, req *models.PublishRequest) error {
	if p.policy.IsBlocked(ctx, req.Target.LanguageCode) {
		p.logger.Info("Publish blocked by language policy",
			"attempt_id", req.ID,
			"language", req.Target.LanguageCode)
		return models.ErrPolicyBlocked
	}

	query := url.Values{
		"action": {writeAction},
		"format": {"json"},
	}
	body := url.Values{
		"language": {req.Target.LanguageCode},
		"uselang":  {req.Target.LanguageCode},
		"site":     {req.Target.SiteIdentifier},
		"title":    {req.Target.EntityTitle},
		"value":    {req.NewDescription},
	}

	result, authenticated, err := p.client.Submit(ctx, p.endpoint, query, body, tokenField)
	if err != nil {
		if errors.Is(err, models.ErrUnparseableResponse) {
			p.logger.Error("Publish response unparseable", "attempt_id", req.ID, "error", err)
			return err
		}
		p.logger.Error("Publish transport failure", "attempt_id", req.ID, "error", err)
		return &models.TransportError{Err: err}
	}

	if result.RemoteError != nil {
		p.logger.Warn("Publish rejected by remote",
			"attempt_id", req.ID,
			"code", result.RemoteError.Code,
			"message", result.RemoteError.Info)
		return &models.RemoteRejectedError{
			Code:    result.RemoteError.Code,
			Message: result.RemoteError.Info,
		}
	}

	p.logger.Info("Publish succeeded",
		"attempt_id", req.ID,
		"entity", req.Target.EntityTitle,
		"language", req.Target.LanguageCode,
		"authenticated", authenticated)

	if authenticated {
		go p.tracker.MarkSucceeded(context.Background())
	}

	return nil
}

func (p *DescriptionPublisher) emitOutcome(outcome models.Outcome, elapsed time.Duration) {
	if p.analytics == nil {
		return
	}

	var measures map[string]float64
	if elapsed > 0 {
		measures = map[string]float64{"duration_ms": float64(elapsed.Milliseconds())}
	}
	p.analytics.Event("description_publish_"+string(outcome), measures)
}
