// ABOUTME: This file defines the publish outcome taxonomy as typed errors
// ABOUTME: Exactly one outcome variant is produced per completed attempt

package models

import (
	"errors"
	"fmt"
)

// Outcome names classify a completed publish attempt. Used for analytics
// events and HTTP status mapping.
type Outcome string

const (
	OutcomeSuccess             Outcome = "success"
	OutcomeRemoteRejected      Outcome = "remote_rejected"
	OutcomeTransportFailure    Outcome = "transport_failure"
	OutcomePolicyBlocked       Outcome = "policy_blocked"
	OutcomeMalformedTarget     Outcome = "malformed_target"
	OutcomeUnparseableResponse Outcome = "unparseable_response"
)

var (
	// ErrMalformedTarget is reported when the article reference does not
	// yield a fully resolved publish target.
	ErrMalformedTarget = errors.New("article reference does not resolve to a publish target")

	// ErrPolicyBlocked is reported when description editing is disabled for
	// the target's language. Expected business rule, not exceptional.
	ErrPolicyBlocked = errors.New("description editing is blocked for this language")

	// ErrUnparseableResponse is reported when the remote response body could
	// not be decoded into the expected structure.
	ErrUnparseableResponse = errors.New("remote response could not be parsed")
)

// RemoteRejectedError carries the remote API's own error code and message,
// surfaced verbatim for display.
type RemoteRejectedError struct {
	Code    string
	Message string
}

func (e *RemoteRejectedError) Error() string {
	return fmt.Sprintf("remote rejected publish: %s: %s", e.Code, e.Message)
}

// TransportError wraps a network or IO failure from any step of the exchange.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during publish: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ClassifyOutcome maps a completion error to its outcome name. A nil error
// is a success.
func ClassifyOutcome(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrMalformedTarget):
		return OutcomeMalformedTarget
	case errors.Is(err, ErrPolicyBlocked):
		return OutcomePolicyBlocked
	case errors.Is(err, ErrUnparseableResponse):
		return OutcomeUnparseableResponse
	default:
		var rejected *RemoteRejectedError
		if errors.As(err, &rejected) {
			return OutcomeRemoteRejected
		}
		return OutcomeTransportFailure
	}
}
