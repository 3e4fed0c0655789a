package workflow

import (
	"errors"
	"fmt"

	"ContentPilot/internal/retry"
)

// Sentinel kinds for the workflow error taxonomy. Validation, auth, and
// quota failures are deterministic and must never be retried.
var (
	ErrValidation     = errors.New("validation failed")
	ErrAuthentication = errors.New("authentication failed")
	ErrQuotaExceeded  = errors.New("quota exceeded")
	ErrNotFound       = errors.New("campaign not found")
	ErrWorkflowBusy   = errors.New("workflow already running for campaign")
)

// ValidationError reports a missing or invalid configuration field.
func ValidationError(field string) error {
	return fmt.Errorf("%w: %s is required", ErrValidation, field)
}

// QuotaError wraps an external insufficient-credit failure with a
// remediation hint surfaced to the caller.
func QuotaError(service string) error {
	return fmt.Errorf("%w: %s reports insufficient credits, top up your plan and retry", ErrQuotaExceeded, service)
}

// Classify maps workflow errors onto the retry taxonomy: validation,
// authentication, quota, and not-found failures are fatal; everything else
// (network failures, bad upstream status, unparseable responses) retries.
func Classify(err error) retry.Classification {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrAuthentication),
		errors.Is(err, ErrQuotaExceeded),
		errors.Is(err, ErrNotFound):
		return retry.Fatal
	default:
		return retry.Retryable
	}
}
