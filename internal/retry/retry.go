// Package retry provides a bounded retry wrapper for fallible external calls.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrMaxAttemptsExceeded wraps the final error once every attempt has failed.
var ErrMaxAttemptsExceeded = errors.New("max retry attempts exceeded")

// Classification is the verdict a Classifier returns for a failure.
type Classification int

const (
	// Retryable errors consume an attempt and are tried again after the delay.
	Retryable Classification = iota
	// Fatal errors abort immediately without consuming remaining attempts.
	Fatal
)

// Classifier inspects a failure and decides whether retrying can help.
// Validation and authentication failures are deterministic and must be
// classified Fatal.
type Classifier func(err error) Classification

// Config configures executor behavior.
type Config struct {
	// MaxAttempts is the total number of executions, including the first.
	MaxAttempts int
	// Delay is the fixed pause between attempts.
	Delay time.Duration
	// Classify decides retryable vs fatal. Nil means everything retries.
	Classify Classifier
}

// Executor runs a fallible unit of work up to MaxAttempts times.
type Executor struct {
	cfg Config
}

// New builds an executor, applying defaults for zero-valued fields.
func New(cfg Config) *Executor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Delay <= 0 {
		cfg.Delay = 2 * time.Second
	}
	if cfg.Classify == nil {
		cfg.Classify = func(error) Classification { return Retryable }
	}
	return &Executor{cfg: cfg}
}

// Do executes fn until it succeeds, a fatal error occurs, or attempts are
// exhausted. Fatal errors propagate unwrapped so callers can match the kind.
// On exhaustion the last error is wrapped with the attempt count.
func (e *Executor) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("retry aborted: %w", err)
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if e.cfg.Classify(err) == Fatal {
			return err
		}

		if attempt < e.cfg.MaxAttempts {
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry aborted: %w", ctx.Err())
			case <-time.After(e.cfg.Delay):
			}
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrMaxAttemptsExceeded, e.cfg.MaxAttempts, lastErr)
}
