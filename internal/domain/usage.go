package domain

import "time"

// TokenUsageRecord is one append-only ledger entry written per generation
// attempt. Records are never mutated; a failed ledger write must never fail
// the action that produced it.
type TokenUsageRecord struct {
	UserID        string
	BrandID       string
	Service       string
	Model         string
	EstimatedCost float64
	Metadata      map[string]any
	CreatedAt     time.Time
}
