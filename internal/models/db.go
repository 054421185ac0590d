package models

import (
	"time"
)

type Outcome string

const (
	OutcomeApplied   Outcome = "APPLIED"
	OutcomeDiscarded Outcome = "DISCARDED"
	OutcomeFailed    Outcome = "FAILED"
)

// ApplicationRecord is the terminal outcome for one posting. It is appended
// to the ledger exactly once per JobID.
type ApplicationRecord struct {
	JobID     string    `json:"job_id"`
	Company   string    `json:"company"`
	Title     string    `json:"title,omitempty"`
	Outcome   Outcome   `json:"outcome"`
	Timestamp time.Time `json:"timestamp"`
}

// TailoredDocument points at the document attached to one application.
// The rendered bytes belong to the renderer; StoragePath falls back to the
// untailored resume when tailoring fails.
type TailoredDocument struct {
	JobID       string    `json:"job_id"`
	StoragePath string    `json:"storage_path"`
	Provider    string    `json:"provider,omitempty"`
	Tailored    bool      `json:"tailored"`
	CreatedAt   time.Time `json:"created_at"`
}
