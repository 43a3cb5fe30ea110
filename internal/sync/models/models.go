// Package models defines the synchronization outcome and history types.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Status is the terminal state of a synchronization run.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// The pseudo-source recorded for coordinated runs across every list.
const SourceAll = "ALL"

// Result is the outcome of a single-source synchronization run.
type Result struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	RecordsAffected int    `json:"recordsAffected"`
}

// Status maps the boolean outcome to its history status.
func (r Result) Status() Status {
	if r.Success {
		return StatusSuccess
	}
	return StatusFailure
}

// AllResult is the combined outcome of a coordinated run across all sources.
type AllResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Details []string `json:"details"`
}

// HistoryEntry is one row of the append-only synchronization log.
type HistoryEntry struct {
	ID              uuid.UUID `json:"id"`
	Source          string    `json:"source"`
	Status          Status    `json:"status"`
	Message         string    `json:"message"`
	RecordsAffected *int      `json:"recordsAffected"`
	CreatedAt       time.Time `json:"createdAt"`
}
