package storage

import "time"

// Match run states
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// MatchRun represents an auto-match run record
type MatchRun struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	Trigger       string     `json:"trigger"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	TotalExpenses int        `json:"total_expenses"`
	TotalSales    int        `json:"total_sales"`
	MatchedCount  int        `json:"matched_count"`
	SkippedCount  int        `json:"skipped_count"`
	Status        string     `json:"status"`
	ErrorMessage  string     `json:"error_message,omitempty"`
}

// MatchRunResult is written when a run finishes
type MatchRunResult struct {
	TotalExpenses int
	TotalSales    int
	MatchedCount  int
	SkippedCount  int
	Status        string
	ErrorMessage  string
}
