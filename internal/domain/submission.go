package domain

import "time"

// Status tracks where a submission is in its analysis lifecycle.
type Status string

const (
	// StatusPending means the submission is waiting for a scrape task.
	StatusPending Status = "pending"
	// StatusProcessing means a task is in flight for the submission.
	StatusProcessing Status = "processing"
	// StatusRefreshing means a completed submission is being re-scraped.
	StatusRefreshing Status = "refreshing"
	// StatusCompleted means results have been written for the submission.
	StatusCompleted Status = "completed"
	// StatusFailed means dispatch or processing failed terminally.
	StatusFailed Status = "failed"
)

// Submission is a product URL a user asked us to analyze. The relational store
// is the source of truth for these rows; task state lives in the broker.
type Submission struct {
	ID                  string
	URL                 string
	Status              Status
	IsCompetitorProduct bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
