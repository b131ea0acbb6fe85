package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// UsageEvent is one journaled generative-model call.
type UsageEvent struct {
	ID        int64
	CreatedAt time.Time
	Model     string
	Outcome   string // "ok" or "failed"
}

// UsageSummary aggregates journal events per model and outcome.
type UsageSummary struct {
	Model   string
	Outcome string
	Count   int
}

// Feedback is one user rating of a generated report.
type Feedback struct {
	ID        string
	CreatedAt time.Time
	Name      string
	Rating    int // 1..5
	Education string
	Skills    string // comma-joined canonical skill set
	Comment   string
}

// AssessmentResult is one completed and scored skill assessment.
type AssessmentResult struct {
	ID         string
	CreatedAt  time.Time
	Name       string
	Skills     string // comma-joined canonical skill set
	Difficulty string
	Correct    int
	Total      int
	Percentage float64
}
