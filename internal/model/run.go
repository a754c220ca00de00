package model

import "time"

// RunStatus represents the lifecycle of one pipeline run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusCanceled RunStatus = "canceled"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one end-to-end execution of the lead pipeline.
type Run struct {
	ID          string     `json:"id"`
	Sources     []string   `json:"sources"`
	Status      RunStatus  `json:"status"`
	Summary     *Summary   `json:"summary,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Summary holds the aggregate counts of a run.
type Summary struct {
	Total       int                  `json:"total"`
	PerCategory map[Category]int     `json:"per_category"`
	PerStatus   map[RecordStatus]int `json:"per_status"`
	Successful  int                  `json:"successful"`
	Sources     int                  `json:"sources"`
	Rejected    int                  `json:"rejected"`
}
