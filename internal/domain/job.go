package domain

import "time"

// JobType identifies the kind of automation task. Currently only product
// scraping exists; the enum leaves room for future task kinds.
type JobType string

const (
	JobTypeScrapeProducts JobType = "scrape_products"
)

// JobStatus represents the state of an automation job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// AutomationJob tracks one execution attempt of a background automation
// task. FinishedAt is set exactly when the job reaches a terminal status,
// and ErrorMessage is non-empty exactly when that status is failed.
type AutomationJob struct {
	ID           int64      `json:"id" db:"id"`
	JobType      JobType    `json:"job_type" db:"job_type"`
	Status       JobStatus  `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	ErrorMessage *string    `json:"error_message,omitempty" db:"error_message"`
}

// Terminal reports whether the job has reached a terminal status.
func (j AutomationJob) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
