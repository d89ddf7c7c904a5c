package models

import (
	"time"

	"github.com/modaworks/curator/internal/classify"
)

// JobStatus is the lifecycle state of a classification job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Job tracks one product classification run submitted through the API.
type Job struct {
	ID         string           `json:"id"`
	ProductDir string           `json:"product_dir"`
	Status     JobStatus        `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Error      string           `json:"error,omitempty"`
	Result     *classify.Result `json:"result,omitempty"`
}
