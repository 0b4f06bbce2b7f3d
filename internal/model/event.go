package model

import "time"

// Job event types published on lifecycle transitions
const (
	EventJobStarted   = "job.started"
	EventJobCompleted = "job.completed"
	EventJobFailed    = "job.failed"
	EventJobCancelled = "job.cancelled"
)

// JobEvent is a lifecycle notification for external consumers
type JobEvent struct {
	Type     string    `json:"type"`
	JobID    string    `json:"jobId"`
	JobName  string    `json:"jobName"`
	Status   JobStatus `json:"status"`
	Progress Progress  `json:"progress"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}
