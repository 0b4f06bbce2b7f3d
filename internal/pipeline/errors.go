package pipeline

import (
	"errors"
	"fmt"

	"webhook-etl/internal/model"
)

// ErrJobCancelled is returned to the task of a run stopped by Cancel
var ErrJobCancelled = errors.New("job cancelled")

// ValidationError reports a malformed job specification
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AlreadyRunningError is returned when a job is started while active
type AlreadyRunningError struct {
	JobID string
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("job already running: %s", e.JobID)
}

// UnsupportedOperationError reports an unknown or reserved step/destination type
type UnsupportedOperationError struct {
	Kind string // "transformation" or "destination"
	Name string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("unsupported %s type: %s", e.Kind, e.Name)
}

// ExecutionError wraps a failure inside one phase of a run
type ExecutionError struct {
	JobID string
	Phase model.Phase
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("job %s failed during %s: %v", e.JobID, e.Phase, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// NotFoundError is returned for unknown job ids
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("job not found: %s", e.ID)
}
