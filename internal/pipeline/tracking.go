package pipeline

import (
	"time"

	"webhook-etl/internal/model"
)

// Percentage milestones reached when a phase finishes
const (
	percentAfterExtract   = 33
	percentAfterTransform = 66
	percentComplete       = 100
)

// resetProgress is the snapshot on entry to running
func resetProgress() model.Progress {
	return model.Progress{CurrentPhase: model.PhaseExtract}
}

// advance moves the job to the next phase. Percentage never decreases
// within one run.
func advance(job *model.Job, next model.Phase, percentage int, now time.Time) {
	job.Progress.CurrentPhase = next
	if percentage > job.Progress.Percentage {
		job.Progress.Percentage = percentage
	}
	job.Progress.EstimatedTimeRemaining = estimateRemaining(job, now)
}

// finish marks a successful run
func finish(job *model.Job, now time.Time) {
	job.Status = model.StatusCompleted
	job.Progress.SuccessfulRecords = job.Progress.ProcessedRecords
	job.Progress.Percentage = percentComplete
	job.Progress.CurrentPhase = model.PhaseCompleted
	zero := 0
	job.Progress.EstimatedTimeRemaining = &zero
	job.CompletedAt = &now
}

// estimateRemaining extrapolates the elapsed time linearly over the
// remaining percentage
func estimateRemaining(job *model.Job, now time.Time) *int {
	p := job.Progress.Percentage
	if job.StartedAt == nil || p <= 0 || p >= percentComplete {
		return nil
	}
	elapsed := now.Sub(*job.StartedAt).Seconds()
	secs := int(elapsed * float64(percentComplete-p) / float64(p))
	return &secs
}

func newEvent(eventType string, job *model.Job, at time.Time) model.JobEvent {
	return model.JobEvent{
		Type:     eventType,
		JobID:    job.ID,
		JobName:  job.Name,
		Status:   job.Status,
		Progress: job.Progress,
		Error:    job.Error,
		At:       at,
	}
}

// cloneJob returns a snapshot that shares no mutable state with the
// manager's copy. Filters, destination and schedule are never mutated after
// submission and are shared.
func cloneJob(job *model.Job) model.Job {
	out := *job
	out.Transformations = append([]model.TransformStep(nil), job.Transformations...)
	if job.StartedAt != nil {
		t := *job.StartedAt
		out.StartedAt = &t
	}
	if job.CompletedAt != nil {
		t := *job.CompletedAt
		out.CompletedAt = &t
	}
	if job.Progress.EstimatedTimeRemaining != nil {
		v := *job.Progress.EstimatedTimeRemaining
		out.Progress.EstimatedTimeRemaining = &v
	}
	return out
}
