package pipeline

import (
	"context"
	"log"
	"time"

	"webhook-etl/internal/model"
)

// runsTransform reports whether the job type includes the transform phase
func runsTransform(t model.JobType) bool {
	return t != model.JobTypeExtract
}

// runsLoad reports whether the job type includes the load phase
func runsLoad(t model.JobType) bool {
	return t == model.JobTypeLoad || t == model.JobTypeFull
}

// execute drives one run through its phases. Phases are strictly sequential;
// progress is committed after each one so readers only see phase boundaries.
func (m *Manager) execute(ctx context.Context, job model.Job, run *activeRun) error {
	start := time.Now()

	// --- EXTRACT ---
	log.Printf("📥 Job %s: extracting (endpoint=%q)", job.ID, job.EndpointID)
	reqs, err := Extract(ctx, m.source, job.EndpointID, m.extractLimit, job.Filters)
	if err != nil {
		return m.fail(job.ID, run, model.PhaseExtract, err)
	}
	records := ToRecords(reqs)
	if !m.commit(job.ID, run, func(j *model.Job, now time.Time) {
		j.Progress.TotalRecords = len(records)
		advance(j, model.PhaseTransform, percentAfterExtract, now)
	}) {
		return ErrJobCancelled
	}
	log.Printf("✅ Job %s: extracted %d records", job.ID, len(records))

	// --- TRANSFORM ---
	if runsTransform(job.Type) {
		log.Printf("🔄 Job %s: applying %d transformation steps", job.ID, len(job.Transformations))
		t := Transformer{Now: m.now}
		records, err = t.Apply(ctx, records, job.Transformations)
		if err != nil {
			return m.fail(job.ID, run, model.PhaseTransform, err)
		}
	}
	if !m.commit(job.ID, run, func(j *model.Job, now time.Time) {
		j.Progress.ProcessedRecords = len(records)
		advance(j, model.PhaseLoad, percentAfterTransform, now)
	}) {
		return ErrJobCancelled
	}

	// --- LOAD ---
	if runsLoad(job.Type) {
		log.Printf("💾 Job %s: loading %d records", job.ID, len(records))
		result, err := m.loader.Load(ctx, job.ID, records, job.Destination)
		if err != nil {
			return m.fail(job.ID, run, model.PhaseLoad, err)
		}
		if result != nil {
			log.Printf("✅ Job %s: %d records delivered to %s %s", job.ID, result.RecordCount, result.Type, result.Path)
		}
	}

	log.Printf("⏱️ Job %s finished phases in %v", job.ID, time.Since(start))
	return m.complete(job.ID, run)
}

