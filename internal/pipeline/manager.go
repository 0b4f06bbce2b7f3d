package pipeline

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"webhook-etl/internal/model"
)

// DefaultExtractLimit caps the requests read per endpoint during extract
const DefaultExtractLimit = 1000

// EventPublisher receives job lifecycle events
type EventPublisher interface {
	Publish(ctx context.Context, event model.JobEvent) error
}

// ListOptions filters List results; empty fields match everything
type ListOptions struct {
	Status model.JobStatus
	Type   model.JobType
}

// Task is the observable handle of one run
type Task struct {
	JobID string
	done  chan struct{}
	err   error
}

// Done is closed once the run reaches a terminal state
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the run's error; only meaningful after Done is closed
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the run ends or ctx is done
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type activeRun struct {
	cancel context.CancelFunc
	task   *Task
}

// Manager owns job records and drives their extract → transform → load runs.
// It is constructed once per process and shared by every caller.
type Manager struct {
	source       RequestSource
	loader       *Loader
	events       EventPublisher
	now          func() time.Time
	extractLimit int

	mu     sync.RWMutex
	jobs   map[string]*model.Job
	order  []string // submission order
	active map[string]*activeRun
	wg     sync.WaitGroup
}

// ManagerOption customises a Manager
type ManagerOption func(*Manager)

// WithEvents publishes lifecycle events to p
func WithEvents(p EventPublisher) ManagerOption {
	return func(m *Manager) { m.events = p }
}

// WithClock replaces the wall clock
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// WithExtractLimit sets the per-endpoint read limit
func WithExtractLimit(n int) ManagerOption {
	return func(m *Manager) {
		if n > 0 {
			m.extractLimit = n
		}
	}
}

// NewManager creates a job manager reading from source and loading with loader
func NewManager(source RequestSource, loader *Loader, opts ...ManagerOption) *Manager {
	m := &Manager{
		source:       source,
		loader:       loader,
		now:          time.Now,
		extractLimit: DefaultExtractLimit,
		jobs:         make(map[string]*model.Job),
		active:       make(map[string]*activeRun),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.loader == nil {
		m.loader = NewLoader(nil, nil, nil)
	}
	return m
}

// Submit validates spec and records a pending job
func (m *Manager) Submit(spec model.JobSpec) (model.Job, error) {
	if err := ValidateJobSpec(spec); err != nil {
		return model.Job{}, err
	}

	steps := make([]model.TransformStep, len(spec.Transformations))
	copy(steps, spec.Transformations)
	for i := range steps {
		if steps[i].ID == "" {
			steps[i].ID = uuid.New().String()
		}
	}

	job := &model.Job{
		ID:              uuid.New().String(),
		Name:            spec.Name,
		Type:            spec.Type,
		Status:          model.StatusPending,
		EndpointID:      spec.EndpointID,
		Filters:         spec.Filters,
		Transformations: steps,
		Destination:     spec.Destination,
		Schedule:        spec.Schedule,
		CreatedAt:       m.now(),
		Progress:        resetProgress(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.order = append(m.order, job.ID)
	snapshot := cloneJob(job)
	m.mu.Unlock()

	log.Printf("📝 Job %s submitted: %q (%s, %d steps)", job.ID, job.Name, job.Type, len(steps))
	return snapshot, nil
}

// Start launches a run of the job in the background. It fails with
// *NotFoundError for unknown ids and *AlreadyRunningError when the job is
// active. The run is detached from ctx's cancellation; use Cancel to stop it.
func (m *Manager) Start(ctx context.Context, id string) (*Task, error) {
	m.mu.Lock()
	job, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return nil, &NotFoundError{ID: id}
	}
	if _, running := m.active[id]; running {
		m.mu.Unlock()
		return nil, &AlreadyRunningError{JobID: id}
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	run := &activeRun{
		cancel: cancel,
		task:   &Task{JobID: id, done: make(chan struct{})},
	}
	m.active[id] = run

	startedAt := m.now()
	job.Status = model.StatusRunning
	job.StartedAt = &startedAt
	job.CompletedAt = nil
	job.Error = ""
	job.Progress = resetProgress()
	snapshot := cloneJob(job)
	event := newEvent(model.EventJobStarted, job, startedAt)
	m.wg.Add(1)
	m.mu.Unlock()

	log.Printf("🚀 Starting job %s (%s)", id, snapshot.Type)
	m.publish(event)

	go func() {
		defer m.wg.Done()
		defer close(run.task.done)
		defer cancel()

		run.task.err = m.execute(runCtx, snapshot, run)
		if run.task.err != nil && !errors.Is(run.task.err, ErrJobCancelled) {
			log.Printf("❌ Job %s: %v", id, run.task.err)
		}
	}()

	return run.task, nil
}

// Execute runs the job and waits for its terminal state. If ctx ends first
// the run is cancelled.
func (m *Manager) Execute(ctx context.Context, id string) error {
	task, err := m.Start(ctx, id)
	if err != nil {
		return err
	}
	if err := task.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			_, _ = m.Cancel(id)
			<-task.Done()
		}
		return err
	}
	return nil
}

// Cancel stops an active run. It returns false without changes when the job
// exists but is not running.
func (m *Manager) Cancel(id string) (bool, error) {
	m.mu.Lock()
	job, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return false, &NotFoundError{ID: id}
	}
	run, running := m.active[id]
	if !running {
		m.mu.Unlock()
		return false, nil
	}

	now := m.now()
	job.Status = model.StatusCancelled
	job.CompletedAt = &now
	job.Progress.EstimatedTimeRemaining = nil
	delete(m.active, id)
	event := newEvent(model.EventJobCancelled, job, now)
	m.mu.Unlock()

	// interrupts in-flight reads and outbound calls of the run
	run.cancel()

	log.Printf("🛑 Job %s cancelled", id)
	m.publish(event)
	return true, nil
}

// Get returns a snapshot of one job
func (m *Manager) Get(id string) (model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return model.Job{}, &NotFoundError{ID: id}
	}
	return cloneJob(job), nil
}

// List returns job snapshots newest first
func (m *Manager) List(opts ListOptions) []model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Job, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		job := m.jobs[m.order[i]]
		if opts.Status != "" && job.Status != opts.Status {
			continue
		}
		if opts.Type != "" && job.Type != opts.Type {
			continue
		}
		out = append(out, cloneJob(job))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// IsJobRunning reports whether the job is in the active set
func (m *Manager) IsJobRunning(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.active[id]
	return ok
}

// Shutdown cancels every active run and waits for them to return
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.RLock()
	ids := make([]string, 0, len(m.active))
	for id := range m.active {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		_, _ = m.Cancel(id)
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// commit applies fn to the job if run still owns it. It returns false when
// the run was cancelled in the meantime.
func (m *Manager) commit(id string, run *activeRun, fn func(job *model.Job, now time.Time)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active[id] != run {
		return false
	}
	fn(m.jobs[id], m.now())
	return true
}

// complete records a successful run and leaves the active set
func (m *Manager) complete(id string, run *activeRun) error {
	m.mu.Lock()
	if m.active[id] != run {
		m.mu.Unlock()
		return ErrJobCancelled
	}
	job := m.jobs[id]
	now := m.now()
	finish(job, now)
	delete(m.active, id)
	event := newEvent(model.EventJobCompleted, job, now)
	m.mu.Unlock()

	log.Printf("🏁 Job %s completed: %d of %d records processed", id, event.Progress.SuccessfulRecords, event.Progress.TotalRecords)
	m.publish(event)
	return nil
}

// fail records err against the job and returns it wrapped for the caller.
// A run that lost ownership to Cancel reports ErrJobCancelled instead.
func (m *Manager) fail(id string, run *activeRun, phase model.Phase, err error) error {
	m.mu.Lock()
	if m.active[id] != run {
		m.mu.Unlock()
		return ErrJobCancelled
	}
	job := m.jobs[id]
	now := m.now()
	job.Status = model.StatusFailed
	job.Error = err.Error()
	job.CompletedAt = &now
	job.Progress.EstimatedTimeRemaining = nil
	delete(m.active, id)
	event := newEvent(model.EventJobFailed, job, now)
	m.mu.Unlock()

	m.publish(event)
	return &ExecutionError{JobID: id, Phase: phase, Err: err}
}

func (m *Manager) publish(event model.JobEvent) {
	if m.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.events.Publish(ctx, event); err != nil {
		log.Printf("⚠️ Failed to publish %s for job %s: %v", event.Type, event.JobID, err)
	}
}
