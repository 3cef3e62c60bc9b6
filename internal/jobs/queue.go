// Package jobs runs optimization requests asynchronously on a fixed
// worker pool and tracks their lifecycle for status polling.
package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/printops/plate-service/internal/domain/model"
	"github.com/printops/plate-service/internal/metrics"
	"github.com/printops/plate-service/internal/optimizer"
)

// State is a job's lifecycle phase.
type State string

const (
	// StateQueued means the job is waiting for a worker.
	StateQueued State = "queued"
	// StateInitializing means seeding and model construction are running.
	StateInitializing State = "initializing"
	// StateOptimizing means the search is running.
	StateOptimizing State = "optimizing"
	// StateCompleted means the job finished with a solution.
	StateCompleted State = "completed"
	// StateFailed means the job finished with an error.
	StateFailed State = "failed"
)

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Job is a snapshot of one optimization run's lifecycle.
type Job struct {
	ID         string
	State      State
	Instance   model.Instance
	Solution   *model.Solution
	Error      string
	EnqueuedAt time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the job's run time, or zero if it never started.
func (j Job) Duration() time.Duration {
	if j.StartedAt.IsZero() {
		return 0
	}
	end := j.FinishedAt
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(j.StartedAt)
}

// Optimizer is the unit of work a job executes.
type Optimizer interface {
	Run(ctx context.Context, inst model.Instance, progress optimizer.ProgressFunc) (*model.Solution, error)
}

// ErrQueueFull is returned by Enqueue when the backlog is at capacity.
var ErrQueueFull = errors.New("job queue is full")

const (
	defaultWorkers   = 4
	defaultBacklog   = 64
	defaultResultTTL = time.Hour
	sweepInterval    = time.Minute
)

// Queue dispatches optimization jobs to a worker pool and retains
// results for polling until they expire.
type Queue struct {
	opt       Optimizer
	workers   int
	backlog   int
	resultTTL time.Duration
	log       zerolog.Logger

	mu   sync.RWMutex
	jobs map[string]*Job

	work   chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	onComplete func(Job)
}

// Option configures a Queue.
type Option func(*Queue)

// WithWorkers sets the worker pool size.
func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

// WithBacklog sets the maximum number of queued jobs.
func WithBacklog(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.backlog = n
		}
	}
}

// WithResultTTL sets how long finished jobs stay available for polling.
func WithResultTTL(ttl time.Duration) Option {
	return func(q *Queue) {
		if ttl > 0 {
			q.resultTTL = ttl
		}
	}
}

// WithCompletionHook registers a callback invoked with a snapshot of
// every job that reaches a terminal state.
func WithCompletionHook(hook func(Job)) Option {
	return func(q *Queue) { q.onComplete = hook }
}

// WithQueueLogger sets the queue's logger.
func WithQueueLogger(l zerolog.Logger) Option {
	return func(q *Queue) { q.log = l }
}

// NewQueue creates a queue; call Start before enqueueing.
func NewQueue(opt Optimizer, opts ...Option) *Queue {
	q := &Queue{
		opt:       opt,
		workers:   defaultWorkers,
		backlog:   defaultBacklog,
		resultTTL: defaultResultTTL,
		jobs:      make(map[string]*Job),
		log:       log.Logger,
	}
	for _, o := range opts {
		o(q)
	}
	q.work = make(chan string, q.backlog)
	return q
}

// Start launches the worker pool and the result janitor.
func (q *Queue) Start() {
	q.ctx, q.cancel = context.WithCancel(context.Background())
	for w := 0; w < q.workers; w++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.wg.Add(1)
	go q.janitor()
}

// Shutdown stops accepting work and waits for in-flight jobs, up to the
// context deadline.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.cancel()
	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue registers a new job for the instance and returns its ID.
func (q *Queue) Enqueue(inst model.Instance) (string, error) {
	id := uuid.New().String()
	job := &Job{
		ID:         id,
		State:      StateQueued,
		Instance:   inst,
		EnqueuedAt: time.Now(),
	}

	q.mu.Lock()
	q.jobs[id] = job
	q.mu.Unlock()

	select {
	case q.work <- id:
	default:
		q.mu.Lock()
		delete(q.jobs, id)
		q.mu.Unlock()
		return "", ErrQueueFull
	}

	metrics.SetQueuedJobs(len(q.work))
	return id, nil
}

// Get returns a snapshot of the job with the given ID.
func (q *Queue) Get(id string) (Job, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	job, ok := q.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case id := <-q.work:
			q.run(id)
		}
	}
}

func (q *Queue) run(id string) {
	q.mu.Lock()
	job, ok := q.jobs[id]
	if !ok {
		q.mu.Unlock()
		return
	}
	job.StartedAt = time.Now()
	inst := job.Instance
	q.mu.Unlock()

	metrics.IncActiveJobs()
	defer metrics.DecActiveJobs()

	q.log.Info().Str("job_id", id).Int("tags", len(inst.Tags)).Msg("Starting optimization job")

	progress := func(phase optimizer.Phase) {
		switch phase {
		case optimizer.PhaseInitializing:
			q.setState(id, StateInitializing)
		case optimizer.PhaseOptimizing:
			q.setState(id, StateOptimizing)
		}
	}

	sol, err := q.opt.Run(q.ctx, inst, progress)

	q.mu.Lock()
	job.FinishedAt = time.Now()
	if err != nil {
		job.State = StateFailed
		job.Error = err.Error()
	} else {
		job.State = StateCompleted
		job.Solution = sol
	}
	snapshot := *job
	q.mu.Unlock()

	if err != nil {
		metrics.RecordOptimization(snapshot.Duration(), "failed")
		q.log.Error().Err(err).Str("job_id", id).Msg("Optimization job failed")
	} else {
		metrics.RecordOptimization(snapshot.Duration(), "completed")
		q.log.Info().
			Str("job_id", id).
			Int("total_sheets", sol.Summary.TotalSheets).
			Dur("duration", snapshot.Duration()).
			Msg("Optimization job completed")
	}

	if q.onComplete != nil {
		q.onComplete(snapshot)
	}
}

func (q *Queue) setState(id string, state State) {
	q.mu.Lock()
	if job, ok := q.jobs[id]; ok && !job.State.Terminal() {
		job.State = state
	}
	q.mu.Unlock()
}

// janitor evicts finished jobs once their result TTL expires.
func (q *Queue) janitor() {
	defer q.wg.Done()
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-q.ctx.Done():
			return
		case now := <-ticker.C:
			q.mu.Lock()
			for id, job := range q.jobs {
				if job.State.Terminal() && now.Sub(job.FinishedAt) > q.resultTTL {
					delete(q.jobs, id)
				}
			}
			q.mu.Unlock()
		}
	}
}
