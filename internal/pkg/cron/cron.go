// Package cron runs housekeeping jobs on fixed intervals inside the server
// process.
package cron

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobStatus is the outcome of a job's most recent run.
type JobStatus string

const (
	StatusIdle    JobStatus = "idle"
	StatusRunning JobStatus = "running"
	StatusFulfill JobStatus = "fulfill"
	StatusReject  JobStatus = "reject"
)

var ErrJobRunning = errors.New("job is already running")

// Job is a named task repeated every Interval.
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

type jobState struct {
	Job
	mu        sync.Mutex
	status    JobStatus
	message   string
	lastRunAt time.Time
	nextRunAt time.Time
}

// Snapshot is a read-only view of a job's state.
type Snapshot struct {
	Name      string    `json:"name"`
	Status    JobStatus `json:"status"`
	Message   string    `json:"message,omitempty"`
	LastRunAt time.Time `json:"lastRunAt"`
	NextRunAt time.Time `json:"nextRunAt"`
}

type Scheduler struct {
	mu   sync.RWMutex
	jobs map[string]*jobState
	log  *zap.Logger
}

func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{jobs: make(map[string]*jobState), log: log.Named("cron")}
}

// Register adds a job. Must be called before Start.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name] = &jobState{
		Job:       job,
		status:    StatusIdle,
		nextRunAt: time.Now().Add(job.Interval),
	}
}

// Start launches one goroutine per job; they stop when ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, js := range s.jobs {
		go s.loop(ctx, js)
	}
}

func (s *Scheduler) loop(ctx context.Context, js *jobState) {
	timer := time.NewTimer(js.Interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			_ = s.execute(ctx, js)
			timer.Reset(js.Interval)
		}
	}
}

// execute runs js once; failures are logged and recorded on the job.
func (s *Scheduler) execute(ctx context.Context, js *jobState) error {
	js.mu.Lock()
	if js.status == StatusRunning {
		js.mu.Unlock()
		return ErrJobRunning
	}
	js.status = StatusRunning
	js.mu.Unlock()

	started := time.Now()
	err := js.Fn(ctx)

	js.mu.Lock()
	js.lastRunAt = started
	js.nextRunAt = time.Now().Add(js.Interval)
	if err != nil {
		js.status = StatusReject
		js.message = err.Error()
	} else {
		js.status = StatusFulfill
		js.message = ""
	}
	js.mu.Unlock()

	if err != nil {
		s.log.Warn("job failed", zap.String("job", js.Name), zap.Error(err))
		return err
	}
	s.log.Debug("job done", zap.String("job", js.Name), zap.Duration("elapsed", time.Since(started)))
	return nil
}

// Run executes a job immediately, waits for it to finish and returns its
// error.
func (s *Scheduler) Run(ctx context.Context, name string) error {
	s.mu.RLock()
	js, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %q not found", name)
	}
	return s.execute(ctx, js)
}

// List returns every job sorted by name.
func (s *Scheduler) List() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]Snapshot, 0, len(s.jobs))
	for _, js := range s.jobs {
		js.mu.Lock()
		items = append(items, Snapshot{
			Name:      js.Name,
			Status:    js.status,
			Message:   js.message,
			LastRunAt: js.lastRunAt,
			NextRunAt: js.nextRunAt,
		})
		js.mu.Unlock()
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}
