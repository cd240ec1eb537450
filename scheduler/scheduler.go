// Package scheduler runs cron jobs for the application. The scheduler is
// registered as a bean and started and stopped by lifecycle listeners.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GoCodeAlone/boot/logging"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// JobFunc defines a function that can be executed as a job
type JobFunc func(ctx context.Context) error

// Job describes a scheduled job.
type Job struct {
	ID       string    `json:"id"`
	Schedule string    `json:"schedule"`
	NextRun  time.Time `json:"nextRun"`
	LastRun  time.Time `json:"lastRun,omitempty"`
}

type entry struct {
	id       cron.EntryID
	schedule string
}

// Scheduler handles scheduling and executing jobs
type Scheduler struct {
	cronScheduler *cron.Cron
	logger        logging.Logger

	entryMutex sync.RWMutex
	entries    map[string]entry

	schedulerMutex sync.Mutex
	ctx            context.Context
	cancel         context.CancelFunc
	isStarted      bool
}

// SchedulerOption defines a function that can configure a scheduler
type SchedulerOption func(*Scheduler)

// WithLogger sets the logger
func WithLogger(logger logging.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler creates a scheduler accepting standard cron expressions
// with an optional leading seconds field and descriptors like @every 1m.
func NewScheduler(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		logger:  logging.Nop(),
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(s)
	}

	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	s.cronScheduler = cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.Recover(cronLogger{s.logger})),
	)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Schedule adds fn under id. An empty id gets a generated one, which is
// returned.
func (s *Scheduler) Schedule(id, spec string, fn JobFunc) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}

	s.entryMutex.Lock()
	defer s.entryMutex.Unlock()
	if _, exists := s.entries[id]; exists {
		return "", fmt.Errorf("%w: %s", ErrJobExists, id)
	}

	entryID, err := s.cronScheduler.AddFunc(spec, func() { s.run(id, fn) })
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidSchedule, spec, err)
	}
	s.entries[id] = entry{id: entryID, schedule: spec}
	s.logger.Debug("Scheduled job", "id", id, "schedule", spec)
	return id, nil
}

func (s *Scheduler) run(id string, fn JobFunc) {
	s.schedulerMutex.Lock()
	ctx := s.ctx
	s.schedulerMutex.Unlock()

	start := time.Now()
	if err := fn(ctx); err != nil {
		s.logger.Error("Job failed", "id", id, "error", err, "duration", time.Since(start))
		return
	}
	s.logger.Debug("Job completed", "id", id, "duration", time.Since(start))
}

// Remove cancels a job and reports whether it existed.
func (s *Scheduler) Remove(id string) bool {
	s.entryMutex.Lock()
	defer s.entryMutex.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return false
	}
	s.cronScheduler.Remove(e.id)
	delete(s.entries, id)
	return true
}

// Jobs lists scheduled jobs sorted by ID.
func (s *Scheduler) Jobs() []Job {
	s.entryMutex.RLock()
	defer s.entryMutex.RUnlock()
	jobs := make([]Job, 0, len(s.entries))
	for id, e := range s.entries {
		ce := s.cronScheduler.Entry(e.id)
		jobs = append(jobs, Job{ID: id, Schedule: e.schedule, NextRun: ce.Next, LastRun: ce.Prev})
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs
}

// Start begins running jobs. Calling it twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.schedulerMutex.Lock()
	defer s.schedulerMutex.Unlock()
	if s.isStarted {
		return nil
	}
	s.logger.Info("Starting scheduler", "jobs", len(s.Jobs()))
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.cronScheduler.Start()
	s.isStarted = true
	return nil
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.schedulerMutex.Lock()
	if !s.isStarted {
		s.schedulerMutex.Unlock()
		return nil
	}
	s.logger.Info("Stopping scheduler")
	s.cancel()
	cronCtx := s.cronScheduler.Stop()
	s.isStarted = false
	// Jobs already dispatched by cron take the lock in run.
	s.schedulerMutex.Unlock()

	select {
	case <-cronCtx.Done():
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler shutdown timed out")
		return ErrStopTimeout
	}
}

// IsRunning reports whether Start has been called without Stop.
func (s *Scheduler) IsRunning() bool {
	s.schedulerMutex.Lock()
	defer s.schedulerMutex.Unlock()
	return s.isStarted
}

// cronLogger adapts logging.Logger to cron.Logger.
type cronLogger struct{ logging.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.Logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.Logger.Error(msg, append(keysAndValues, "error", err)...)
}
