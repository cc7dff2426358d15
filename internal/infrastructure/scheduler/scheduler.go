// Package scheduler runs background jobs such as the PO archive sweep on a
// fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Job is one unit of recurring background work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobFunc adapts a function to Job
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

// Name returns the job name
func (j JobFunc) Name() string { return j.JobName }

// Run calls Fn
func (j JobFunc) Run(ctx context.Context) error { return j.Fn(ctx) }

// JobConfig controls how often a job runs
type JobConfig struct {
	Interval   time.Duration
	Timeout    time.Duration // per run, zero means the interval
	RunOnStart bool
}

// RunStats summarizes a job's history since start
type RunStats struct {
	Runs        int64
	Failures    int64
	Skipped     int64
	LastStarted time.Time
	LastError   string
}

type scheduledJob struct {
	job     Job
	config  JobConfig
	running atomic.Bool

	mu    sync.Mutex
	stats RunStats
}

// Scheduler runs each job on its own ticker.
// A tick that fires while the previous run is still going is skipped.
type Scheduler struct {
	logger *zap.Logger

	mu      sync.Mutex
	jobs    map[string]*scheduledJob
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New creates an empty scheduler
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{logger: logger, jobs: make(map[string]*scheduledJob)}
}

// Add registers job; it must be called before Start
func (s *Scheduler) Add(job Job, cfg JobConfig) error {
	if cfg.Interval <= 0 {
		return fmt.Errorf("%w: job %s interval must be positive", ErrInvalidConfig, job.Name())
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyRunning
	}
	s.jobs[job.Name()] = &scheduledJob{job: job, config: cfg}
	return nil
}

// Start launches a goroutine per job
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyRunning
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	for _, sj := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, sj)
	}
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)))
	return nil
}

// Stop cancels running jobs and waits for them to return or ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// RunNow runs a job immediately in the caller's goroutine, honoring the overlap guard
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	sj, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if !s.run(ctx, sj) {
		return ErrJobInProgress
	}
	sj.mu.Lock()
	defer sj.mu.Unlock()
	if sj.stats.LastError != "" {
		return fmt.Errorf("job %s: %s", name, sj.stats.LastError)
	}
	return nil
}

// Stats returns a snapshot of a job's run history
func (s *Scheduler) Stats(name string) (RunStats, bool) {
	s.mu.Lock()
	sj, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return RunStats{}, false
	}
	sj.mu.Lock()
	defer sj.mu.Unlock()
	return sj.stats, true
}

func (s *Scheduler) loop(ctx context.Context, sj *scheduledJob) {
	defer s.wg.Done()

	if sj.config.RunOnStart {
		s.run(ctx, sj)
	}

	ticker := time.NewTicker(sj.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.run(ctx, sj)
		}
	}
}

// run executes one run unless one is already in flight; it reports whether it ran
func (s *Scheduler) run(ctx context.Context, sj *scheduledJob) bool {
	name := sj.job.Name()
	if !sj.running.CompareAndSwap(false, true) {
		sj.mu.Lock()
		sj.stats.Skipped++
		sj.mu.Unlock()
		s.logger.Warn("Skipping job run, previous run still in progress", zap.String("job", name))
		return false
	}
	defer sj.running.Store(false)

	started := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, sj.config.Timeout)
	defer cancel()

	err := safeRun(runCtx, sj.job)
	elapsed := time.Since(started)

	sj.mu.Lock()
	sj.stats.Runs++
	sj.stats.LastStarted = started
	sj.stats.LastError = ""
	if err != nil {
		sj.stats.Failures++
		sj.stats.LastError = err.Error()
	}
	sj.mu.Unlock()

	if err != nil {
		s.logger.Error("Job run failed", zap.String("job", name), zap.Duration("elapsed", elapsed), zap.Error(err))
	} else {
		s.logger.Info("Job run completed", zap.String("job", name), zap.Duration("elapsed", elapsed))
	}
	return true
}

func safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Run(ctx)
}
