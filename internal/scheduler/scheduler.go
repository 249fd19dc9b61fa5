// Package scheduler runs registered maintenance jobs on fixed intervals.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tigerfoodies/gofoodies/internal/logger"
)

// defaultTick is how often the loop checks for due jobs.
const defaultTick = 1 * time.Second

// Job is a unit of periodic work. Run must honor the context and return an
// error instead of panicking; panics are still contained by the loop.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// entry pairs a job with its interval and next-due time.
type entry struct {
	job      Job
	interval time.Duration
	nextRun  time.Time
}

// Scheduler owns the background loop that dispatches jobs. Jobs execute
// strictly one at a time, in registration order; a slow job delays later
// due jobs rather than overlapping them. Job state is not persisted: after
// a restart every job is due again one interval after Start.
type Scheduler struct {
	logger  logger.Interface
	tick    time.Duration
	entries []*entry

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTick overrides the loop tick. Used to speed up tests.
func WithTick(tick time.Duration) Option {
	return func(s *Scheduler) {
		s.tick = tick
	}
}

// New creates a scheduler with no registered jobs.
func New(log logger.Interface, opts ...Option) *Scheduler {
	s := &Scheduler{
		logger: log,
		tick:   defaultTick,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register adds a job to the loop. Must be called before Start.
func (s *Scheduler) Register(job Job, interval time.Duration) {
	s.entries = append(s.entries, &entry{job: job, interval: interval})
}

// Start begins the scheduler loop on its own goroutine.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	now := time.Now()
	for _, e := range s.entries {
		e.nextRun = now.Add(e.interval)
	}

	s.wg.Add(1)
	go s.loop()

	s.logger.Info("Scheduler started",
		"tick", s.tick,
		"jobs", len(s.entries),
	)

	return nil
}

// Stop cancels the loop and waits for any in-flight job to finish. There is
// no mid-job cancellation beyond the context handed to Run.
func (s *Scheduler) Stop() error {
	s.logger.Info("Stopping scheduler")

	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	s.logger.Info("Scheduler stopped")
	return nil
}

// loop checks for due jobs on every tick.
func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("Scheduler loop stopping")
			return
		case t := <-ticker.C:
			s.runDue(t)
		}
	}
}

// runDue executes every due job synchronously, in registration order. The
// next-due time advances to completion time + interval regardless of how
// long the job took or whether it failed.
func (s *Scheduler) runDue(now time.Time) {
	for _, e := range s.entries {
		if now.Before(e.nextRun) {
			continue
		}

		s.runJob(e.job)
		e.nextRun = time.Now().Add(e.interval)
	}
}

// runJob runs one job with blanket recovery. This is the only place in the
// service where failures are swallowed: a failed run counts as a completed
// run and the loop must outlive it.
func (s *Scheduler) runJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Job panicked",
				"job", job.Name(),
				"panic", fmt.Sprintf("%v", r),
			)
		}
	}()

	start := time.Now()
	if err := job.Run(s.ctx); err != nil {
		s.logger.WithError(err).Error("Job failed",
			"job", job.Name(),
			"duration", time.Since(start),
		)
		return
	}

	s.logger.Debug("Job completed",
		"job", job.Name(),
		"duration", time.Since(start),
	)
}
