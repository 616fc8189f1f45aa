package job

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/HorseArcher567/corelog/pkg/xlog"
)

type Scheduler struct {
	log    *xlog.Logger
	jobs   []*Job
	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewScheduler(log *xlog.Logger) *Scheduler {
	return &Scheduler{
		log:  log,
		jobs: make([]*Job, 0),
	}
}

// AddJob registers a job. Invalid jobs are rejected.
func (s *Scheduler) AddJob(job *Job) error {
	if err := job.Validate(); err != nil {
		return err
	}
	s.jobs = append(s.jobs, job)
	return nil
}

// Start starts all jobs in background goroutines and returns immediately.
// Use Stop to gracefully shut down the scheduler and wait for all jobs to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.group != nil {
		return fmt.Errorf("job scheduler already started")
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.group = &errgroup.Group{}

	s.log.Task("starting job scheduler", xlog.Fields{"jobCount": len(s.jobs)})

	for _, job := range s.jobs {
		job := job
		s.group.Go(func() error {
			if err := job.Run(ctx, s.log); err != nil {
				s.log.Error("job run failed", xlog.Fields{"name": job.Name, "error": err.Error()})
				return fmt.Errorf("job %s: %w", job.Name, err)
			}
			return nil
		})
	}

	return nil
}

// Stop cancels the jobs and waits for them. It returns the first job error, or
// ctx.Err() if ctx expires first; jobs may then still be running.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.group == nil {
		return nil
	}

	s.log.Task("shutting down job scheduler gracefully")
	s.cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.group.Wait()
	}()

	select {
	case err := <-done:
		s.log.Task("all jobs finished, scheduler stopped")
		return err
	case <-ctx.Done():
		s.log.Warn("job scheduler shutdown timeout, some jobs may still be running")
		return ctx.Err()
	}
}
