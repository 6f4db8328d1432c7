package main

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the batch on a cron schedule
type Scheduler struct {
	cron    *cron.Cron
	entryID cron.EntryID
	spec    string
	job     func()
	mutex   sync.Mutex
}

// NewScheduler creates a scheduler. Overlapping fires are skipped.
func NewScheduler(spec string, job func()) (*Scheduler, error) {
	logger := cron.PrintfLogger(Logger())
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
		job: job,
	}
	if err := s.Reschedule(spec); err != nil {
		return nil, err
	}
	return s, nil
}

// Reschedule replaces the job's schedule
func (s *Scheduler) Reschedule(spec string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	id, err := s.cron.AddFunc(spec, s.job)
	if err != nil {
		return NewSchedulerError(ErrSchedulerTask, "schedule batch "+spec, err)
	}
	if s.entryID > 0 {
		s.cron.Remove(s.entryID)
	}
	s.entryID = id
	s.spec = spec
	Logger().Info("Batch scheduled with %q", spec)
	return nil
}

// Start starts the cron loop
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the loop and waits for a running job up to ctx
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		Logger().Warning("Timed out waiting for running batch to finish")
	}
}

// NextRun returns the next fire time, zero before Start
func (s *Scheduler) NextRun() time.Time {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.cron.Entry(s.entryID).Next
}

// Spec returns the active schedule
func (s *Scheduler) Spec() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.spec
}
