// Package scheduler runs the nightly pace recalculation on a cron
// schedule, enqueueing the work onto the task queue rather than doing
// it inline.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Nawfay/bookclub/internal/tasks"
)

// PaceRecalcScheduler periodically enqueues a RecalcPaceTask covering
// every active club session.
type PaceRecalcScheduler struct {
	client   *tasks.Client
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewPaceRecalcScheduler creates a new scheduler instance.
// The schedule uses standard five-field cron format.
func NewPaceRecalcScheduler(client *tasks.Client, schedule string) *PaceRecalcScheduler {
	return &PaceRecalcScheduler{
		client:   client,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *PaceRecalcScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.client == nil {
		log.Printf("Pace recalc scheduler: task queue disabled, not starting")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runRecalc()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pace recalculation: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Pace recalc scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler.
func (s *PaceRecalcScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Pace recalc scheduler: stopped")
}

// RunNow triggers an immediate recalculation.
func (s *PaceRecalcScheduler) RunNow() {
	go s.runRecalc()
}

// IsRunning returns whether the scheduler is active.
func (s *PaceRecalcScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next recalculation will occur.
func (s *PaceRecalcScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runRecalc enqueues the recalculation task.
func (s *PaceRecalcScheduler) runRecalc() {
	ids, err := s.client.Add(tasks.RecalcPaceTask{}).Save()
	if err != nil {
		log.Printf("Pace recalc scheduler: failed to enqueue task: %v", err)
		return
	}
	log.Printf("Pace recalc scheduler: enqueued task %s", ids[0])
}
