package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/avolkov/bookcatalog/internal/tasks"
)

// MetadataSyncScheduler periodically enqueues a bulk metadata refresh so that
// books added without covers or descriptions eventually pick them up.
type MetadataSyncScheduler struct {
	taskClient *tasks.Client
	schedule   string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewMetadataSyncScheduler creates a new scheduler instance. The schedule is
// a standard five-field cron expression.
func NewMetadataSyncScheduler(taskClient *tasks.Client, schedule string) *MetadataSyncScheduler {
	return &MetadataSyncScheduler{
		taskClient: taskClient,
		schedule:   schedule,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *MetadataSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.taskClient == nil {
		log.Printf("Metadata sync scheduler: task queue not enabled, skipping")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.enqueueRefresh()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule metadata sync job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Metadata sync scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
func (s *MetadataSyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Metadata sync scheduler: stopped")
}

// RunNow triggers an immediate refresh sweep.
func (s *MetadataSyncScheduler) RunNow() {
	go s.enqueueRefresh()
}

// IsRunning returns whether the scheduler is active.
func (s *MetadataSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sweep will be enqueued.
func (s *MetadataSyncScheduler) GetNextRunTime() *time.Time {
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

func (s *MetadataSyncScheduler) enqueueRefresh() {
	ids, err := s.taskClient.Add(tasks.RefreshAllBooksTask{}).Save()
	if err != nil {
		log.Printf("Metadata sync: failed to enqueue refresh task: %v", err)
		return
	}
	log.Printf("Metadata sync: enqueued refresh task %s", ids[0])
}
