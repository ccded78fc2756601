package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2/log"

	cron "github.com/robfig/cron/v3"
)

// Job represents a scheduled job that can be executed
type Job interface {
	Execute() error
	Name() string
}

// CronScheduler manages cron jobs
type CronScheduler struct {
	cron    *cron.Cron
	jobs    map[string]cron.EntryID
	mutex   sync.RWMutex
	running bool
}

// NewCronScheduler creates a new cron scheduler
func NewCronScheduler() *CronScheduler {
	return &CronScheduler{
		cron: cron.New(),
		jobs: make(map[string]cron.EntryID),
	}
}

// AddJob adds a job with the given schedule, replacing any job of the same name
func (s *CronScheduler) AddJob(name string, schedule string, job Job) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.jobs[name] != 0 {
		s.cron.Remove(s.jobs[name])
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		if err := job.Execute(); err != nil {
			log.Errorf("Scheduled job '%s' failed: %s", name, err)
		}
	})
	if err != nil {
		return err
	}

	s.jobs[name] = entryID
	return nil
}

// RemoveJob removes a job by name
func (s *CronScheduler) RemoveJob(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
	}
}

// NextRun returns the next activation time of a job
func (s *CronScheduler) NextRun(name string) (time.Time, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entryID, exists := s.jobs[name]
	if !exists {
		return time.Time{}, false
	}
	return s.cron.Entry(entryID).Next, true
}

// Start starts the scheduler
func (s *CronScheduler) Start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.running {
		s.cron.Start()
		s.running = true
	}
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *CronScheduler) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		<-s.cron.Stop().Done()
		s.running = false
	}
}

// IsRunning returns whether the scheduler is running
func (s *CronScheduler) IsRunning() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.running
}

// WarmFunc generates placeholders and reports how many assets were warmed
type WarmFunc func(ctx context.Context) (int, error)

// WarmJob pre-generates placeholder variants. Overlapping runs are skipped.
type WarmJob struct {
	WarmFunc WarmFunc
	// Context is the parent of every run; cancelling it stops a running
	// warm-up. Nil means context.Background().
	Context context.Context
	// Timeout bounds a single run; zero means no limit.
	Timeout time.Duration

	running atomic.Bool
}

// Name returns the job name
func (j *WarmJob) Name() string {
	return "warm-placeholders"
}

// Execute runs the warm-up
func (j *WarmJob) Execute() error {
	if j.WarmFunc == nil {
		return fmt.Errorf("no warm function provided")
	}
	if !j.running.CompareAndSwap(false, true) {
		log.Infof("Warm-up already running, skipping run")
		return nil
	}
	defer j.running.Store(false)

	ctx := j.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("warm-up not started: %w", err)
	}
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	log.Debugf("Starting placeholder warm-up")
	start := time.Now()

	warmed, err := j.WarmFunc(ctx)
	if err != nil {
		return fmt.Errorf("warm-up stopped after %d assets: %w", warmed, err)
	}

	log.Infof("Placeholder warm-up completed in %.1fs (%d assets)", time.Since(start).Seconds(), warmed)
	return nil
}
