package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"screw-inspection/pkg/apperrors"
	"screw-inspection/pkg/logger"
)

// Scheduler runs maintenance jobs on cron expressions. Jobs never overlap
// with themselves.
type Scheduler interface {
	Start()
	Stop()
	AddJob(id, cronExpr string, task func() error) error
	// RunNow executes a registered job immediately on the caller's goroutine
	RunNow(id string) error
	ListJobs() map[string]JobInfo
	IsRunning() bool
}

type JobInfo struct {
	ID        string
	CronExpr  string
	LastRun   *time.Time
	NextRun   *time.Time
	LastError string
	Runs      int
}

type jobEntry struct {
	info JobInfo
	job  *gocron.Job
	task func() error
}

type GocronScheduler struct {
	scheduler *gocron.Scheduler
	jobs      map[string]*jobEntry
	mu        sync.RWMutex
	running   bool
}

func NewScheduler() *GocronScheduler {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	return &GocronScheduler{
		scheduler: scheduler,
		jobs:      make(map[string]*jobEntry),
	}
}

func (s *GocronScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		logger.SchedulerWarn("start", "Scheduler is already running", nil)
		return
	}

	s.scheduler.StartAsync()
	s.running = true
	logger.Scheduler("started", "Maintenance scheduler started", map[string]interface{}{"jobs": len(s.jobs)})
}

func (s *GocronScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.scheduler.Stop()
	s.running = false
	logger.Scheduler("stopped", "Maintenance scheduler stopped", nil)
}

func (s *GocronScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *GocronScheduler) AddJob(id, cronExpr string, task func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[id]; exists {
		return fmt.Errorf("job with ID %s already exists", id)
	}

	job, err := s.scheduler.Cron(cronExpr).Do(func() {
		_ = s.execute(id)
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}

	nextRun := job.NextRun()
	s.jobs[id] = &jobEntry{
		info: JobInfo{ID: id, CronExpr: cronExpr, NextRun: &nextRun},
		job:  job,
		task: task,
	}

	logger.Scheduler("job_added", "Job added", map[string]interface{}{
		"job_id":    id,
		"cron_expr": cronExpr,
		"next_run":  nextRun.Format(time.RFC3339),
	})
	return nil
}

func (s *GocronScheduler) RunNow(id string) error {
	s.mu.RLock()
	_, exists := s.jobs[id]
	s.mu.RUnlock()
	if !exists {
		return apperrors.NotFound("job %s", id)
	}
	return s.execute(id)
}

func (s *GocronScheduler) execute(id string) error {
	s.mu.RLock()
	entry, exists := s.jobs[id]
	s.mu.RUnlock()
	if !exists {
		return nil
	}

	start := time.Now()
	logger.Scheduler("job_executing", "Executing job", map[string]interface{}{"job_id": id})
	err := entry.task()

	s.mu.Lock()
	entry.info.LastRun = &start
	entry.info.Runs++
	entry.info.LastError = ""
	if err != nil {
		entry.info.LastError = err.Error()
	}
	nextRun := entry.job.NextRun()
	entry.info.NextRun = &nextRun
	s.mu.Unlock()

	if err != nil {
		logger.SchedulerError("job_failed", "Job failed", err, map[string]interface{}{
			"job_id":   id,
			"duration": time.Since(start).String(),
		})
		return err
	}
	logger.Scheduler("job_completed", "Job completed", map[string]interface{}{
		"job_id":   id,
		"duration": time.Since(start).String(),
	})
	return nil
}

func (s *GocronScheduler) ListJobs() map[string]JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make(map[string]JobInfo, len(s.jobs))
	for id, entry := range s.jobs {
		info := entry.info
		if info.LastRun != nil {
			lastRun := *info.LastRun
			info.LastRun = &lastRun
		}
		nextRun := entry.job.NextRun()
		info.NextRun = &nextRun
		jobs[id] = info
	}
	return jobs
}

// ValidateCronExpression checks an expression without scheduling anything
func ValidateCronExpression(cronExpr string) error {
	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Cron(cronExpr).Do(func() {}); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}
