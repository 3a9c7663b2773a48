package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/riskscope/pkg/logger"
)

// Options retry behaviour for failed runs
type Options struct {
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultOptions 3회 재시도, 1분 간격
func DefaultOptions() Options {
	return Options{MaxRetries: 3, RetryDelay: time.Minute}
}

// Scheduler manages scheduled jobs
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
type Scheduler struct {
	cron    *cron.Cron
	logger  *logger.Logger
	jobs    map[string]Job
	entries map[string]cron.EntryID
	history map[string]*JobHistory
	running map[string]bool
	mu      sync.RWMutex

	// 작업 실행 컨텍스트: Stop 시 취소되어 재시도 대기도 중단
	ctx    context.Context
	cancel context.CancelFunc

	opts Options
}

// New creates a new scheduler with default retry options
func New(log *logger.Logger) *Scheduler {
	return NewWithOptions(log, DefaultOptions())
}

// NewWithOptions creates a scheduler with explicit retry options
func NewWithOptions(log *logger.Logger, opts Options) *Scheduler {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		logger:  log,
		jobs:    make(map[string]Job),
		entries: make(map[string]cron.EntryID),
		history: make(map[string]*JobHistory),
		running: make(map[string]bool),
		ctx:     ctx,
		cancel:  cancel,
		opts:    opts,
	}
}

// AddJob adds a job to the scheduler
func (s *Scheduler) AddJob(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobName := job.Name()

	if _, exists := s.jobs[jobName]; exists {
		return fmt.Errorf("job %s already exists", jobName)
	}

	id, err := s.cron.AddFunc(job.Schedule(), func() {
		s.runJob(s.ctx, job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", jobName, err)
	}

	s.jobs[jobName] = job
	s.entries[jobName] = id
	s.history[jobName] = &JobHistory{}

	s.logger.WithFields(map[string]interface{}{
		"job":      jobName,
		"schedule": job.Schedule(),
	}).Info("Job added to scheduler")

	return nil
}

// RemoveJob unschedules a job; its history is dropped
func (s *Scheduler) RemoveJob(jobName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[jobName]; !exists {
		return fmt.Errorf("job %s not found", jobName)
	}

	s.cron.Remove(s.entries[jobName])
	delete(s.jobs, jobName)
	delete(s.entries, jobName)
	delete(s.history, jobName)
	s.logger.WithField("job", jobName).Info("Job removed from scheduler")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// NextRun returns the next scheduled time of a job
func (s *Scheduler) NextRun(jobName string) (time.Time, bool) {
	s.mu.RLock()
	id, exists := s.entries[jobName]
	s.mu.RUnlock()
	if !exists {
		return time.Time{}, false
	}
	next := s.cron.Entry(id).Next
	return next, !next.IsZero()
}

// RunJob runs a specific job immediately in the background
func (s *Scheduler) RunJob(jobName string) error {
	job, err := s.lookup(jobName)
	if err != nil {
		return err
	}

	go s.runJob(s.ctx, job)
	return nil
}

// RunNow runs a job synchronously and returns its result
func (s *Scheduler) RunNow(ctx context.Context, jobName string) (JobResult, error) {
	job, err := s.lookup(jobName)
	if err != nil {
		return JobResult{}, err
	}
	return s.runJob(ctx, job), nil
}

func (s *Scheduler) lookup(jobName string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[jobName]
	if !exists {
		return nil, fmt.Errorf("job %s not found", jobName)
	}
	return job, nil
}

// runJob executes a job with retry logic
// 같은 작업이 이미 실행 중이면 건너뜀 (Skipped 결과 기록)
func (s *Scheduler) runJob(ctx context.Context, job Job) JobResult {
	jobName := job.Name()
	startTime := time.Now()

	s.mu.Lock()
	if s.running[jobName] {
		s.mu.Unlock()
		s.logger.WithField("job", jobName).Warn("Job still running, skipping this trigger")
		return JobResult{JobName: jobName, StartTime: startTime, EndTime: startTime, Skipped: true}
	}
	s.running[jobName] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.running, jobName)
		s.mu.Unlock()
	}()

	s.logger.WithField("job", jobName).Info("Job started")

	var lastErr error
	var success bool
	attempts := 0

	for attempt := 0; attempt <= s.opts.MaxRetries; attempt++ {
		attempts++
		err := job.Run(ctx)
		if err == nil {
			success = true
			break
		}

		lastErr = err
		s.logger.WithFields(map[string]interface{}{
			"job":     jobName,
			"attempt": attempt + 1,
			"error":   err.Error(),
		}).Warn("Job execution failed")

		if attempt == s.opts.MaxRetries {
			break
		}
		if !sleepCtx(ctx, s.opts.RetryDelay) {
			lastErr = fmt.Errorf("retry aborted: %w", ctx.Err())
			break
		}
	}

	endTime := time.Now()
	duration := endTime.Sub(startTime)

	result := JobResult{
		JobName:   jobName,
		StartTime: startTime,
		EndTime:   endTime,
		Duration:  duration,
		Attempts:  attempts,
		Success:   success,
	}
	if !success && lastErr != nil {
		result.Error = lastErr.Error()
	}

	s.mu.Lock()
	if history, exists := s.history[jobName]; exists {
		history.AddResult(result)
	}
	s.mu.Unlock()

	if success {
		s.logger.WithFields(map[string]interface{}{
			"job":      jobName,
			"attempts": attempts,
		}).WithDuration("duration", duration).Info("Job completed successfully")
	} else {
		s.logger.WithFields(map[string]interface{}{
			"job":      jobName,
			"attempts": attempts,
			"error":    result.Error,
		}).WithDuration("duration", duration).Error("Job failed after all retries")
	}

	return result
}

// sleepCtx waits d or until ctx is done; false means cancelled
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// GetJobHistory returns a copy of a job's history
func (s *Scheduler) GetJobHistory(jobName string) (JobHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, exists := s.history[jobName]
	if !exists {
		return JobHistory{}, fmt.Errorf("job %s not found", jobName)
	}

	return JobHistory{Results: append([]JobResult(nil), history.Results...)}, nil
}

// GetAllJobs returns all registered job names, sorted
func (s *Scheduler) GetAllJobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]string, 0, len(s.jobs))
	for jobName := range s.jobs {
		jobs = append(jobs, jobName)
	}
	sort.Strings(jobs)

	return jobs
}

// GetJobStats returns statistics for all jobs
func (s *Scheduler) GetJobStats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]JobStats, len(s.history))
	for jobName, history := range s.history {
		stats[jobName] = history.Stats(jobName, s.jobs[jobName].Schedule())
	}

	return stats
}
