package scheduler

import (
	"context"
	"time"
)

// maxHistory results kept per job
const maxHistory = 100

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Schedule returns the cron expression, seconds field first
	// Examples: "0 30 7 * * 1-5" (평일 07:30), "@daily"
	Schedule() string
}

// JobResult represents the result of a job execution
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Skipped   bool          `json:"skipped,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory stores job execution history
type JobHistory struct {
	Results []JobResult
}

// AddResult adds a job result to history
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)

	if len(h.Results) > maxHistory {
		h.Results = h.Results[len(h.Results)-maxHistory:]
	}
}

// GetLatestResults returns the latest N results, oldest first
func (h *JobHistory) GetLatestResults(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}

	if n <= 0 {
		return []JobResult{}
	}

	return h.Results[len(h.Results)-n:]
}

// Stats summarizes the retained history of one job
// LastSuccess/LastFailure는 가장 최근 결과가 아니라 각 상태의 마지막 실행
func (h *JobHistory) Stats(name, schedule string) JobStats {
	st := JobStats{
		JobName:   name,
		Schedule:  schedule,
		TotalRuns: len(h.Results),
	}

	var total time.Duration
	for i := range h.Results {
		r := &h.Results[i]
		total += r.Duration
		st.LastRun = &r.StartTime
		if r.Success {
			st.SuccessCount++
			st.LastSuccess = &r.StartTime
		} else {
			st.FailureCount++
			st.LastFailure = &r.StartTime
			st.LastError = r.Error
		}
	}

	if st.TotalRuns > 0 {
		st.SuccessRate = float64(st.SuccessCount) / float64(st.TotalRuns)
		st.AvgDuration = total / time.Duration(st.TotalRuns)
	}
	return st
}

// JobStats represents statistics for a job
type JobStats struct {
	JobName      string        `json:"job_name"`
	Schedule     string        `json:"schedule"`
	TotalRuns    int           `json:"total_runs"`
	SuccessCount int           `json:"success_count"`
	FailureCount int           `json:"failure_count"`
	SuccessRate  float64       `json:"success_rate"`
	AvgDuration  time.Duration `json:"avg_duration"`
	LastRun      *time.Time    `json:"last_run,omitempty"`
	LastSuccess  *time.Time    `json:"last_success,omitempty"`
	LastFailure  *time.Time    `json:"last_failure,omitempty"`
	LastError    string        `json:"last_error,omitempty"`
}
