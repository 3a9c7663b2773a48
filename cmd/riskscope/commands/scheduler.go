package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/riskscope/internal/scheduler"
	"github.com/wonny/riskscope/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `프로파일 watchlist의 분석 스냅샷을 주기적으로 갱신합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업과 다음 실행 시각
  run     - 특정 작업 즉시 실행 (동기)

Example:
  go run ./cmd/riskscope scheduler start --profile profiles/default.yaml
  go run ./cmd/riskscope scheduler list
  go run ./cmd/riskscope scheduler run warm_cache`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- warm_cache: profile.schedule.refresh_cron (기본 평일 07:30)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// initScheduler wires the stack and registers every job
func initScheduler(ctx context.Context) (*app, *scheduler.Scheduler, *jobs.WarmCacheJob, error) {
	a, err := bootstrap(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	schedLog := a.log.Component("scheduler")
	sched := scheduler.New(schedLog)
	warm := jobs.NewWarmCacheJob(a.runner, a.profile, schedLog)
	if err := sched.AddJob(warm); err != nil {
		a.close()
		return nil, nil, nil, fmt.Errorf("register %s: %w", warm.Name(), err)
	}

	return a, sched, warm, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== RiskScope Scheduler ===")

	a, sched, _, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Printf("   Watchlist: %d tickers (profile %s)\n", len(a.profile.Watchlist), a.profile.Meta.ProfileID)
	fmt.Println("\nRegistered jobs:")
	printJobs(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, sched, _, err := initScheduler(cmd.Context())
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	// 다음 실행 시각은 cron이 시작된 뒤에만 계산됨
	sched.Start()
	defer sched.Stop()

	fmt.Println("Registered jobs:")
	printJobs(sched)
	return nil
}

func printJobs(sched *scheduler.Scheduler) {
	stats := sched.GetJobStats()
	for _, name := range sched.GetAllJobs() {
		line := fmt.Sprintf("  - %s (%s)", name, stats[name].Schedule)
		if next, ok := sched.NextRun(name); ok && !next.IsZero() {
			line += "  next: " + next.Format("2006-01-02 15:04:05")
		}
		fmt.Println(line)
	}
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, sched, warm, err := initScheduler(ctx)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.close()

	result, err := sched.RunNow(ctx, jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Printf("\n📊 %s\n", jobName)
	fmt.Printf("   Attempts: %d\n", result.Attempts)
	fmt.Printf("   Duration: %s\n", result.Duration.Round(time.Millisecond))

	if jobName == warm.Name() {
		summary := warm.LastSummary()
		fmt.Printf("   Succeeded: %d / %d\n", summary.Succeeded, summary.Total)
		for ticker, reason := range summary.Failed {
			fmt.Printf("   ❌ %s: %s\n", ticker, reason)
		}
	}

	if !result.Success {
		return fmt.Errorf("job %s failed: %s", jobName, result.Error)
	}
	fmt.Println("\n✅ Job completed")
	return nil
}
