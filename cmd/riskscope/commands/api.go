package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/riskscope/internal/api"
	"github.com/wonny/riskscope/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                                  - Health check
  GET  /metrics                                 - Prometheus metrics (METRICS_ENABLED)
  GET  /api/analysis/{ticker}                   - 전체 분석 (format=text 지원)
  GET  /api/analysis/{ticker}/drawdowns         - 낙폭 에피소드 (sort, limit)
  GET  /api/analysis/{ticker}/simulation        - 투자 시뮬레이션 (curve=false)

Query:
  start, end, lookback, benchmark, capital, risk_free_rate,
  trading_days, window, confidence, refresh

Example:
  go run ./cmd/riskscope api
  go run ./cmd/riskscope api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== RiskScope API Server ===")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Wire analysis stack
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	// 2. Create handler + router
	apiLog := a.log.Component("api")
	analysisHandler := handlers.NewAnalysisHandler(a.runner, apiLog)
	router := api.NewRouter(analysisHandler, a.metrics, a.healthChecks(), apiLog)

	// 3. Create server
	server := api.New(a.cfg, apiLog, router)

	fmt.Printf("\n✅ Server listening on %s\n", server.Addr())
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	if a.metrics != nil {
		fmt.Println("  GET  /metrics")
	}
	fmt.Println("  GET  /api/analysis/{ticker}")
	fmt.Println("  GET  /api/analysis/{ticker}/drawdowns")
	fmt.Println("  GET  /api/analysis/{ticker}/simulation")
	fmt.Println("\nPress Ctrl+C to stop")

	// 4. Serve until signal, then graceful shutdown
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("api server: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
