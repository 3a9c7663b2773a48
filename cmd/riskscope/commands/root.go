package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	profilePath string
	logLevel    string
	noCache     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "riskscope",
	Short: "riskscope - 종목 성과/리스크 분석",
	Long: `riskscope Unified CLI

일별 종가 시계열로 성장, 리스크, 위험조정 수익, 꼬리 위험,
시장 민감도, 안정성 지표와 낙폭(drawdown) 에피소드,
buy-and-hold 투자 시뮬레이션을 계산합니다.

Usage:
  go run ./cmd/riskscope [command]

Examples:
  go run ./cmd/riskscope analyze AAPL --lookback 5y
  go run ./cmd/riskscope analyze 005930 --benchmark ^KS11 --start 2020-01-01
  go run ./cmd/riskscope drawdowns MSFT --sort recovery --limit 5
  go run ./cmd/riskscope simulate NVDA --capital 10000
  go run ./cmd/riskscope api
  go run ./cmd/riskscope scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "analysis profile YAML (default: $PROFILE_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "disable the Redis snapshot cache for this run")
}
