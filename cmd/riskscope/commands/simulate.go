package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/riskscope/internal/analysis"
	"github.com/wonny/riskscope/internal/contracts"
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate [ticker]",
	Short: "buy-and-hold 투자 시뮬레이션",
	Long: `첫 거래일에 전액 매수 후 보유했을 때의 평가액을 계산합니다.

출력: 최종 평가액, 최저/최고 평가액과 날짜, 일간 최대 이익/손실.
--curve 지정 시 일별 평가액을 CSV(date,value)로 출력합니다.

Example:
  go run ./cmd/riskscope simulate AAPL --capital 10000
  go run ./cmd/riskscope simulate 005930 --lookback 10y --curve > curve.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

var (
	simulateFlags analysisFlags
	simulateCurve bool
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateFlags.bind(simulateCmd)
	simulateCmd.Flags().BoolVar(&simulateCurve, "curve", false, "print the daily value curve as CSV")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	a, report, err := runAnalysis(cmd, args, &simulateFlags)
	if err != nil {
		return err
	}
	defer a.close()

	if report.Simulation == nil {
		return fmt.Errorf("simulation skipped: %s", report.Skipped[analysis.CategorySimulation])
	}

	w := cmd.OutOrStdout()
	if simulateCurve {
		fmt.Fprintln(w, "date,value")
		for _, p := range report.Simulation.ValueCurve {
			fmt.Fprintf(w, "%s,%.2f\n", p.Date.Format(contracts.DateLayout), p.Value)
		}
		return nil
	}

	printReportHeader(w, "Investment Simulation", report)
	for _, s := range analysis.Format(report) {
		if s.Category == analysis.CategorySimulation {
			printSection(w, s)
		}
	}
	fmt.Fprintln(w)
	return nil
}
