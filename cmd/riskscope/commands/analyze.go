package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/riskscope/internal/analysis"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker]",
	Short: "종목 전체 분석",
	Long: `종목 하나의 전체 분석을 실행합니다.

카테고리:
- growth: 총수익률, CAGR
- risk: 연율화 변동성, 하방 변동성, 최대 낙폭
- risk_adjusted: Sharpe, Sortino, Calmar
- tail_risk: 왜도, 초과 첨도, VaR, CVaR
- market_sensitivity: beta, alpha, R² (벤치마크 대비)
- stability: 최장 낙폭 기간, 회복 기간, rolling Sharpe
- investment_simulation: buy-and-hold 평가액
- drawdown_events: 낙폭 에피소드 하이라이트

한 카테고리 실패는 해당 카테고리만 건너뜁니다.

Output:
  text     사람이 읽는 리포트 (기본)
  json     전체 리포트 JSON
  context  STOCK ANALYSIS DATA 텍스트 블록

Example:
  go run ./cmd/riskscope analyze AAPL
  go run ./cmd/riskscope analyze 005930 --benchmark ^KS11 --lookback 3y
  go run ./cmd/riskscope analyze NVDA --start 2020-01-01 --end 2025-01-01 --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeFlags  analysisFlags
	analyzeOutput string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeFlags.bind(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "text", "output format: text|json|context")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := checkOutput(analyzeOutput, "text", "json", "context"); err != nil {
		return err
	}

	a, report, err := runAnalysis(cmd, args, &analyzeFlags)
	if err != nil {
		return err
	}
	defer a.close()

	w := cmd.OutOrStdout()
	switch analyzeOutput {
	case "json":
		return printJSON(w, report)
	case "context":
		_, err := fmt.Fprint(w, analysis.ContextText(report))
		return err
	default:
		printReport(w, report)
		return nil
	}
}

// checkOutput validates an --output value
func checkOutput(value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("unknown output format %q (allowed: %v)", value, allowed)
}
