package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/drawdown"
)

// drawdownsCmd represents the drawdowns command
var drawdownsCmd = &cobra.Command{
	Use:   "drawdowns [ticker]",
	Short: "낙폭 에피소드 조회",
	Long: `고점 → 저점 → 회복 낙폭 에피소드를 정렬해 출력합니다.

Sort:
  depth      가장 깊은 낙폭 순 (기본)
  recovery   회복이 가장 오래 걸린 순 (회복된 에피소드만)
  recent     저점이 가장 최근인 순
  recovered  회복일이 가장 최근인 순

Example:
  go run ./cmd/riskscope drawdowns AAPL
  go run ./cmd/riskscope drawdowns MSFT --sort recovery --limit 5
  go run ./cmd/riskscope drawdowns 005930 --limit 0   # 전체`,
	Args: cobra.ExactArgs(1),
	RunE: runDrawdowns,
}

var (
	drawdownFlags  analysisFlags
	drawdownSort   string
	drawdownLimit  int
	drawdownOutput string
)

func init() {
	rootCmd.AddCommand(drawdownsCmd)

	drawdownFlags.bind(drawdownsCmd)
	drawdownsCmd.Flags().StringVar(&drawdownSort, "sort", "depth", "depth|recovery|recent|recovered")
	drawdownsCmd.Flags().IntVar(&drawdownLimit, "limit", 10, "number of episodes (0 = all)")
	drawdownsCmd.Flags().StringVarP(&drawdownOutput, "output", "o", "text", "output format: text|json")
}

// episodeQuery resolves a --sort value
func episodeQuery(sortBy string) (func([]contracts.DrawdownEpisode, int) []contracts.DrawdownEpisode, error) {
	switch sortBy {
	case "depth":
		return drawdown.TopByDepth, nil
	case "recovery":
		return drawdown.TopByRecoveryTime, nil
	case "recent":
		return drawdown.RecentByTrough, nil
	case "recovered":
		return drawdown.RecentRecoveries, nil
	default:
		return nil, fmt.Errorf("unknown sort %q (allowed: depth, recovery, recent, recovered)", sortBy)
	}
}

func runDrawdowns(cmd *cobra.Command, args []string) error {
	query, err := episodeQuery(drawdownSort)
	if err != nil {
		return err
	}
	if drawdownLimit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}
	if err := checkOutput(drawdownOutput, "text", "json"); err != nil {
		return err
	}

	a, report, err := runAnalysis(cmd, args, &drawdownFlags)
	if err != nil {
		return err
	}
	defer a.close()

	var all []contracts.DrawdownEpisode
	if report.Drawdowns != nil {
		all = report.Drawdowns.Episodes
	}
	episodes := query(all, drawdownLimit)

	w := cmd.OutOrStdout()
	if drawdownOutput == "json" {
		return printJSON(w, map[string]interface{}{
			"ticker":   report.Ticker,
			"sort":     drawdownSort,
			"total":    len(all),
			"episodes": episodes,
		})
	}

	printReportHeader(w, "Drawdown Episodes ("+drawdownSort+")", report)
	fmt.Fprintln(w)
	if len(episodes) == 0 {
		fmt.Fprintln(w, "ℹ️  No drawdown episodes in this period")
		return nil
	}
	printEpisodeTable(w, episodes)
	fmt.Fprintf(w, "\n%d of %d episodes\n", len(episodes), len(all))
	return nil
}
