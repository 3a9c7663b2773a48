package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/wonny/riskscope/internal/analysis"
	"github.com/wonny/riskscope/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleRule = "═══════════════════════════════════════════════════════════"
	singleRule = "───────────────────────────────────────────────────────────"
)

// printReportHeader prints the run banner
func printReportHeader(w io.Writer, title string, r *analysis.Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleRule)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, singleRule)
	fmt.Fprintf(w, "  Ticker    : %s (benchmark %s)\n", r.Ticker, r.Params.Benchmark)
	fmt.Fprintf(w, "  Period    : %s ~ %s\n", r.StartDate, r.EndDate)
	if r.Observations > 0 {
		fmt.Fprintf(w, "  Data      : %d closes, %s ~ %s\n", r.Observations, r.FirstDate, r.LastDate)
	}
	fmt.Fprintf(w, "  Run ID    : %s", r.RunID)
	if r.Cached {
		fmt.Fprint(w, " (cached)")
	}
	fmt.Fprintln(w)
	for _, d := range r.Degraded {
		fmt.Fprintf(w, "  ⚠️  Degraded: %s\n", d)
	}
	fmt.Fprintln(w, doubleRule)
}

// printSection prints one formatted category as aligned key/value lines
func printSection(w io.Writer, s analysis.Section) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "📊 %s\n", s.Title)

	width := 0
	for _, f := range s.Fields {
		if len(f.Key) > width {
			width = len(f.Key)
		}
	}
	for _, f := range s.Fields {
		fmt.Fprintf(w, "   %-*s : %s\n", width, f.Key, f.Value)
	}
}

// printReport prints every category plus drawdown highlights
func printReport(w io.Writer, r *analysis.Report) {
	printReportHeader(w, "Risk Analysis", r)
	for _, s := range analysis.Format(r) {
		printSection(w, s)
	}

	highlights := analysis.FormatDrawdowns(r)
	for _, name := range []string{"worst_drawdown", "most_recent_drawdown", "worst_recovery", "most_recent_recovery"} {
		fields, ok := highlights[name]
		if !ok {
			continue
		}
		s := analysis.Section{Title: "Drawdown: " + strings.ReplaceAll(name, "_", " ")}
		for _, key := range episodeKeys {
			s.Fields = append(s.Fields, analysis.Field{Key: key, Value: fields[key]})
		}
		printSection(w, s)
	}

	if len(r.Skipped) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "⚠️  %d categor%s skipped (see above)\n", len(r.Skipped), plural(len(r.Skipped), "y", "ies"))
	}
	fmt.Fprintln(w)
}

// episodeKeys FormatEpisode field order
var episodeKeys = []string{
	"peak_date", "trough_date", "recovery_date",
	"drawdown_percent", "drawdown_duration_days", "recovery_time_days",
}

// printEpisodeTable prints episodes as a fixed-width table
func printEpisodeTable(w io.Writer, episodes []contracts.DrawdownEpisode) {
	columns := []string{"#", "Peak", "Trough", "Recovery", "Depth", "Down(d)", "Recover(d)"}
	widths := []int{3, 10, 10, 17, 8, 7, 10}

	printRow(w, columns, widths)
	total := 0
	for _, width := range widths {
		total += width + 2
	}
	fmt.Fprintln(w, strings.Repeat("─", total-2))

	for i, e := range episodes {
		f := analysis.FormatEpisode(e).Map()
		printRow(w, []string{
			fmt.Sprintf("%d", i+1),
			f["peak_date"],
			f["trough_date"],
			f["recovery_date"],
			f["drawdown_percent"],
			f["drawdown_duration_days"],
			f["recovery_time_days"],
		}, widths)
	}
}

func printRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(w, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
