package analysis

import (
	"strings"
)

const contextRule = "=============================="

// ContextText renders a report as the plain-text research context block
// consumed by downstream summarisers. Drawdown events are not included.
func ContextText(r *Report) string {
	var b strings.Builder

	b.WriteString("\n" + contextRule + "\n")
	b.WriteString("STOCK ANALYSIS DATA\n")
	b.WriteString(contextRule + "\n\n")
	b.WriteString("Ticker: " + r.Ticker + "\n")
	b.WriteString("Period: " + r.StartDate + " to " + r.EndDate + "\n")

	for _, s := range Format(r) {
		writeBlock(&b, s.Title, s.Fields)
	}
	return b.String()
}

func writeBlock(b *strings.Builder, title string, fields []Field) {
	b.WriteString("\n--- " + title + " ---\n")
	for _, f := range fields {
		b.WriteString(f.Key + ": " + f.Value + "\n")
	}
}
