// Package report renders dashboard results and delivers them to Slack.
package report

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/dashboard"
)

var printer = message.NewPrinter(language.English)

// Headline is the one-line recovery summary.
func Headline(r *dashboard.Report) string {
	return printer.Sprintf("Recovery Rate: %.1f%% (%d of %d incidents recovered)",
		r.Standard.Rate*100, r.Standard.Recovered, r.Standard.Total)
}

// Format renders a report as plain text.
func Format(r *dashboard.Report) string {
	var b strings.Builder
	b.WriteString(printer.Sprintf("Filters:         %s\n", r.Filters.String()))
	b.WriteString(printer.Sprintf("Total Incidents: %d\n", r.Standard.Total))
	b.WriteString(printer.Sprintf("Recovered:       %d\n", r.Standard.Recovered))
	b.WriteString(printer.Sprintf("Recovery Rate:   %.1f%%\n", r.Standard.Rate*100))

	if f := r.Focus; f != nil {
		b.WriteString("\n")
		b.WriteString(printer.Sprintf("Focus: %s\n", f.Label))
		b.WriteString(printer.Sprintf("  Share of period:      %.2f%% (%d of %d incidents)\n", f.GroupPct, f.Total, f.PeriodTotal))
		b.WriteString(printer.Sprintf("  Group recovery rate:  %.1f%%\n", f.Rate*100))
		b.WriteString(printer.Sprintf("  Period recovery rate: %.1f%%\n", f.OverallRate*100))
		b.WriteString(printer.Sprintf("  Difference:           %+.1f pts\n", f.Delta*100))
	}
	return b.String()
}
