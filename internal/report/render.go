package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/bartekus/boltzsuite/internal/suite"
)

// Render writes the human-readable report. Colors are optional so golden
// tests and non-terminal sinks get plain text.
func (rep *Report) Render(w io.Writer, colored bool) {
	paint := painter(colored)

	fmt.Fprintln(w)
	fmt.Fprintln(w, paint(text.Bold, "BOLTZ-2 TEST SUITE RESULTS"))
	if rep.RunID != "" {
		fmt.Fprintf(w, "run %s\n", rep.RunID)
	}

	summary := newTable(w)
	summary.SetTitle("Summary")
	summary.AppendHeader(table.Row{"Metric", "Value"})
	summary.AppendRows([]table.Row{
		{"Total Cases", rep.Total},
		{"Successful", paint(text.FgGreen, fmt.Sprintf("%d", rep.Succeeded))},
		{"Failed", paint(text.FgRed, fmt.Sprintf("%d", rep.Failed))},
		{"Skipped", paint(text.FgYellow, fmt.Sprintf("%d", rep.Skipped))},
		{"Success Rate", fmt.Sprintf("%.1f%%", rep.SuccessRate)},
		{"Total Duration", fmt.Sprintf("%.1fs", rep.ElapsedSeconds)},
	})
	summary.Render()

	if len(rep.Rows) > 0 {
		details := newTable(w)
		details.SetTitle("Case Results")
		details.AppendHeader(table.Row{"Case", "Interface", "Endpoint", "Status", "Duration", "Confidence", "Structures", "Notes"})
		for _, row := range rep.Rows {
			details.AppendRow(table.Row{
				row.Name,
				row.Interface,
				row.Endpoint,
				statusCell(row.Status, paint),
				fmt.Sprintf("%.1fs", row.Seconds),
				floatCell(row.Confidence),
				intCell(row.Structures),
				row.Notes,
			})
		}
		details.Render()
	}

	if len(rep.Buckets) > 0 {
		perf := newTable(w)
		perf.SetTitle("Average Performance")
		perf.AppendHeader(table.Row{"Interface", "Endpoint", "Count", "Avg Duration", "Avg Confidence"})
		for _, b := range rep.Buckets {
			perf.AppendRow(table.Row{
				b.Interface,
				b.Endpoint,
				b.Count,
				fmt.Sprintf("%.1fs", b.AvgSeconds),
				floatCell(b.AvgConfidence),
			})
		}
		perf.Render()
	}

	if len(rep.Findings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, paint(text.Bold, "Findings"))
		for _, f := range rep.Findings {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", paint(text.Bold, "Overall:"), rep.Verdict)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func painter(colored bool) func(c text.Color, s string) string {
	if !colored {
		return func(_ text.Color, s string) string { return s }
	}
	return func(c text.Color, s string) string { return c.Sprint(s) }
}

func statusCell(st suite.Status, paint func(text.Color, string) string) string {
	switch st {
	case suite.StatusSuccess:
		return paint(text.FgGreen, "SUCCESS")
	case suite.StatusFailed:
		return paint(text.FgRed, "FAILED")
	case suite.StatusSkipped:
		return paint(text.FgYellow, "SKIPPED")
	default:
		return string(st)
	}
}

func floatCell(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.3f", *v)
}

func intCell(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
