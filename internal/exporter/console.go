package exporter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"offgascli/pkg/contracts/domain"
)

// SummaryTable renders one table per phase.
func SummaryTable(w io.Writer, s *domain.Summary) {
	for i, p := range s.Phases {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s  (EFT %s to %s %s)\n", p.Name,
			formatMetric(&p.Elapsed.Start), formatMetric(&p.Elapsed.End), p.Elapsed.Unit)

		table := tablewriter.NewWriter(w)
		table.SetAutoWrapText(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
		table.SetAutoFormatHeaders(false)
		table.SetBorder(true)
		table.SetHeader([]string{"Section", "Metric", "Value", "Unit"})
		table.SetColumnAlignment([]int{
			tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT,
		})

		appendMetrics := func(section string, ms ...domain.Metric) {
			for _, m := range ms {
				table.Append([]string{section, m.Name, formatMetric(m.Value), m.Unit})
			}
		}
		if p.Stabilization != nil {
			appendMetrics("Stabilization", *p.Stabilization)
		}
		appendMetrics("Totals", p.Totals...)
		appendMetrics(fmt.Sprintf("Max (EFT %s-%s)", formatMetric(&p.MaximumWindow.Start), formatMetric(&p.MaximumWindow.End)), p.Maximums...)
		appendMetrics("Averages", p.Averages...)
		table.Render()
	}
}

func formatMetric(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}
