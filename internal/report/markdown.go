package report

import (
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
)

var comparisonHeader = []string{
	"Scenario",
	"Stations",
	"Mean wait (min)",
	"Abandonment (%)",
	"Days to 100%",
	"Total cost",
	"Cost per vaccinated",
}

// ComparisonTable renders one Markdown row per scenario, in input order.
// Nil entries are skipped.
func ComparisonTable(results []*models.CampaignMetrics) string {
	var b strings.Builder
	writeRow(&b, comparisonHeader)

	sep := make([]string, len(comparisonHeader))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(&b, sep)

	for _, m := range results {
		if m == nil {
			continue
		}
		full := "N/A"
		if ms, ok := m.Milestone(100); ok && ms.Reached {
			full = fmt.Sprintf("%.1f", ms.Days)
		}
		writeRow(&b, []string{
			m.Scenario,
			fmt.Sprintf("%d", m.Stations),
			fmt.Sprintf("%.2f", m.Waits.Mean),
			fmt.Sprintf("%.2f", m.General.AbandonmentPct),
			full,
			fmt.Sprintf("%.0f", m.Costs.Total),
			fmt.Sprintf("%.2f", m.Costs.PerVaccinated),
		})
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}
