package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/vaccination-sim/internal/report"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
)

func newCompareCommand() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Print a comparison table from previously written metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			results, err := collectMetrics(outDir)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report.ComparisonTable(results))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "results", "Directory holding <scenario>/metrics.json")
	return cmd
}

// collectMetrics reads dir/*/metrics.json in directory order
func collectMetrics(dir string) ([]*models.CampaignMetrics, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var results []*models.CampaignMetrics
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m, err := report.ReadMetricsJSON(filepath.Join(dir, e.Name(), report.MetricsFile))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no %s found under %s", report.MetricsFile, dir)
	}
	return results, nil
}
