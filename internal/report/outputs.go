package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/GoSim-25-26J-441/vaccination-sim/internal/campaign"
	"github.com/GoSim-25-26J-441/vaccination-sim/internal/metrics"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
)

// Output file names inside a scenario directory
const (
	EventsFile  = "events.csv"
	MetricsFile = "metrics.json"
	DailyFile   = "daily.csv"
)

// WriteScenarioOutputs writes events, metrics and the daily series of one
// run to dir/name. m may be nil when the log was empty; metrics.json is then
// omitted.
func WriteScenarioOutputs(dir, name string, res *campaign.Result, m *models.CampaignMetrics, minutesPerDay float64) (string, error) {
	out := filepath.Join(dir, name)
	if err := os.MkdirAll(out, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	if err := writeFile(filepath.Join(out, EventsFile), func(w io.Writer) error {
		return WriteEventsCSV(w, res.Records)
	}); err != nil {
		return out, err
	}

	if m != nil {
		if err := writeFile(filepath.Join(out, MetricsFile), func(w io.Writer) error {
			return WriteMetricsJSON(w, m)
		}); err != nil {
			return out, err
		}
	}

	series := metrics.DailySeries(res.Records, minutesPerDay)
	if err := writeFile(filepath.Join(out, DailyFile), func(w io.Writer) error {
		return WriteDailyCSV(w, series)
	}); err != nil {
		return out, err
	}
	return out, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
