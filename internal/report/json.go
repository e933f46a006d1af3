package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
)

// WriteMetricsJSON writes metrics as indented JSON
func WriteMetricsJSON(w io.Writer, m *models.CampaignMetrics) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	return nil
}

// ReadMetricsJSON loads a metrics.json file
func ReadMetricsJSON(path string) (*models.CampaignMetrics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m models.CampaignMetrics
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &m, nil
}
