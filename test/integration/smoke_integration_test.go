//go:build integration
// +build integration

package integration_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/GoSim-25-26J-441/vaccination-sim/internal/batch"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/config"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
)

func loadRepoCatalog(t *testing.T) *config.Catalog {
	t.Helper()
	path := filepath.Join("..", "..", "config", "scenarios.yaml")
	cat, err := config.LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog(%s) failed: %v", path, err)
	}
	return cat
}

// checkLog asserts the properties every event log must have
func checkLog(t *testing.T, name string, records []models.EventRecord) {
	t.Helper()
	seen := make(map[string]bool, len(records))
	for i, r := range records {
		if i > 0 && r.Time < records[i-1].Time {
			t.Fatalf("%s: record %d out of time order (%g < %g)", name, i, r.Time, records[i-1].Time)
		}
		if r.WaitMinutes < 0 {
			t.Fatalf("%s: negative wait at record %d", name, i)
		}
		switch r.Outcome {
		case models.OutcomeVaccinated:
			if r.SojournMinutes < r.WaitMinutes {
				t.Fatalf("%s: sojourn %g below wait %g", name, r.SojournMinutes, r.WaitMinutes)
			}
		case models.OutcomeRescheduled:
			if r.WaitMinutes != 0 || r.SojournMinutes != 0 {
				t.Fatalf("%s: rescheduled patient with wait or sojourn", name)
			}
		default:
			t.Fatalf("%s: unknown outcome %q", name, r.Outcome)
		}
		if seen[r.PatientID] {
			t.Fatalf("%s: patient %s logged twice", name, r.PatientID)
		}
		seen[r.PatientID] = true
	}
}

func TestIntegration_CatalogLoadSmoke(t *testing.T) {
	cat := loadRepoCatalog(t)
	for _, name := range []string{"base", "pilot", "two_digit_days"} {
		if _, err := cat.Lookup(name); err != nil {
			t.Fatalf("expected %s in catalog: %v", name, err)
		}
	}
}

func TestIntegration_BatchRunSmoke(t *testing.T) {
	cat := loadRepoCatalog(t)
	runner := batch.NewRunner(cat, 2)

	outcomes := runner.Run(context.Background(), []batch.Job{
		{Name: "pilot", Days: 5},
		{Name: "two_digit_days", Days: 5},
		{Name: "does_not_exist"},
	})
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if outcomes[2].Err == nil {
		t.Fatal("expected unknown scenario to fail")
	}

	for _, o := range outcomes[:2] {
		if o.Err != nil {
			t.Fatalf("%s failed: %v", o.Name, o.Err)
		}
		checkLog(t, o.Name, o.Result.Records)
		if o.Metrics == nil || o.Metrics.General.Vaccinated == 0 {
			t.Fatalf("%s: expected vaccinations", o.Name)
		}
		if got := o.Metrics.General.Vaccinated + o.Metrics.General.Rescheduled; got != len(o.Result.Records) {
			t.Fatalf("%s: outcome counts %d do not match %d records", o.Name, got, len(o.Result.Records))
		}
	}

	ranked := batch.Rank(outcomes, mustObjective(t, "mean_wait"))
	if len(ranked) != 2 || ranked[0].Score > ranked[1].Score {
		t.Fatalf("unexpected ranking %+v", ranked)
	}
}

func mustObjective(t *testing.T, name string) batch.Objective {
	t.Helper()
	obj, err := batch.NewObjective(name)
	if err != nil {
		t.Fatalf("NewObjective(%s): %v", name, err)
	}
	return obj
}
