package metrics

import "time"

// Daemon metric names
const (
	MetricRunWallMs      = "run_wall_ms"
	MetricRunEvents      = "run_events_processed"
	MetricRunVaccinated  = "run_vaccinated"
	MetricRunRescheduled = "run_rescheduled"
	MetricRunSimDays     = "run_sim_days"
)

// RunObservation is what the daemon records about one finished run
type RunObservation struct {
	Scenario    string
	Status      string
	Wall        time.Duration
	Events      uint64
	Vaccinated  int
	Rescheduled int
	SimDays     float64
}

// RecordRun records one finished run, labelled by scenario and status
func RecordRun(c *Collector, obs RunObservation) {
	labels := RunLabels(obs.Scenario, obs.Status)
	now := time.Now()
	c.Record(MetricRunWallMs, float64(obs.Wall)/float64(time.Millisecond), now, labels)
	c.Record(MetricRunEvents, float64(obs.Events), now, labels)
	c.Record(MetricRunVaccinated, float64(obs.Vaccinated), now, labels)
	c.Record(MetricRunRescheduled, float64(obs.Rescheduled), now, labels)
	c.Record(MetricRunSimDays, obs.SimDays, now, labels)
}

// RunLabels creates labels for a run observation
func RunLabels(scenario, status string) map[string]string {
	return map[string]string{
		"scenario": scenario,
		"status":   status,
	}
}
