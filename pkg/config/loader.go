package config

import (
	"fmt"
	"os"
)

// LoadScenario loads and parses a scenario file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}
	scenario, err := ParseScenarioYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}
	return scenario, nil
}

// LoadCatalog reads a catalog file and merges it over the built-in scenarios
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	file, err := ParseCatalogYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	cat := Builtin()
	cat.Merge(file)
	return cat, nil
}

// ValidateScenario checks ranges. Degenerate values such as zero stations or
// zero attendance are accepted: they produce a run, just an uninteresting one.
func ValidateScenario(s *Scenario) error {
	if s.Stations < 0 {
		return fmt.Errorf("stations cannot be negative, got %d", s.Stations)
	}
	if s.OperatingHoursPerDay < 0 || s.OperatingHoursPerDay > 24 {
		return fmt.Errorf("operating_hours_per_day must be within [0, 24], got %g", s.OperatingHoursPerDay)
	}
	if s.ServiceTimeMeanMinutes < 0 {
		return fmt.Errorf("service_time_mean_minutes cannot be negative, got %g", s.ServiceTimeMeanMinutes)
	}
	if s.BalkProbability < 0 || s.BalkProbability > 1 {
		return fmt.Errorf("balk_probability must be within [0, 1], got %g", s.BalkProbability)
	}
	if s.AttendanceRate < 0 || s.AttendanceRate > 1 {
		return fmt.Errorf("attendance_rate must be within [0, 1], got %g", s.AttendanceRate)
	}
	if s.TargetPopulation < 0 {
		return fmt.Errorf("target_population cannot be negative, got %d", s.TargetPopulation)
	}
	if s.CohortBuckets <= 0 {
		return fmt.Errorf("cohort_buckets must be positive, got %d", s.CohortBuckets)
	}
	if s.OperatingWeekDays <= 0 {
		return fmt.Errorf("operating_week_days must be positive, got %d", s.OperatingWeekDays)
	}
	for day, cohorts := range s.CohortDays {
		if day < 0 || day >= s.OperatingWeekDays {
			return fmt.Errorf("cohort_days: weekday %d outside [0, %d)", day, s.OperatingWeekDays)
		}
		for _, c := range cohorts {
			if c < 0 || c >= s.CohortBuckets {
				return fmt.Errorf("cohort_days: weekday %d: cohort %d outside [0, %d)", day, c, s.CohortBuckets)
			}
		}
	}
	if s.ExpectedOverride != nil && *s.ExpectedOverride < 0 {
		return fmt.Errorf("expected_override cannot be negative, got %d", *s.ExpectedOverride)
	}
	switch s.ArrivalProcess {
	case ArrivalPoisson, ArrivalUniform:
	default:
		return fmt.Errorf("arrival_process must be poisson or uniform, got %q", s.ArrivalProcess)
	}
	if s.Days < 0 {
		return fmt.Errorf("days cannot be negative, got %d", s.Days)
	}
	return nil
}

func validateCosts(c *Costs) error {
	values := map[string]float64{
		"fixed_per_station_per_day":  c.FixedPerStationPerDay,
		"per_dose":                   c.PerDose,
		"per_reschedule":             c.PerReschedule,
		"one_time_per_extra_station": c.OneTimePerExtraStation,
		"per_wait_minute":            c.PerWaitMinute,
	}
	for name, v := range values {
		if v < 0 {
			return fmt.Errorf("costs.%s cannot be negative, got %g", name, v)
		}
	}
	return nil
}
