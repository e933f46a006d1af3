package config

// Scenario is one fully enumerated campaign configuration.
// Zero values for cohort_buckets, operating_week_days, cohort_days, days and
// seed are replaced by ApplyDefaults.
type Scenario struct {
	Name                   string        `yaml:"name" json:"name"`
	Stations               int           `yaml:"stations" json:"stations"`
	OperatingHoursPerDay   float64       `yaml:"operating_hours_per_day" json:"operating_hours_per_day"`
	ServiceTimeMeanMinutes float64       `yaml:"service_time_mean_minutes" json:"service_time_mean_minutes"`
	BalkProbability        float64       `yaml:"balk_probability" json:"balk_probability"`
	AttendanceRate         float64       `yaml:"attendance_rate" json:"attendance_rate"`
	TargetPopulation       int           `yaml:"target_population" json:"target_population"`
	CohortBuckets          int           `yaml:"cohort_buckets,omitempty" json:"cohort_buckets,omitempty"`
	OperatingWeekDays      int           `yaml:"operating_week_days,omitempty" json:"operating_week_days,omitempty"`
	CohortDays             map[int][]int `yaml:"cohort_days,omitempty" json:"cohort_days,omitempty"`
	EarlyStop              bool          `yaml:"early_stop" json:"early_stop"`
	Seed                   int64         `yaml:"seed,omitempty" json:"seed,omitempty"`
	ExpectedOverride       *int          `yaml:"expected_override,omitempty" json:"expected_override,omitempty"` // fixed attendees per operating day
	ArrivalProcess         string        `yaml:"arrival_process,omitempty" json:"arrival_process,omitempty"`     // poisson or uniform
	Days                   int           `yaml:"days,omitempty" json:"days,omitempty"`
}

const (
	// ArrivalPoisson draws exponential gaps at the day's mean rate
	ArrivalPoisson = "poisson"
	// ArrivalUniform draws the day's arrival instants uniformly over the operating day
	ArrivalUniform = "uniform"
)

// Costs is the campaign cost table, in currency units
type Costs struct {
	FixedPerStationPerDay  float64 `yaml:"fixed_per_station_per_day" json:"fixed_per_station_per_day"`
	PerDose                float64 `yaml:"per_dose" json:"per_dose"`
	PerReschedule          float64 `yaml:"per_reschedule" json:"per_reschedule"`
	OneTimePerExtraStation float64 `yaml:"one_time_per_extra_station" json:"one_time_per_extra_station"`
	PerWaitMinute          float64 `yaml:"per_wait_minute" json:"per_wait_minute"`
}

// CatalogFile is the on-disk shape of a user scenario catalog
type CatalogFile struct {
	Costs     Costs      `yaml:"costs"`
	Scenarios []Scenario `yaml:"scenarios"`
}

// MinutesPerDay returns the operating minutes of one simulated day
func (s Scenario) MinutesPerDay() float64 {
	return s.OperatingHoursPerDay * 60
}

// Clone returns a deep copy so callers can tweak a catalog entry freely
func (s Scenario) Clone() Scenario {
	out := s
	if s.CohortDays != nil {
		out.CohortDays = make(map[int][]int, len(s.CohortDays))
		for day, cohorts := range s.CohortDays {
			out.CohortDays[day] = append([]int(nil), cohorts...)
		}
	}
	if s.ExpectedOverride != nil {
		v := *s.ExpectedOverride
		out.ExpectedOverride = &v
	}
	return out
}
