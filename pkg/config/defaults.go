package config

const (
	DefaultCohortBuckets     = 10
	DefaultOperatingWeekDays = 5
	DefaultDays              = 365
	DefaultSeed              = 42

	// BaseStations is the station count covered by the fixed setup; stations
	// above it incur the one-time extra-station cost.
	BaseStations = 5
)

// DefaultCohortDays assigns national-id last digits to the weekdays of a
// five-day operating week.
func DefaultCohortDays() map[int][]int {
	return map[int][]int{
		0: {0, 1},
		1: {2, 3},
		2: {4, 5},
		3: {6, 7},
		4: {8, 9},
	}
}

// DefaultCosts returns the campaign cost table
func DefaultCosts() Costs {
	return Costs{
		FixedPerStationPerDay:  55000,
		PerDose:                2000,
		PerReschedule:          300,
		OneTimePerExtraStation: 150000,
		PerWaitMinute:          3,
	}
}

// ApplyDefaults fills the optional fields left at their zero value
func (s *Scenario) ApplyDefaults() {
	if s.CohortBuckets == 0 {
		s.CohortBuckets = DefaultCohortBuckets
	}
	if s.OperatingWeekDays == 0 {
		s.OperatingWeekDays = DefaultOperatingWeekDays
	}
	if s.CohortDays == nil {
		s.CohortDays = DefaultCohortDays()
	}
	if s.Days == 0 {
		s.Days = DefaultDays
	}
	if s.ArrivalProcess == "" {
		s.ArrivalProcess = ArrivalPoisson
	}
	if s.Seed == 0 {
		s.Seed = DefaultSeed
	}
}
