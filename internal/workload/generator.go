package workload

import (
	"math"
	"sort"

	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/config"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/utils"
)

// DayPlan is the attendance computed for one simulated day
type DayPlan struct {
	Day      int
	Weekday  int
	Cohorts  []int
	Expected int
	Rate     float64 // arrivals per simulated minute
}

// CohortsForDay returns the cohorts called in on a day, in ascending order.
// The weekday is the day index modulo the operating week.
func CohortsForDay(sc *config.Scenario, day int) []int {
	week := sc.OperatingWeekDays
	if week <= 0 {
		week = config.DefaultOperatingWeekDays
	}
	cohorts := append([]int(nil), sc.CohortDays[day%week]...)
	sort.Ints(cohorts)
	return cohorts
}

// ExpectedAttendees is floor(cohorts x population/buckets x attendance),
// or the scenario's fixed override when one is set
func ExpectedAttendees(sc *config.Scenario, cohorts int) int {
	if cohorts == 0 {
		return 0
	}
	if sc.ExpectedOverride != nil {
		return *sc.ExpectedOverride
	}
	buckets := sc.CohortBuckets
	if buckets <= 0 {
		buckets = config.DefaultCohortBuckets
	}
	perBucket := float64(sc.TargetPopulation) / float64(buckets)
	return int(math.Floor(float64(cohorts) * perBucket * sc.AttendanceRate))
}

// ArrivalRate spreads expected attendees over an operating day. A zero-length
// day gives an infinite rate, so every arrival lands at the day's start.
func ArrivalRate(expected int, minutesPerDay float64) float64 {
	if expected <= 0 {
		return 0
	}
	if minutesPerDay <= 0 {
		return math.Inf(1)
	}
	return float64(expected) / minutesPerDay
}

// PlanDay computes cohorts, attendance and arrival rate for a day
func PlanDay(sc *config.Scenario, day int) DayPlan {
	week := sc.OperatingWeekDays
	if week <= 0 {
		week = config.DefaultOperatingWeekDays
	}
	cohorts := CohortsForDay(sc, day)
	expected := ExpectedAttendees(sc, len(cohorts))
	return DayPlan{
		Day:      day,
		Weekday:  day % week,
		Cohorts:  cohorts,
		Expected: expected,
		Rate:     ArrivalRate(expected, sc.MinutesPerDay()),
	}
}

// Generator draws the random quantities of a run from one explicit stream
type Generator struct {
	rng *utils.RandSource
}

// NewGenerator creates a new workload generator
func NewGenerator(rng *utils.RandSource) *Generator {
	return &Generator{rng: rng}
}

// InterArrivalGap draws an exponential gap in minutes. A zero rate never
// produces another arrival (+Inf); an infinite rate gives 0.
func (g *Generator) InterArrivalGap(rate float64) float64 {
	return g.rng.ExpFloat64(rate)
}

// ServiceDuration draws an exponential service time with the given mean.
// A non-positive mean gives 0.
func (g *Generator) ServiceDuration(mean float64) float64 {
	return g.rng.ExpMean(mean)
}

// PickCohort picks uniformly among the day's cohorts
func (g *Generator) PickCohort(cohorts []int) int {
	if len(cohorts) == 0 {
		return 0
	}
	return cohorts[g.rng.Intn(len(cohorts))]
}

// Balks decides whether a patient facing full stations reschedules
func (g *Generator) Balks(probability float64) bool {
	return g.rng.BernoulliBool(probability)
}

// UniformOffsets draws n arrival offsets uniformly over [0, minutes) and
// returns them sorted, the alternative to exponential gaps.
func (g *Generator) UniformOffsets(n int, minutes float64) []float64 {
	if n <= 0 {
		return nil
	}
	offsets := make([]float64, n)
	for i := range offsets {
		offsets[i] = g.rng.UniformFloat64(0, math.Max(minutes, 0))
	}
	sort.Float64s(offsets)
	return offsets
}
