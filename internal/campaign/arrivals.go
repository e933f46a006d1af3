package campaign

import (
	"github.com/GoSim-25-26J-441/vaccination-sim/internal/workload"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/config"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/utils"
)

// launchDay is the master process: it starts one day generator, then sleeps
// one operating day before considering the next. It never waits for a day's
// generator or patients to finish.
func (s *simulation) launchDay(day int) {
	if day >= s.days || s.stop.Fired() {
		return
	}
	s.daysLaunched++
	s.startDay(day)
	s.eng.Schedule(s.sc.MinutesPerDay(), "next-day", func() { s.launchDay(day + 1) })
}

func (s *simulation) startDay(day int) {
	plan := workload.PlanDay(&s.sc, day)
	s.logger.Debug("Day launched",
		"day", day,
		"weekday", plan.Weekday,
		"cohorts", plan.Cohorts,
		"expected", plan.Expected,
		"sim_time", s.eng.Now())
	if plan.Expected == 0 {
		return
	}

	if s.sc.ArrivalProcess == config.ArrivalUniform {
		offsets := s.gen.UniformOffsets(plan.Expected, s.sc.MinutesPerDay())
		s.nextUniformArrival(&plan, offsets, s.eng.Now(), 0)
		return
	}
	s.nextPoissonArrival(&plan, 0)
}

// nextPoissonArrival sleeps one exponential gap, then spawns arrival i
func (s *simulation) nextPoissonArrival(plan *workload.DayPlan, i int) {
	if i >= plan.Expected {
		return
	}
	gap := s.gen.InterArrivalGap(plan.Rate)
	s.eng.Schedule(gap, "arrival", func() {
		if s.stop.Fired() {
			return
		}
		s.spawn(plan, i)
		s.nextPoissonArrival(plan, i+1)
	})
}

// nextUniformArrival spawns arrival i at its pre-drawn offset into the day
func (s *simulation) nextUniformArrival(plan *workload.DayPlan, offsets []float64, dayStart float64, i int) {
	if i >= len(offsets) {
		return
	}
	s.eng.ScheduleAt(dayStart+offsets[i], "arrival", func() {
		if s.stop.Fired() {
			return
		}
		s.spawn(plan, i)
		s.nextUniformArrival(plan, offsets, dayStart, i+1)
	})
}

func (s *simulation) spawn(plan *workload.DayPlan, i int) {
	cohort := s.gen.PickCohort(plan.Cohorts)
	s.spawned++
	s.arrive(&patient{
		id:      utils.PatientID(plan.Day, cohort, i),
		day:     plan.Day,
		cohort:  cohort,
		arrival: s.eng.Now(),
	})
}
