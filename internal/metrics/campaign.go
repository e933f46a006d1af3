package metrics

import (
	"errors"
	"math"

	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/config"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/utils"
)

// ErrEmptyLog is returned when there is nothing to aggregate
var ErrEmptyLog = errors.New("event log is empty, no metrics can be computed")

// MilestonePercents are the coverage levels reported as milestones
var MilestonePercents = []int{25, 50, 75, 100}

// Compute aggregates an event log. days is the number of operating days the
// campaign was staffed, which drives fixed cost and utilization.
func Compute(records []models.EventRecord, sc config.Scenario, costs config.Costs, days int) (*models.CampaignMetrics, error) {
	if len(records) == 0 {
		return nil, ErrEmptyLog
	}

	var waits, sojourns []float64
	queueSum, queueMax := 0, 0
	rescheduled := 0
	for _, r := range records {
		queueSum += r.QueueLength
		if r.QueueLength > queueMax {
			queueMax = r.QueueLength
		}
		switch r.Outcome {
		case models.OutcomeVaccinated:
			waits = append(waits, r.WaitMinutes)
			sojourns = append(sojourns, r.SojournMinutes)
		case models.OutcomeRescheduled:
			rescheduled++
		}
	}
	vaccinated := len(waits)
	processed := vaccinated + rescheduled

	m := &models.CampaignMetrics{
		Scenario: sc.Name,
		Stations: sc.Stations,
		Days:     days,
	}

	m.General = models.GeneralMetrics{
		Processed:        processed,
		Vaccinated:       vaccinated,
		Rescheduled:      rescheduled,
		AbandonmentPct:   ratio(float64(rescheduled), float64(processed)) * 100,
		TargetPopulation: sc.TargetPopulation,
		CoveragePct:      ratio(float64(vaccinated), float64(sc.TargetPopulation)) * 100,
	}

	// vaccinated patients only; reschedules carry no wait
	m.Waits = models.WaitMetrics{
		Mean: utils.Mean(waits),
		Max:  utils.MaxOf(waits),
		Min:  utils.MinOf(waits),
		P50:  utils.P50(waits),
		P95:  utils.P95(waits),
	}
	// with nobody vaccinated only the max queue length is reported
	m.Queue = models.QueueMetrics{Max: queueMax}
	if vaccinated > 0 {
		m.Queue.Mean = float64(queueSum) / float64(len(records))
	}

	minutesPerDay := sc.MinutesPerDay()
	serviceMinutes := float64(vaccinated) * sc.ServiceTimeMeanMinutes
	available := float64(sc.Stations) * minutesPerDay * float64(days)
	m.Performance = models.PerformanceStats{
		MeanSojournMinutes: utils.Mean(sojourns),
		UtilizationPct:     ratio(serviceMinutes, available) * 100,
	}

	m.Milestones = Milestones(records, sc.TargetPopulation, minutesPerDay)
	m.Costs = computeCosts(costs, sc.Stations, days, vaccinated, rescheduled, utils.Sum(waits))
	if full, ok := m.Milestone(100); ok && full.Reached && full.Days > 0 {
		m.Costs.CostTimeEfficiency = m.Costs.Total / full.Days
	}

	return m, nil
}

func computeCosts(c config.Costs, stations, days, vaccinated, rescheduled int, totalWait float64) models.CostMetrics {
	fixed := c.FixedPerStationPerDay * float64(stations) * float64(days)
	doses := c.PerDose * float64(vaccinated)
	reschedules := c.PerReschedule * float64(rescheduled)
	total := fixed + doses + reschedules

	extra := 0.0
	if stations > config.BaseStations {
		extra = c.OneTimePerExtraStation * float64(stations-config.BaseStations)
	}

	return models.CostMetrics{
		Total:         total,
		Fixed:         fixed,
		Doses:         doses,
		Reschedules:   reschedules,
		Wait:          c.PerWaitMinute * totalWait,
		ExtraStations: extra,
		PerVaccinated: ratio(total, float64(vaccinated)),
	}
}

// Milestones finds the simulated day on which the k-th vaccination for each
// coverage level happened. records must be in time order.
func Milestones(records []models.EventRecord, target int, minutesPerDay float64) []models.Milestone {
	out := make([]models.Milestone, len(MilestonePercents))
	for i, pct := range MilestonePercents {
		out[i] = models.Milestone{Percent: pct}
	}
	if target <= 0 {
		return out
	}

	thresholds := make([]int, len(MilestonePercents))
	for i, pct := range MilestonePercents {
		thresholds[i] = int(math.Ceil(float64(target) * float64(pct) / 100))
	}

	next, done := 0, 0
	for _, r := range records {
		if r.Outcome != models.OutcomeVaccinated {
			continue
		}
		done++
		for next < len(thresholds) && done >= thresholds[next] {
			out[next].Reached = true
			out[next].Days = toDays(r.Time, minutesPerDay)
			next++
		}
		if next == len(thresholds) {
			break
		}
	}
	return out
}

// DailySeries buckets records by the operating day in which they happened.
// Days without records between the first and last are emitted as zero rows.
func DailySeries(records []models.EventRecord, minutesPerDay float64) []models.DayStats {
	if len(records) == 0 {
		return nil
	}

	dayOf := func(r models.EventRecord) int {
		if minutesPerDay <= 0 {
			return r.Day
		}
		return utils.DayOf(r.Time, minutesPerDay)
	}

	last := 0
	for _, r := range records {
		if d := dayOf(r); d > last {
			last = d
		}
	}

	series := make([]models.DayStats, last+1)
	waitSums := make([]float64, last+1)
	for i := range series {
		series[i].Day = i
	}
	for _, r := range records {
		row := &series[dayOf(r)]
		if r.QueueLength > row.MaxQueueLength {
			row.MaxQueueLength = r.QueueLength
		}
		switch r.Outcome {
		case models.OutcomeVaccinated:
			row.Vaccinated++
			waitSums[row.Day] += r.WaitMinutes
		case models.OutcomeRescheduled:
			row.Rescheduled++
		}
	}

	cumulative := 0
	for i := range series {
		cumulative += series[i].Vaccinated
		series[i].CumulativeVaccinated = cumulative
		series[i].MeanWaitMinutes = ratio(waitSums[i], float64(series[i].Vaccinated))
	}
	return series
}

func toDays(minute, minutesPerDay float64) float64 {
	if minutesPerDay <= 0 {
		return 0
	}
	return minute / minutesPerDay
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
