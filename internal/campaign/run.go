package campaign

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/GoSim-25-26J-441/vaccination-sim/internal/engine"
	"github.com/GoSim-25-26J-441/vaccination-sim/internal/resource"
	"github.com/GoSim-25-26J-441/vaccination-sim/internal/workload"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/config"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/logger"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/utils"
)

// StopReason tells why a campaign run ended
type StopReason string

const (
	StopHorizon   StopReason = "horizon"
	StopTarget    StopReason = "target"
	StopDrained   StopReason = "drained"
	StopCancelled StopReason = "cancelled"
)

// Options tunes a run beyond what the scenario carries
type Options struct {
	// Days is the horizon. Zero means the scenario's own days field.
	Days int
	// Drain lifts the time horizon: every launched day spawns its full
	// attendance and the run continues until the system empties or the
	// target fires.
	Drain bool
	// Logger defaults to logger.Default annotated with the scenario name
	Logger *slog.Logger
}

// Result is the outcome of one campaign run
type Result struct {
	Scenario     string               `json:"scenario"`
	Seed         int64                `json:"seed"`
	Days         int                  `json:"days"`
	Records      []models.EventRecord `json:"-"`
	FinalTime    float64              `json:"final_time_minutes"`
	StopReason   StopReason           `json:"stop_reason"`
	DaysLaunched int                  `json:"days_launched"`
	Spawned      int                  `json:"spawned"`
	InService    int                  `json:"in_service"`
	Waiting      int                  `json:"waiting"`
	PeakInUse    int                  `json:"peak_in_use"`
	BusyMinutes  float64              `json:"busy_station_minutes"`
	Events       uint64               `json:"events_processed"`
	Elapsed      time.Duration        `json:"elapsed"`
}

// InFlight is the number of spawned patients with no terminal record yet
func (r *Result) InFlight() int {
	return r.InService + r.Waiting
}

// simulation is the per-run state shared by the master process, the day
// generators and the patients. All of it is touched from the run loop only.
type simulation struct {
	sc     config.Scenario
	days   int
	eng    *engine.Engine
	pool   *resource.Pool
	stop   *StopCondition
	log    *EventLog
	gen    *workload.Generator
	logger *slog.Logger

	spawned      int
	daysLaunched int
}

// Run simulates a scenario over a horizon in days
func Run(ctx context.Context, sc config.Scenario, days int) (*Result, error) {
	return RunWithOptions(ctx, sc, Options{Days: days})
}

// RunWithOptions simulates a scenario. Degenerate scenarios (zero stations,
// zero attendance) run to an uninteresting result; the only error is a
// cancelled ctx, returned together with the partial result.
func RunWithOptions(ctx context.Context, sc config.Scenario, opts Options) (*Result, error) {
	sc = sc.Clone()
	sc.ApplyDefaults()

	days := opts.Days
	if days <= 0 {
		days = sc.Days
	}
	log := opts.Logger
	if log == nil {
		log = logger.With("scenario", sc.Name)
	}

	eng := engine.NewEngine()
	eng.SetLogger(log)
	s := &simulation{
		sc:     sc,
		days:   days,
		eng:    eng,
		pool:   resource.NewPool(eng, sc.Stations),
		stop:   NewStopCondition(engine.NewSignal(eng), sc.TargetPopulation, sc.EarlyStop),
		log:    NewEventLog(),
		gen:    workload.NewGenerator(utils.NewRandSource(sc.Seed)),
		logger: log,
	}
	s.stop.Signal().Wait(func() {
		log.Info("Target population reached",
			"target", sc.TargetPopulation,
			"sim_time", eng.Now())
		eng.Stop()
	})

	horizon := float64(days) * sc.MinutesPerDay()
	if opts.Drain {
		horizon = math.Inf(1)
	}

	log.Info("Campaign run starting",
		"stations", sc.Stations,
		"days", days,
		"seed", sc.Seed,
		"early_stop", sc.EarlyStop,
		"drain", opts.Drain)

	started := time.Now()
	eng.Schedule(0, "master", func() { s.launchDay(0) })
	stats, err := eng.Run(ctx, horizon)

	res := &Result{
		Scenario:     sc.Name,
		Seed:         sc.Seed,
		Days:         days,
		Records:      s.log.Records(),
		FinalTime:    stats.FinalTime,
		StopReason:   stopReason(stats.Reason),
		DaysLaunched: s.daysLaunched,
		Spawned:      s.spawned,
		InService:    s.pool.InUse(),
		Waiting:      s.pool.QueueLength(),
		PeakInUse:    s.pool.MaxInUse(),
		BusyMinutes:  s.pool.BusyMinutes(),
		Events:       stats.Processed,
		Elapsed:      time.Since(started),
	}

	log.Info("Campaign run finished",
		"reason", res.StopReason,
		"records", len(res.Records),
		"vaccinated", s.log.Count(models.OutcomeVaccinated),
		"rescheduled", s.log.Count(models.OutcomeRescheduled),
		"days_launched", res.DaysLaunched,
		"final_time", res.FinalTime,
		"elapsed", utils.FormatDuration(res.Elapsed))

	return res, err
}

func stopReason(r engine.StopReason) StopReason {
	switch r {
	case engine.ReasonStopped:
		return StopTarget
	case engine.ReasonDrained:
		return StopDrained
	case engine.ReasonCancelled:
		return StopCancelled
	default:
		return StopHorizon
	}
}
