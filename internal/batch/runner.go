// Package batch runs several campaign scenarios side by side. Every run is
// independent: there is no shared state between them, and a failing scenario
// never affects its siblings.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/vaccination-sim/internal/campaign"
	"github.com/GoSim-25-26J-441/vaccination-sim/internal/metrics"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/config"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/logger"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
)

// Job is one scenario to simulate. When Scenario is nil the name is
// looked up in the runner's catalog.
type Job struct {
	Name     string
	Scenario *config.Scenario
	Days     int
	Drain    bool
}

// Outcome is what happened to one job
type Outcome struct {
	Name     string
	Scenario config.Scenario
	Result   *campaign.Result
	// Metrics is nil when the run logged no events
	Metrics *models.CampaignMetrics
	Err     error
	Elapsed time.Duration
}

// Runner executes jobs concurrently
type Runner struct {
	// Parallelism bounds concurrent runs. Zero means half the CPUs, at least one.
	Parallelism int
	Catalog     *config.Catalog
	Logger      *slog.Logger

	// simulate is campaign.RunWithOptions outside tests
	simulate func(ctx context.Context, sc config.Scenario, opts campaign.Options) (*campaign.Result, error)
}

// NewRunner creates a runner over a catalog
func NewRunner(catalog *config.Catalog, parallelism int) *Runner {
	return &Runner{Parallelism: parallelism, Catalog: catalog}
}

func (r *Runner) parallelism() int {
	if r.Parallelism > 0 {
		return r.Parallelism
	}
	if n := runtime.NumCPU() / 2; n > 1 {
		return n
	}
	return 1
}

func (r *Runner) costs() config.Costs {
	if r.Catalog != nil {
		return r.Catalog.Costs
	}
	return config.DefaultCosts()
}

// Run executes all jobs and returns their outcomes in input order
func (r *Runner) Run(ctx context.Context, jobs []Job) []Outcome {
	log := r.Logger
	if log == nil {
		log = logger.Default
	}

	semaphore := make(chan struct{}, r.parallelism())
	outcomes := make([]Outcome, len(jobs))
	var wg sync.WaitGroup

	log.Info("Batch starting", "jobs", len(jobs), "parallelism", cap(semaphore))
	for i, job := range jobs {
		wg.Add(1)
		go func(idx int, job Job) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			outcomes[idx] = r.runJob(ctx, job, log)
		}(i, job)
	}
	wg.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	log.Info("Batch finished", "jobs", len(jobs), "failed", failed)
	return outcomes
}

func (r *Runner) runJob(ctx context.Context, job Job, log *slog.Logger) (out Outcome) {
	out.Name = job.Name
	started := time.Now()
	defer func() {
		if p := recover(); p != nil {
			out.Err = fmt.Errorf("scenario %s panicked: %v", job.Name, p)
		}
		out.Elapsed = time.Since(started)
		if out.Err != nil {
			log.Error("Scenario failed", "scenario", job.Name, "error", out.Err)
		}
	}()

	sc, err := r.resolve(job)
	if err != nil {
		out.Err = err
		return out
	}
	sc.ApplyDefaults()
	out.Scenario = sc

	simulate := r.simulate
	if simulate == nil {
		simulate = campaign.RunWithOptions
	}
	res, err := simulate(ctx, sc, campaign.Options{
		Days:   job.Days,
		Drain:  job.Drain,
		Logger: log.With("scenario", sc.Name),
	})
	out.Result = res
	if err != nil {
		out.Err = fmt.Errorf("scenario %s: %w", sc.Name, err)
		return out
	}

	m, err := metrics.Compute(res.Records, sc, r.costs(), res.DaysLaunched)
	if err != nil && !errors.Is(err, metrics.ErrEmptyLog) {
		out.Err = fmt.Errorf("scenario %s metrics: %w", sc.Name, err)
		return out
	}
	out.Metrics = m
	return out
}

func (r *Runner) resolve(job Job) (config.Scenario, error) {
	if job.Scenario != nil {
		sc := job.Scenario.Clone()
		if sc.Name == "" {
			sc.Name = job.Name
		}
		return sc, nil
	}
	if r.Catalog == nil {
		return config.Scenario{}, fmt.Errorf("%w: %s", config.ErrUnknownScenario, job.Name)
	}
	return r.Catalog.Lookup(job.Name)
}

// Failed returns the outcomes that carry an error
func Failed(outcomes []Outcome) []Outcome {
	var out []Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// MetricsOf collects the metrics of successful outcomes, in order
func MetricsOf(outcomes []Outcome) []*models.CampaignMetrics {
	var out []*models.CampaignMetrics
	for _, o := range outcomes {
		if o.Err == nil && o.Metrics != nil {
			out = append(out, o.Metrics)
		}
	}
	return out
}
