package simd

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/vaccination-sim/internal/campaign"
	"github.com/GoSim-25-26J-441/vaccination-sim/internal/metrics"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/config"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/logger"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
)

var (
	ErrRunNotFound        = errors.New("run not found")
	ErrRunTerminal        = errors.New("run is terminal")
	ErrRunIDMissing       = errors.New("run_id is required")
	ErrRunExists          = errors.New("run already exists")
	ErrInvalidRunID       = errors.New("invalid run_id")
	ErrScenarioMissing    = errors.New("scenario or scenario_yaml is required")
	ErrInvalidScenario    = errors.New("invalid scenario")
	ErrMetricsUnavailable = errors.New("metrics not available")
)

// Archive persists finished event logs
type Archive interface {
	SaveRun(ctx context.Context, runID, scenario string, records []models.EventRecord) error
}

// RunExecutor manages asynchronous run execution and per-run cancellation.
type RunExecutor struct {
	store    *RunStore
	catalog  *config.Catalog
	archive  Archive
	notifier *Notifier
	stats    *metrics.Collector

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewRunExecutor creates an executor. A nil catalog means the built-in one.
func NewRunExecutor(store *RunStore, catalog *config.Catalog) *RunExecutor {
	if catalog == nil {
		catalog = config.Builtin()
	}
	return &RunExecutor{
		store:   store,
		catalog: catalog,
		stats:   metrics.NewCollector(),
		cancels: make(map[string]context.CancelFunc),
	}
}

// SetArchive makes the executor save every finished log to a
func (e *RunExecutor) SetArchive(a Archive) {
	e.archive = a
}

// SetNotifier enables callback notifications
func (e *RunExecutor) SetNotifier(n *Notifier) {
	e.notifier = n
}

// Catalog returns the scenario catalog runs are resolved against
func (e *RunExecutor) Catalog() *config.Catalog {
	return e.catalog
}

// Stats returns the daemon-level run statistics
func (e *RunExecutor) Stats() *metrics.Collector {
	return e.stats
}

// ResolveScenario turns a run input into a concrete scenario. Inline YAML
// takes precedence over a catalog name.
func (e *RunExecutor) ResolveScenario(input RunInput) (config.Scenario, error) {
	var sc config.Scenario
	switch {
	case input.ScenarioYAML != "":
		parsed, err := config.ParseScenarioYAMLString(input.ScenarioYAML)
		if err != nil {
			return config.Scenario{}, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
		}
		sc = *parsed
		if sc.Name == "" {
			sc.Name = input.Scenario
		}
		if sc.Name == "" {
			sc.Name = "inline"
		}
	case input.Scenario != "":
		found, err := e.catalog.Lookup(input.Scenario)
		if err != nil {
			return config.Scenario{}, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
		}
		sc = found
	default:
		return config.Scenario{}, ErrScenarioMissing
	}

	if input.Seed != nil {
		sc.Seed = *input.Seed
	}
	if input.Days < 0 {
		return config.Scenario{}, fmt.Errorf("%w: days must be >= 0", ErrInvalidScenario)
	}
	sc.ApplyDefaults()
	return sc, nil
}

// Submit validates the input, creates the run and starts it
func (e *RunExecutor) Submit(runID string, input RunInput) (*RunRecord, error) {
	if _, err := e.ResolveScenario(input); err != nil {
		return nil, err
	}
	rec, err := e.store.Create(runID, input)
	if err != nil {
		return nil, err
	}
	return e.Start(rec.Run.ID)
}

// Start begins executing a run asynchronously.
// Returns the updated run state (running) or an error.
func (e *RunExecutor) Start(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	rec, ok := e.store.Get(runID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	switch {
	case rec.Run.Status == models.RunStatusRunning:
		return rec, nil
	case rec.Run.Status.IsTerminal():
		return nil, fmt.Errorf("%w: %s", ErrRunTerminal, runID)
	}

	updated, err := e.store.SetStatus(runID, models.RunStatusRunning, "")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	if old, exists := e.cancels[runID]; exists {
		old()
	}
	e.cancels[runID] = cancel
	e.mu.Unlock()

	e.wg.Add(1)
	go e.runSimulation(ctx, runID)
	return updated, nil
}

// Stop requests cancellation for a run and marks it cancelled.
func (e *RunExecutor) Stop(runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, ErrRunIDMissing
	}

	updated, err := e.store.SetStatus(runID, models.RunStatusCancelled, "")
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	cancel, ok := e.cancels[runID]
	e.mu.Unlock()
	if ok {
		cancel()
	}
	return updated, nil
}

// StopAll cancels every in-flight run
func (e *RunExecutor) StopAll() {
	e.mu.Lock()
	ids := make([]string, 0, len(e.cancels))
	for id := range e.cancels {
		ids = append(ids, id)
	}
	e.mu.Unlock()

	for _, id := range ids {
		if _, err := e.Stop(id); err != nil && !errors.Is(err, ErrRunTerminal) {
			logger.Warn("failed to stop run", "run_id", id, "error", err)
		}
	}
}

// Wait blocks until every started run has finished its bookkeeping
func (e *RunExecutor) Wait() {
	e.wg.Wait()
}

func (e *RunExecutor) cleanup(runID string) {
	e.mu.Lock()
	if cancel, ok := e.cancels[runID]; ok {
		cancel()
		delete(e.cancels, runID)
	}
	e.mu.Unlock()
	e.wg.Done()
}

func (e *RunExecutor) fail(runID, msg string) {
	logger.Error("run failed", "run_id", runID, "error", msg)
	if _, err := e.store.SetStatus(runID, models.RunStatusFailed, msg); err != nil {
		logger.Error("failed to set failed status", "run_id", runID, "error", err)
	}
	e.notify(runID)
}

func (e *RunExecutor) runSimulation(ctx context.Context, runID string) {
	defer e.cleanup(runID)

	rec, ok := e.store.Get(runID)
	if !ok {
		logger.Error("run not found", "run_id", runID)
		return
	}

	sc, err := e.ResolveScenario(rec.Input)
	if err != nil {
		e.fail(runID, err.Error())
		return
	}

	log := logger.ForRun(runID, sc.Name)
	res, runErr := campaign.RunWithOptions(ctx, sc, campaign.Options{
		Days:   rec.Input.Days,
		Drain:  rec.Input.Drain,
		Logger: log,
	})
	if res == nil {
		e.fail(runID, fmt.Sprintf("simulation failed: %v", runErr))
		return
	}

	// cost and utilization are charged for the days actually staffed
	m, err := metrics.Compute(res.Records, sc, e.catalog.Costs, res.DaysLaunched)
	if err != nil && !errors.Is(err, metrics.ErrEmptyLog) {
		log.Warn("failed to compute metrics", "error", err)
	}

	out := RunOutput{
		Scenario:     sc.Name,
		Days:         res.Days,
		StopReason:   string(res.StopReason),
		FinalTime:    res.FinalTime,
		DaysLaunched: res.DaysLaunched,
		Records:      res.Records,
		Daily:        metrics.DailySeries(res.Records, sc.MinutesPerDay()),
		Metrics:      m,
	}
	if err := e.store.SetOutput(runID, out); err != nil {
		log.Error("failed to store run output", "error", err)
		return
	}

	status := models.RunStatusCompleted
	if runErr != nil {
		status = models.RunStatusCancelled
	}
	if _, err := e.store.SetStatus(runID, status, ""); err != nil && !errors.Is(err, ErrRunTerminal) {
		log.Error("failed to set final status", "error", err)
	}

	if e.archive != nil {
		archiveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := e.archive.SaveRun(archiveCtx, runID, sc.Name, res.Records); err != nil {
			log.Error("failed to archive run", "error", err)
		}
		cancel()
	}

	// A sweep may prune the run once it is terminal.
	finalStatus := status
	if final, ok := e.store.Get(runID); ok {
		finalStatus = final.Run.Status
	}
	vaccinated, rescheduled := 0, 0
	if m != nil {
		vaccinated, rescheduled = m.General.Vaccinated, m.General.Rescheduled
	}
	metrics.RecordRun(e.stats, metrics.RunObservation{
		Scenario:    sc.Name,
		Status:      string(finalStatus),
		Wall:        res.Elapsed,
		Events:      res.Events,
		Vaccinated:  vaccinated,
		Rescheduled: rescheduled,
		SimDays:     simDays(res.FinalTime, sc.MinutesPerDay()),
	})

	log.Info("run finished",
		"status", finalStatus,
		"stop_reason", res.StopReason,
		"events", len(res.Records),
		"vaccinated", vaccinated)
	e.notify(runID)
}

func (e *RunExecutor) notify(runID string) {
	if e.notifier == nil {
		return
	}
	rec, ok := e.store.Get(runID)
	if !ok || rec.Input.CallbackURL == "" {
		return
	}
	e.notifier.Notify(rec.Input.CallbackURL, rec.Input.CallbackSecret, rec)
}

func simDays(minutes, minutesPerDay float64) float64 {
	if minutesPerDay <= 0 || math.IsInf(minutes, 0) {
		return 0
	}
	return minutes / minutesPerDay
}
