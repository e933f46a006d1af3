package simd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/logger"
)

// cronParser accepts standard five-field specs and descriptors such as @hourly
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ArchivePruner drops archived runs saved before a cutoff
type ArchivePruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SweeperConfig configures scheduled re-runs and retention
type SweeperConfig struct {
	// RunSchedule triggers a run of every scenario in Scenarios. Empty disables re-runs.
	RunSchedule string
	Scenarios   []string
	// Retention is how long finished runs are kept. Zero disables pruning.
	Retention     time.Duration
	PruneSchedule string
}

// Sweeper drives recurring daemon work on a cron schedule
type Sweeper struct {
	cfg    SweeperConfig
	store  *RunStore
	exec   *RunExecutor
	cron   *cron.Cron
	now    func() time.Time
	logger *slog.Logger

	mu      sync.Mutex
	archive ArchivePruner
}

// NewSweeper validates the schedules and registers the jobs. Start must be
// called for them to fire.
func NewSweeper(store *RunStore, exec *RunExecutor, cfg SweeperConfig) (*Sweeper, error) {
	if cfg.PruneSchedule == "" {
		cfg.PruneSchedule = "@hourly"
	}
	if cfg.Retention < 0 {
		return nil, errors.New("retention must be >= 0")
	}
	for _, name := range cfg.Scenarios {
		if _, err := exec.Catalog().Lookup(name); err != nil {
			return nil, err
		}
	}

	s := &Sweeper{
		cfg:    cfg,
		store:  store,
		exec:   exec,
		now:    time.Now,
		logger: logger.With("component", "sweeper"),
	}
	s.cron = cron.New(
		cron.WithParser(cronParser),
		cron.WithLogger(cronLogger{s.logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{s.logger})),
	)

	if cfg.RunSchedule != "" && len(cfg.Scenarios) > 0 {
		if _, err := s.cron.AddFunc(cfg.RunSchedule, func() { s.RunScheduled() }); err != nil {
			return nil, fmt.Errorf("run schedule %q: %w", cfg.RunSchedule, err)
		}
	}
	if cfg.Retention > 0 {
		if _, err := s.cron.AddFunc(cfg.PruneSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, _, err := s.Prune(ctx); err != nil {
				s.logger.Error("prune failed", "error", err)
			}
		}); err != nil {
			return nil, fmt.Errorf("prune schedule %q: %w", cfg.PruneSchedule, err)
		}
	}
	return s, nil
}

// SetArchivePruner makes Prune also drop old archived runs
func (s *Sweeper) SetArchivePruner(p ArchivePruner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archive = p
}

// Jobs returns the number of registered cron entries
func (s *Sweeper) Jobs() int {
	return len(s.cron.Entries())
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the scheduler. The returned context is done once running jobs finish.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

// RunScheduled submits one run per configured scenario and returns the run IDs
func (s *Sweeper) RunScheduled() []string {
	ids := make([]string, 0, len(s.cfg.Scenarios))
	for _, name := range s.cfg.Scenarios {
		rec, err := s.exec.Submit("", RunInput{
			Scenario: name,
			Metadata: map[string]string{"trigger": "schedule"},
		})
		if err != nil {
			s.logger.Error("scheduled run failed to start", "scenario", name, "error", err)
			continue
		}
		ids = append(ids, rec.Run.ID)
	}
	s.logger.Info("scheduled runs submitted", "count", len(ids))
	return ids
}

// Prune drops finished runs older than the retention from the store and the archive
func (s *Sweeper) Prune(ctx context.Context) (int, int64, error) {
	if s.cfg.Retention <= 0 {
		return 0, 0, nil
	}
	cutoff := s.now().Add(-s.cfg.Retention)
	dropped := s.store.PruneFinished(cutoff)

	s.mu.Lock()
	archive := s.archive
	s.mu.Unlock()

	var archived int64
	if archive != nil {
		n, err := archive.DeleteBefore(ctx, cutoff)
		if err != nil {
			return dropped, 0, fmt.Errorf("prune archive: %w", err)
		}
		archived = n
	}
	if dropped > 0 || archived > 0 {
		s.logger.Info("pruned finished runs", "store", dropped, "archive", archived, "cutoff", cutoff)
	}
	return dropped, archived, nil
}

// cronLogger routes cron's own logging through slog
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
