package simd

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/utils"
)

// RunInput is what a client submits to start a campaign run. Exactly one of
// Scenario (a catalog name) or ScenarioYAML must be set.
type RunInput struct {
	Scenario       string            `json:"scenario,omitempty"`
	ScenarioYAML   string            `json:"scenario_yaml,omitempty"`
	Days           int               `json:"days,omitempty"`
	Drain          bool              `json:"drain,omitempty"`
	Seed           *int64            `json:"seed,omitempty"`
	CallbackURL    string            `json:"callback_url,omitempty"`
	CallbackSecret string            `json:"-"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// RunRecord is the daemon's view of one run. Records is set once the run
// finishes and is never modified afterwards.
type RunRecord struct {
	Run     models.Run
	Input   RunInput
	Records []models.EventRecord
	Daily   []models.DayStats
}

// RunStore keeps run records in memory. Accessors hand out copies.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*RunRecord
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*RunRecord),
	}
}

func (s *RunStore) Create(runID string, input RunInput) (*RunRecord, error) {
	if input.Scenario == "" && input.ScenarioYAML == "" {
		return nil, ErrScenarioMissing
	}
	if runID == "" {
		runID = utils.GenerateRunID()
	} else if err := utils.ValidateRunID(runID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRunID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[runID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrRunExists, runID)
	}

	rec := &RunRecord{
		Run: models.Run{
			ID:          runID,
			Scenario:    input.Scenario,
			Days:        input.Days,
			Status:      models.RunStatusPending,
			CreatedAt:   time.Now().UTC(),
			CallbackURL: input.CallbackURL,
			Metadata:    input.Metadata,
		},
		Input: input,
	}
	s.runs[runID] = rec
	return rec.snapshot(), nil
}

func (s *RunStore) Get(runID string) (*RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[runID]
	if !ok {
		return nil, false
	}
	return rec.snapshot(), true
}

// List returns runs newest first. A zero status matches every run.
func (s *RunStore) List(limit, offset int, status models.RunStatus) []*RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	all := make([]*RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		if status != "" && rec.Run.Status != status {
			continue
		}
		all = append(all, rec)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Run.CreatedAt.Equal(all[j].Run.CreatedAt) {
			return all[i].Run.CreatedAt.After(all[j].Run.CreatedAt)
		}
		return all[i].Run.ID < all[j].Run.ID
	})

	if offset >= len(all) {
		return []*RunRecord{}
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	out := make([]*RunRecord, len(all))
	for i, rec := range all {
		out[i] = rec.snapshot()
	}
	return out
}

// Len returns the number of stored runs
func (s *RunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// SetStatus moves a run to status. Terminal runs never change status again.
func (s *RunStore) SetStatus(runID string, status models.RunStatus, errMsg string) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if rec.Run.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s is %s", ErrRunTerminal, runID, rec.Run.Status)
	}

	rec.Run.Status = status
	if errMsg != "" {
		rec.Run.Error = errMsg
	}

	now := time.Now().UTC()
	switch {
	case status == models.RunStatusRunning:
		if rec.Run.StartTime.IsZero() {
			rec.Run.StartTime = now
		}
	case status.IsTerminal():
		rec.Run.EndTime = now
		if !rec.Run.StartTime.IsZero() {
			rec.Run.Duration = now.Sub(rec.Run.StartTime)
		}
	}
	return rec.snapshot(), nil
}

// RunOutput is everything a finished simulation contributes to a record
type RunOutput struct {
	Scenario     string
	Days         int
	StopReason   string
	FinalTime    float64
	DaysLaunched int
	Records      []models.EventRecord
	Daily        []models.DayStats
	Metrics      *models.CampaignMetrics
}

// SetOutput stores the results of a run. It is accepted in any status so that
// a cancelled run keeps its partial log.
func (s *RunStore) SetOutput(runID string, out RunOutput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	rec.Run.Scenario = out.Scenario
	rec.Run.Days = out.Days
	rec.Run.StopReason = out.StopReason
	rec.Run.FinalTime = out.FinalTime
	rec.Run.DaysLaunched = out.DaysLaunched
	rec.Run.Events = len(out.Records)
	rec.Run.Metrics = out.Metrics
	rec.Records = out.Records
	rec.Daily = out.Daily
	return nil
}

// PruneFinished drops terminal runs that ended before cutoff
func (s *RunStore) PruneFinished(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, rec := range s.runs {
		if rec.Run.Status.IsTerminal() && rec.Run.EndTime.Before(cutoff) {
			delete(s.runs, id)
			n++
		}
	}
	return n
}

func (r *RunRecord) snapshot() *RunRecord {
	out := *r
	if r.Run.Metrics != nil {
		m := *r.Run.Metrics
		m.Milestones = append([]models.Milestone(nil), r.Run.Metrics.Milestones...)
		out.Run.Metrics = &m
	}
	return &out
}
