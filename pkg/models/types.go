package models

import (
	"fmt"
	"time"
)

// RunStatus represents the status of a simulation run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// IsTerminal reports whether a run in this status will never change again
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// Outcome is the terminal state of one patient
type Outcome string

const (
	OutcomeVaccinated  Outcome = "Vaccinated"
	OutcomeRescheduled Outcome = "Rescheduled"
)

// ParseOutcome maps the textual outcome kind back to an Outcome
func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(s) {
	case OutcomeVaccinated, OutcomeRescheduled:
		return Outcome(s), nil
	}
	return "", fmt.Errorf("unknown outcome %q", s)
}

// EventRecord is one terminal patient outcome. Records are never mutated
// once appended to a log.
type EventRecord struct {
	Time           float64 `json:"time"` // simulated minutes since start
	Day            int     `json:"day"`
	PatientID      string  `json:"patient_id"`
	Cohort         int     `json:"cohort"`
	Outcome        Outcome `json:"outcome"`
	QueueLength    int     `json:"queue_length"`
	WaitMinutes    float64 `json:"wait_minutes"`
	SojournMinutes float64 `json:"sojourn_minutes"`
}

// Run represents a simulation run
type Run struct {
	ID           string            `json:"id"`
	Scenario     string            `json:"scenario"`
	Days         int               `json:"days"`
	Status       RunStatus         `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	StartTime    time.Time         `json:"start_time"`
	EndTime      time.Time         `json:"end_time,omitempty"`
	Duration     time.Duration     `json:"duration,omitempty"`
	StopReason   string            `json:"stop_reason,omitempty"`
	FinalTime    float64           `json:"final_time_minutes,omitempty"`
	DaysLaunched int               `json:"days_launched,omitempty"`
	Events       int               `json:"events"`
	Metrics      *CampaignMetrics  `json:"metrics,omitempty"`
	Error        string            `json:"error,omitempty"`
	CallbackURL  string            `json:"callback_url,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// CampaignMetrics aggregates one run's event log
type CampaignMetrics struct {
	Scenario    string           `json:"scenario"`
	Stations    int              `json:"stations"`
	Days        int              `json:"days"`
	General     GeneralMetrics   `json:"general"`
	Waits       WaitMetrics      `json:"wait_minutes"`
	Queue       QueueMetrics     `json:"queue_length"`
	Performance PerformanceStats `json:"performance"`
	Costs       CostMetrics      `json:"costs"`
	Milestones  []Milestone      `json:"milestones"`
}

// GeneralMetrics counts outcomes
type GeneralMetrics struct {
	Processed        int     `json:"total_processed"`
	Vaccinated       int     `json:"total_vaccinated"`
	Rescheduled      int     `json:"total_rescheduled"`
	AbandonmentPct   float64 `json:"abandonment_rate_pct"`
	TargetPopulation int     `json:"target_population"`
	CoveragePct      float64 `json:"coverage_pct"`
}

// WaitMetrics covers vaccinated patients only
type WaitMetrics struct {
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
	Min  float64 `json:"min"`
	P50  float64 `json:"p50"`
	P95  float64 `json:"p95"`
}

// QueueMetrics is taken over every record
type QueueMetrics struct {
	Mean float64 `json:"mean"`
	Max  int     `json:"max"`
}

// PerformanceStats holds time-in-system and station usage
type PerformanceStats struct {
	MeanSojournMinutes float64 `json:"mean_sojourn_minutes"`
	UtilizationPct     float64 `json:"station_utilization_pct"`
}

// CostMetrics breaks the campaign cost down. Total is fixed + doses + reschedules;
// wait and extra-station costs are reported alongside.
type CostMetrics struct {
	Total              float64 `json:"total"`
	Fixed              float64 `json:"fixed"`
	Doses              float64 `json:"doses"`
	Reschedules        float64 `json:"reschedules"`
	Wait               float64 `json:"wait"`
	ExtraStations      float64 `json:"extra_stations"`
	PerVaccinated      float64 `json:"per_vaccinated"`
	CostTimeEfficiency float64 `json:"cost_time_efficiency"`
}

// Milestone is the simulated day at which a share of the target was vaccinated
type Milestone struct {
	Percent int     `json:"percent"`
	Reached bool    `json:"reached"`
	Days    float64 `json:"days,omitempty"`
}

// DayStats is one row of the per-day series
type DayStats struct {
	Day                  int     `json:"day"`
	Vaccinated           int     `json:"vaccinated"`
	Rescheduled          int     `json:"rescheduled"`
	CumulativeVaccinated int     `json:"cumulative_vaccinated"`
	MeanWaitMinutes      float64 `json:"mean_wait_minutes"`
	MaxQueueLength       int     `json:"max_queue_length"`
}

// Milestone returns the milestone for a percentage, if computed
func (m *CampaignMetrics) Milestone(percent int) (Milestone, bool) {
	for _, ms := range m.Milestones {
		if ms.Percent == percent {
			return ms, true
		}
	}
	return Milestone{}, false
}
