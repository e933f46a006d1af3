package models

import (
	"encoding/json"
	"testing"
)

func TestRunStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status   RunStatus
		terminal bool
	}{
		{RunStatusPending, false},
		{RunStatusRunning, false},
		{RunStatusCompleted, true},
		{RunStatusFailed, true},
		{RunStatusCancelled, true},
	}

	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("%s.IsTerminal() = %v, expected %v", tt.status, got, tt.terminal)
		}
	}
}

func TestParseOutcome(t *testing.T) {
	for _, s := range []string{"Vaccinated", "Rescheduled"} {
		o, err := ParseOutcome(s)
		if err != nil {
			t.Fatalf("ParseOutcome(%q) failed: %v", s, err)
		}
		if string(o) != s {
			t.Errorf("Expected %q, got %q", s, o)
		}
	}
	if _, err := ParseOutcome("Vacunado"); err == nil {
		t.Error("Expected error for unknown outcome")
	}
}

func TestEventRecordJSON(t *testing.T) {
	rec := EventRecord{
		Time:        12.5,
		Day:         0,
		PatientID:   "Day0_Cohort1_Pat3",
		Cohort:      1,
		Outcome:     OutcomeVaccinated,
		QueueLength: 2,
		WaitMinutes: 1.5,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if fields["outcome"] != "Vaccinated" {
		t.Errorf("Expected outcome Vaccinated, got %v", fields["outcome"])
	}
	if fields["patient_id"] != "Day0_Cohort1_Pat3" {
		t.Errorf("Expected patient_id, got %v", fields["patient_id"])
	}
}

func TestCampaignMetricsMilestone(t *testing.T) {
	m := &CampaignMetrics{Milestones: []Milestone{
		{Percent: 25, Reached: true, Days: 3},
		{Percent: 100, Reached: false},
	}}

	ms, ok := m.Milestone(25)
	if !ok || ms.Days != 3 {
		t.Errorf("Expected 25%% milestone at day 3, got %+v (found=%v)", ms, ok)
	}
	if _, ok := m.Milestone(50); ok {
		t.Error("Expected 50% milestone to be absent")
	}
}
