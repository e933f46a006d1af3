package campaign

import (
	"testing"

	"github.com/GoSim-25-26J-441/vaccination-sim/internal/engine"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/logger"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
)

func TestEventLog(t *testing.T) {
	l := NewEventLog()
	l.Append(models.EventRecord{PatientID: "a", Outcome: models.OutcomeVaccinated})
	l.Append(models.EventRecord{PatientID: "b", Outcome: models.OutcomeRescheduled})
	l.Append(models.EventRecord{PatientID: "c", Outcome: models.OutcomeVaccinated})

	if l.Len() != 3 {
		t.Fatalf("Expected 3 records, got %d", l.Len())
	}
	if l.Count(models.OutcomeVaccinated) != 2 || l.Count(models.OutcomeRescheduled) != 1 {
		t.Errorf("Unexpected counts: vaccinated=%d rescheduled=%d",
			l.Count(models.OutcomeVaccinated), l.Count(models.OutcomeRescheduled))
	}

	recs := l.Records()
	recs[0].PatientID = "mutated"
	if l.Records()[0].PatientID != "a" {
		t.Error("Records must return a copy")
	}
}

func TestStopCondition(t *testing.T) {
	eng := engine.NewEngine()
	eng.SetLogger(logger.Discard())
	sig := engine.NewSignal(eng)

	fired := 0
	sig.Wait(func() { fired++ })

	sc := NewStopCondition(sig, 2, true)
	sc.Increment()
	if sc.Fired() {
		t.Fatal("Signal fired before target")
	}
	sc.Increment()
	sc.Increment()
	if !sc.Fired() {
		t.Fatal("Signal did not fire at target")
	}
	if fired != 1 {
		t.Errorf("Expected waiters notified exactly once, got %d", fired)
	}
	if sc.Completed() != 3 {
		t.Errorf("Expected 3 completions, got %d", sc.Completed())
	}
}

func TestStopConditionDisabled(t *testing.T) {
	eng := engine.NewEngine()
	sc := NewStopCondition(engine.NewSignal(eng), 1, false)
	for i := 0; i < 5; i++ {
		sc.Increment()
	}
	if sc.Fired() {
		t.Error("Disabled stop condition must never fire")
	}
	if sc.Completed() != 5 {
		t.Errorf("Expected counter to keep counting, got %d", sc.Completed())
	}
}
