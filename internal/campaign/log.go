package campaign

import (
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
)

// EventLog is the append-only record of terminal patient outcomes for one run
type EventLog struct {
	records []models.EventRecord
	counts  map[models.Outcome]int
}

// NewEventLog creates an empty log
func NewEventLog() *EventLog {
	return &EventLog{counts: make(map[models.Outcome]int, 2)}
}

// Append adds a record at the end of the log
func (l *EventLog) Append(rec models.EventRecord) {
	l.records = append(l.records, rec)
	l.counts[rec.Outcome]++
}

// Records returns a copy of the log in append order
func (l *EventLog) Records() []models.EventRecord {
	return append([]models.EventRecord(nil), l.records...)
}

// Len returns the number of records
func (l *EventLog) Len() int {
	return len(l.records)
}

// Count returns the number of records with the given outcome
func (l *EventLog) Count(outcome models.Outcome) int {
	return l.counts[outcome]
}
