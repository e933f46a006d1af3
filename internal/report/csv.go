package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
)

// EventColumns is the header of the events CSV
var EventColumns = []string{
	"time", "day", "patient_id", "cohort", "outcome",
	"queue_length", "wait_minutes", "sojourn_minutes",
}

// DailyColumns is the header of the daily series CSV
var DailyColumns = []string{
	"day", "vaccinated", "rescheduled", "cumulative_vaccinated",
	"mean_wait_minutes", "max_queue_length",
}

// WriteEventsCSV writes the event log, one row per record in log order
func WriteEventsCSV(w io.Writer, records []models.EventRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(EventColumns); err != nil {
		return fmt.Errorf("write events header: %w", err)
	}
	for _, r := range records {
		row := []string{
			formatFloat(r.Time),
			strconv.Itoa(r.Day),
			r.PatientID,
			strconv.Itoa(r.Cohort),
			string(r.Outcome),
			strconv.Itoa(r.QueueLength),
			formatFloat(r.WaitMinutes),
			formatFloat(r.SojournMinutes),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write event %s: %w", r.PatientID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadEventsCSV parses a file written by WriteEventsCSV
func ReadEventsCSV(r io.Reader) ([]models.EventRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(EventColumns)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read events csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read events csv: missing header")
	}

	records := make([]models.EventRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseEventRow(row)
		if err != nil {
			return nil, fmt.Errorf("events csv line %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseEventRow(row []string) (models.EventRecord, error) {
	var rec models.EventRecord
	var err error

	if rec.Time, err = strconv.ParseFloat(row[0], 64); err != nil {
		return rec, err
	}
	if rec.Day, err = strconv.Atoi(row[1]); err != nil {
		return rec, err
	}
	rec.PatientID = row[2]
	if rec.Cohort, err = strconv.Atoi(row[3]); err != nil {
		return rec, err
	}
	if rec.Outcome, err = models.ParseOutcome(row[4]); err != nil {
		return rec, err
	}
	if rec.QueueLength, err = strconv.Atoi(row[5]); err != nil {
		return rec, err
	}
	if rec.WaitMinutes, err = strconv.ParseFloat(row[6], 64); err != nil {
		return rec, err
	}
	if rec.SojournMinutes, err = strconv.ParseFloat(row[7], 64); err != nil {
		return rec, err
	}
	return rec, nil
}

// WriteDailyCSV writes the per-day series
func WriteDailyCSV(w io.Writer, series []models.DayStats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(DailyColumns); err != nil {
		return fmt.Errorf("write daily header: %w", err)
	}
	for _, d := range series {
		row := []string{
			strconv.Itoa(d.Day),
			strconv.Itoa(d.Vaccinated),
			strconv.Itoa(d.Rescheduled),
			strconv.Itoa(d.CumulativeVaccinated),
			formatFloat(d.MeanWaitMinutes),
			strconv.Itoa(d.MaxQueueLength),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write day %d: %w", d.Day, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
