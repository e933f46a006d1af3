// Package eventstore archives the event logs of finished runs in SQLite.
// It holds completed logs only; a partial simulation cannot be resumed from it.
package eventstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
)

// ErrRunNotFound is returned when no archived run has the given id
var ErrRunNotFound = errors.New("archived run not found")

// RunSummary describes one archived run
type RunSummary struct {
	ID       string    `json:"id"`
	Scenario string    `json:"scenario"`
	Events   int       `json:"events"`
	SavedAt  time.Time `json:"saved_at"`
}

// Store is a SQLite-backed archive of event logs
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id       TEXT PRIMARY KEY,
	scenario TEXT NOT NULL,
	events   INTEGER NOT NULL,
	saved_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS events (
	run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq             INTEGER NOT NULL,
	time            REAL NOT NULL,
	day             INTEGER NOT NULL,
	patient_id      TEXT NOT NULL,
	cohort          INTEGER NOT NULL,
	outcome         TEXT NOT NULL,
	queue_length    INTEGER NOT NULL,
	wait_minutes    REAL NOT NULL,
	sojourn_minutes REAL NOT NULL,
	PRIMARY KEY (run_id, seq)
);
`

// Open opens or creates the archive at path. ":memory:" gives a private
// in-memory archive.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open event store: %w", err)
	}
	// one connection so that ":memory:" is a single database and writes serialize
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create event store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// SaveRun stores a run's log in one transaction. Saving an id again
// replaces the earlier log.
func (s *Store) SaveRun(ctx context.Context, runID, scenario string, records []models.EventRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID); err != nil {
		return fmt.Errorf("replace run %s: %w", runID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, scenario, events, saved_at) VALUES (?, ?, ?, ?)`,
		runID, scenario, len(records), time.Now().UnixNano()); err != nil {
		return fmt.Errorf("insert run %s: %w", runID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO events
		(run_id, seq, time, day, patient_id, cohort, outcome, queue_length, wait_minutes, sojourn_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx,
			runID, i, r.Time, r.Day, r.PatientID, r.Cohort, string(r.Outcome),
			r.QueueLength, r.WaitMinutes, r.SojournMinutes); err != nil {
			return fmt.Errorf("insert event %d of run %s: %w", i, runID, err)
		}
	}
	return tx.Commit()
}

// LoadRun returns the archived log of a run in its original order
func (s *Store) LoadRun(ctx context.Context, runID string) ([]models.EventRecord, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT events FROM runs WHERE id = ?`, runID).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT
		time, day, patient_id, cohort, outcome, queue_length, wait_minutes, sojourn_minutes
		FROM events WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.EventRecord, 0, n)
	for rows.Next() {
		var r models.EventRecord
		var outcome string
		if err := rows.Scan(&r.Time, &r.Day, &r.PatientID, &r.Cohort, &outcome,
			&r.QueueLength, &r.WaitMinutes, &r.SojournMinutes); err != nil {
			return nil, err
		}
		if r.Outcome, err = models.ParseOutcome(outcome); err != nil {
			return nil, fmt.Errorf("run %s: %w", runID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ListRuns returns every archived run, most recent first
func (s *Store) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, scenario, events, saved_at FROM runs ORDER BY saved_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		var savedAt int64
		if err := rows.Scan(&rs.ID, &rs.Scenario, &rs.Events, &savedAt); err != nil {
			return nil, err
		}
		rs.SavedAt = time.Unix(0, savedAt)
		out = append(out, rs)
	}
	return out, rows.Err()
}

// DeleteBefore drops runs saved before cutoff and returns how many went
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE saved_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
