// Package vitalsdb persists published vital-signs measurements in
// sqlite. Each daemon run opens a session; measurements hang off the
// session so reports can separate deployments and replays.
package vitalsdb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/baxter-barlow/chirp/internal/vitals"
)

// DB wraps the sqlite handle.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the database at path and migrates it to the
// latest schema.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Session is one daemon run.
type Session struct {
	ID        string
	Source    string
	StartedAt time.Time
}

// BeginSession records a new session and returns its id.
func (db *DB) BeginSession(source string) (Session, error) {
	s := Session{
		ID:        uuid.NewString(),
		Source:    source,
		StartedAt: time.Now().UTC(),
	}
	_, err := db.Exec(
		`INSERT INTO sessions (session_id, source, started_at) VALUES (?, ?, ?)`,
		s.ID, s.Source, s.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Session{}, fmt.Errorf("inserting session: %w", err)
	}
	return s, nil
}

// Measurement is one stored result row.
type Measurement struct {
	SessionID          string
	RecordedAt         time.Time
	TargetID           uint16
	RangeBin           uint16
	HeartRateBPM       float64
	BreathingRateBPM   float64
	BreathingDeviation float64
	Valid              bool
}

// RecordMeasurement stores one pipeline result.
func (db *DB) RecordMeasurement(sessionID string, at time.Time, r vitals.Result) error {
	valid := 0
	if r.Valid {
		valid = 1
	}
	_, err := db.Exec(
		`INSERT INTO measurements
			(session_id, recorded_at, target_id, range_bin, heart_rate_bpm, breathing_rate_bpm, breathing_deviation, valid)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, at.UTC().Format(time.RFC3339Nano),
		r.ID, r.RangeBin,
		float64(r.HeartRate), float64(r.BreathingRate), float64(r.BreathingDeviation),
		valid,
	)
	if err != nil {
		return fmt.Errorf("inserting measurement: %w", err)
	}
	return nil
}

// RecentMeasurements returns up to limit rows for a session, newest
// first.
func (db *DB) RecentMeasurements(sessionID string, limit int) ([]Measurement, error) {
	rows, err := db.Query(
		`SELECT session_id, recorded_at, target_id, range_bin, heart_rate_bpm, breathing_rate_bpm, breathing_deviation, valid
		 FROM measurements WHERE session_id = ? ORDER BY recorded_at DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying measurements: %w", err)
	}
	defer rows.Close()

	return scanMeasurements(rows)
}

// MeasurementsSince returns a session's rows at or after the cutoff,
// oldest first, for report plotting.
func (db *DB) MeasurementsSince(sessionID string, since time.Time) ([]Measurement, error) {
	rows, err := db.Query(
		`SELECT session_id, recorded_at, target_id, range_bin, heart_rate_bpm, breathing_rate_bpm, breathing_deviation, valid
		 FROM measurements WHERE session_id = ? AND recorded_at >= ? ORDER BY recorded_at ASC`,
		sessionID, since.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("querying measurements: %w", err)
	}
	defer rows.Close()

	return scanMeasurements(rows)
}

// Sessions lists recorded sessions, newest first.
func (db *DB) Sessions() ([]Session, error) {
	rows, err := db.Query(`SELECT session_id, source, started_at FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var s Session
		var started string
		if err := rows.Scan(&s.ID, &s.Source, &started); err != nil {
			return nil, err
		}
		s.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanMeasurements(rows *sql.Rows) ([]Measurement, error) {
	var out []Measurement
	for rows.Next() {
		var m Measurement
		var recorded string
		var valid int
		if err := rows.Scan(&m.SessionID, &recorded, &m.TargetID, &m.RangeBin,
			&m.HeartRateBPM, &m.BreathingRateBPM, &m.BreathingDeviation, &valid); err != nil {
			return nil, err
		}
		m.RecordedAt, _ = time.Parse(time.RFC3339Nano, recorded)
		m.Valid = valid != 0
		out = append(out, m)
	}
	return out, rows.Err()
}
