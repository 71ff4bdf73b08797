package vitalsdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/baxter-barlow/chirp/internal/vitals"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "vitals_test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenMigrates(t *testing.T) {
	db := openTestDB(t)
	version, dirty, err := db.MigrateVersion()
	if err != nil {
		t.Fatalf("MigrateVersion: %v", err)
	}
	if dirty {
		t.Error("schema dirty after clean migration")
	}
	if version == 0 {
		t.Error("no migrations applied")
	}
}

func TestSessionAndMeasurements(t *testing.T) {
	db := openTestDB(t)

	sess, err := db.BeginSession("replay:test")
	if err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("empty session id")
	}

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	results := []vitals.Result{
		{RangeBin: 12, HeartRate: 72.3, BreathingRate: 15, BreathingDeviation: 0.02, Valid: true},
		{RangeBin: 12, HeartRate: 73.1, BreathingRate: 14.1, BreathingDeviation: 0.03, Valid: true},
		{},
	}
	for i, r := range results {
		if err := db.RecordMeasurement(sess.ID, base.Add(time.Duration(i)*time.Second), r); err != nil {
			t.Fatalf("RecordMeasurement %d: %v", i, err)
		}
	}

	recent, err := db.RecentMeasurements(sess.ID, 10)
	if err != nil {
		t.Fatalf("RecentMeasurements: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d rows, want 3", len(recent))
	}
	// Newest first: the invalid zero record.
	if recent[0].Valid {
		t.Errorf("newest row valid = true, want false")
	}
	if recent[1].HeartRateBPM < 73 || recent[1].HeartRateBPM > 73.2 {
		t.Errorf("row 1 heart rate %v", recent[1].HeartRateBPM)
	}

	since, err := db.MeasurementsSince(sess.ID, base.Add(time.Second))
	if err != nil {
		t.Fatalf("MeasurementsSince: %v", err)
	}
	if len(since) != 2 {
		t.Fatalf("since: got %d rows, want 2", len(since))
	}
	if !since[0].RecordedAt.Before(since[1].RecordedAt) {
		t.Error("since rows not oldest first")
	}

	sessions, err := db.Sessions()
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != sess.ID || sessions[0].Source != "replay:test" {
		t.Errorf("sessions = %+v", sessions)
	}
}

func TestRecentMeasurementsLimit(t *testing.T) {
	db := openTestDB(t)
	sess, err := db.BeginSession("limit")
	if err != nil {
		t.Fatal(err)
	}
	base := time.Now()
	for i := 0; i < 8; i++ {
		if err := db.RecordMeasurement(sess.ID, base.Add(time.Duration(i)*time.Second), vitals.Result{Valid: true}); err != nil {
			t.Fatal(err)
		}
	}
	rows, err := db.RecentMeasurements(sess.ID, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 5 {
		t.Errorf("got %d rows, want 5", len(rows))
	}
}
