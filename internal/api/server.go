// Package api serves the detector's host-facing HTTP surface: the
// latest measurement, stored history, health, and a debug chart.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/baxter-barlow/chirp/internal/vitals"
	"github.com/baxter-barlow/chirp/internal/vitalsdb"
)

// ResultSource supplies the most recent pipeline result.
type ResultSource interface {
	Latest() (result vitals.Result, at time.Time, ok bool)
}

// Server wires the handlers.
type Server struct {
	src       ResultSource
	db        *vitalsdb.DB
	sessionID string
}

// NewServer builds a server; db may be nil when persistence is
// disabled, in which case history endpoints report 404.
func NewServer(src ResultSource, db *vitalsdb.DB, sessionID string) *Server {
	return &Server{src: src, db: db, sessionID: sessionID}
}

// ServeMux returns the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/vitals/latest", s.handleLatest)
	mux.HandleFunc("/api/vitals/history", s.handleHistory)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/debug/vitals/chart", s.handleChart)
	mux.HandleFunc("/", s.handleHome)
	return mux
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	fmt.Fprintln(w, "chirp vital-signs detector")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok", "session_id": s.sessionID})
}

// latestResponse is the JSON shape of one measurement.
type latestResponse struct {
	RecordedAt         time.Time `json:"recorded_at"`
	TargetID           uint16    `json:"target_id"`
	RangeBin           uint16    `json:"range_bin"`
	HeartRateBPM       float32   `json:"heart_rate_bpm"`
	BreathingRateBPM   float32   `json:"breathing_rate_bpm"`
	BreathingDeviation float32   `json:"breathing_deviation"`
	Valid              bool      `json:"valid"`
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	res, at, ok := s.src.Latest()
	if !ok {
		writeJSONError(w, http.StatusNotFound, "no measurement yet")
		return
	}
	writeJSON(w, latestResponse{
		RecordedAt:         at.UTC(),
		TargetID:           res.ID,
		RangeBin:           res.RangeBin,
		HeartRateBPM:       res.HeartRate,
		BreathingRateBPM:   res.BreathingRate,
		BreathingDeviation: res.BreathingDeviation,
		Valid:              res.Valid,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.db == nil {
		writeJSONError(w, http.StatusNotFound, "persistence disabled")
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 10000 {
			writeJSONError(w, http.StatusBadRequest, "limit must be 1-10000")
			return
		}
		limit = n
	}

	rows, err := s.db.RecentMeasurements(s.sessionID, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("query failed: %v", err))
		return
	}
	writeJSON(w, rows)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
