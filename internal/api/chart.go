package api

import (
	"net/http"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// handleChart renders a quick HTML line chart of the session's recent
// rates using go-echarts. Debugging-only endpoint; the stored history
// is the durable record.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSONError(w, http.StatusNotFound, "persistence disabled")
		return
	}

	rows, err := s.db.RecentMeasurements(s.sessionID, 500)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(rows) == 0 {
		writeJSONError(w, http.StatusNotFound, "no measurements recorded")
		return
	}

	// Rows arrive newest first; plot oldest first.
	xs := make([]string, 0, len(rows))
	heart := make([]opts.LineData, 0, len(rows))
	breath := make([]opts.LineData, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		m := rows[i]
		xs = append(xs, m.RecordedAt.Format(time.TimeOnly))
		heart = append(heart, opts.LineData{Value: m.HeartRateBPM})
		breath = append(breath, opts.LineData{Value: m.BreathingRateBPM})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Vital signs",
			Subtitle: "session " + s.sessionID,
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "BPM"}),
	)
	line.SetXAxis(xs).
		AddSeries("heart", heart).
		AddSeries("breathing", breath)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = line.Render(w)
}
