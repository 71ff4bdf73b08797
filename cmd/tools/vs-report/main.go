// Command vs-report renders a measurement session out of a vitals
// database: an interactive HTML chart (go-echarts) and PNG time
// series (gonum/plot) of the heart and breathing rates.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/baxter-barlow/chirp/internal/vitalsdb"
)

func main() {
	dbPath := flag.String("db", "vitals.db", "vitals database path")
	sessionID := flag.String("session", "", "session id (default: most recent)")
	outDir := flag.String("o", "report", "output directory")
	flag.Parse()

	db, err := vitalsdb.Open(*dbPath)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	sid := *sessionID
	if sid == "" {
		sessions, err := db.Sessions()
		if err != nil {
			log.Fatalf("listing sessions: %v", err)
		}
		if len(sessions) == 0 {
			log.Fatal("no sessions recorded")
		}
		sid = sessions[0].ID
		log.Printf("using most recent session %s (%s)", sid, sessions[0].Source)
	}

	rows, err := db.MeasurementsSince(sid, time.Time{})
	if err != nil {
		log.Fatalf("loading measurements: %v", err)
	}
	if len(rows) == 0 {
		log.Fatal("session has no measurements")
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("creating %s: %v", *outDir, err)
	}

	htmlPath := filepath.Join(*outDir, "vitals.html")
	if err := renderHTML(htmlPath, sid, rows); err != nil {
		log.Fatalf("rendering HTML: %v", err)
	}
	pngPath := filepath.Join(*outDir, "vitals.png")
	if err := renderPNG(pngPath, rows); err != nil {
		log.Fatalf("rendering PNG: %v", err)
	}

	valid := 0
	for _, m := range rows {
		if m.Valid {
			valid++
		}
	}
	log.Printf("report for %d measurements (%d valid): %s, %s", len(rows), valid, htmlPath, pngPath)
}

func renderHTML(path, sessionID string, rows []vitalsdb.Measurement) error {
	xs := make([]string, 0, len(rows))
	heart := make([]opts.LineData, 0, len(rows))
	breath := make([]opts.LineData, 0, len(rows))
	dev := make([]opts.LineData, 0, len(rows))
	for _, m := range rows {
		xs = append(xs, m.RecordedAt.Format(time.TimeOnly))
		heart = append(heart, opts.LineData{Value: m.HeartRateBPM})
		breath = append(breath, opts.LineData{Value: m.BreathingRateBPM})
		dev = append(dev, opts.LineData{Value: m.BreathingDeviation})
	}

	rates := charts.NewLine()
	rates.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Vital signs", Subtitle: "session " + sessionID}),
		charts.WithYAxisOpts(opts.YAxis{Name: "BPM"}),
	)
	rates.SetXAxis(xs).
		AddSeries("heart", heart).
		AddSeries("breathing", breath)

	deviation := charts.NewLine()
	deviation.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Breathing deviation"}),
	)
	deviation.SetXAxis(xs).AddSeries("deviation", dev)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	page := components.NewPage()
	page.AddCharts(rates, deviation)
	return page.Render(f)
}

func renderPNG(path string, rows []vitalsdb.Measurement) error {
	p := plot.New()
	p.Title.Text = "Vital signs"
	p.X.Label.Text = "measurement"
	p.Y.Label.Text = "BPM"

	heartPts := make(plotter.XYs, 0, len(rows))
	breathPts := make(plotter.XYs, 0, len(rows))
	for i, m := range rows {
		if !m.Valid {
			continue
		}
		heartPts = append(heartPts, plotter.XY{X: float64(i), Y: m.HeartRateBPM})
		breathPts = append(breathPts, plotter.XY{X: float64(i), Y: m.BreathingRateBPM})
	}

	heartLine, err := plotter.NewLine(heartPts)
	if err != nil {
		return err
	}
	heartLine.Width = vg.Points(1)
	breathLine, err := plotter.NewLine(breathPts)
	if err != nil {
		return err
	}
	breathLine.Width = vg.Points(1)
	breathLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(heartLine, breathLine)
	p.Legend.Add("heart", heartLine)
	p.Legend.Add("breathing", breathLine)

	return p.Save(14*vg.Inch, 6*vg.Inch, path)
}
