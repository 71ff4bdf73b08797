// Command vitalsd runs the vital-signs detector: it drives the
// processing pipeline from a radar cube source (serial TLV stream,
// recording replay, or built-in synthesizer), persists published
// measurements, and serves the HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baxter-barlow/chirp/internal/api"
	"github.com/baxter-barlow/chirp/internal/fixedphase"
	"github.com/baxter-barlow/chirp/internal/serialmux"
	"github.com/baxter-barlow/chirp/internal/stream"
	"github.com/baxter-barlow/chirp/internal/synth"
	"github.com/baxter-barlow/chirp/internal/target"
	"github.com/baxter-barlow/chirp/internal/tlv"
	"github.com/baxter-barlow/chirp/internal/vitals"
	"github.com/baxter-barlow/chirp/internal/vitalsdb"
)

var (
	listen     = flag.String("listen", ":8080", "HTTP listen address")
	dbPath     = flag.String("db", "vitals.db", "sqlite database path (empty disables persistence)")
	serialPath = flag.String("serial", "", "radar serial port (e.g. /dev/ttyUSB1)")
	replayPath = flag.String("replay", "", "cube recording to replay instead of a serial port")
	synthTone  = flag.Int("synth", 0, "run the built-in synthesizer at this spectrum index (0 disables)")
	natsURL    = flag.String("nats", "", "NATS server URL for result publishing (empty disables)")
	hintBin    = flag.Int("hint", 12, "range bin hint when tracker integration is off")
	rangeRes   = flag.Float64("range-res", 0.043, "range resolution in meters per bin")
	trackFlag  = flag.Bool("track", false, "derive the hint bin from the strongest in-gate return")
	realtime   = flag.Bool("realtime", true, "pace replay/synth at the radar frame rate")
	loopReplay = flag.Bool("loop", false, "restart the recording when it ends")
)

func main() {
	flag.Parse()

	cfg := vitals.DefaultConfig()
	cfg.RangeBinStart = uint16(*hintBin)
	cfg.RangeResolution = float32(*rangeRes)
	cfg.TrackerIntegration = *trackFlag

	pipe, err := vitals.New(cfg)
	if err != nil {
		log.Fatalf("building pipeline: %v", err)
	}

	var db *vitalsdb.DB
	var sessionID string
	if *dbPath != "" {
		db, err = vitalsdb.Open(*dbPath)
		if err != nil {
			log.Fatalf("opening database: %v", err)
		}
		defer db.Close()
		sess, err := db.BeginSession(sourceName())
		if err != nil {
			log.Fatalf("beginning session: %v", err)
		}
		sessionID = sess.ID
		log.Printf("session %s (%s)", sess.ID, sess.Source)
	}

	var pub *stream.Publisher
	if *natsURL != "" {
		nc, err := stream.Connect(*natsURL)
		if err != nil {
			log.Fatalf("connecting to NATS: %v", err)
		}
		defer nc.Close()
		pub = stream.NewPublisher(nc, stream.DefaultSubject, sessionID)
		log.Printf("publishing to %s", stream.DefaultSubject)
	}

	latest := &latestHolder{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    *listen,
		Handler: api.NewServer(latest, db, sessionID).ServeMux(),
	}
	go func() {
		log.Printf("listening on %s", *listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()
	defer srv.Shutdown(context.Background())

	d := &daemon{
		pipe:    pipe,
		db:      db,
		pub:     pub,
		latest:  latest,
		session: sessionID,
		hint:    *hintBin,
	}
	if *trackFlag {
		sel, err := target.NewSelector(target.DefaultConfig())
		if err != nil {
			log.Fatalf("building target selector: %v", err)
		}
		d.selector = sel
	}

	if err := d.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("detector stopped: %v", err)
	}
	log.Print("shut down")
}

func sourceName() string {
	switch {
	case *serialPath != "":
		return "serial:" + *serialPath
	case *replayPath != "":
		return "replay:" + *replayPath
	case *synthTone != 0:
		return fmt.Sprintf("synth:%d", *synthTone)
	default:
		return "idle"
	}
}

// daemon owns the frame loop.
type daemon struct {
	pipe     *vitals.Pipeline
	db       *vitalsdb.DB
	pub      *stream.Publisher
	latest   *latestHolder
	selector *target.Selector
	session  string
	hint     int
	frames   int
	profile  []uint16
}

func (d *daemon) run(ctx context.Context) error {
	switch {
	case *serialPath != "":
		return d.runSerial(ctx)
	case *replayPath != "":
		return d.runReplay(ctx)
	case *synthTone != 0:
		return d.runSynth(ctx)
	default:
		log.Print("no frame source configured; API only")
		<-ctx.Done()
		return ctx.Err()
	}
}

func (d *daemon) runSerial(ctx context.Context) error {
	port, err := serialmux.RealPortFactory{}.Open(*serialPath, serialmux.DefaultPortMode())
	if err != nil {
		return err
	}
	defer port.Close()
	log.Printf("reading frames from %s", *serialPath)

	reader := serialmux.NewFrameReader(port)
	var assembler *tlv.CubeAssembler
	var numBins int

	for {
		frame, err := reader.Next(ctx)
		if err != nil {
			return err
		}
		for _, rec := range frame.Records {
			if rec.Type != tlv.TypeComplexRangeFFT {
				continue
			}
			slice, err := tlv.UnmarshalComplexRangeFFT(rec.Payload)
			if err != nil {
				log.Printf("bad range FFT record: %v", err)
				continue
			}
			if assembler == nil || slice.NumRangeBins != numBins {
				numBins = slice.NumRangeBins
				assembler = tlv.NewCubeAssembler(numBins, vitals.NumVirtualAnt)
			}
			cube, err := assembler.Add(slice)
			if err != nil {
				log.Printf("cube assembly: %v", err)
				continue
			}
			if cube != nil {
				if err := d.step(cube, numBins); err != nil {
					return err
				}
			}
		}
	}
}

func (d *daemon) runReplay(ctx context.Context) error {
	ticker := d.cadence()
	defer ticker.Stop()

	for {
		f, err := os.Open(*replayPath)
		if err != nil {
			return err
		}
		reader, err := synth.NewReader(f)
		if err != nil {
			f.Close()
			return err
		}
		log.Printf("replaying %s (%d bins)", *replayPath, reader.NumRangeBins())

		for {
			cube, err := reader.NextFrame()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				f.Close()
				return err
			}
			if err := d.pace(ctx, ticker); err != nil {
				f.Close()
				return err
			}
			if err := d.step(cube, reader.NumRangeBins()); err != nil {
				f.Close()
				return err
			}
		}
		f.Close()

		if !*loopReplay {
			log.Print("recording finished")
			<-ctx.Done()
			return ctx.Err()
		}
	}
}

func (d *daemon) runSynth(ctx context.Context) error {
	const bins = 32
	gen := synth.NewGenerator(bins, synth.BreathingTone(*synthTone, 0, bins))
	log.Printf("synthesizing tone at index %d", *synthTone)

	ticker := d.cadence()
	defer ticker.Stop()

	for {
		if err := d.pace(ctx, ticker); err != nil {
			return err
		}
		if err := d.step(gen.NextFrame(), bins); err != nil {
			return err
		}
	}
}

// cadence returns the frame pacing ticker; an effectively-unpaced one
// when -realtime is off.
func (d *daemon) cadence() *time.Ticker {
	if *realtime {
		frameRate := synth.EffectiveFrameRate
		return time.NewTicker(time.Duration(float64(time.Second) / frameRate))
	}
	return time.NewTicker(time.Microsecond)
}

func (d *daemon) pace(ctx context.Context, ticker *time.Ticker) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ticker.C:
		return nil
	}
}

// step feeds one cube through the pipeline and fans out any freshly
// published result.
func (d *daemon) step(cube []vitals.Sample, numBins int) error {
	hint := d.hint
	if d.selector != nil {
		if bin, ok := d.selectTarget(cube, numBins); ok {
			hint = bin
		}
	}

	if err := d.pipe.ProcessFrame(cube, numBins, 1, vitals.NumVirtualAnt, hint); err != nil {
		return fmt.Errorf("processing frame: %w", err)
	}

	d.frames++
	if d.frames%vitals.RefreshRate != 0 {
		return nil
	}

	out, err := d.pipe.Output()
	if err != nil {
		return err
	}
	now := time.Now()
	d.latest.set(out, now)

	if d.db != nil {
		if err := d.db.RecordMeasurement(d.session, now, out); err != nil {
			log.Printf("recording measurement: %v", err)
		}
	}
	if d.pub != nil {
		if err := d.pub.Publish(now, out); err != nil {
			log.Printf("publishing measurement: %v", err)
		}
	}
	if out.Valid {
		log.Printf("HR %.1f BPM, BR %.1f BPM, dev %.4f (bin %d)",
			out.HeartRate, out.BreathingRate, out.BreathingDeviation, out.RangeBin)
	}
	return nil
}

// selectTarget derives the hint bin from the strongest in-gate return
// of the first antenna's range profile. Target-loss gating feeds the
// pipeline's persistence counter.
func (d *daemon) selectTarget(cube []vitals.Sample, numBins int) (int, bool) {
	if cap(d.profile) < numBins {
		d.profile = make([]uint16, numBins)
	}
	d.profile = d.profile[:numBins]
	for bin := 0; bin < numBins; bin++ {
		s := cube[vitals.CubeIndex(bin, 0, numBins)]
		_, mag := fixedphase.Extract(s.Re, s.Im)
		d.profile[bin] = mag
	}

	res, err := d.selector.Process(d.profile, *rangeRes)
	if err != nil {
		log.Printf("target selection: %v", err)
		return 0, false
	}
	d.pipe.HandleTargetLoss(!res.Valid)
	if !res.Valid {
		return 0, false
	}
	return res.PrimaryBin, true
}
