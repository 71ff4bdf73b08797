// Package vitals turns a stream of range-FFT radar cube slices into
// breathing-rate, heart-rate and breathing-deviation estimates.
//
// A Pipeline accumulates 128 frames per cycle: every frame it extracts
// a 5-bin range window, removes a one-cycle-old DC mean, runs a 2-D
// angle FFT and stores the 3x3 cells around the tracked angle peak.
// Every 32 frames it unwraps the stored phase series per cell, takes a
// 512-pt spectrum, detects the breathing peak and the harmonic-product
// heart peak, and fuses the 45 per-cell votes into one smoothed,
// jump-limited result.
package vitals

import "math"

// Result is one published measurement record. It is copied out whole;
// callers never see pipeline internals.
type Result struct {
	ID                 uint16
	RangeBin           uint16
	HeartRate          float32 // BPM, 0 when invalid
	BreathingRate      float32 // BPM, 0 when invalid
	BreathingDeviation float32
	Valid              bool
}

// Pipeline owns every buffer of the detector for its lifetime. It is
// not safe for concurrent use; callers needing concurrency serialize
// ProcessFrame and Output at the boundary.
type Pipeline struct {
	cfg  Config
	geom antennaGeometry

	initialized bool

	frameCount int // position within the current cycle, [0, TotalFrames)
	loop       int // refresh counter, gates warm-up
	rangeBin   uint16
	noTarget   bool

	lastPeakI        int
	lastPeakJ        int
	targetLostFrames int

	heartHistIndex    int
	breathHistIndex   int
	previousHeartPeak [4]int

	dc dcTracker

	frame       []complex64 // per-frame extract, NumRangeSelBins*NumVirtualAnt
	cycleBuf    []complex64 // TotalFrames*NumRangeSelBins*NumAngleSelBins ring
	angleMagSum []float32   // AngleFFTSize*AngleFFTSize accumulator

	twiddleAngle    []complex64
	twiddleSpectrum []complex64

	// Angle-stage scratch, reused every frame.
	rowIn    []complex64
	rowOut   []complex64
	colMajor []complex64
	colIn    []complex64
	colOut   []complex64
	grid2D   []complex64
	magRow   []float32

	// Spectrum-stage scratch, reused every refresh.
	phaseDiff     []float32
	series        []complex64
	spectrum      []complex64
	magSpec       []float32
	hps           []float32
	breathStorage []float32
	heartStorage  []float32
	heartScratch  []float32
	hist          []float32
	refSeries     [100]float32
	breathIdxArr  [NumAngleSelBins * NumRangeSelBins]int
	heartIdx1Arr  [NumAngleSelBins * NumRangeSelBins]int
	heartIdx2Arr  [NumAngleSelBins * NumRangeSelBins]int
	heartIdx3Arr  [NumAngleSelBins * NumRangeSelBins]int

	out Result
}

// New builds an initialized pipeline: buffers allocated, twiddle
// tables generated, antenna geometry fixed. All later processing is
// allocation-free.
func New(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:  cfg,
		geom: newAntennaGeometry(),

		dc: newDCTracker(NumRangeSelBins * NumVirtualAnt),

		frame:       make([]complex64, NumRangeSelBins*NumVirtualAnt),
		cycleBuf:    make([]complex64, TotalFrames*NumRangeSelBins*NumAngleSelBins),
		angleMagSum: make([]float32, AngleFFTSize*AngleFFTSize),

		twiddleAngle:    make([]complex64, AngleFFTSize/2),
		twiddleSpectrum: make([]complex64, PhaseFFTSize/2),

		rowIn:    make([]complex64, AngleFFTSize),
		rowOut:   make([]complex64, AngleFFTSize),
		colMajor: make([]complex64, AngleFFTSize*3),
		colIn:    make([]complex64, AngleFFTSize),
		colOut:   make([]complex64, AngleFFTSize),
		grid2D:   make([]complex64, AngleFFTSize*AngleFFTSize),
		magRow:   make([]float32, AngleFFTSize),

		phaseDiff:     make([]float32, TotalFrames-1),
		series:        make([]complex64, PhaseFFTSize),
		spectrum:      make([]complex64, PhaseFFTSize),
		magSpec:       make([]float32, PhaseFFTSize),
		hps:           make([]float32, PhaseFFTSize/2),
		breathStorage: make([]float32, PhaseFFTSize/2),
		heartStorage:  make([]float32, PhaseFFTSize/2),
		heartScratch:  make([]float32, PhaseFFTSize/2),
		hist:          make([]float32, PhaseFFTSize),
	}

	genTwiddle(p.twiddleAngle, AngleFFTSize)
	genTwiddle(p.twiddleSpectrum, PhaseFFTSize)

	p.initialized = true
	return p, nil
}

// UpdateConfig replaces the configuration atomically and resets
// pipeline state. Twiddle tables and geometry are kept.
func (p *Pipeline) UpdateConfig(cfg Config) error {
	if !p.initialized {
		return ErrNotInitialized
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	p.cfg = cfg
	p.Reset()
	return nil
}

// Reset clears counters, peak tracking, history and all accumulation
// buffers. Configuration, twiddles and geometry survive.
func (p *Pipeline) Reset() {
	p.frameCount = 0
	p.loop = 0
	p.rangeBin = 0
	p.noTarget = false
	p.lastPeakI = 0
	p.lastPeakJ = 0
	p.targetLostFrames = 0
	p.heartHistIndex = 0
	p.breathHistIndex = 0
	p.previousHeartPeak = [4]int{}
	p.dc.reset()
	for i := range p.cycleBuf {
		p.cycleBuf[i] = 0
	}
	for i := range p.angleMagSum {
		p.angleMagSum[i] = 0
	}
	p.refSeries = [100]float32{}
	p.out = Result{}
}

// ProcessFrame consumes one radar frame. hintBin centers the range
// window; numChirps is carried for interface parity with the cube
// producer and is not consulted. The per-frame stages always run; the
// phase/spectrum/decision stages run inline every RefreshRate frames
// before returning.
func (p *Pipeline) ProcessFrame(cube []Sample, numRangeBins, numChirps, numVirtualAnt, hintBin int) error {
	if !p.initialized {
		return ErrNotInitialized
	}
	if err := validateCube(cube, numRangeBins, numVirtualAnt); err != nil {
		return err
	}
	if !p.cfg.Enabled {
		return nil
	}
	_ = numChirps

	p.rangeBin = uint16(hintBin)

	p.extractFrame(cube, numRangeBins, numVirtualAnt, hintBin)
	p.preProcess(p.frameCount)

	p.frameCount++
	if p.frameCount >= TotalFrames {
		p.frameCount = 0
	}

	if p.frameCount%RefreshRate == 0 {
		p.computeVitals()
		p.loop++
	}

	return nil
}

// Output copies out the latest published result.
func (p *Pipeline) Output() (Result, error) {
	if !p.initialized {
		return Result{}, ErrNotInitialized
	}
	return p.out, nil
}

// OutputReady reports whether the pipeline has warmed up and holds a
// valid measurement.
func (p *Pipeline) OutputReady() bool {
	return p.initialized && p.loop >= warmupLoops && p.out.Valid
}

// HandleTargetLoss feeds the upstream target-visibility signal. After
// targetPersistFrames consecutive losses the output is invalidated
// until the target returns. The return value reports whether the
// caller should keep feeding frames for the last known range bin.
func (p *Pipeline) HandleTargetLoss(lost bool) bool {
	if lost {
		p.targetLostFrames++
		if p.targetLostFrames >= targetPersistFrames {
			p.noTarget = true
			return false
		}
		return true
	}
	p.targetLostFrames = 0
	p.noTarget = false
	return true
}

// RangeBinFromPosition converts a tracker (x, y) position in meters to
// the range bin that contains it (range over resolution, truncated).
// Returns 0 for a non-positive resolution.
func RangeBinFromPosition(x, y, rangeResolution float32) uint16 {
	if rangeResolution <= 0 {
		return 0
	}
	r := float32(math.Sqrt(float64(x*x + y*y)))
	return uint16(r / rangeResolution)
}

// Config returns a copy of the active configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}
