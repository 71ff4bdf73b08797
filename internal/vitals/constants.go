package vitals

// Binding constants of the detector. Every buffer in the pipeline is
// sized from these at construction and never reallocated.
const (
	// NumRangeSelBins is the width of the processed range window.
	NumRangeSelBins = 5

	// NumVirtualAnt is the virtual antenna count of the 3TX x 4RX
	// front end.
	NumVirtualAnt = 12

	// TotalFrames is the accumulation cycle length.
	TotalFrames = 128

	// RefreshRate is the sub-cycle cadence, in frames, at which the
	// spectrum and decision stages run and a result is published.
	RefreshRate = 32

	// AngleFFTSize is the azimuth/elevation FFT length.
	AngleFFTSize = 16

	// NumAngleSelBins is the 3x3 neighborhood saved around the angle
	// peak.
	NumAngleSelBins = 9

	// PhaseFFTSize is the spectrum FFT length over the phase series.
	PhaseFFTSize = 512

	// BPMPerIndex converts a spectrum bin index to beats (or breaths)
	// per minute.
	BPMPerIndex = 0.882
)

// Spectrum band gates and decision thresholds.
const (
	breathIndexStart = 3
	breathIndexEnd   = 50
	heartIndexStart  = 68
	heartIndexEnd    = 128

	heartDecisionThresh = 3
	heartJumpLimit      = 12
	warmupLoops         = 7
	targetPersistFrames = 50
)

const pi = float32(3.1415926535897)
