// Package target selects the range bin the vital-signs pipeline
// should watch when no external tracker supplies one. It searches a
// range profile for the strongest return inside a range gate, applies
// an SNR floor, and holds the previous choice through small peak
// wander (hysteresis) so the hint bin does not flap frame to frame.
package target

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidArg reports a nil profile or out-of-range configuration.
var ErrInvalidArg = errors.New("target: invalid argument")

// Defaults for a seated-subject vitals deployment.
const (
	DefaultMinRangeMeters = 0.3
	DefaultMaxRangeMeters = 2.5
	DefaultMinSNRdB       = 10
	DefaultHysteresisBins = 2
	maxTrackBins          = 8
)

// Config bounds the target search.
type Config struct {
	MinRangeMeters float64
	MaxRangeMeters float64
	MinSNRdB       int
	NumTrackBins   int
	HysteresisBins int
}

// DefaultConfig returns the firmware defaults.
func DefaultConfig() Config {
	return Config{
		MinRangeMeters: DefaultMinRangeMeters,
		MaxRangeMeters: DefaultMaxRangeMeters,
		MinSNRdB:       DefaultMinSNRdB,
		NumTrackBins:   3,
		HysteresisBins: DefaultHysteresisBins,
	}
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if c.MinRangeMeters < 0 || c.MaxRangeMeters <= c.MinRangeMeters {
		return fmt.Errorf("range gate [%v, %v): %w", c.MinRangeMeters, c.MaxRangeMeters, ErrInvalidArg)
	}
	if c.NumTrackBins < 1 || c.NumTrackBins > maxTrackBins {
		return fmt.Errorf("track bins %d out of [1,%d]: %w", c.NumTrackBins, maxTrackBins, ErrInvalidArg)
	}
	return nil
}

// Result is one selection outcome.
type Result struct {
	PrimaryBin int
	Magnitude  uint16
	RangeM     float64
	Confidence int // 0-100
	Valid      bool
}

// Selector carries the hysteresis state across frames.
type Selector struct {
	cfg     Config
	prevBin int
	stable  int
	locked  bool
}

// NewSelector builds a selector, validating the configuration.
func NewSelector(cfg Config) (*Selector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Selector{cfg: cfg}, nil
}

// Reset drops the lock and hysteresis history.
func (s *Selector) Reset() {
	s.prevBin = 0
	s.stable = 0
	s.locked = false
}

// StableFrames reports how many consecutive frames the selection has
// held still.
func (s *Selector) StableFrames() int {
	return s.stable
}

// Process examines one range profile and returns the selected target.
// An invalid result means no return passed the gate and SNR floor;
// the caller keeps its previous hint bin.
func (s *Selector) Process(magnitude []uint16, rangeResolution float64) (Result, error) {
	var res Result
	if len(magnitude) == 0 {
		return res, fmt.Errorf("empty range profile: %w", ErrInvalidArg)
	}
	if rangeResolution <= 0 {
		return res, fmt.Errorf("range resolution %v: %w", rangeResolution, ErrInvalidArg)
	}

	numBins := len(magnitude)
	minBin := int(s.cfg.MinRangeMeters/rangeResolution + 1e-9)
	maxBin := int(s.cfg.MaxRangeMeters/rangeResolution + 1e-9)
	if minBin >= numBins {
		minBin = 0
	}
	if maxBin >= numBins {
		maxBin = numBins - 1
	}
	if minBin >= maxBin {
		return res, nil
	}

	peakBin, peakValue := findPeak(magnitude, minBin, maxBin+1)

	snr := estimateSNRdB(magnitude, peakBin, peakValue)
	if snr < s.cfg.MinSNRdB {
		if s.cfg.MinSNRdB > 0 {
			res.Confidence = snr * 100 / s.cfg.MinSNRdB
		}
		return res, nil
	}

	// Hysteresis: keep the previous bin while the new peak wanders
	// within a few bins of it and the old bin still carries power.
	if s.locked && absInt(peakBin-s.prevBin) <= s.cfg.HysteresisBins {
		if int(magnitude[s.prevBin]) > int(peakValue)/2 {
			peakBin = s.prevBin
			peakValue = magnitude[peakBin]
		}
	}

	if peakBin != s.prevBin {
		s.stable = 0
	} else if s.stable < math.MaxUint16 {
		s.stable++
	}
	s.prevBin = peakBin
	s.locked = true

	res.PrimaryBin = peakBin
	res.Magnitude = peakValue
	res.RangeM = float64(peakBin) * rangeResolution
	if snr > 40 {
		res.Confidence = 100
	} else {
		res.Confidence = snr * 100 / 40
	}
	res.Valid = true
	return res, nil
}

func findPeak(magnitude []uint16, startBin, endBin int) (bin int, value uint16) {
	bin = startBin
	for i := startBin; i < endBin; i++ {
		if magnitude[i] > value {
			value = magnitude[i]
			bin = i
		}
	}
	return bin, value
}

// estimateSNRdB approximates 10*log10(peak/noise) against the mean of
// the bins more than five away from the peak, using the firmware's
// step table.
func estimateSNRdB(magnitude []uint16, peakBin int, peakValue uint16) int {
	var noiseSum, noiseCount int
	for i := range magnitude {
		if i < peakBin-5 || i > peakBin+5 {
			noiseSum += int(magnitude[i])
			noiseCount++
		}
	}
	if noiseCount == 0 || noiseSum == 0 {
		return 40
	}
	noiseAvg := noiseSum / noiseCount
	if noiseAvg == 0 {
		return 40
	}

	snrLinear := int(peakValue) / noiseAvg
	switch {
	case snrLinear >= 1000:
		return 30
	case snrLinear >= 316:
		return 25
	case snrLinear >= 100:
		return 20
	case snrLinear >= 31:
		return 15
	case snrLinear >= 10:
		return 10
	case snrLinear >= 3:
		return 5
	}
	return 0
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
