// Package synth produces deterministic synthetic radar cube streams:
// phase-modulated returns that exercise the vital-signs pipeline with
// known breathing and heart tones. It backs the gen-cube tool, the
// daemon's replay mode and integration tests.
package synth

import (
	"math"

	"github.com/baxter-barlow/chirp/internal/units"
	"github.com/baxter-barlow/chirp/internal/vitals"
)

// EffectiveFrameRate is the frame rate implied by the pipeline's
// index-to-BPM calibration: bin spacing times the spectrum length.
const EffectiveFrameRate = units.BPMPerIndex * vitals.PhaseFFTSize / 60.0

// Tone is one sinusoidal phase modulation.
type Tone struct {
	FreqHz   float64
	ModRad   float64
	BinStart int // first cube range bin carrying the tone
	BinEnd   int // one past the last carrying bin
}

// BreathingTone builds a tone landing on the given spectrum index
// across the bin window.
func BreathingTone(index, binStart, binEnd int) Tone {
	return Tone{
		FreqHz:   float64(index) * EffectiveFrameRate / vitals.PhaseFFTSize,
		ModRad:   1.0,
		BinStart: binStart,
		BinEnd:   binEnd,
	}
}

// HeartTone is BreathingTone with a smaller displacement, matching
// the few-hundred-micron chest motion of a heartbeat.
func HeartTone(index, binStart, binEnd int) Tone {
	t := BreathingTone(index, binStart, binEnd)
	t.ModRad = 0.4
	return t
}

// Generator emits one cube per call, advancing an internal frame
// clock. The same construction parameters always yield the same
// stream.
type Generator struct {
	NumRangeBins int
	Amplitude    float64
	Tones        []Tone
	NoiseQ15     int16 // peak amplitude of deterministic dither, 0 for none

	frame int
	cube  []vitals.Sample
}

// NewGenerator builds a generator over the given cube width.
func NewGenerator(numRangeBins int, tones ...Tone) *Generator {
	return &Generator{
		NumRangeBins: numRangeBins,
		Amplitude:    8000,
		Tones:        tones,
		cube:         make([]vitals.Sample, numRangeBins*vitals.NumVirtualAnt),
	}
}

// Frame returns the current frame index.
func (g *Generator) Frame() int {
	return g.frame
}

// NextFrame renders the next cube. The returned slice is reused by
// the following call; consumers copy if they retain it.
func (g *Generator) NextFrame() []vitals.Sample {
	t := float64(g.frame) / EffectiveFrameRate

	for i := range g.cube {
		g.cube[i] = vitals.Sample{}
	}

	for bin := 0; bin < g.NumRangeBins; bin++ {
		var phase float64
		carrying := false
		for _, tone := range g.Tones {
			if bin >= tone.BinStart && bin < tone.BinEnd {
				phase += tone.ModRad * math.Sin(2*math.Pi*tone.FreqHz*t)
				carrying = true
			}
		}
		if !carrying {
			continue
		}

		re := int16(math.Round(g.Amplitude * math.Cos(phase)))
		im := int16(math.Round(g.Amplitude * math.Sin(phase)))
		for ant := 0; ant < vitals.NumVirtualAnt; ant++ {
			s := vitals.Sample{Re: re, Im: im}
			if g.NoiseQ15 != 0 {
				s.Re += g.dither(bin, ant, 0)
				s.Im += g.dither(bin, ant, 1)
			}
			g.cube[vitals.CubeIndex(bin, ant, g.NumRangeBins)] = s
		}
	}

	g.frame++
	return g.cube
}

// dither is a cheap deterministic hash noise source so "noisy" runs
// stay reproducible.
func (g *Generator) dither(bin, ant, lane int) int16 {
	h := uint64(g.frame)*1000003 + uint64(bin)*8191 + uint64(ant)*131 + uint64(lane)*7
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	span := int64(g.NoiseQ15)*2 + 1
	return int16(int64(h%uint64(span)) - int64(g.NoiseQ15))
}
