// Package units provides shared conversions between spectrum indices,
// physiological rates and radar range geometry.
package units

import (
	"math"

	"github.com/baxter-barlow/chirp/internal/vitals"
)

// BPMPerIndex is the calibration factor mapping a 512-pt phase
// spectrum index to beats (or breaths) per minute. It re-exports the
// pipeline's binding constant.
const BPMPerIndex = vitals.BPMPerIndex

// IndexToBPM converts a spectrum bin index to BPM.
func IndexToBPM(index int) float64 {
	return float64(index) * BPMPerIndex
}

// BPMToIndex converts a BPM value back to the nearest spectrum bin.
func BPMToIndex(bpm float64) int {
	return int(math.Round(bpm / BPMPerIndex))
}

// BPMToHz converts a per-minute rate to Hertz.
func BPMToHz(bpm float64) float64 {
	return bpm / 60.0
}

// HzToBPM converts a Hertz rate to per-minute.
func HzToBPM(hz float64) float64 {
	return hz * 60.0
}

// BinToMeters converts a range bin index to meters for the given
// range resolution.
func BinToMeters(bin int, rangeResolution float64) float64 {
	return float64(bin) * rangeResolution
}

// MetersToBin converts a range in meters to the containing bin.
// Returns 0 for a non-positive resolution.
func MetersToBin(meters, rangeResolution float64) int {
	if rangeResolution <= 0 {
		return 0
	}
	return int(meters / rangeResolution)
}
