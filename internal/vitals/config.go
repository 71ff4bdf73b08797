package vitals

import "fmt"

// TargetNearest selects whichever target the range profile says is
// strongest, instead of a fixed tracker id.
const TargetNearest = 255

// Config selects the range window, target identity and operating
// parameters for a Pipeline. It is copied on New/UpdateConfig and
// immutable between resets.
type Config struct {
	// Enabled gates all processing. A disabled pipeline accepts
	// frames and does nothing.
	Enabled bool

	// TrackerIntegration is reserved. When set, the caller derives
	// the hint bin from an upstream tracker (see internal/target);
	// the pipeline itself only ever sees the hint.
	TrackerIntegration bool

	// TargetID is the tracker target to monitor: 0-249, or
	// TargetNearest.
	TargetID uint8

	// RangeBinStart is the hint bin used when tracker integration is
	// off.
	RangeBinStart uint16

	// NumRangeBins is the width of the processed range window,
	// 1..NumRangeSelBins.
	NumRangeBins uint16

	// RangeResolution is meters per range bin.
	RangeResolution float32
}

// DefaultConfig returns an enabled configuration monitoring the
// nearest target at a mid-range window.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		TargetID:        TargetNearest,
		RangeBinStart:   12,
		NumRangeBins:    NumRangeSelBins,
		RangeResolution: 0.043,
	}
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if c.TargetID > 249 && c.TargetID != TargetNearest {
		return fmt.Errorf("target id %d out of range: %w", c.TargetID, ErrInvalidArg)
	}
	if c.NumRangeBins < 1 || c.NumRangeBins > NumRangeSelBins {
		return fmt.Errorf("num range bins %d out of range [1,%d]: %w", c.NumRangeBins, NumRangeSelBins, ErrInvalidArg)
	}
	if c.RangeResolution <= 0 {
		return fmt.Errorf("range resolution %v must be positive: %w", c.RangeResolution, ErrInvalidArg)
	}
	return nil
}
