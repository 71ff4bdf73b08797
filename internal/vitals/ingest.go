package vitals

import "fmt"

// validateCube checks the upstream slice before extraction. The window
// policy needs at least NumRangeSelBins+1 bins to clamp into.
func validateCube(cube []Sample, numRangeBins, numVirtualAnt int) error {
	if len(cube) == 0 {
		return fmt.Errorf("nil radar cube: %w", ErrInvalidArg)
	}
	if numRangeBins <= NumRangeSelBins {
		return fmt.Errorf("cube has %d range bins, need more than %d: %w", numRangeBins, NumRangeSelBins, ErrInvalidArg)
	}
	if numVirtualAnt <= 0 || len(cube) < numRangeBins*numVirtualAnt {
		return fmt.Errorf("cube shorter than %d bins x %d antennas: %w", numRangeBins, numVirtualAnt, ErrInvalidArg)
	}
	return nil
}

// extractFrame copies the NumRangeSelBins x NumVirtualAnt window
// centered on the hint bin out of the cube, converting Q15 to float
// verbatim. This is the single site that knows the upstream stores the
// imaginary part first; everything downstream sees abstract complex
// floats. The window start is clamped so it always fits the cube.
func (p *Pipeline) extractFrame(cube []Sample, numRangeBins, numVirtualAnt, hintBin int) {
	startBin := hintBin - NumRangeSelBins/2
	if startBin < 0 {
		startBin = 0
	}
	if startBin+NumRangeSelBins > numRangeBins {
		startBin = numRangeBins - NumRangeSelBins
	}

	dataIdx := 0
	for bin := 0; bin < NumRangeSelBins; bin++ {
		for ant := 0; ant < NumVirtualAnt; ant++ {
			if ant < numVirtualAnt {
				s := cube[CubeIndex(startBin+bin, ant, numRangeBins)]
				p.frame[dataIdx] = complex(float32(s.Re), float32(s.Im))
			} else {
				p.frame[dataIdx] = 0
			}
			dataIdx++
		}
	}
}
