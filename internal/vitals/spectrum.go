package vitals

// argmax3 returns the index k in [lo, hi) maximizing the 3-tap sum
// s[k-1]+s[k]+s[k+1]; equal sums go to the larger centre value. A
// flat-zero band leaves the index at 0, which downstream converts to
// a zero BPM.
func argmax3(s []float32, lo, hi int) int {
	var best float32
	idx := 0
	for k := lo; k < hi; k++ {
		v := s[k-1] + s[k] + s[k+1]
		if v > best || (v == best && v > 0 && s[k] > s[idx]) {
			best = v
			idx = k
		}
	}
	return idx
}

// zeroPeak clears a detected peak and its immediate neighbors so a
// re-scan finds the next strongest. Indices are clamped; the band
// gates allow a peak flush against either end of the slice.
func zeroPeak(s []float32, idx int) {
	if idx-1 >= 0 {
		s[idx-1] = 0
	}
	if idx < len(s) {
		s[idx] = 0
	}
	if idx+1 < len(s) {
		s[idx+1] = 0
	}
}

// computeVitals runs the phase, spectrum and decision stages over the
// accumulated cycle buffer. Called every RefreshRate frames.
func (p *Pipeline) computeVitals() {
	for i := range p.breathStorage {
		p.breathStorage[i] = 0
	}
	for i := range p.heartStorage {
		p.heartStorage[i] = 0
	}

	for angle := 0; angle < NumAngleSelBins; angle++ {
		for rng := 0; rng < NumRangeSelBins; rng++ {
			p.processCell(angle, rng)
		}
	}

	p.decide()
}

// processCell turns one (angle, range) cell's phase time series into
// breathing and heart peak candidates and accumulates its spectra into
// the per-cycle storage used by the decision stage.
func (p *Pipeline) processCell(angleCell, rangeCell int) {
	p.cellPhaseSeries(angleCell, rangeCell, p.phaseDiff)

	// The designated reference cell feeds the breathing-deviation
	// estimate; see decide.
	if angleCell == refAngleCell && rangeCell == refRangeCell {
		copy(p.refSeries[:], p.phaseDiff[:len(p.refSeries)])
	}

	for i := range p.series {
		p.series[i] = 0
	}
	for t, x := range p.phaseDiff {
		p.series[t] = complex(x, 0)
	}

	fftInto(p.spectrum, p.series, p.twiddleSpectrum)
	magnitudeSquared(p.spectrum, p.magSpec)

	breathIdx := argmax3(p.magSpec, breathIndexStart, breathIndexEnd)

	// Harmonic product: S[2k]*S[k] emphasizes a fundamental whose
	// second harmonic is present. Entries past PhaseFFTSize/4 stay
	// zero.
	for k := 0; k < PhaseFFTSize/4; k++ {
		p.hps[k] = p.magSpec[2*k] * p.magSpec[k]
	}

	for k := breathIndexStart; k < breathIndexEnd; k++ {
		p.breathStorage[k] += p.magSpec[k]
	}
	for k := heartIndexStart; k < heartIndexEnd; k++ {
		p.heartStorage[k] += p.hps[k]
	}

	heartIdx1 := argmax3(p.hps, heartIndexStart, heartIndexEnd)

	cell := rangeCell + angleCell*NumRangeSelBins
	p.breathIdxArr[cell] = breathIdx
	p.heartIdx1Arr[cell] = heartIdx1

	zeroPeak(p.hps, heartIdx1)
	heartIdx2 := argmax3(p.hps, heartIndexStart, heartIndexEnd)
	p.heartIdx2Arr[cell] = heartIdx2

	zeroPeak(p.hps, heartIdx2)
	p.heartIdx3Arr[cell] = argmax3(p.hps, heartIndexStart, heartIndexEnd)
}
