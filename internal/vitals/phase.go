package vitals

// unwrapPhase removes 2*pi discontinuities from a phase step. phase
// and prev are consecutive raw atan2 samples; corrCum carries the
// cumulative correction across the series. Returns the unwrapped
// phase. The +pi special case keeps the variation sign when the step
// lands exactly on the branch cut.
func unwrapPhase(phase, prev float32, corrCum *float32) float32 {
	diff := phase - prev

	var mod float32
	if diff > pi {
		mod = 1
	} else if diff < -pi {
		mod = -1
	}

	diffMod := diff - mod*2*pi
	if diffMod == -pi && diff > 0 {
		diffMod = pi
	}

	corr := diffMod - diff
	if (corr < pi && corr > 0) || (corr > -pi && corr < 0) {
		corr = 0
	}

	*corrCum += corr
	return phase + *corrCum
}

// cellPhaseSeries reads the TotalFrames complex samples stored for one
// (angle, range) cell out of the cycle ring, oldest first, and writes
// the TotalFrames-1 first differences of the unwrapped phase into dst.
// The ring's current write position is frameCount, so the walk starts
// there and strides one frame block at a time with wraparound.
func (p *Pipeline) cellPhaseSeries(angleCell, rangeCell int, dst []float32) {
	const stride = NumRangeSelBins * NumAngleSelBins
	const total = stride * TotalFrames

	sel := angleCell + rangeCell*NumAngleSelBins

	addr := sel + p.frameCount*stride
	if addr >= total {
		addr -= total
	}
	v := p.cycleBuf[addr]
	phasePrev := atan2f(imag(v), real(v))
	usedPrev := phasePrev

	var corrCum float32
	sel += stride

	for t := 0; t < TotalFrames-1; t++ {
		addr = sel + p.frameCount*stride
		if addr >= total {
			addr -= total
		}
		v = p.cycleBuf[addr]
		sel += stride

		phase := atan2f(imag(v), real(v))
		unwrapped := unwrapPhase(phase, phasePrev, &corrCum)
		phasePrev = phase

		dst[t] = unwrapped - usedPrev
		usedPrev = unwrapped
	}
}
