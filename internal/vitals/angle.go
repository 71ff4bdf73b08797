package vitals

// neighborhood3 returns the toroidal +/-1 neighborhood of idx in a
// dimension of n cells, in (idx-1, idx, idx+1) order with wraparound.
func neighborhood3(idx, n int) [3]int {
	return [3]int{(idx + n - 1) % n, idx, (idx + 1) % n}
}

// preProcess runs the per-frame stages: DC accumulation and removal,
// the 2-D angle FFT per range cell, magnitude accumulation for peak
// tracking, and the 3x3 neighborhood capture into the cycle buffer.
// frameIdx is the position of this frame within the cycle.
func (p *Pipeline) preProcess(frameIdx int) {
	p.dc.accumulate(p.frame)
	p.dc.subtract(p.frame)

	rows := neighborhood3(p.lastPeakJ, AngleFFTSize)
	cols := neighborhood3(p.lastPeakI, AngleFFTSize)

	dataSetIdx := frameIdx * NumRangeSelBins * NumAngleSelBins

	for bin := 0; bin < NumRangeSelBins; bin++ {
		// Azimuth pass: one 16-pt FFT per antenna row, populated
		// through the geometry map.
		for r := 0; r < p.geom.numRows; r++ {
			for c := 0; c < AngleFFTSize; c++ {
				if c < p.geom.numCols {
					if v := p.geom.antennaAt(r, c); v >= 0 {
						p.rowIn[c] = p.frame[v+bin*NumVirtualAnt]
						continue
					}
				}
				p.rowIn[c] = 0
			}
			fftInto(p.rowOut, p.rowIn, p.twiddleAngle)
			for j := 0; j < AngleFFTSize; j++ {
				p.colMajor[j*p.geom.numRows+r] = p.rowOut[j]
			}
		}

		// Elevation pass: for each azimuth frequency, a 16-pt FFT
		// across the (zero-padded) antenna rows.
		for j := 0; j < AngleFFTSize; j++ {
			for r := 0; r < AngleFFTSize; r++ {
				if r < p.geom.numRows {
					p.colIn[r] = p.colMajor[j*p.geom.numRows+r]
				} else {
					p.colIn[r] = 0
				}
			}
			fftInto(p.colOut, p.colIn, p.twiddleAngle)
			copy(p.grid2D[j*AngleFFTSize:(j+1)*AngleFFTSize], p.colOut)

			magnitudeSquared(p.colOut, p.magRow)
			for i := 0; i < AngleFFTSize; i++ {
				p.angleMagSum[j*AngleFFTSize+i] += p.magRow[i]
			}
		}

		// Capture the 3x3 neighborhood around the tracked peak into
		// this frame's cycle-buffer slot, row-major.
		for _, rj := range rows {
			for _, ci := range cols {
				p.cycleBuf[dataSetIdx] = p.grid2D[rj*AngleFFTSize+ci]
				dataSetIdx++
			}
		}
	}

	// The peak is re-acquired at the cycle boundary, and once early in
	// the very first cycle so tracking starts from real data instead
	// of cell (0,0).
	if frameIdx == TotalFrames-1 || (p.loop == 0 && frameIdx == 1) {
		p.updateAnglePeak()
	}

	if frameIdx == TotalFrames-1 {
		p.dc.finalize()
	}
}

// updateAnglePeak scans the accumulated magnitude grid for its argmax,
// re-anchors the tracked (i, j) peak, and zeroes the accumulator for
// the next cycle.
func (p *Pipeline) updateAnglePeak() {
	var peak float32
	for j := 0; j < AngleFFTSize; j++ {
		for i := 0; i < AngleFFTSize; i++ {
			if v := p.angleMagSum[j*AngleFFTSize+i]; v > peak {
				peak = v
				p.lastPeakJ = j
				p.lastPeakI = i
			}
		}
	}
	for i := range p.angleMagSum {
		p.angleMagSum[i] = 0
	}
}
