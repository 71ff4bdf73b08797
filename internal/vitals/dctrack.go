package vitals

// dcTracker removes the slow-varying DC component from each frame
// using two ping-pong halves with named roles: one half accumulates
// the running sum for the current cycle while the other holds the
// frozen mean of the previous cycle. The subtracted mean is therefore
// always one full cycle old; a frame is never corrected by a mean it
// contributed to.
type dcTracker struct {
	acc    []complex64
	frozen []complex64
}

func newDCTracker(n int) dcTracker {
	return dcTracker{
		acc:    make([]complex64, n),
		frozen: make([]complex64, n),
	}
}

// accumulate adds the fresh extract into the accumulating half.
func (d *dcTracker) accumulate(frame []complex64) {
	for i := range frame {
		d.acc[i] += frame[i]
	}
}

// subtract removes the frozen mean from the working frame in place.
func (d *dcTracker) subtract(frame []complex64) {
	for i := range frame {
		frame[i] -= d.frozen[i]
	}
}

// finalize runs at the last frame of a cycle: the accumulated sum
// becomes the new frozen mean, the stale mean is cleared to start the
// next accumulation, and the halves swap roles.
func (d *dcTracker) finalize() {
	for i, v := range d.acc {
		d.acc[i] = complex(real(v)/TotalFrames, imag(v)/TotalFrames)
	}
	for i := range d.frozen {
		d.frozen[i] = 0
	}
	d.acc, d.frozen = d.frozen, d.acc
}

// reset clears both halves.
func (d *dcTracker) reset() {
	for i := range d.acc {
		d.acc[i] = 0
	}
	for i := range d.frozen {
		d.frozen[i] = 0
	}
}
