package vitals

import "testing"

func TestDCTrackerHalves(t *testing.T) {
	const n = NumRangeSelBins * NumVirtualAnt
	d := newDCTracker(n)

	if len(d.acc) != n || len(d.frozen) != n {
		t.Fatalf("half lengths %d/%d, want %d", len(d.acc), len(d.frozen), n)
	}
	if &d.acc[0] == &d.frozen[0] {
		t.Fatal("ping-pong halves alias")
	}
}

func TestDCTrackerCycle(t *testing.T) {
	const n = 4
	d := newDCTracker(n)

	frame := make([]complex64, n)
	in := complex64(complex(float32(128), float32(-64)))

	// First cycle: frozen mean is zero, so subtraction is a no-op and
	// the sum accumulates the raw input.
	for f := 0; f < TotalFrames; f++ {
		for i := range frame {
			frame[i] = in
		}
		d.accumulate(frame)
		d.subtract(frame)
		if frame[0] != in {
			t.Fatalf("frame %d: DC removed %v before any mean was frozen", f, frame[0])
		}
	}
	d.finalize()

	// Second cycle: the frozen mean equals the constant input exactly,
	// so every frame comes out zero.
	for f := 0; f < TotalFrames; f++ {
		for i := range frame {
			frame[i] = in
		}
		d.accumulate(frame)
		d.subtract(frame)
		for i := range frame {
			if frame[i] != 0 {
				t.Fatalf("frame %d cell %d: residual %v after exact mean", f, i, frame[i])
			}
		}
	}
	d.finalize()

	// The swap keeps roles: the half frozen two cycles ago is now
	// cleared and accumulating again.
	for i := range d.acc {
		if d.acc[i] != 0 {
			t.Fatalf("accumulating half not cleared after swap: %v", d.acc[i])
		}
	}
	for i := range d.frozen {
		if d.frozen[i] != in {
			t.Fatalf("frozen half = %v, want %v", d.frozen[i], in)
		}
	}
}

func TestDCTrackerReset(t *testing.T) {
	d := newDCTracker(2)
	d.acc[0] = 1
	d.frozen[1] = 2
	d.reset()
	if d.acc[0] != 0 || d.frozen[1] != 0 {
		t.Error("reset left residual values")
	}
}
