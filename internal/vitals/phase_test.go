package vitals

import (
	"math"
	"testing"
)

func TestUnwrapPhaseContinuity(t *testing.T) {
	// A phase ramp that crosses the branch cut repeatedly must come
	// out monotone after unwrapping.
	const steps = 200
	const inc = 0.4

	var corr float32
	prevRaw := float32(0)
	prevOut := float32(0)

	for i := 1; i <= steps; i++ {
		truth := float64(i) * inc
		raw := float32(math.Atan2(math.Sin(truth), math.Cos(truth)))
		out := unwrapPhase(raw, prevRaw, &corr)
		if i > 1 {
			step := out - prevOut
			if math.Abs(float64(step)-inc) > 1e-3 {
				t.Fatalf("step %d: unwrapped increment %v, want %v", i, step, inc)
			}
		}
		prevRaw = raw
		prevOut = out
	}
}

func TestUnwrapPhaseSmallSteps(t *testing.T) {
	// Steps below the cutoff pass through untouched.
	var corr float32
	out := unwrapPhase(0.5, 0.2, &corr)
	if out != 0.5 || corr != 0 {
		t.Errorf("got out=%v corr=%v, want 0.5, 0", out, corr)
	}
}

func TestUnwrapPhaseWrapDown(t *testing.T) {
	// +pi jump downward: previous near +pi, current near -pi.
	var corr float32
	prev := float32(3.0)
	cur := float32(-3.0)
	out := unwrapPhase(cur, prev, &corr)
	// Correction adds 2*pi so the series keeps climbing.
	want := cur + 2*pi
	if math.Abs(float64(out-want)) > 1e-5 {
		t.Errorf("got %v, want %v", out, want)
	}
}

func TestUnwrapPhaseWrapUp(t *testing.T) {
	var corr float32
	prev := float32(-3.0)
	cur := float32(3.0)
	out := unwrapPhase(cur, prev, &corr)
	want := cur - 2*pi
	if math.Abs(float64(out-want)) > 1e-5 {
		t.Errorf("got %v, want %v", out, want)
	}
}

func TestCellPhaseSeriesOrdering(t *testing.T) {
	// Fill one cell's ring slots with a known phase ramp laid down as
	// if the cycle wrapped mid-way, then confirm the series reads back
	// time-ordered regardless of the ring position.
	p := newTestPipeline(t)
	const stride = NumRangeSelBins * NumAngleSelBins

	const angleCell = 2
	const rangeCell = 1
	base := angleCell + rangeCell*NumAngleSelBins

	// Pretend the ring's write position is mid-cycle.
	p.frameCount = 40

	for age := 0; age < TotalFrames; age++ {
		// age 0 is the oldest sample, stored at the current write
		// position.
		slot := (p.frameCount + age) % TotalFrames
		phase := 0.01 * float64(age)
		p.cycleBuf[base+slot*stride] = complex(float32(math.Cos(phase)), float32(math.Sin(phase)))
	}

	dst := make([]float32, TotalFrames-1)
	p.cellPhaseSeries(angleCell, rangeCell, dst)

	for tIdx, x := range dst {
		if math.Abs(float64(x)-0.01) > 1e-4 {
			t.Fatalf("sample %d: first difference %v, want 0.01", tIdx, x)
		}
	}
}
