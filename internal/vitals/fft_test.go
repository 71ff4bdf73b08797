package vitals

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/dsp/fourier"
)

// lcg is a tiny deterministic generator so kernel tests are
// reproducible without seeding global state.
type lcg struct{ state uint64 }

func (l *lcg) next() float32 {
	l.state = l.state*6364136223846793005 + 1442695040888963407
	return float32(int32(l.state>>33)) / float32(1<<31)
}

func TestGenTwiddleCount(t *testing.T) {
	for _, n := range []int{AngleFFTSize, PhaseFFTSize} {
		w := make([]complex64, n/2)
		if got := genTwiddle(w, n); got != n/2 {
			t.Errorf("genTwiddle(%d) wrote %d factors, want %d", n, got, n/2)
		}
		// First factor is always unity; the quarter-turn factor is -i.
		if real(w[0]) != 1 || imag(w[0]) != 0 {
			t.Errorf("w[0] = %v, want 1", w[0])
		}
		q := w[n/4]
		if math.Abs(float64(real(q))) > 1e-6 || math.Abs(float64(imag(q)+1)) > 1e-6 {
			t.Errorf("w[n/4] = %v, want -i", q)
		}
	}
}

func TestFFTAgainstReference(t *testing.T) {
	for _, n := range []int{AngleFFTSize, PhaseFFTSize} {
		src := make([]complex64, n)
		gen := lcg{state: uint64(n)}
		for i := range src {
			src[i] = complex(gen.next(), gen.next())
		}

		w := make([]complex64, n/2)
		genTwiddle(w, n)
		dst := make([]complex64, n)
		fftInto(dst, src, w)

		ref := make([]complex128, n)
		for i, v := range src {
			ref[i] = complex128(v)
		}
		want := fourier.NewCmplxFFT(n).Coefficients(nil, ref)

		// Single-precision butterflies against a float64 reference;
		// tolerance scales with the transform size.
		tol := 1e-3 * math.Sqrt(float64(n))
		for k := range want {
			dr := float64(real(dst[k])) - real(want[k])
			di := float64(imag(dst[k])) - imag(want[k])
			if math.Hypot(dr, di) > tol {
				t.Fatalf("n=%d bin %d: got %v, want %v", n, k, dst[k], want[k])
			}
		}
	}
}

func TestFFTImpulse(t *testing.T) {
	// A unit impulse transforms to an all-ones spectrum with no
	// normalization applied.
	n := AngleFFTSize
	src := make([]complex64, n)
	src[0] = 1
	w := make([]complex64, n/2)
	genTwiddle(w, n)
	dst := make([]complex64, n)
	fftInto(dst, src, w)
	for k, v := range dst {
		if math.Abs(float64(real(v))-1) > 1e-6 || math.Abs(float64(imag(v))) > 1e-6 {
			t.Fatalf("bin %d = %v, want 1", k, v)
		}
	}
}

func TestMagnitudeSquared(t *testing.T) {
	in := []complex64{0, 1, 1i, complex(float32(3), float32(4))}
	out := make([]float32, len(in))
	magnitudeSquared(in, out)
	want := []float32{0, 1, 1, 25}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("magnitudeSquared[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestAtan2fAxes(t *testing.T) {
	cases := []struct {
		y, x, want float32
	}{
		{0, 1, 0},
		{1, 0, pi / 2},
		{-1, 0, -pi / 2},
		{0, -1, pi},
	}
	for _, c := range cases {
		got := atan2f(c.y, c.x)
		if math.Abs(float64(got-c.want)) > 1e-6 {
			t.Errorf("atan2f(%v, %v) = %v, want %v", c.y, c.x, got, c.want)
		}
	}
}
