package vitals

import (
	"math"
	"math/bits"
)

// genTwiddle fills w with the rotation factors for an n-point forward
// FFT and returns the number written. The table holds w[k] =
// exp(-2*pi*i*k/n) for k in [0, n/2); fftInto consumes exactly this
// layout, so generator and kernel stay in lock step. n must be a power
// of two.
func genTwiddle(w []complex64, n int) int {
	for k := 0; k < n/2; k++ {
		delta := 2 * math.Pi * float64(k) / float64(n)
		w[k] = complex(float32(math.Cos(delta)), float32(-math.Sin(delta)))
	}
	return n / 2
}

// fftInto computes the unnormalized forward FFT of src into dst using
// the twiddle table from genTwiddle for len(src). dst and src must not
// alias and must both have power-of-two length n; w needs n/2 entries.
func fftInto(dst, src, w []complex64) {
	n := len(src)
	logN := uint(bits.TrailingZeros(uint(n)))

	for i := 0; i < n; i++ {
		j := int(bits.Reverse32(uint32(i)) >> (32 - logN))
		dst[j] = src[i]
	}

	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		step := n / size
		for start := 0; start < n; start += size {
			k := 0
			for off := 0; off < half; off++ {
				tw := w[k]
				a := dst[start+off]
				b := dst[start+off+half] * tw
				dst[start+off] = a + b
				dst[start+off+half] = a - b
				k += step
			}
		}
	}
}

// magnitudeSquared writes re*re + im*im of each input element into out.
func magnitudeSquared(in []complex64, out []float32) {
	for i, v := range in {
		re := real(v)
		im := imag(v)
		out[i] = re*re + im*im
	}
}

// atan2f is the single-precision four-quadrant inverse tangent. The
// result lies in (-pi, pi]; atan2f(y, 0) is +pi/2 for positive y and
// -pi/2 for negative y.
func atan2f(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)))
}
