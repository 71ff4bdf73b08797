package tlv

import (
	"encoding/binary"
	"fmt"

	"github.com/baxter-barlow/chirp/internal/vitals"
)

// ComplexRangeFFT is the decoded 0x0500 payload: one virtual
// antenna's full range-FFT slice for one chirp. Samples keep the
// firmware's imaginary-first Q15 layout.
type ComplexRangeFFT struct {
	NumRangeBins int
	ChirpIndex   int
	RxAntenna    int
	Samples      []vitals.Sample
}

// UnmarshalComplexRangeFFT decodes a COMPLEX_RANGE_FFT record
// payload.
func UnmarshalComplexRangeFFT(data []byte) (ComplexRangeFFT, error) {
	var c ComplexRangeFFT
	if len(data) < 8 {
		return c, fmt.Errorf("range FFT header %d bytes: %w", len(data), ErrShortBuffer)
	}
	c.NumRangeBins = int(binary.LittleEndian.Uint16(data[0:]))
	c.ChirpIndex = int(binary.LittleEndian.Uint16(data[2:]))
	c.RxAntenna = int(binary.LittleEndian.Uint16(data[4:]))

	iq := data[8:]
	if len(iq) < c.NumRangeBins*4 {
		return c, fmt.Errorf("range FFT payload holds %d bytes for %d bins: %w", len(iq), c.NumRangeBins, ErrShortBuffer)
	}

	c.Samples = make([]vitals.Sample, c.NumRangeBins)
	for i := 0; i < c.NumRangeBins; i++ {
		c.Samples[i] = vitals.Sample{
			Im: int16(binary.LittleEndian.Uint16(iq[i*4:])),
			Re: int16(binary.LittleEndian.Uint16(iq[i*4+2:])),
		}
	}
	return c, nil
}

// Marshal encodes a 0x0500 payload.
func (c ComplexRangeFFT) Marshal() []byte {
	buf := make([]byte, 8+len(c.Samples)*4)
	binary.LittleEndian.PutUint16(buf[0:], uint16(len(c.Samples)))
	binary.LittleEndian.PutUint16(buf[2:], uint16(c.ChirpIndex))
	binary.LittleEndian.PutUint16(buf[4:], uint16(c.RxAntenna))
	for i, s := range c.Samples {
		binary.LittleEndian.PutUint16(buf[8+i*4:], uint16(s.Im))
		binary.LittleEndian.PutUint16(buf[8+i*4+2:], uint16(s.Re))
	}
	return buf
}

// CubeAssembler collects per-antenna range-FFT records into a full
// radar cube for one frame.
type CubeAssembler struct {
	numRangeBins int
	numVirtual   int
	cube         []vitals.Sample
	seen         []bool
	seenCount    int
}

// NewCubeAssembler sizes the assembler for the cube geometry.
func NewCubeAssembler(numRangeBins, numVirtualAnt int) *CubeAssembler {
	return &CubeAssembler{
		numRangeBins: numRangeBins,
		numVirtual:   numVirtualAnt,
		cube:         make([]vitals.Sample, numRangeBins*numVirtualAnt),
		seen:         make([]bool, numVirtualAnt),
	}
}

// Add folds one antenna slice in. It returns the completed cube once
// every antenna has reported; the cube is reused across frames.
func (a *CubeAssembler) Add(c ComplexRangeFFT) ([]vitals.Sample, error) {
	if len(c.Samples) != a.numRangeBins {
		return nil, fmt.Errorf("slice has %d bins, cube has %d: %w", len(c.Samples), a.numRangeBins, ErrBadHeader)
	}
	if c.RxAntenna < 0 || c.RxAntenna >= a.numVirtual {
		return nil, fmt.Errorf("antenna %d out of %d: %w", c.RxAntenna, a.numVirtual, ErrBadHeader)
	}

	if !a.seen[c.RxAntenna] {
		a.seen[c.RxAntenna] = true
		a.seenCount++
	}
	copy(a.cube[c.RxAntenna*a.numRangeBins:], c.Samples)

	if a.seenCount < a.numVirtual {
		return nil, nil
	}

	for i := range a.seen {
		a.seen[i] = false
	}
	a.seenCount = 0
	return a.cube, nil
}
