package synth

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/baxter-barlow/chirp/internal/vitals"
)

func TestGeneratorDeterministic(t *testing.T) {
	g1 := NewGenerator(32, BreathingTone(17, 6, 11))
	g2 := NewGenerator(32, BreathingTone(17, 6, 11))

	for f := 0; f < 10; f++ {
		a := g1.NextFrame()
		b := g2.NextFrame()
		if !bytes.Equal(samplesBytes(a), samplesBytes(b)) {
			t.Fatalf("frame %d diverges", f)
		}
	}
}

func TestGeneratorToneWindow(t *testing.T) {
	g := NewGenerator(32, BreathingTone(17, 6, 11))
	cube := g.NextFrame()

	// Carrying bins hold the tone on every antenna; others are zero.
	for bin := 0; bin < 32; bin++ {
		s := cube[vitals.CubeIndex(bin, 0, 32)]
		carrying := bin >= 6 && bin < 11
		if carrying && s.Re == 0 && s.Im == 0 {
			t.Errorf("bin %d empty inside tone window", bin)
		}
		if !carrying && (s.Re != 0 || s.Im != 0) {
			t.Errorf("bin %d = %+v outside tone window", bin, s)
		}
	}
}

func TestGeneratorDitherBounded(t *testing.T) {
	g := NewGenerator(16, BreathingTone(17, 0, 16))
	g.NoiseQ15 = 50

	clean := NewGenerator(16, BreathingTone(17, 0, 16))

	for f := 0; f < 5; f++ {
		noisy := g.NextFrame()
		ref := clean.NextFrame()
		for i := range noisy {
			dr := int(noisy[i].Re) - int(ref[i].Re)
			di := int(noisy[i].Im) - int(ref[i].Im)
			if dr > 50 || dr < -50 || di > 50 || di < -50 {
				t.Fatalf("frame %d sample %d dither (%d,%d) out of bounds", f, i, dr, di)
			}
		}
	}
}

func TestRecordingRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, 16)
	if err != nil {
		t.Fatal(err)
	}

	g := NewGenerator(16, HeartTone(82, 4, 9))
	var want [][]vitals.Sample
	for f := 0; f < 4; f++ {
		cube := g.NextFrame()
		cp := make([]vitals.Sample, len(cube))
		copy(cp, cube)
		want = append(want, cp)
		if err := w.WriteFrame(cube); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	r, err := NewReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if r.NumRangeBins() != 16 || r.NumVirtualAnt() != vitals.NumVirtualAnt {
		t.Fatalf("geometry %dx%d", r.NumRangeBins(), r.NumVirtualAnt())
	}

	for f := 0; f < 4; f++ {
		got, err := r.NextFrame()
		if err != nil {
			t.Fatalf("frame %d: %v", f, err)
		}
		if !bytes.Equal(samplesBytes(got), samplesBytes(want[f])) {
			t.Fatalf("frame %d mismatch", f)
		}
	}
	if _, err := r.NextFrame(); !errors.Is(err, io.EOF) {
		t.Errorf("got %v at end of recording, want io.EOF", err)
	}
}

func TestReaderRejectsGarbage(t *testing.T) {
	if _, err := NewReader(bytes.NewReader([]byte("not a recording"))); err == nil {
		t.Error("garbage accepted")
	}

	// Truncated mid-frame is an error, not EOF.
	var buf bytes.Buffer
	w, _ := NewWriter(&buf, 8)
	g := NewGenerator(8, BreathingTone(17, 0, 8))
	_ = w.WriteFrame(g.NextFrame())
	_ = w.Flush()

	r, err := NewReader(bytes.NewReader(buf.Bytes()[:buf.Len()-3]))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.NextFrame(); !errors.Is(err, ErrBadRecording) {
		t.Errorf("got %v, want ErrBadRecording", err)
	}
}

func samplesBytes(s []vitals.Sample) []byte {
	out := make([]byte, 0, len(s)*4)
	for _, v := range s {
		out = append(out, byte(v.Im), byte(uint16(v.Im)>>8), byte(v.Re), byte(uint16(v.Re)>>8))
	}
	return out
}
