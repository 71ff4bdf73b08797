package tlv

import (
	"errors"
	"testing"

	"github.com/baxter-barlow/chirp/internal/vitals"
)

func TestFindMagic(t *testing.T) {
	data := append([]byte{0xff, 0x00, 0x02}, MagicWord[:]...)
	if got := FindMagic(data, 0); got != 3 {
		t.Errorf("FindMagic = %d, want 3", got)
	}
	if got := FindMagic(data, 4); got != -1 {
		t.Errorf("FindMagic past word = %d, want -1", got)
	}
	if got := FindMagic(nil, 0); got != -1 {
		t.Errorf("FindMagic(nil) = %d, want -1", got)
	}
}

func TestFrameRoundTrip(t *testing.T) {
	vs := VitalSigns{
		TargetID:           3,
		RangeBin:           14,
		HeartRate:          72.3,
		BreathingRate:      15.0,
		BreathingDeviation: 0.021,
		Valid:              true,
	}
	records := []Record{
		{Type: TypeVitalSigns, Payload: vs.Marshal()},
		{Type: TypeRangeProfile, Payload: []byte{1, 2, 3, 4}},
	}

	wire := EncodeFrame(Header{Version: 0x0102, FrameNumber: 77, Platform: 0x6843}, records)

	f, err := ParseFrame(wire)
	if err != nil {
		t.Fatalf("ParseFrame: %v", err)
	}
	if f.Header.FrameNumber != 77 || f.Header.NumTLVs != 2 {
		t.Errorf("header = %+v", f.Header)
	}
	if int(f.Header.TotalLen) != len(wire) {
		t.Errorf("total length %d, wire %d", f.Header.TotalLen, len(wire))
	}
	if len(f.Records) != 2 {
		t.Fatalf("parsed %d records", len(f.Records))
	}

	got, err := UnmarshalVitalSigns(f.Records[0].Payload)
	if err != nil {
		t.Fatal(err)
	}
	if got != vs {
		t.Errorf("vital signs round trip: got %+v, want %+v", got, vs)
	}
}

func TestVitalSignsWireLayout(t *testing.T) {
	vs := VitalSigns{TargetID: 0x0201, RangeBin: 0x0403, Valid: true}
	buf := vs.Marshal()
	if len(buf) != VitalSignsSize {
		t.Fatalf("marshal length %d, want %d", len(buf), VitalSignsSize)
	}
	// Little-endian u16 fields, valid byte at 16, reserved tail zero.
	if buf[0] != 0x01 || buf[1] != 0x02 || buf[2] != 0x03 || buf[3] != 0x04 {
		t.Errorf("id/rangeBin bytes = % x", buf[:4])
	}
	if buf[16] != 1 || buf[17] != 0 || buf[18] != 0 || buf[19] != 0 {
		t.Errorf("valid/reserved bytes = % x", buf[16:])
	}
}

func TestParseHeaderErrors(t *testing.T) {
	t.Run("short", func(t *testing.T) {
		if _, err := ParseHeader(make([]byte, 10)); !errors.Is(err, ErrShortBuffer) {
			t.Errorf("got %v", err)
		}
	})
	t.Run("no magic", func(t *testing.T) {
		if _, err := ParseHeader(make([]byte, HeaderSize)); !errors.Is(err, ErrNoMagic) {
			t.Errorf("got %v", err)
		}
	})
	t.Run("bad total length", func(t *testing.T) {
		wire := EncodeFrame(Header{}, nil)
		wire[12] = 1 // total length below header size
		wire[13] = 0
		wire[14] = 0
		wire[15] = 0
		if _, err := ParseHeader(wire); !errors.Is(err, ErrBadHeader) {
			t.Errorf("got %v", err)
		}
	})
}

func TestParseFrameTruncated(t *testing.T) {
	wire := EncodeFrame(Header{}, []Record{{Type: TypeStats, Payload: make([]byte, 16)}})
	if _, err := ParseFrame(wire[:len(wire)-4]); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("got %v", err)
	}
}

func TestResultConversion(t *testing.T) {
	r := vitals.Result{ID: 2, RangeBin: 9, HeartRate: 70.56, BreathingRate: 14.112, BreathingDeviation: 0.5, Valid: true}
	if got := FromResult(r).Result(); got != r {
		t.Errorf("conversion round trip: got %+v, want %+v", got, r)
	}
}

func TestTypeName(t *testing.T) {
	if got := TypeName(TypeVitalSigns); got != "VITAL_SIGNS" {
		t.Errorf("TypeName = %q", got)
	}
	if got := TypeName(0x9999); got != "UNKNOWN_0x9999" {
		t.Errorf("TypeName unknown = %q", got)
	}
}
