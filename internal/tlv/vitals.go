package tlv

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/baxter-barlow/chirp/internal/vitals"
)

// VitalSignsSize is the wire size of the vital-signs record: u16 id,
// u16 rangeBin, three f32 fields, u8 valid, three reserved bytes.
const VitalSignsSize = 20

// VitalSigns is the decoded vital-signs TLV payload (type 0x410).
type VitalSigns struct {
	TargetID           uint16
	RangeBin           uint16
	HeartRate          float32
	BreathingRate      float32
	BreathingDeviation float32
	Valid              bool
}

// FromResult converts a pipeline result into its wire record.
func FromResult(r vitals.Result) VitalSigns {
	return VitalSigns{
		TargetID:           r.ID,
		RangeBin:           r.RangeBin,
		HeartRate:          r.HeartRate,
		BreathingRate:      r.BreathingRate,
		BreathingDeviation: r.BreathingDeviation,
		Valid:              r.Valid,
	}
}

// Result converts a wire record back into a pipeline result.
func (v VitalSigns) Result() vitals.Result {
	return vitals.Result{
		ID:                 v.TargetID,
		RangeBin:           v.RangeBin,
		HeartRate:          v.HeartRate,
		BreathingRate:      v.BreathingRate,
		BreathingDeviation: v.BreathingDeviation,
		Valid:              v.Valid,
	}
}

// Marshal encodes the 20-byte little-endian record.
func (v VitalSigns) Marshal() []byte {
	buf := make([]byte, VitalSignsSize)
	binary.LittleEndian.PutUint16(buf[0:], v.TargetID)
	binary.LittleEndian.PutUint16(buf[2:], v.RangeBin)
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(v.HeartRate))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(v.BreathingRate))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(v.BreathingDeviation))
	if v.Valid {
		buf[16] = 1
	}
	return buf
}

// UnmarshalVitalSigns decodes a vital-signs record payload.
func UnmarshalVitalSigns(data []byte) (VitalSigns, error) {
	var v VitalSigns
	if len(data) < VitalSignsSize {
		return v, fmt.Errorf("vital signs payload %d bytes, need %d: %w", len(data), VitalSignsSize, ErrShortBuffer)
	}
	v.TargetID = binary.LittleEndian.Uint16(data[0:])
	v.RangeBin = binary.LittleEndian.Uint16(data[2:])
	v.HeartRate = math.Float32frombits(binary.LittleEndian.Uint32(data[4:]))
	v.BreathingRate = math.Float32frombits(binary.LittleEndian.Uint32(data[8:]))
	v.BreathingDeviation = math.Float32frombits(binary.LittleEndian.Uint32(data[12:]))
	v.Valid = data[16] != 0
	return v, nil
}
