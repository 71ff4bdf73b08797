package synth

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/baxter-barlow/chirp/internal/vitals"
)

// Cube recordings are a flat little-endian container: an 8-byte magic,
// the cube geometry, then frames of raw Q15 samples in cube order.
var recordingMagic = [8]byte{'C', 'H', 'I', 'R', 'P', 'C', 'U', 'B'}

// ErrBadRecording reports a corrupt or truncated recording file.
var ErrBadRecording = errors.New("synth: bad recording")

// Writer streams cubes into a recording.
type Writer struct {
	w            *bufio.Writer
	numRangeBins int
	numVirtual   int
}

// NewWriter writes the recording header and returns a frame writer.
func NewWriter(w io.Writer, numRangeBins int) (*Writer, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(recordingMagic[:]); err != nil {
		return nil, err
	}
	hdr := [4]byte{}
	binary.LittleEndian.PutUint16(hdr[0:], uint16(numRangeBins))
	binary.LittleEndian.PutUint16(hdr[2:], uint16(vitals.NumVirtualAnt))
	if _, err := bw.Write(hdr[:]); err != nil {
		return nil, err
	}
	return &Writer{w: bw, numRangeBins: numRangeBins, numVirtual: vitals.NumVirtualAnt}, nil
}

// WriteFrame appends one cube. The cube length must match the header
// geometry.
func (w *Writer) WriteFrame(cube []vitals.Sample) error {
	if len(cube) != w.numRangeBins*w.numVirtual {
		return fmt.Errorf("cube length %d, want %d: %w", len(cube), w.numRangeBins*w.numVirtual, ErrBadRecording)
	}
	var pair [4]byte
	for _, s := range cube {
		binary.LittleEndian.PutUint16(pair[0:], uint16(s.Im))
		binary.LittleEndian.PutUint16(pair[2:], uint16(s.Re))
		if _, err := w.w.Write(pair[:]); err != nil {
			return err
		}
	}
	return nil
}

// Flush drains buffered frames to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Reader replays a recording frame by frame.
type Reader struct {
	r            *bufio.Reader
	numRangeBins int
	numVirtual   int
	cube         []vitals.Sample
}

// NewReader validates the header and returns a frame reader.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	var magic [8]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if magic != recordingMagic {
		return nil, fmt.Errorf("magic %q: %w", magic, ErrBadRecording)
	}
	var hdr [4]byte
	if _, err := io.ReadFull(br, hdr[:]); err != nil {
		return nil, fmt.Errorf("reading geometry: %w", err)
	}
	bins := int(binary.LittleEndian.Uint16(hdr[0:]))
	ants := int(binary.LittleEndian.Uint16(hdr[2:]))
	if bins == 0 || ants == 0 {
		return nil, fmt.Errorf("geometry %dx%d: %w", bins, ants, ErrBadRecording)
	}
	return &Reader{
		r:            br,
		numRangeBins: bins,
		numVirtual:   ants,
		cube:         make([]vitals.Sample, bins*ants),
	}, nil
}

// NumRangeBins returns the recorded cube width.
func (r *Reader) NumRangeBins() int {
	return r.numRangeBins
}

// NumVirtualAnt returns the recorded antenna count.
func (r *Reader) NumVirtualAnt() int {
	return r.numVirtual
}

// NextFrame reads one cube, reusing an internal buffer. Returns
// io.EOF cleanly at the end of the recording.
func (r *Reader) NextFrame() ([]vitals.Sample, error) {
	var pair [4]byte
	for i := range r.cube {
		if _, err := io.ReadFull(r.r, pair[:]); err != nil {
			if i == 0 && errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("frame truncated at sample %d: %w", i, ErrBadRecording)
		}
		r.cube[i] = vitals.Sample{
			Im: int16(binary.LittleEndian.Uint16(pair[0:])),
			Re: int16(binary.LittleEndian.Uint16(pair[2:])),
		}
	}
	return r.cube, nil
}
