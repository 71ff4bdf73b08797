package serialmux

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/baxter-barlow/chirp/internal/monitoring"
	"github.com/baxter-barlow/chirp/internal/tlv"
)

// maxFrameSize bounds buffering; a frame claiming more than this is
// treated as corruption and resynchronized past.
const maxFrameSize = 1 << 20

// FrameReader reassembles TLV frames from a serial byte stream.
type FrameReader struct {
	port SerialPorter
	buf  []byte
	read []byte
}

// NewFrameReader wraps an open port.
func NewFrameReader(port SerialPorter) *FrameReader {
	return &FrameReader{
		port: port,
		read: make([]byte, 4096),
	}
}

// Next blocks until one complete frame is available and returns it
// parsed. Bytes before the next magic word are discarded. Returns the
// port's error (io.EOF included) once the stream ends.
func (r *FrameReader) Next(ctx context.Context) (tlv.Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return tlv.Frame{}, err
		}

		if f, ok := r.tryParse(); ok {
			return f, nil
		}

		n, err := r.port.Read(r.read)
		if n > 0 {
			r.buf = append(r.buf, r.read[:n]...)
		}
		if err != nil {
			// Drain whatever arrived with the error first.
			if f, ok := r.tryParse(); ok {
				return f, nil
			}
			if errors.Is(err, io.EOF) {
				return tlv.Frame{}, io.EOF
			}
			return tlv.Frame{}, fmt.Errorf("serial read: %w", err)
		}
	}
}

// tryParse attempts to cut one frame off the front of the buffer.
func (r *FrameReader) tryParse() (tlv.Frame, bool) {
	for {
		start := tlv.FindMagic(r.buf, 0)
		if start < 0 {
			// Keep a magic-word-sized tail in case the word straddles
			// a read boundary.
			if len(r.buf) > len(tlv.MagicWord) {
				r.buf = r.buf[len(r.buf)-len(tlv.MagicWord):]
			}
			return tlv.Frame{}, false
		}
		if start > 0 {
			monitoring.Logf("serialmux: discarded %d bytes before magic word", start)
			r.buf = r.buf[start:]
		}

		if len(r.buf) < tlv.HeaderSize {
			return tlv.Frame{}, false
		}

		h, err := tlv.ParseHeader(r.buf)
		if err != nil || h.TotalLen > maxFrameSize {
			// Corrupt header: skip this magic word and resync.
			monitoring.Logf("serialmux: bad frame header, resyncing: %v", err)
			r.buf = r.buf[len(tlv.MagicWord):]
			continue
		}

		if len(r.buf) < int(h.TotalLen) {
			return tlv.Frame{}, false
		}

		f, err := tlv.ParseFrame(r.buf[:h.TotalLen])
		if err != nil {
			monitoring.Logf("serialmux: bad frame body, resyncing: %v", err)
			r.buf = r.buf[len(tlv.MagicWord):]
			continue
		}

		// Records alias the buffer; copy them out before the buffer
		// is reused.
		for i := range f.Records {
			payload := make([]byte, len(f.Records[i].Payload))
			copy(payload, f.Records[i].Payload)
			f.Records[i].Payload = payload
		}
		r.buf = r.buf[h.TotalLen:]
		return f, true
	}
}
