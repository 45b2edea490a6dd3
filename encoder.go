package id3

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// Encoder writes frames in the layout of one tag version.
type Encoder struct {
	w       io.Writer
	version Version
	unsync  bool // unsynchronise every frame, for v2.4 tags with the global flag
}

func NewEncoder(w io.Writer, v Version) *Encoder {
	return &Encoder{w: w, version: v}
}

func (e *Encoder) WriteFrame(f Frame) error {
	b, err := encodeFrame(f, e.version, e.unsync)
	if err != nil {
		return err
	}
	_, err = e.w.Write(b)
	return err
}

// encodeFrame renders header and payload of f. For v2.4 the payload
// gets its group byte, data length indicator and unsynchronisation
// back; v2.3 tag-wide unsynchronisation is applied by the caller.
func encodeFrame(f Frame, v Version, unsync bool) ([]byte, error) {
	h := f.Header()
	if len(h.id) != 4 || !validFrameID([]byte(h.id)) {
		return nil, errors.Errorf("invalid frame ID %q", h.id)
	}

	var (
		flags FrameFlags
		data  []byte
	)
	if h.opaque {
		if h.version.Major() != v.Major() {
			return nil, errors.Errorf("%s: cannot convert a compressed or encrypted frame from %s to %s", h.id, h.version, v)
		}
		flags, data = h.flags, h.raw
	} else {
		payload := h.raw
		if payload != nil && h.version != 0 && h.version.Major() != v.Major() {
			// The kept bytes are laid out for the old version.
			Logging.Printf("%s: re-encoding lossy frame from %s for %s", h.id, h.version, v)
			payload = nil
		}
		if payload == nil {
			var err error
			payload, err = f.encode(v)
			if err != nil {
				return nil, errors.Wrapf(err, "encoding %s frame", h.id)
			}
		}

		from := h.version
		if from == 0 {
			from = v
		}
		flags = h.flags.statusFlags(from, v)
		if _, grouped := h.Group(); grouped {
			flags = flags.with(v, flagGrouping)
			data = append(data, h.group)
		}
		if v.Major() >= 4 && h.flags.DataLengthIndicator(h.version) {
			flags = flags.with(v, flagDataLength)
			dli := encodeSyncsafe(len(payload))
			data = append(data, dli[:]...)
		}
		data = append(data, payload...)
		if v.Major() >= 4 && (unsync || h.flags.Unsynchronised(h.version)) {
			flags = flags.with(v, flagFrameUnsync)
			data = Unsynchronise(data)
		}
	}

	out := make([]byte, frameHeaderSize, frameHeaderSize+len(data))
	copy(out, h.id)
	if v.Major() >= 4 {
		if len(data) > maxSyncsafe {
			return nil, formatErrorf("Frame %s of %d bytes is too large", h.id, len(data))
		}
		putSyncsafe(out[4:8], len(data))
	} else {
		putUint32(out[4:8], len(data))
	}
	out[8] = byte(flags >> 8)
	out[9] = byte(flags)
	return append(out, data...), nil
}

// encodeFrames renders the frame region of t, without padding.
func (t *Tag) encodeFrames() ([]byte, error) {
	v := t.Header.Version
	if v.Major() != 3 && v.Major() != 4 {
		return nil, formatErrorf("Invalid version: %d", v.Major())
	}

	var buf bytes.Buffer
	enc := NewEncoder(&buf, v)
	enc.unsync = v.Major() >= 4 && t.Header.Flags.Unsynchronisation()
	for _, frame := range t.Frames {
		if err := enc.WriteFrame(frame); err != nil {
			return nil, err
		}
	}

	b := buf.Bytes()
	if v.Major() < 4 && t.Header.Flags.Unsynchronisation() {
		b = Unsynchronise(b)
	}
	return b, nil
}

// header returns the header to write in front of frames of the given
// length followed by padding bytes. Neither the extended header nor
// the footer is written.
func (t *Tag) header(frames, padding int) ([]byte, error) {
	h := TagHeader{
		Version: t.Header.Version,
		Flags:   t.Header.Flags &^ (flagExtendedHeader | flagFooter),
		Size:    frames + padding,
	}
	return h.encode()
}

// Encode writes the complete tag, followed by Padding bytes of
// padding, to w.
func (t *Tag) Encode(w io.Writer) error {
	frames, err := t.encodeFrames()
	if err != nil {
		return err
	}
	padding := Padding
	if padding < 0 {
		padding = 0
	}
	header, err := t.header(len(frames), padding)
	if err != nil {
		return err
	}
	Logging.Printf("Writing %s tag with %d bytes of frames and %d bytes of padding", t.Header.Version, len(frames), padding)

	return writeMany(w, header, frames, make([]byte, padding))
}

func writeMany(w io.Writer, data ...[]byte) error {
	for _, data := range data {
		_, err := w.Write(data)
		if err != nil {
			return err
		}
	}

	return nil
}
