package id3

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

type decoderState int

const (
	awaitHeader decoderState = iota
	awaitBody
	splittingFrames
	done
	failed
)

// Decoder reads a tag from the start of a stream.
type Decoder struct {
	r      io.Reader
	state  decoderState
	err    error
	h      TagHeader
	body   []byte
	pos    int
	offset int64
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

func (d *Decoder) fail(err error) error {
	d.state = failed
	d.err = err
	return err
}

// Offset returns the number of bytes consumed from the reader so far.
// After Parse it is the position right behind the tag.
func (d *Decoder) Offset() int64 {
	return d.offset
}

// ParseHeader parses only the ID3 header.
func (d *Decoder) ParseHeader() (TagHeader, error) {
	switch d.state {
	case awaitHeader:
	case failed:
		return TagHeader{}, d.err
	default:
		return d.h, nil
	}

	var b [tagHeaderSize]byte
	n, err := io.ReadFull(d.r, b[:])
	d.offset += int64(n)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			var magic [3]byte
			copy(magic[:], b[:n])
			return TagHeader{}, d.fail(&NotATagError{Magic: magic})
		}
		return TagHeader{}, d.fail(errors.Wrap(err, "reading tag header"))
	}

	header, err := decodeHeader(b)
	if err != nil {
		return TagHeader{}, d.fail(err)
	}
	d.h = header
	d.state = awaitBody
	return header, nil
}

// readBody reads the frame region and undoes tag-wide
// unsynchronisation for v2.3 tags.
func (d *Decoder) readBody() error {
	n := d.h.Size
	if d.h.footer() {
		n += footerSize
	}

	// The declared size is not trusted for allocation; the buffer only
	// grows as far as the stream goes.
	var buf bytes.Buffer
	read, err := io.CopyN(&buf, d.r, int64(n))
	d.offset += read
	switch err {
	case nil:
	case io.EOF:
		Logging.Printf("Tag declares %d bytes but the stream ends after %d", n, read)
	default:
		return d.fail(errors.Wrap(err, "reading tag body"))
	}
	body := buf.Bytes()

	if len(body) > d.h.Size {
		body = body[:d.h.Size]
	}
	if d.h.Version.Major() < 4 && d.h.Flags.Unsynchronisation() {
		body = Resynchronise(body)
	}

	d.body = body
	d.state = splittingFrames

	if d.h.Flags.ExtendedHeader() {
		ext, err := d.h.extendedHeaderLen(body)
		if err != nil {
			return d.fail(err)
		}
		if ext > len(body) {
			return d.fail(formatErrorf("Extended header of %d bytes exceeds the tag", ext))
		}
		d.pos = ext
	}
	return nil
}

// ParseFrame reads the next ID3 frame. When it reaches padding, or a
// frame that cannot be split off, it returns io.EOF.
func (d *Decoder) ParseFrame() (Frame, error) {
	switch d.state {
	case awaitHeader:
		if _, err := d.ParseHeader(); err != nil {
			return nil, err
		}
		fallthrough
	case awaitBody:
		if err := d.readBody(); err != nil {
			return nil, err
		}
	case done:
		return nil, io.EOF
	case failed:
		return nil, d.err
	}

	rest := d.body[d.pos:]
	if len(rest) < frameHeaderSize || allZero(rest) {
		d.state = done
		return nil, io.EOF
	}

	if !validFrameID(rest[:4]) {
		Logging.Printf("Not a frame header (ID = %q) at offset %d, treating the rest as padding", rest[:4], d.pos)
		d.state = done
		return nil, io.EOF
	}

	version := d.h.Version
	id := FrameType(rest[:4])
	var sb [4]byte
	copy(sb[:], rest[4:8])
	size := decodeUint32(sb)
	if version.Major() >= 4 {
		if n, ok := decodeSyncsafe(sb); ok {
			size = n
		} else {
			Logging.Printf("Frame %s has a non-syncsafe size, reading it as a plain integer", id)
		}
	}
	flags := FrameFlags(uint16(rest[8])<<8 | uint16(rest[9]))

	if size > len(rest)-frameHeaderSize {
		Logging.Println(&TruncatedFrameError{ID: id, Size: size, Remaining: len(rest) - frameHeaderSize})
		d.state = done
		return nil, io.EOF
	}

	payload := make([]byte, size)
	copy(payload, rest[frameHeaderSize:])
	d.pos += frameHeaderSize + size

	return d.decodeFrame(FrameHeader{id: id, flags: flags, version: version}, payload), nil
}

// decodeFrame strips the per-frame encodings from payload and hands
// the result to the frame dictionary.
func (d *Decoder) decodeFrame(h FrameHeader, payload []byte) Frame {
	v := h.version
	if h.flags.Compressed(v) || h.flags.Encrypted(v) {
		h.raw, h.opaque = payload, true
		return RawFrame{FrameHeader: h, Data: payload}
	}

	data := payload
	if h.flags.Unsynchronised(v) || (v.Major() >= 4 && d.h.Flags.Unsynchronisation()) {
		data = Resynchronise(data)
	}
	if h.flags.Grouped(v) {
		if len(data) < 1 {
			return opaqueFrame(h, payload, errMissingField)
		}
		h.group = data[0]
		data = data[1:]
	}
	if h.flags.DataLengthIndicator(v) {
		if len(data) < 4 {
			return opaqueFrame(h, payload, errMissingField)
		}
		data = data[4:]
	}

	dec := lookupDecoder(h.id)
	frame, err := dec(h, data)
	if err == nil {
		return frame
	}

	var encErr *EncodingError
	if errors.As(err, &encErr) && frame != nil {
		Logging.Printf("Frame %s: %s, keeping its original bytes", h.id, err)
		h.raw = data
		frame, _ = dec(h, data)
		return frame
	}

	Logging.Printf("Frame %s could not be decoded: %s", h.id, err)
	return RawFrame{FrameHeader: h, Data: data, Err: err}
}

func opaqueFrame(h FrameHeader, payload []byte, err error) Frame {
	Logging.Printf("Frame %s: %s", h.id, err)
	h.raw, h.opaque = payload, true
	return RawFrame{FrameHeader: h, Data: payload, Err: err}
}

// Parse parses a tag.
//
// Parse will always return a valid tag. In the case of an error, the
// tag will be empty.
func (d *Decoder) Parse() (*Tag, error) {
	tag := &Tag{}
	header, err := d.ParseHeader()
	if err != nil {
		return tag, err
	}
	tag.Header = header

	for {
		frame, err := d.ParseFrame()
		if err != nil {
			if err == io.EOF {
				break
			}

			return &Tag{}, err
		}
		tag.Frames = append(tag.Frames, frame)
	}

	return tag, nil
}

func validFrameID(id []byte) bool {
	for _, b := range id {
		// Allow 0-9 and A-Z
		if (b < '0' || b > '9') && (b < 'A' || b > 'Z') {
			return false
		}
	}
	return true
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
