package mpeg

import (
	"io"

	"github.com/pkg/errors"
)

// WindowSize is the number of bytes the scanner advances per read.
const WindowSize = 1024

var ErrNoSync = errors.New("mpeg: no confirmed frame sync")

// Scanner searches a file for the first genuine MPEG audio frame. A
// header only counts if a second valid header follows it exactly one
// frame length later; a lone 0xFF 0xE? pair inside picture or object
// data is not enough.
type Scanner struct {
	r     io.ReaderAt
	size  int64
	buf   [2 * WindowSize]byte
	probe [HeaderSize]byte
}

func NewScanner(r io.ReaderAt, size int64) *Scanner {
	return &Scanner{r: r, size: size}
}

func (s *Scanner) read(p []byte, off int64) (int, error) {
	if off >= s.size {
		return 0, nil
	}
	if rem := s.size - off; int64(len(p)) > rem {
		p = p[:rem]
	}
	n, err := s.r.ReadAt(p, off)
	if err == io.EOF && n == len(p) {
		err = nil
	}
	if err != nil {
		return n, errors.Wrapf(err, "mpeg: reading at %d", off)
	}
	return n, nil
}

// HeaderAt decodes the frame header at off.
func (s *Scanner) HeaderAt(off int64) (Header, bool) {
	if off < 0 || off+HeaderSize > s.size {
		return Header{}, false
	}
	n, err := s.read(s.probe[:], off)
	if err != nil || n < HeaderSize {
		return Header{}, false
	}
	h, err := ParseHeader(s.probe[:])
	return h, err == nil
}

// Confirm reports whether off holds a valid frame header that is
// followed by another one.
func (s *Scanner) Confirm(off int64) bool {
	h, ok := s.HeaderAt(off)
	if !ok {
		return false
	}
	_, ok = s.HeaderAt(off + int64(h.FrameLength))
	return ok
}

// Find returns the offset of the first confirmed frame header that
// starts in [start, limit).
func (s *Scanner) Find(start, limit int64) (int64, error) {
	if limit > s.size {
		limit = s.size
	}
	if start < 0 {
		start = 0
	}

	base := start
	n, err := s.read(s.buf[:], base)
	if err != nil {
		return 0, err
	}

	for base < limit {
		more := base+int64(n) < s.size
		// With more data to come only the first window is scanned, the
		// second one supplies the bytes of headers that straddle it.
		end := n - 1
		if more {
			end = WindowSize
		}

		for i := 0; i < end && base+int64(i) < limit; i++ {
			if s.buf[i] != 0xFF || s.buf[i+1]&0xE0 != 0xE0 {
				continue
			}
			h, err := ParseHeader(s.buf[i:n])
			if err != nil {
				continue
			}
			off := base + int64(i)
			if _, ok := s.HeaderAt(off + int64(h.FrameLength)); ok {
				return off, nil
			}
		}

		if !more {
			break
		}
		copy(s.buf[:], s.buf[WindowSize:n])
		base += WindowSize
		m, err := s.read(s.buf[n-WindowSize:], base+int64(n-WindowSize))
		if err != nil {
			return 0, err
		}
		n = n - WindowSize + m
	}

	return 0, ErrNoSync
}
