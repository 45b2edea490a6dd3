package id3

type TagHeader struct {
	Version Version // The ID3v2 version the tag has, or will have, on disk
	Flags   HeaderFlags
	Size    int // Frames plus padding, excluding the header and footer
}

// decodeHeader parses the 10 byte tag header.
func decodeHeader(b [tagHeaderSize]byte) (TagHeader, error) {
	var magic [3]byte
	copy(magic[:], b[:3])
	if magic != Magic {
		return TagHeader{}, &NotATagError{Magic: magic}
	}

	version := Version(int16(b[3])<<8 | int16(b[4]))
	if b[3] != 3 && b[3] != 4 {
		return TagHeader{}, formatErrorf("Invalid version: %d", b[3])
	}
	if b[4] == 0xFF {
		return TagHeader{}, formatErrorf("Invalid revision: %d", b[4])
	}

	size, ok := decodeSyncsafe([4]byte{b[6], b[7], b[8], b[9]})
	if !ok {
		return TagHeader{}, formatErrorf("Malformed tag size % x", b[6:10])
	}

	return TagHeader{
		Version: version,
		Flags:   HeaderFlags(b[5]),
		Size:    size,
	}, nil
}

// encode renders the header. The size must fit in 28 bits.
func (h TagHeader) encode() ([]byte, error) {
	if h.Size < 0 || h.Size > maxSyncsafe {
		return nil, formatErrorf("Tag size %d does not fit in a syncsafe integer", h.Size)
	}
	out := make([]byte, tagHeaderSize)
	copy(out, Magic[:])
	out[3] = byte(h.Version >> 8)
	out[4] = byte(h.Version)
	out[5] = byte(h.Flags)
	putSyncsafe(out[6:], h.Size)
	return out, nil
}

// footer reports whether a footer follows the tag on disk.
func (h TagHeader) footer() bool {
	return h.Version.Major() >= 4 && h.Flags.Footer()
}

// Len returns the number of bytes the tag occupies on disk, including
// header and footer.
func (h TagHeader) Len() int {
	n := tagHeaderSize + h.Size
	if h.footer() {
		n += footerSize
	}
	return n
}

// extendedHeaderLen returns how many bytes the extended header at the
// start of body occupies.
func (h TagHeader) extendedHeaderLen(body []byte) (int, error) {
	if len(body) < 4 {
		return 0, formatErrorf("Extended header truncated")
	}
	var sb [4]byte
	copy(sb[:], body)

	if h.Version.Major() >= 4 {
		n, ok := decodeSyncsafe(sb)
		if !ok || n < 6 {
			return 0, formatErrorf("Malformed extended header size % x", sb[:])
		}
		return n, nil
	}
	// v2.3 excludes the size field itself.
	return 4 + decodeUint32(sb), nil
}
