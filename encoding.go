package id3

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding is the text encoding byte that prefixes textual frame
// payloads.
type Encoding byte

const (
	ISO88591 Encoding = 0
	UTF16    Encoding = 1 // UTF-16 with byte order mark
	UTF16BE  Encoding = 2 // v2.4 only
	UTF8     Encoding = 3 // v2.4 only
)

var (
	// A missing BOM is read as big endian.
	utf16Decoding   encoding.Encoding = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	utf16Encoding   encoding.Encoding = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	utf16BEEncoding encoding.Encoding = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
)

var errOddLength = errors.New("odd number of bytes in UTF-16 text")

func (e Encoding) String() string {
	switch e {
	case ISO88591:
		return "ISO-8859-1"
	case UTF16:
		return "UTF-16"
	case UTF16BE:
		return "UTF-16BE"
	case UTF8:
		return "UTF-8"
	default:
		return fmt.Sprintf("encoding(%d)", byte(e))
	}
}

// Valid reports whether e is one of the four defined encodings.
func (e Encoding) Valid() bool {
	return e <= UTF8
}

// AllowedIn reports whether e may be written to a tag of version v.
func (e Encoding) AllowedIn(v Version) bool {
	if !e.Valid() {
		return false
	}
	return v.Major() >= 4 || e <= UTF16
}

func (e Encoding) terminator() []byte {
	if e == UTF16 || e == UTF16BE {
		return []byte{0, 0}
	}
	return []byte{0}
}

// defaultEncoding picks the encoding new frames are written with.
func defaultEncoding(v Version, values ...string) Encoding {
	if v.Major() >= 4 {
		return UTF8
	}
	if !allLatin1(values) {
		return UTF16
	}
	return ISO88591
}

func allLatin1(texts []string) bool {
	for _, s := range texts {
		for _, r := range s {
			if r > 0xFF {
				return false
			}
		}
	}
	return true
}

// decodeText converts b from encoding e to UTF-8. On failure it
// returns a best-effort string together with an *EncodingError.
func decodeText(b []byte, e Encoding) (string, error) {
	if len(b) == 0 {
		return "", nil
	}

	switch e {
	case ISO88591:
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
		if err != nil {
			return string(b), &EncodingError{Encoding: e, Err: err}
		}
		return string(out), nil
	case UTF16, UTF16BE:
		enc := utf16Decoding
		if e == UTF16BE {
			enc = utf16BEEncoding
		}
		var oddErr error
		if len(b)%2 != 0 {
			oddErr = errOddLength
			b = b[:len(b)-1]
		}
		out, _, err := transform.Bytes(enc.NewDecoder(), b)
		if err == nil {
			err = oddErr
		}
		if err != nil {
			return string(out), &EncodingError{Encoding: e, Err: err}
		}
		return string(out), nil
	case UTF8:
		if !utf8.Valid(b) {
			return strings.ToValidUTF8(string(b), "�"), &EncodingError{Encoding: e, Err: errors.New("invalid UTF-8")}
		}
		return string(b), nil
	default:
		return "", &EncodingError{Encoding: e, Err: errors.New("unknown encoding")}
	}
}

// encodeText converts s to encoding e. It fails with an
// *EncodingError if e cannot be used in version v or s cannot be
// represented in e.
func encodeText(s string, e Encoding, v Version) ([]byte, error) {
	if !e.AllowedIn(v) {
		return nil, &EncodingError{Encoding: e, Version: v}
	}

	switch e {
	case ISO88591:
		out, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, &EncodingError{Encoding: e, Version: v, Err: err}
		}
		return out, nil
	case UTF16:
		if s == "" {
			return nil, nil
		}
		out, _, err := transform.Bytes(utf16Encoding.NewEncoder(), []byte(s))
		if err != nil {
			return nil, &EncodingError{Encoding: e, Version: v, Err: err}
		}
		return out, nil
	case UTF16BE:
		out, _, err := transform.Bytes(utf16BEEncoding.NewEncoder(), []byte(s))
		if err != nil {
			return nil, &EncodingError{Encoding: e, Version: v, Err: err}
		}
		return out, nil
	default:
		return []byte(s), nil
	}
}

// encodeTextList joins the encoded values with the terminator of e.
// No terminator follows the last value.
func encodeTextList(values []string, e Encoding, v Version) ([]byte, error) {
	var buf bytes.Buffer
	for i, s := range values {
		if i > 0 {
			buf.Write(e.terminator())
		}
		b, err := encodeText(s, e, v)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	return buf.Bytes(), nil
}

// decodeTextList strips one trailing terminator from b and splits the
// rest into values. An empty value list decodes to a single empty
// string.
func decodeTextList(b []byte, e Encoding) ([]string, error) {
	b = trimTerminator(b, e)
	parts := splitTerminated(b, e, -1)
	values := make([]string, len(parts))
	var firstErr error
	for i, p := range parts {
		s, err := decodeText(p, e)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		values[i] = s
	}
	return values, firstErr
}

func trimTerminator(b []byte, e Encoding) []byte {
	term := e.terminator()
	if len(term) == 2 && len(b)%2 != 0 {
		return b
	}
	return bytes.TrimSuffix(b, term)
}

// splitTerminated splits b on the terminator of e into at most n
// parts (all parts if n < 0). Two byte terminators only match at even
// offsets.
func splitTerminated(b []byte, e Encoding, n int) [][]byte {
	if n == 0 {
		return nil
	}
	if len(e.terminator()) == 1 {
		return bytes.SplitN(b, []byte{0}, n)
	}

	var (
		parts [][]byte
		prev  int
	)
	for i := 0; i+1 < len(b); i += 2 {
		if n > 0 && len(parts) == n-1 {
			break
		}
		if b[i] == 0 && b[i+1] == 0 {
			parts = append(parts, b[prev:i])
			prev = i + 2
		}
	}
	return append(parts, b[prev:])
}

// readTerminated splits one terminated string off the front of b. ok
// is false if b holds no terminator, in which case field is all of b.
func readTerminated(b []byte, e Encoding) (field, rest []byte, ok bool) {
	parts := splitTerminated(b, e, 2)
	if len(parts) < 2 {
		return parts[0], nil, false
	}
	return parts[0], parts[1], true
}

// encodeLatin1 encodes s for fields that are always ISO-8859-1.
// Characters outside Latin-1 are replaced.
func encodeLatin1(id FrameType, s string) []byte {
	out, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err == nil {
		return out
	}
	Logging.Printf("%s: %q is not representable in ISO-8859-1, replacing", id, s)
	out, _ = encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder()).Bytes([]byte(s))
	return out
}

// writeEncoding returns e if text can be written in it for version v,
// and a suitable replacement otherwise.
func writeEncoding(id FrameType, e Encoding, v Version, texts ...string) Encoding {
	if e.AllowedIn(v) && (e != ISO88591 || allLatin1(texts)) {
		return e
	}
	fallback := defaultEncoding(v, texts...)
	Logging.Printf("%s: cannot write %s text in %s, using %s", id, e, v, fallback)
	return fallback
}
