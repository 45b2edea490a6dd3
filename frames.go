package id3

import (
	"encoding/binary"
	"strconv"
)

// FrameHeader holds the identity and flags common to all frames.
type FrameHeader struct {
	id      FrameType
	flags   FrameFlags
	version Version // the layout of flags; zero for frames built in memory
	group   byte

	// raw is written back instead of the encoded fields. It is set for
	// frames that could not be decoded cleanly, and for compressed or
	// encrypted frames (opaque), whose raw is the payload as found on
	// disk.
	raw    []byte
	opaque bool
}

// NewFrameHeader returns the header for a new frame with the given ID.
func NewFrameHeader(id FrameType) FrameHeader {
	return FrameHeader{id: id}
}

func (h FrameHeader) ID() FrameType       { return h.id }
func (h FrameHeader) Header() FrameHeader { return h }
func (h FrameHeader) Flags() FrameFlags   { return h.flags }

// Version returns the tag version the frame was read from.
func (h FrameHeader) Version() Version { return h.version }

// Group returns the group identifier of a grouped frame.
func (h FrameHeader) Group() (byte, bool) {
	return h.group, h.flags.Grouped(h.version)
}

// Lossy reports whether some field of the frame failed to decode. The
// original payload of a lossy frame is written back unchanged; build
// a new frame to replace its contents.
func (h FrameHeader) Lossy() bool {
	return h.raw != nil && !h.opaque
}

// Frame is one of the frame kinds defined in this package.
type Frame interface {
	ID() FrameType
	Header() FrameHeader
	Value() string
	encode(v Version) ([]byte, error)
}

// TextFrame is a text information frame (T***, except TXXX) or one of
// the nonstandard text frames GRP1, MVNM and MVIN. An empty Values is
// written as a single empty value.
type TextFrame struct {
	FrameHeader
	Encoding Encoding
	Values   []string
}

// UserTextFrame is a TXXX frame.
type UserTextFrame struct {
	FrameHeader
	Encoding    Encoding
	Description string
	Text        string
}

// CommentFrame is a COMM or USLT frame.
type CommentFrame struct {
	FrameHeader
	Encoding    Encoding
	Language    string
	Description string
	Text        string
}

// URLFrame is a URL link frame (W***, except WXXX).
type URLFrame struct {
	FrameHeader
	URL string
}

// UserURLFrame is a WXXX frame.
type UserURLFrame struct {
	FrameHeader
	Encoding    Encoding
	Description string
	URL         string
}

// PopularityFrame is a POPM frame. A nil Counter means the frame has
// no play counter.
type PopularityFrame struct {
	FrameHeader
	Email   string
	Rating  byte
	Counter *uint64
}

type PictureFrame struct {
	FrameHeader
	Encoding    Encoding
	MIMEType    string
	PictureType PictureType
	Description string
	Data        []byte
}

// ObjectFrame is a GEOB frame.
type ObjectFrame struct {
	FrameHeader
	Encoding    Encoding
	MIMEType    string
	Filename    string
	Description string
	Data        []byte
}

type PrivateFrame struct {
	FrameHeader
	Owner string
	Data  []byte
}

type UniqueFileIDFrame struct {
	FrameHeader
	Owner      string
	Identifier []byte
}

// RawFrame is a frame whose payload is kept as bytes, either because
// its ID is unknown or because decoding failed, in which case Err is
// set.
type RawFrame struct {
	FrameHeader
	Data []byte
	Err  error
}

func (f TextFrame) Value() string {
	if len(f.Values) == 0 {
		return ""
	}
	return f.Values[0]
}

func (f TextFrame) encode(v Version) ([]byte, error) {
	e := writeEncoding(f.id, f.Encoding, v, f.Values...)
	b, err := encodeTextList(f.Values, e, v)
	if err != nil {
		return nil, err
	}
	// Readers strip one trailing terminator, so a trailing empty
	// value needs one of its own.
	if n := len(f.Values); n > 1 && f.Values[n-1] == "" {
		b = append(b, e.terminator()...)
	}
	return concat([]byte{byte(e)}, b), nil
}

func (f UserTextFrame) Value() string { return f.Text }

func (f UserTextFrame) encode(v Version) ([]byte, error) {
	e := writeEncoding(f.id, f.Encoding, v, f.Description, f.Text)
	return encodeFields(e, v, []byte{byte(e)}, f.Description, f.Text)
}

func (f CommentFrame) Value() string { return f.Text }

func (f CommentFrame) encode(v Version) ([]byte, error) {
	e := writeEncoding(f.id, f.Encoding, v, f.Description, f.Text)
	return encodeFields(e, v, concat([]byte{byte(e)}, language(f.Language)), f.Description, f.Text)
}

// language returns the three byte language code of a comment.
func language(lang string) []byte {
	if len(lang) != 3 {
		return []byte("XXX")
	}
	return []byte(lang)
}

func (f URLFrame) Value() string { return f.URL }

func (f URLFrame) encode(Version) ([]byte, error) {
	return encodeLatin1(f.id, f.URL), nil
}

func (f UserURLFrame) Value() string { return f.URL }

func (f UserURLFrame) encode(v Version) ([]byte, error) {
	e := writeEncoding(f.id, f.Encoding, v, f.Description)
	desc, err := encodeText(f.Description, e, v)
	if err != nil {
		return nil, err
	}
	return concat([]byte{byte(e)}, desc, e.terminator(), encodeLatin1(f.id, f.URL)), nil
}

func (f PopularityFrame) Value() string { return strconv.Itoa(int(f.Rating)) }

// StarRating maps the rating byte to zero to five stars the way most
// players display it.
func (f PopularityFrame) StarRating() int {
	switch r := f.Rating; {
	case r == 0:
		return 0
	case r < 32:
		return 1
	case r < 96:
		return 2
	case r < 160:
		return 3
	case r < 224:
		return 4
	default:
		return 5
	}
}

func (f PopularityFrame) encode(Version) ([]byte, error) {
	out := concat(encodeLatin1(f.id, f.Email), []byte{0, f.Rating})
	if f.Counter != nil {
		out = append(out, encodeCounter(*f.Counter)...)
	}
	return out, nil
}

// encodeCounter writes c big endian in at least four bytes.
func encodeCounter(c uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, c)
	i := 0
	for i < 4 && b[i] == 0 {
		i++
	}
	return b[i:]
}

func (f PictureFrame) Value() string { return f.Description }

func (f PictureFrame) encode(v Version) ([]byte, error) {
	e := writeEncoding(f.id, f.Encoding, v, f.Description)
	prefix := concat([]byte{byte(e)}, encodeLatin1(f.id, f.MIMEType), []byte{0, byte(f.PictureType)})
	fields, err := encodeFields(e, v, prefix, f.Description)
	if err != nil {
		return nil, err
	}
	return concat(fields, e.terminator(), f.Data), nil
}

func (f ObjectFrame) Value() string { return f.Filename }

func (f ObjectFrame) encode(v Version) ([]byte, error) {
	e := writeEncoding(f.id, f.Encoding, v, f.Filename, f.Description)
	prefix := concat([]byte{byte(e)}, encodeLatin1(f.id, f.MIMEType), []byte{0})
	fields, err := encodeFields(e, v, prefix, f.Filename, f.Description)
	if err != nil {
		return nil, err
	}
	return concat(fields, e.terminator(), f.Data), nil
}

func (f PrivateFrame) Value() string { return f.Owner }

func (f PrivateFrame) encode(Version) ([]byte, error) {
	return concat(encodeLatin1(f.id, f.Owner), []byte{0}, f.Data), nil
}

func (f UniqueFileIDFrame) Value() string { return string(f.Identifier) }

func (f UniqueFileIDFrame) encode(Version) ([]byte, error) {
	return concat(encodeLatin1(f.id, f.Owner), []byte{0}, f.Identifier), nil
}

func (f RawFrame) Value() string { return string(f.Data) }

func (f RawFrame) encode(Version) ([]byte, error) {
	return f.Data, nil
}

// encodeFields appends the texts to prefix, separated by the
// terminator of e.
func encodeFields(e Encoding, v Version, prefix []byte, texts ...string) ([]byte, error) {
	b, err := encodeTextList(texts, e, v)
	if err != nil {
		return nil, err
	}
	return concat(prefix, b), nil
}
