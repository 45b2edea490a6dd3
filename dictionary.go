package id3

import (
	"github.com/pkg/errors"
)

// frameDecoder turns a frame payload, with unsynchronisation and
// format extras already removed, into a Frame. An *EncodingError
// return still comes with a usable frame.
type frameDecoder func(h FrameHeader, b []byte) (Frame, error)

var frameDecoders = map[FrameType]frameDecoder{
	"TXXX": decodeUserTextFrame,
	"WXXX": decodeUserURLFrame,
	"COMM": decodeCommentFrame,
	"USLT": decodeCommentFrame,
	"POPM": decodePopularityFrame,
	"APIC": decodePictureFrame,
	"GEOB": decodeObjectFrame,
	"PRIV": decodePrivateFrame,
	"UFID": decodeUniqueFileIDFrame,

	// iTunes writes these as text frames outside the T namespace.
	"GRP1": decodeTextFrame,
	"MVNM": decodeTextFrame,
	"MVIN": decodeTextFrame,
}

// lookupDecoder returns the decoder for frames with the given ID.
func lookupDecoder(id FrameType) frameDecoder {
	if dec, ok := frameDecoders[id]; ok {
		return dec
	}
	switch id[0] {
	case 'T':
		return decodeTextFrame
	case 'W':
		return decodeURLFrame
	}
	return decodeRawFrame
}

var (
	errMissingEncoding = errors.New("missing text encoding byte")
	errMissingField    = errors.New("frame ends before all fields were read")
)

func readEncoding(b []byte) (Encoding, []byte, error) {
	if len(b) == 0 {
		return 0, nil, errMissingEncoding
	}
	e := Encoding(b[0])
	if !e.Valid() {
		return 0, nil, errors.Errorf("invalid text encoding %d", b[0])
	}
	return e, b[1:], nil
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func decodeTextFrame(h FrameHeader, b []byte) (Frame, error) {
	e, rest, err := readEncoding(b)
	if err != nil {
		return nil, err
	}
	values, err := decodeTextList(rest, e)
	return TextFrame{FrameHeader: h, Encoding: e, Values: values}, err
}

func decodeUserTextFrame(h FrameHeader, b []byte) (Frame, error) {
	e, rest, err := readEncoding(b)
	if err != nil {
		return nil, err
	}
	desc, value, ok := readTerminated(rest, e)
	if !ok {
		return nil, errMissingField
	}
	d, err1 := decodeText(desc, e)
	v, err2 := decodeText(trimTerminator(value, e), e)
	return UserTextFrame{FrameHeader: h, Encoding: e, Description: d, Text: v}, firstErr(err1, err2)
}

func decodeCommentFrame(h FrameHeader, b []byte) (Frame, error) {
	e, rest, err := readEncoding(b)
	if err != nil {
		return nil, err
	}
	if len(rest) < 3 {
		return nil, errMissingField
	}
	lang := string(rest[:3])
	desc, text, ok := readTerminated(rest[3:], e)
	if !ok {
		return nil, errMissingField
	}
	d, err1 := decodeText(desc, e)
	t, err2 := decodeText(trimTerminator(text, e), e)
	return CommentFrame{FrameHeader: h, Encoding: e, Language: lang, Description: d, Text: t}, firstErr(err1, err2)
}

func decodeURLFrame(h FrameHeader, b []byte) (Frame, error) {
	url, err := decodeText(trimTerminator(b, ISO88591), ISO88591)
	return URLFrame{FrameHeader: h, URL: url}, err
}

func decodeUserURLFrame(h FrameHeader, b []byte) (Frame, error) {
	e, rest, err := readEncoding(b)
	if err != nil {
		return nil, err
	}
	desc, url, ok := readTerminated(rest, e)
	if !ok {
		return nil, errMissingField
	}
	d, err1 := decodeText(desc, e)
	u, err2 := decodeText(trimTerminator(url, ISO88591), ISO88591)
	return UserURLFrame{FrameHeader: h, Encoding: e, Description: d, URL: u}, firstErr(err1, err2)
}

func decodePopularityFrame(h FrameHeader, b []byte) (Frame, error) {
	email, rest, ok := readTerminated(b, ISO88591)
	if !ok || len(rest) < 1 {
		return nil, errMissingField
	}
	counterBytes := rest[1:]
	if len(counterBytes) > 8 {
		return nil, errors.Errorf("play counter of %d bytes", len(counterBytes))
	}

	f := PopularityFrame{FrameHeader: h, Rating: rest[0]}
	if len(counterBytes) > 0 {
		var c uint64
		for _, x := range counterBytes {
			c = c<<8 | uint64(x)
		}
		f.Counter = &c
	}
	var err error
	f.Email, err = decodeText(email, ISO88591)
	return f, err
}

func decodePictureFrame(h FrameHeader, b []byte) (Frame, error) {
	e, rest, err := readEncoding(b)
	if err != nil {
		return nil, err
	}
	mime, rest, ok := readTerminated(rest, ISO88591)
	if !ok || len(rest) < 1 {
		return nil, errMissingField
	}
	ptype := PictureType(rest[0])
	desc, data, ok := readTerminated(rest[1:], e)
	if !ok {
		return nil, errMissingField
	}

	m, err1 := decodeText(mime, ISO88591)
	d, err2 := decodeText(desc, e)
	return PictureFrame{
		FrameHeader: h,
		Encoding:    e,
		MIMEType:    m,
		PictureType: ptype,
		Description: d,
		Data:        data,
	}, firstErr(err1, err2)
}

func decodeObjectFrame(h FrameHeader, b []byte) (Frame, error) {
	e, rest, err := readEncoding(b)
	if err != nil {
		return nil, err
	}
	mime, rest, ok1 := readTerminated(rest, ISO88591)
	filename, rest, ok2 := readTerminated(rest, e)
	desc, data, ok3 := readTerminated(rest, e)
	if !ok1 || !ok2 || !ok3 {
		return nil, errMissingField
	}

	m, err1 := decodeText(mime, ISO88591)
	fn, err2 := decodeText(filename, e)
	d, err3 := decodeText(desc, e)
	return ObjectFrame{
		FrameHeader: h,
		Encoding:    e,
		MIMEType:    m,
		Filename:    fn,
		Description: d,
		Data:        data,
	}, firstErr(err1, err2, err3)
}

func decodePrivateFrame(h FrameHeader, b []byte) (Frame, error) {
	owner, data, ok := readTerminated(b, ISO88591)
	if !ok {
		return nil, errMissingField
	}
	o, err := decodeText(owner, ISO88591)
	return PrivateFrame{FrameHeader: h, Owner: o, Data: data}, err
}

func decodeUniqueFileIDFrame(h FrameHeader, b []byte) (Frame, error) {
	owner, id, ok := readTerminated(b, ISO88591)
	if !ok {
		return nil, errMissingField
	}
	o, err := decodeText(owner, ISO88591)
	return UniqueFileIDFrame{FrameHeader: h, Owner: o, Identifier: id}, err
}

func decodeRawFrame(h FrameHeader, b []byte) (Frame, error) {
	return RawFrame{FrameHeader: h, Data: b}, nil
}
