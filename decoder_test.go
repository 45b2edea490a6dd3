package id3

import (
	"bytes"
	"io"
	"runtime"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

// frameBytes builds a frame with a size field in the layout of v.
func frameBytes(id string, v Version, flags uint16, payload []byte) []byte {
	out := make([]byte, frameHeaderSize, frameHeaderSize+len(payload))
	copy(out, id)
	if v.Major() >= 4 {
		putSyncsafe(out[4:8], len(payload))
	} else {
		putUint32(out[4:8], len(payload))
	}
	out[8] = byte(flags >> 8)
	out[9] = byte(flags)
	return append(out, payload...)
}

// tagBytes builds a tag from a frame region and padding.
func tagBytes(v Version, flags HeaderFlags, body []byte, padding int) []byte {
	h := TagHeader{Version: v, Flags: flags, Size: len(body) + padding}
	header, err := h.encode()
	if err != nil {
		panic(err)
	}
	return concat(header, body, make([]byte, padding))
}

func parse(t *testing.T, b []byte) (*Tag, *Decoder) {
	t.Helper()
	d := NewDecoder(bytes.NewReader(b))
	tag, err := d.Parse()
	require.NoError(t, err)
	return tag, d
}

func TestParseFrames(t *testing.T) {
	body := concat(
		frameBytes("TIT2", V24, 0, []byte("\x03Title")),
		frameBytes("TPE1", V24, 0, []byte("\x03One\x00Two")),
		frameBytes("TXXX", V24, 0, []byte("\x03EnergyLevel\x006")),
		frameBytes("COMM", V24, 0, []byte("\x03engdesc\x00text")),
		frameBytes("WOAR", V24, 0, []byte("http://example.com")),
		frameBytes("ZZZZ", V24, 0, []byte{1, 2, 3}),
	)
	tag, d := parse(t, tagBytes(V24, 0, body, 100))

	require.Len(t, tag.Frames, 6, spew.Sdump(tag.Frames))
	require.Equal(t, int64(tagHeaderSize+len(body)+100), d.Offset())
	require.Equal(t, "Title", tag.Title())
	require.Equal(t, []string{"One", "Two"}, tag.Artists())
	require.Equal(t, 6, tag.EnergyLevel())
	require.Equal(t, "text", tag.Comment())
	require.Equal(t, "http://example.com", tag.Frames[4].Value())

	raw, ok := tag.Frames[5].(RawFrame)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, raw.Data)
	require.NoError(t, raw.Err)
}

func TestParseV23Sizes(t *testing.T) {
	// 200 bytes of text has a size byte above 0x7F, which is only legal
	// as a plain integer.
	text := bytes.Repeat([]byte("a"), 200)
	body := frameBytes("TALB", V23, 0, concat([]byte{0}, text))
	tag, _ := parse(t, tagBytes(V23, 0, body, 0))
	require.Equal(t, string(text), tag.Album())
}

func TestParseNotATag(t *testing.T) {
	for _, in := range [][]byte{
		{},
		[]byte("ID"),
		[]byte("RIFF\x00\x00\x00\x00WAVE"),
	} {
		_, err := NewDecoder(bytes.NewReader(in)).Parse()
		require.True(t, IsNotATag(err), "%q: %v", in, err)
	}
}

func TestParseTruncatedFrame(t *testing.T) {
	good := frameBytes("TIT2", V24, 0, []byte("\x00Title"))
	bad := frameBytes("TALB", V24, 0, []byte("\x00Album"))
	// Claim far more bytes than the tag holds.
	copy(bad[4:8], []byte{0, 0, 0x7F, 0})
	after := frameBytes("TPE1", V24, 0, []byte("\x00Artist"))

	tag, _ := parse(t, tagBytes(V24, 0, concat(good, bad, after), 0))
	require.Len(t, tag.Frames, 1)
	require.Equal(t, "Title", tag.Title())
}

func TestParseGarbageAfterFrames(t *testing.T) {
	good := frameBytes("TIT2", V24, 0, []byte("\x00Title"))
	tag, _ := parse(t, tagBytes(V24, 0, concat(good, []byte("junk after the frames")), 0))
	require.Len(t, tag.Frames, 1)
}

func TestParseShortStream(t *testing.T) {
	b := tagBytes(V24, 0, frameBytes("TIT2", V24, 0, []byte("\x00Title")), 500)
	tag, d := parse(t, b[:40])
	require.Equal(t, "Title", tag.Title())
	require.Equal(t, int64(40), d.Offset())
}

func TestParseGlobalUnsyncV23(t *testing.T) {
	frame := frameBytes("PRIV", V23, 0, []byte{'o', 0, 0xFF, 0xE0})
	body := Unsynchronise(frame)
	require.True(t, bytes.Contains(body, []byte{0xFF, 0x00, 0xE0}))

	tag, _ := parse(t, tagBytes(V23, flagUnsynchronisation, body, 0))
	require.Len(t, tag.Frames, 1)
	priv := tag.Frames[0].(PrivateFrame)
	require.Equal(t, "o", priv.Owner)
	require.Equal(t, []byte{0xFF, 0xE0}, priv.Data)

	out, err := tag.encodeFrames()
	require.NoError(t, err)
	require.Equal(t, body, out)
}

func TestParseFrameUnsyncV24(t *testing.T) {
	payload := []byte{'o', 0, 0xFF, 0xE0, 0xFF}
	// Unsynchronised frame with data length indicator.
	data := Unsynchronise(concat([]byte{0, 0, 0, byte(len(payload))}, payload))
	body := concat(
		frameBytes("PRIV", V24, 0x0003, data),
		frameBytes("TIT2", V24, 0, []byte("\x03Title")),
	)
	tag, _ := parse(t, tagBytes(V24, 0, body, 10))
	require.Len(t, tag.Frames, 2)
	priv := tag.Frames[0].(PrivateFrame)
	require.Equal(t, []byte{0xFF, 0xE0, 0xFF}, priv.Data)
	require.Equal(t, "Title", tag.Title())

	out, err := tag.encodeFrames()
	require.NoError(t, err)
	require.Equal(t, body, out)
}

func TestParseGlobalUnsyncV24(t *testing.T) {
	// Frame sizes count the unsynchronised bytes.
	data := Unsynchronise([]byte{'o', 0, 0xFF, 0xF0})
	body := frameBytes("PRIV", V24, 0x0002, data)
	tag, _ := parse(t, tagBytes(V24, flagUnsynchronisation, body, 0))
	require.Equal(t, []byte{0xFF, 0xF0}, tag.Frames[0].(PrivateFrame).Data)

	out, err := tag.encodeFrames()
	require.NoError(t, err)
	require.Equal(t, body, out)
}

func TestParseGroupedFrame(t *testing.T) {
	body := frameBytes("TIT2", V24, 0x0040, []byte("\x07\x03Title"))
	tag, _ := parse(t, tagBytes(V24, 0, body, 0))
	group, ok := tag.Frames[0].Header().Group()
	require.True(t, ok)
	require.Equal(t, byte(7), group)
	require.Equal(t, "Title", tag.Title())

	out, err := tag.encodeFrames()
	require.NoError(t, err)
	require.Equal(t, body, out)
}

func TestParseCompressedFrameIsKept(t *testing.T) {
	body := frameBytes("TIT2", V23, 0x0080, []byte{0, 0, 0, 9, 0x78, 0x9C, 1, 2, 3})
	tag, _ := parse(t, tagBytes(V23, 0, body, 0))
	raw, ok := tag.Frames[0].(RawFrame)
	require.True(t, ok)
	require.True(t, raw.Flags().Compressed(V23))
	require.Equal(t, "", tag.Title())

	out, err := tag.encodeFrames()
	require.NoError(t, err)
	require.Equal(t, body, out)
}

func TestParseUndecodableFrame(t *testing.T) {
	// Encoding byte 9 is not defined.
	body := frameBytes("TIT2", V24, 0, []byte("\x09Title"))
	tag, _ := parse(t, tagBytes(V24, 0, body, 0))
	raw, ok := tag.Frames[0].(RawFrame)
	require.True(t, ok)
	require.Error(t, raw.Err)
	require.Equal(t, []byte("\x09Title"), raw.Data)

	out, err := tag.encodeFrames()
	require.NoError(t, err)
	require.Equal(t, body, out)
}

func TestParseLossyTextKeepsBytes(t *testing.T) {
	// UTF-16 text with an odd number of bytes.
	payload := []byte{1, 0xFF, 0xFE, 'T', 0, 'i'}
	body := frameBytes("TIT2", V24, 0, payload)
	tag, _ := parse(t, tagBytes(V24, 0, body, 0))
	text, ok := tag.Frames[0].(TextFrame)
	require.True(t, ok)
	require.True(t, text.Lossy())
	require.Equal(t, "T", text.Value())

	out, err := tag.encodeFrames()
	require.NoError(t, err)
	require.Equal(t, body, out)
}

func TestParseExtendedHeader(t *testing.T) {
	ext := []byte{0, 0, 0, 6, 0, 0}
	frame := frameBytes("TIT2", V24, 0, []byte("\x03Title"))
	tag, _ := parse(t, tagBytes(V24, flagExtendedHeader, concat(ext, frame), 0))
	require.Equal(t, "Title", tag.Title())

	ext23 := []byte{0, 0, 0, 6, 0, 0, 0, 0, 0, 0}
	frame23 := frameBytes("TIT2", V23, 0, []byte("\x00Title"))
	tag, _ = parse(t, tagBytes(V23, flagExtendedHeader, concat(ext23, frame23), 0))
	require.Equal(t, "Title", tag.Title())
}

func TestParseFooter(t *testing.T) {
	frame := frameBytes("TIT2", V24, 0, []byte("\x03Title"))
	b := tagBytes(V24, flagFooter, frame, 0)
	footer := append([]byte("3DI"), b[3:10]...)
	b = append(b, footer...)
	b = append(b, 0xFF, 0xFB)

	tag, d := parse(t, b)
	require.Equal(t, "Title", tag.Title())
	require.Equal(t, int64(len(b)-2), d.Offset())
	require.Equal(t, len(b)-2, tag.Header.Len())
}

func TestParseFrameAfterDone(t *testing.T) {
	d := NewDecoder(bytes.NewReader(tagBytes(V24, 0, nil, 20)))
	_, err := d.ParseFrame()
	require.Equal(t, io.EOF, err)
	_, err = d.ParseFrame()
	require.Equal(t, io.EOF, err)
}

func TestParseHugeDeclaredSize(t *testing.T) {
	frame := frameBytes("TIT2", V24, 0, []byte("\x03Title"))
	h := TagHeader{Version: V24, Size: maxSyncsafe}
	header, err := h.encode()
	require.NoError(t, err)
	b := concat(header, frame, make([]byte, 24))

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	tag, d := parse(t, b)
	runtime.ReadMemStats(&after)

	require.Equal(t, "Title", tag.Title())
	require.Equal(t, int64(len(b)), d.Offset())
	require.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(16<<20))
}
