package id3

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitTerminated(t *testing.T) {
	tests := []struct {
		in  []byte
		e   Encoding
		n   int
		out [][]byte
	}{
		{[]byte("a\x00b\x00c"), ISO88591, -1, [][]byte{[]byte("a"), []byte("b"), []byte("c")}},
		{[]byte("a\x00b\x00c"), UTF8, 2, [][]byte{[]byte("a"), []byte("b\x00c")}},
		{[]byte("abc"), ISO88591, 2, [][]byte{[]byte("abc")}},
		// The zero pair at an odd offset is not a terminator.
		{[]byte{0, 'a', 0, 0, 'b', 0}, UTF16BE, -1, [][]byte{{0, 'a'}, {'b', 0}}},
		{[]byte{'a', 0, 0, 'b', 0, 0, 0, 'c'}, UTF16BE, -1, [][]byte{{'a', 0, 0, 'b'}, {0, 'c'}}},
		{[]byte{0, 'a', 0, 0, 0, 'b', 0, 0, 0, 'c'}, UTF16, 2, [][]byte{{0, 'a'}, {0, 'b', 0, 0, 0, 'c'}}},
	}

	for i, test := range tests {
		require.Equal(t, test.out, splitTerminated(test.in, test.e, test.n), "[%d]", i)
	}
}

func TestDecodeTextList(t *testing.T) {
	tests := []struct {
		in  []byte
		e   Encoding
		out []string
	}{
		{[]byte("Artist"), ISO88591, []string{"Artist"}},
		{[]byte("Artist\x00"), ISO88591, []string{"Artist"}},
		{[]byte("One\x00Two\x00"), UTF8, []string{"One", "Two"}},
		{[]byte("One\x00\x00"), UTF8, []string{"One", ""}},
		{[]byte{}, ISO88591, []string{""}},
		// Each value carries its own byte order mark.
		{[]byte{0xFF, 0xFE, 'A', 0, 0, 0, 0xFE, 0xFF, 0, 'B', 0, 0}, UTF16, []string{"A", "B"}},
		{[]byte{0, 'A', 0, 0, 0, 'B'}, UTF16BE, []string{"A", "B"}},
	}

	for i, test := range tests {
		res, err := decodeTextList(test.in, test.e)
		require.NoError(t, err, "[%d]", i)
		require.Equal(t, test.out, res, "[%d]", i)
	}
}

func TestDecodeTextErrors(t *testing.T) {
	s, err := decodeText([]byte("ok\xC3"), UTF8)
	var ee *EncodingError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, UTF8, ee.Encoding)
	require.Equal(t, "ok�", s)

	s, err = decodeText([]byte{0, 'o', 0, 'k', 0}, UTF16BE)
	require.ErrorAs(t, err, &ee)
	require.Equal(t, "ok", s)

	_, err = decodeText([]byte("x"), Encoding(7))
	require.ErrorAs(t, err, &ee)
}

func TestEncodeText(t *testing.T) {
	b, err := encodeText("Ab", UTF16, V23)
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0xFE, 'A', 0, 'b', 0}, b)

	b, err = encodeText("Ab", UTF16BE, V24)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 'A', 0, 'b'}, b)

	b, err = encodeText("日本", UTF8, V24)
	require.NoError(t, err)
	require.Equal(t, []byte("日本"), b)

	var ee *EncodingError
	_, err = encodeText("Ab", UTF8, V23)
	require.ErrorAs(t, err, &ee)
	require.Equal(t, V23, ee.Version)

	_, err = encodeText("Ab", UTF16BE, V23)
	require.ErrorAs(t, err, &ee)

	_, err = encodeText("日本", ISO88591, V24)
	require.ErrorAs(t, err, &ee)
}

func TestEncodeTextList(t *testing.T) {
	b, err := encodeTextList([]string{"One", "Two"}, ISO88591, V23)
	require.NoError(t, err)
	require.Equal(t, []byte("One\x00Two"), b)

	b, err = encodeTextList([]string{"A", "B"}, UTF16BE, V24)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 'A', 0, 0, 0, 'B'}, b)
}

func TestDefaultEncoding(t *testing.T) {
	require.Equal(t, UTF8, defaultEncoding(V24, "日本"))
	require.Equal(t, ISO88591, defaultEncoding(V23, "Ärger"))
	require.Equal(t, UTF16, defaultEncoding(V23, "Ärger", "日本"))
}

func TestWriteEncoding(t *testing.T) {
	require.Equal(t, UTF8, writeEncoding("TIT2", UTF8, V24, "x"))
	require.Equal(t, ISO88591, writeEncoding("TIT2", UTF8, V23, "x"))
	require.Equal(t, UTF16, writeEncoding("TIT2", UTF16BE, V23, "日本"))
	require.Equal(t, UTF8, writeEncoding("TIT2", ISO88591, V24, "日本"))
	require.Equal(t, UTF16, writeEncoding("TIT2", ISO88591, V23, "日本"))
}

func TestEncodeLatin1(t *testing.T) {
	require.Equal(t, []byte("caf\xE9"), encodeLatin1("POPM", "café"))
	b := encodeLatin1("POPM", "a日b")
	require.Len(t, b, 3)
	require.Equal(t, byte('a'), b[0])
	require.Equal(t, byte('b'), b[2])
}
