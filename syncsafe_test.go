package id3

import (
	"testing"
)

func TestSyncsafe(t *testing.T) {
	tests := []struct {
		in  int
		out [4]byte
	}{
		{0, [4]byte{0, 0, 0, 0}},
		{23, [4]byte{0, 0, 0, 0x17}},
		{127, [4]byte{0, 0, 0, 0x7F}},
		{128, [4]byte{0, 0, 1, 0}},
		{367, [4]byte{0, 0, 0x02, 0x6F}},
		{56822, [4]byte{0, 0x03, 0x3B, 0x76}},
		{66872, [4]byte{0, 0x04, 0x0A, 0x38}},
		{maxSyncsafe, [4]byte{0x7F, 0x7F, 0x7F, 0x7F}},
	}

	for i, test := range tests {
		res := encodeSyncsafe(test.in)
		if res != test.out {
			t.Errorf("[%d] encodeSyncsafe(%d) = % x, expected % x", i, test.in, res, test.out)
		}
		n, ok := decodeSyncsafe(test.out)
		if !ok || n != test.in {
			t.Errorf("[%d] decodeSyncsafe(% x) = %d/%t, expected %d", i, test.out, n, ok, test.in)
		}
	}
}

func TestSyncsafeHighBits(t *testing.T) {
	for n := 0; n <= maxSyncsafe; n += 4093 {
		b := encodeSyncsafe(n)
		if (b[0]|b[1]|b[2]|b[3])&0x80 != 0 {
			t.Fatalf("encodeSyncsafe(%d) = % x sets a high bit", n, b)
		}
		if res, ok := decodeSyncsafe(b); !ok || res != n {
			t.Fatalf("decodeSyncsafe(encodeSyncsafe(%d)) = %d", n, res)
		}
	}
}

func TestSyncsafeRejectsHighBit(t *testing.T) {
	for _, b := range [][4]byte{
		{0x80, 0, 0, 0},
		{0, 0, 0x80, 0},
		{0, 0, 0, 0xFF},
	} {
		if _, ok := decodeSyncsafe(b); ok {
			t.Errorf("decodeSyncsafe(% x) accepted a byte with its high bit set", b)
		}
	}
}
