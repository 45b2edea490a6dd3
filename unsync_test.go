package id3

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnsynchronise(t *testing.T) {
	tests := []struct {
		in, out []byte
	}{
		{[]byte{}, []byte{}},
		{[]byte{0x01, 0x02}, []byte{0x01, 0x02}},
		{[]byte{0xFF, 0xE0}, []byte{0xFF, 0x00, 0xE0}},
		{[]byte{0xFF, 0xFB, 0x90}, []byte{0xFF, 0x00, 0xFB, 0x90}},
		{[]byte{0xFF, 0x7F}, []byte{0xFF, 0x7F}},
		{[]byte{0xFF, 0x00}, []byte{0xFF, 0x00, 0x00}},
		{[]byte{0x01, 0xFF}, []byte{0x01, 0xFF, 0x00}},
		{[]byte{0xFF, 0xFF, 0xFF}, []byte{0xFF, 0x00, 0xFF, 0x00, 0xFF, 0x00}},
	}

	for i, test := range tests {
		res := Unsynchronise(test.in)
		if !bytes.Equal(res, test.out) {
			t.Errorf("[%d] Unsynchronise(% x) = % x, expected % x", i, test.in, res, test.out)
		}
		back := Resynchronise(res)
		if !bytes.Equal(back, test.in) {
			t.Errorf("[%d] Resynchronise(% x) = % x, expected % x", i, res, back, test.in)
		}
	}
}

func TestResynchroniseGlobalScenario(t *testing.T) {
	require.Equal(t, []byte{0xFF, 0xE0}, Resynchronise([]byte{0xFF, 0x00, 0xE0}))
	require.Equal(t, []byte{0xFF, 0x00, 0xE0}, Unsynchronise([]byte{0xFF, 0xE0}))
}

func TestUnsynchroniseRandom(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for n := 0; n < 200; n++ {
		in := make([]byte, rnd.Intn(300))
		for i := range in {
			// Bias towards 0xFF so the interesting pairs show up.
			if rnd.Intn(3) == 0 {
				in[i] = 0xFF
			} else {
				in[i] = byte(rnd.Intn(256))
			}
		}

		out := Unsynchronise(in)
		for i := 0; i+1 < len(out); i++ {
			if out[i] == 0xFF && out[i+1] >= 0xE0 {
				t.Fatalf("Unsynchronise(% x) left a sync pattern at %d", in, i)
			}
		}
		require.Equal(t, in, Resynchronise(out))
	}
}
