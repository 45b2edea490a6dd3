// Package mpeg inspects MPEG audio frame headers to find where the
// audio payload of a file begins.
package mpeg

import (
	"fmt"
)

type Version byte

const (
	Version25 Version = 0
	Version2  Version = 2
	Version1  Version = 3
)

func (v Version) String() string {
	switch v {
	case Version1:
		return "MPEG-1"
	case Version2:
		return "MPEG-2"
	case Version25:
		return "MPEG-2.5"
	default:
		return "reserved"
	}
}

type Layer byte

const (
	Layer3 Layer = 1
	Layer2 Layer = 2
	Layer1 Layer = 3
)

func (l Layer) String() string {
	switch l {
	case Layer1:
		return "Layer I"
	case Layer2:
		return "Layer II"
	case Layer3:
		return "Layer III"
	default:
		return "reserved"
	}
}

// Bitrates in kbit/s, by MPEG-1 or not, then layer, then index. Index
// 0 is the free format and 15 is invalid.
var bitrates = [2][4][16]int{
	{ // MPEG-1
		{},
		{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, -1},
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, -1},
		{0, 32, 64, 96, 128, 160, 192, 224, 256, 288, 320, 352, 384, 416, 448, -1},
	},
	{ // MPEG-2 and 2.5
		{},
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, -1},
		{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, -1},
		{0, 32, 48, 56, 64, 80, 96, 112, 128, 144, 160, 176, 192, 224, 256, -1},
	},
}

var sampleRates = map[Version][3]int{
	Version1:  {44100, 48000, 32000},
	Version2:  {22050, 24000, 16000},
	Version25: {11025, 12000, 8000},
}

// HeaderSize is the length of an MPEG audio frame header.
const HeaderSize = 4

// Header is a decoded MPEG audio frame header.
type Header struct {
	Version         Version
	Layer           Layer
	BitrateIndex    int
	SampleRateIndex int
	Padding         bool
	Bitrate         int // bits per second
	SampleRate      int // Hz
	FrameLength     int // bytes, including the header
}

// HeaderError describes why four bytes are not a usable frame header.
type HeaderError struct {
	Reason string
}

func (err *HeaderError) Error() string {
	return "mpeg: " + err.Reason
}

// ParseHeader decodes the four bytes at the start of b. It rejects
// reserved versions and layers, the free format bitrate and reserved
// bitrate and sample rate indexes.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, &HeaderError{"short header"}
	}
	if b[0] != 0xFF || b[1]&0xE0 != 0xE0 {
		return Header{}, &HeaderError{"no frame sync"}
	}

	h := Header{
		Version:         Version(b[1] >> 3 & 0x03),
		Layer:           Layer(b[1] >> 1 & 0x03),
		BitrateIndex:    int(b[2] >> 4),
		SampleRateIndex: int(b[2] >> 2 & 0x03),
		Padding:         b[2]&0x02 != 0,
	}
	if h.Version == 1 {
		return Header{}, &HeaderError{"reserved version"}
	}
	if h.Layer == 0 {
		return Header{}, &HeaderError{"reserved layer"}
	}
	if h.BitrateIndex == 0 || h.BitrateIndex == 15 {
		return Header{}, &HeaderError{fmt.Sprintf("unusable bitrate index %d", h.BitrateIndex)}
	}
	if h.SampleRateIndex == 3 {
		return Header{}, &HeaderError{"reserved sample rate index"}
	}

	table := 1
	if h.Version == Version1 {
		table = 0
	}
	h.Bitrate = bitrates[table][h.Layer][h.BitrateIndex] * 1000
	h.SampleRate = sampleRates[h.Version][h.SampleRateIndex]
	h.FrameLength = frameLength(h)
	return h, nil
}

func frameLength(h Header) int {
	pad := 0
	if h.Padding {
		pad = 1
	}
	switch h.Layer {
	case Layer1:
		return (12*h.Bitrate/h.SampleRate + pad) * 4
	case Layer2:
		return 144*h.Bitrate/h.SampleRate + pad
	default:
		if h.Version == Version1 {
			return 144*h.Bitrate/h.SampleRate + pad
		}
		return 72*h.Bitrate/h.SampleRate + pad
	}
}

// Samples returns the number of samples per channel in one frame.
func (h Header) Samples() int {
	switch {
	case h.Layer == Layer1:
		return 384
	case h.Layer == Layer3 && h.Version != Version1:
		return 576
	default:
		return 1152
	}
}
