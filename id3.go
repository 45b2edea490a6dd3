package id3

import (
	"fmt"
	"log"
)

// Enables logging if set to true.
var Logging LogFlag

// Padding is the number of zero bytes reserved after the frames when
// a tag has to be rewritten because it outgrew its old space.
var Padding = 1024

var Magic = [3]byte{0x49, 0x44, 0x33}

type LogFlag bool

func (l LogFlag) Println(args ...interface{}) {
	if l {
		log.Println(args...)
	}
}

func (l LogFlag) Printf(format string, args ...interface{}) {
	if l {
		log.Printf(format, args...)
	}
}

const (
	frameHeaderSize = 10
	tagHeaderSize   = 10
	footerSize      = 10
)

const (
	V23 Version = 0x0300
	V24 Version = 0x0400
)

type HeaderFlags byte
type FrameFlags uint16
type Version int16
type FrameType string
type PictureType byte

const (
	flagUnsynchronisation HeaderFlags = 0x80
	flagExtendedHeader    HeaderFlags = 0x40
	flagExperimental      HeaderFlags = 0x20
	flagFooter            HeaderFlags = 0x10
)

func (f FrameType) String() string {
	v, ok := FrameNames[f]
	if ok {
		return v
	}

	return string(f)
}

func (p PictureType) String() string {
	if int(p) >= len(PictureTypes) {
		return ""
	}

	return PictureTypes[p]
}

func (f HeaderFlags) Unsynchronisation() bool {
	return f&flagUnsynchronisation > 0
}

func (f HeaderFlags) ExtendedHeader() bool {
	return f&flagExtendedHeader > 0
}

func (f HeaderFlags) Experimental() bool {
	return f&flagExperimental > 0
}

// Footer is only meaningful in v2.4 tags.
func (f HeaderFlags) Footer() bool {
	return f&flagFooter > 0
}

func (f HeaderFlags) UndefinedSet() bool {
	return f&0x0F > 0
}

func (v Version) String() string {
	return fmt.Sprintf("ID3v2.%.1d.%.1d", v>>8, v&0xFF)
}

func (v Version) Major() int {
	return int(v >> 8)
}

func (v Version) Revision() int {
	return int(v & 0xFF)
}

type frameFlag int

const (
	flagTagAlterPreservation frameFlag = iota
	flagFileAlterPreservation
	flagReadOnly
	flagGrouping
	flagCompression
	flagEncryption
	flagFrameUnsync
	flagDataLength
)

// Frame flag bits by version. v2.3 has no per-frame
// unsynchronisation and no data length indicator.
var frameFlagBits = map[int][8]FrameFlags{
	3: {0x8000, 0x4000, 0x2000, 0x0020, 0x0080, 0x0040, 0, 0},
	4: {0x4000, 0x2000, 0x1000, 0x0040, 0x0008, 0x0004, 0x0002, 0x0001},
}

func (f FrameFlags) has(v Version, flag frameFlag) bool {
	bits, ok := frameFlagBits[v.Major()]
	if !ok || bits[flag] == 0 {
		return false
	}
	return f&bits[flag] != 0
}

func (f FrameFlags) with(v Version, flag frameFlag) FrameFlags {
	bits, ok := frameFlagBits[v.Major()]
	if !ok {
		return f
	}
	return f | bits[flag]
}

// PreserveTagAlteration reports whether the frame should be kept when
// the tag is altered and the frame is unknown.
func (f FrameFlags) PreserveTagAlteration(v Version) bool {
	return !f.has(v, flagTagAlterPreservation)
}

func (f FrameFlags) PreserveFileAlteration(v Version) bool {
	return !f.has(v, flagFileAlterPreservation)
}

func (f FrameFlags) ReadOnly(v Version) bool {
	return f.has(v, flagReadOnly)
}

func (f FrameFlags) Compressed(v Version) bool {
	return f.has(v, flagCompression)
}

func (f FrameFlags) Encrypted(v Version) bool {
	return f.has(v, flagEncryption)
}

func (f FrameFlags) Grouped(v Version) bool {
	return f.has(v, flagGrouping)
}

func (f FrameFlags) Unsynchronised(v Version) bool {
	return f.has(v, flagFrameUnsync)
}

func (f FrameFlags) DataLengthIndicator(v Version) bool {
	return f.has(v, flagDataLength)
}

// statusFlags carries the status byte of f, as laid out for version
// from, over to the layout of version to.
func (f FrameFlags) statusFlags(from, to Version) FrameFlags {
	var out FrameFlags
	for _, flag := range []frameFlag{flagTagAlterPreservation, flagFileAlterPreservation, flagReadOnly} {
		if f.has(from, flag) {
			out = out.with(to, flag)
		}
	}
	return out
}
