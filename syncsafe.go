package id3

// maxSyncsafe is the largest value a 4 byte syncsafe integer can hold.
const maxSyncsafe = 1<<28 - 1

// encodeSyncsafe spreads the low 28 bits of i over four bytes, seven
// bits per byte, most significant first.
func encodeSyncsafe(i int) [4]byte {
	return [4]byte{
		byte(i>>21) & 0x7f,
		byte(i>>14) & 0x7f,
		byte(i>>7) & 0x7f,
		byte(i) & 0x7f,
	}
}

// decodeSyncsafe reverses encodeSyncsafe. ok is false if any byte has
// its high bit set.
func decodeSyncsafe(b [4]byte) (n int, ok bool) {
	if (b[0]|b[1]|b[2]|b[3])&0x80 != 0 {
		return 0, false
	}
	return int(b[0])<<21 | int(b[1])<<14 | int(b[2])<<7 | int(b[3]), true
}

func putSyncsafe(dst []byte, i int) {
	b := encodeSyncsafe(i)
	copy(dst, b[:])
}

func decodeUint32(b [4]byte) int {
	return int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3])
}

func putUint32(dst []byte, i int) {
	dst[0] = byte(i >> 24)
	dst[1] = byte(i >> 16)
	dst[2] = byte(i >> 8)
	dst[3] = byte(i)
}

func concat(bs ...[]byte) []byte {
	n := 0
	for _, b := range bs {
		n += len(b)
	}
	out := make([]byte, 0, n)
	for _, b := range bs {
		out = append(out, b...)
	}
	return out
}
