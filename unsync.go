package id3

// Unsynchronise inserts a zero byte after every 0xFF that is followed
// by a byte of 0xE0 or above, by a zero byte, or by nothing at all.
// The result contains no false MPEG sync patterns and can be
// reversed exactly by Resynchronise.
func Unsynchronise(b []byte) []byte {
	out := make([]byte, 0, len(b)+len(b)/64+1)
	for i, c := range b {
		out = append(out, c)
		if c != 0xFF {
			continue
		}
		if i+1 == len(b) || b[i+1] >= 0xE0 || b[i+1] == 0x00 {
			out = append(out, 0x00)
		}
	}
	return out
}

// Resynchronise removes every zero byte that directly follows 0xFF.
func Resynchronise(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		out = append(out, b[i])
		if b[i] == 0xFF && i+1 < len(b) && b[i+1] == 0x00 {
			i++
		}
	}
	return out
}
