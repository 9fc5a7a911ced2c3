package kdf

// beInc adds one to a big-endian byte string in place. A carry out of the
// most significant byte is discarded, so the value wraps modulo
// 2^(8*len(b)).
func beInc(b []byte) {
	for i := len(b) - 1; i >= 0; i-- {
		b[i]++
		if b[i] != 0 {
			return
		}
	}
}

// beAdd adds src into dst in place. Both slices are interpreted as
// big-endian unsigned integers of the same length; the final carry is
// discarded. Byte-wise carry propagation keeps this correct for widths
// beyond any machine word (v reaches 128 bytes for sha384/sha512).
func beAdd(dst, src []byte) {
	carry := 0
	for i := len(dst) - 1; i >= 0; i-- {
		sum := int(dst[i]) + int(src[i]) + carry
		dst[i] = byte(sum)
		carry = sum >> 8
	}
}
