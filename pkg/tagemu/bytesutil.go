package tagemu

import "crypto/subtle"

// putUint24BE writes the low 24 bits of v into dst (big-endian, 3 bytes).
func putUint24BE(dst []byte, v uint32) {
	dst[0] = byte(v >> 16)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v)
}

// uint24BE reads a big-endian 24-bit unsigned integer.
func uint24BE(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// constantTimeEqual reports whether a and b are equal without leaking
// timing information about the position of the first mismatch.
func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// leftShiftOne returns src shifted left by one bit, carrying across byte
// boundaries (used by the CMAC subkey derivation, NIST SP 800-38B §6.1).
func leftShiftOne(src []byte) []byte {
	out := make([]byte, len(src))
	var carry byte
	for i := len(src) - 1; i >= 0; i-- {
		out[i] = (src[i] << 1) | carry
		carry = src[i] >> 7
	}
	return out
}

// xorBytes returns a XOR b; both slices must be the same length.
func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// concat joins byte slices without mutating any of them.
func concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
