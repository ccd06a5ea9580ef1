package tagemu

import "fmt"

const svLen = 16

// DeriveKey implements the NIST SP 800-108 counter-mode KDF with AES-CMAC
// as the PRF, specialized to the one-block output this core ever needs
// (the 128-bit output length means a single PRF evaluation suffices; no
// counter loop past i=1 is required).
//
// The PRF input for that single block is:
//
//	0x00 0x01 || label || 0x00 || sv || 0x00 0x80
//
// i.e. a 2-byte big-endian counter fixed at 1, the ASCII label, a 0x00
// separator, the 16-byte context (the session vector, all-zero for the
// unauthenticated read mode this core implements), and a 2-byte
// big-endian output length in bits (0x0080 = 128).
func DeriveKey(masterKey []byte, label string, sv []byte) ([]byte, error) {
	if len(masterKey) != 16 {
		return nil, fmt.Errorf("tagemu: KDF master key must be 16 bytes, got %d: %w", len(masterKey), ErrCryptoPrecondition)
	}
	if len(sv) != svLen {
		return nil, fmt.Errorf("tagemu: KDF context (SV) must be %d bytes, got %d: %w", svLen, len(sv), ErrCryptoPrecondition)
	}

	input := concat(
		[]byte{0x00, 0x01},
		[]byte(label),
		[]byte{0x00},
		sv,
		[]byte{0x00, 0x80},
	)
	return CMAC(masterKey, input)
}

// KDF labels used by the SDM builder to derive the file-data
// encryption key and the file-read MAC key.
const (
	labelSDMEncFileData = "SDMENCFileData"
	labelSDMFileReadMAC = "SDMFileReadMAC"
)

// ZeroSV is the all-zero 16-byte session vector used by unauthenticated
// SDM reads.
var ZeroSV = make([]byte, svLen)
