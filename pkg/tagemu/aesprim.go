package tagemu

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// AESECBEncrypt encrypts a single 16-byte block under key with AES-128 in
// ECB mode. No padding is applied; the caller must supply exactly one
// block. Used by the CMAC subkey derivation (L = E_K(0^128)).
func AESECBEncrypt(key, block []byte) ([]byte, error) {
	if len(block) != aes.BlockSize {
		return nil, fmt.Errorf("tagemu: ECB block must be %d bytes, got %d: %w", aes.BlockSize, len(block), ErrCryptoPrecondition)
	}
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("tagemu: %w: %w", err, ErrCryptoPrecondition)
	}
	out := make([]byte, aes.BlockSize)
	c.Encrypt(out, block)
	return out, nil
}

// AESECBEncryptBlocks encrypts data, a whole number of 16-byte blocks,
// independently block by block (no chaining). Data whose length is not a
// multiple of the block size is rejected; this wrapper applies no padding.
func AESECBEncryptBlocks(key, data []byte) ([]byte, error) {
	if len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("tagemu: ECB data length %d is not a multiple of %d: %w", len(data), aes.BlockSize, ErrCryptoPrecondition)
	}
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("tagemu: %w: %w", err, ErrCryptoPrecondition)
	}
	out := make([]byte, len(data))
	for off := 0; off < len(data); off += aes.BlockSize {
		c.Encrypt(out[off:off+aes.BlockSize], data[off:off+aes.BlockSize])
	}
	return out, nil
}

// CTR encrypts (or decrypts — AES-CTR is self-inverse) data of arbitrary
// length under key with a 16-byte IV. The IV is treated as a big-endian
// 128-bit counter, incremented once per 16-byte keystream block; the
// final block's keystream is truncated to whatever is left of data. This
// is exactly what crypto/cipher.NewCTR implements for a 16-byte IV, so no
// hand-rolled counter arithmetic is needed here.
func CTR(key, iv, data []byte) ([]byte, error) {
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("tagemu: CTR IV must be %d bytes, got %d: %w", aes.BlockSize, len(iv), ErrCryptoPrecondition)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("tagemu: %w: %w", err, ErrCryptoPrecondition)
	}
	out := make([]byte, len(data))
	cipher.NewCTR(block, iv).XORKeyStream(out, data)
	return out, nil
}
