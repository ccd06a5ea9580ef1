package tagemu

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex fixture %q: %v", s, err)
	}
	return b
}

func TestAESECBEncryptVector(t *testing.T) {
	key := mustHex(t, "2B7E151628AED2A6ABF7158809CF4F3C")
	plaintext := mustHex(t, "6BC1BEE22E409F96E93D7E117393172A")
	want := mustHex(t, "3AD77BB40D7A3660A89ECAF32466EF97")

	got, err := AESECBEncrypt(key, plaintext)
	if err != nil {
		t.Fatalf("AESECBEncrypt: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("AESECBEncrypt = %X, want %X", got, want)
	}
}

func TestAESECBEncryptRejectsWrongBlockSize(t *testing.T) {
	key := mustHex(t, "2B7E151628AED2A6ABF7158809CF4F3C")
	if _, err := AESECBEncrypt(key, []byte{0x01, 0x02}); err == nil {
		t.Fatal("expected error for non-block-sized input")
	}
}

func TestAESECBEncryptBlocksMatchesPerBlockEncrypt(t *testing.T) {
	key := mustHex(t, "2B7E151628AED2A6ABF7158809CF4F3C")
	block1 := mustHex(t, "6BC1BEE22E409F96E93D7E117393172A")
	block2 := mustHex(t, "AE2D8A571E03AC9C9EB76FAC45AF8E51")

	got, err := AESECBEncryptBlocks(key, append(append([]byte{}, block1...), block2...))
	if err != nil {
		t.Fatalf("AESECBEncryptBlocks: %v", err)
	}

	want1, err := AESECBEncrypt(key, block1)
	if err != nil {
		t.Fatalf("AESECBEncrypt: %v", err)
	}
	want2, err := AESECBEncrypt(key, block2)
	if err != nil {
		t.Fatalf("AESECBEncrypt: %v", err)
	}
	want := append(append([]byte{}, want1...), want2...)

	if !bytes.Equal(got, want) {
		t.Errorf("AESECBEncryptBlocks = %X, want %X", got, want)
	}
}

func TestAESECBEncryptBlocksRejectsPartialBlock(t *testing.T) {
	key := mustHex(t, "2B7E151628AED2A6ABF7158809CF4F3C")
	if _, err := AESECBEncryptBlocks(key, make([]byte, 17)); err == nil {
		t.Fatal("expected error for data not a multiple of the block size")
	}
}

func TestCTRRoundTrip(t *testing.T) {
	key := mustHex(t, "000102030405060708090A0B0C0D0E0F")
	iv := make([]byte, 16)
	plaintext := []byte("the quick brown fox jumps")

	ciphertext, err := CTR(key, iv, plaintext)
	if err != nil {
		t.Fatalf("CTR encrypt: %v", err)
	}
	if bytes.Equal(ciphertext, plaintext) {
		t.Fatal("ciphertext should differ from plaintext")
	}

	recovered, err := CTR(key, iv, ciphertext)
	if err != nil {
		t.Fatalf("CTR decrypt: %v", err)
	}
	if !bytes.Equal(recovered, plaintext) {
		t.Errorf("CTR(key,iv,CTR(key,iv,P)) = %q, want %q", recovered, plaintext)
	}
}

func TestCTRRejectsWrongIVSize(t *testing.T) {
	key := mustHex(t, "000102030405060708090A0B0C0D0E0F")
	if _, err := CTR(key, []byte{0x00}, []byte("x")); err == nil {
		t.Fatal("expected error for short IV")
	}
}
