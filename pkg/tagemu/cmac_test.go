package tagemu

import (
	"bytes"
	"testing"
)

func TestCMACVectorsEmptyAndOneBlock(t *testing.T) {
	key := mustHex(t, "2B7E151628AED2A6ABF7158809CF4F3C")

	cases := []struct {
		name string
		msg  []byte
		want []byte
	}{
		{"empty message", nil, mustHex(t, "BB1D6929E95937287FA37D129B756746")},
		{"one block", mustHex(t, "6BC1BEE22E409F96E93D7E117393172A"), mustHex(t, "070A16B46B4D4144F79BDD9DD04A287C")},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := CMAC(key, c.msg)
			if err != nil {
				t.Fatalf("CMAC: %v", err)
			}
			if !bytes.Equal(got, c.want) {
				t.Errorf("CMAC(%x) = %X, want %X", c.msg, got, c.want)
			}
		})
	}
}

func TestVerifyCMACLaw(t *testing.T) {
	key := mustHex(t, "2B7E151628AED2A6ABF7158809CF4F3C")
	msg := []byte("bolt card tap event")

	tag, err := CMAC(key, msg)
	if err != nil {
		t.Fatalf("CMAC: %v", err)
	}
	ok, err := VerifyCMAC(key, msg, tag)
	if err != nil {
		t.Fatalf("VerifyCMAC: %v", err)
	}
	if !ok {
		t.Fatal("VerifyCMAC(K, M, CMAC(K,M)) should be true")
	}

	flipped := append([]byte(nil), tag...)
	flipped[0] ^= 0x01
	ok, err = VerifyCMAC(key, msg, flipped)
	if err != nil {
		t.Fatalf("VerifyCMAC: %v", err)
	}
	if ok {
		t.Fatal("flipping a tag bit should make VerifyCMAC false")
	}
}

func TestVerifyCMACAcceptsTruncatedTag(t *testing.T) {
	key := mustHex(t, "2B7E151628AED2A6ABF7158809CF4F3C")
	msg := []byte("truncated mac check")

	full, err := CMAC(key, msg)
	if err != nil {
		t.Fatalf("CMAC: %v", err)
	}
	truncated := TruncateMAC(full, 8)

	ok, err := VerifyCMAC(key, msg, truncated)
	if err != nil {
		t.Fatalf("VerifyCMAC: %v", err)
	}
	if !ok {
		t.Fatal("VerifyCMAC should accept an 8-byte leftmost-truncated tag")
	}
}

func TestTruncateMACTakesLeftmostBytes(t *testing.T) {
	tag := mustHex(t, "070A16B46B4D4144F79BDD9DD04A287C")
	got := TruncateMAC(tag, 8)
	want := mustHex(t, "070A16B46B4D4144")
	if !bytes.Equal(got, want) {
		t.Errorf("TruncateMAC = %X, want %X", got, want)
	}
}
