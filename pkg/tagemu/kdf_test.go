package tagemu

import (
	"bytes"
	"testing"
)

func TestDeriveKeyMatchesManualFixedInput(t *testing.T) {
	masterKey := make([]byte, 16)

	got, err := DeriveKey(masterKey, labelSDMEncFileData, ZeroSV)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}

	wantInput := concat(
		[]byte{0x00, 0x01},
		[]byte("SDMENCFileData"),
		[]byte{0x00},
		ZeroSV,
		[]byte{0x00, 0x80},
	)
	want, err := CMAC(masterKey, wantInput)
	if err != nil {
		t.Fatalf("CMAC: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("DeriveKey = %X, want %X", got, want)
	}
}

func TestDeriveKeyRejectsBadLengths(t *testing.T) {
	if _, err := DeriveKey(make([]byte, 15), labelSDMEncFileData, ZeroSV); err == nil {
		t.Fatal("expected error for short master key")
	}
	if _, err := DeriveKey(make([]byte, 16), labelSDMEncFileData, make([]byte, 15)); err == nil {
		t.Fatal("expected error for short SV")
	}
}

func TestDeriveKeyLabelsProduceDistinctKeys(t *testing.T) {
	masterKey := make([]byte, 16)
	enc, err := DeriveKey(masterKey, labelSDMEncFileData, ZeroSV)
	if err != nil {
		t.Fatalf("DeriveKey enc: %v", err)
	}
	mac, err := DeriveKey(masterKey, labelSDMFileReadMAC, ZeroSV)
	if err != nil {
		t.Fatalf("DeriveKey mac: %v", err)
	}
	if bytes.Equal(enc, mac) {
		t.Fatal("distinct labels must derive distinct keys")
	}
}
