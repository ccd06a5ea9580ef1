package tagemu

import (
	"bytes"
	"testing"
)

func TestParseCommandCase1(t *testing.T) {
	cmd, err := ParseCommand([]byte{0x00, 0xA4, 0x04, 0x00})
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if cmd.CLA != 0x00 || cmd.INS != 0xA4 || cmd.P1 != 0x04 || cmd.P2 != 0x00 {
		t.Errorf("unexpected header: %+v", cmd)
	}
	if cmd.HasLe || len(cmd.Data) != 0 {
		t.Errorf("case 1 should have no data and no Le, got %+v", cmd)
	}
}

func TestParseCommandCase2(t *testing.T) {
	cmd, err := ParseCommand([]byte{0x00, 0xB0, 0x00, 0x00, 0xFF})
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if !cmd.HasLe || cmd.Le != 0xFF {
		t.Errorf("expected Le=255, got %+v", cmd)
	}
}

func TestParseCommandCase2LeZeroMeans256(t *testing.T) {
	cmd, err := ParseCommand([]byte{0x00, 0xB0, 0x00, 0x00, 0x00})
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if cmd.Le != 256 {
		t.Errorf("Le=0x00 should decode to 256, got %d", cmd.Le)
	}
}

func TestParseCommandCase3(t *testing.T) {
	raw := []byte{0x00, 0xA4, 0x04, 0x00, 0x07, 0xD2, 0x76, 0x00, 0x00, 0x85, 0x01, 0x01}
	cmd, err := ParseCommand(raw)
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if cmd.HasLe {
		t.Error("case 3 should have no Le")
	}
	if !bytes.Equal(cmd.Data, raw[5:]) {
		t.Errorf("Data = %X, want %X", cmd.Data, raw[5:])
	}
}

func TestParseCommandCase4(t *testing.T) {
	raw := []byte{0x00, 0xA4, 0x00, 0x00, 0x02, 0x00, 0x02, 0x00}
	cmd, err := ParseCommand(raw)
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if !bytes.Equal(cmd.Data, []byte{0x00, 0x02}) {
		t.Errorf("Data = %X, want 0002", cmd.Data)
	}
	if !cmd.HasLe || cmd.Le != 256 {
		t.Errorf("trailing Le=0x00 should decode to 256, got %+v", cmd)
	}
}

func TestParseCommandRejectsTooShort(t *testing.T) {
	if _, err := ParseCommand([]byte{0x00, 0xA4, 0x04}); err == nil {
		t.Fatal("expected error for a 3-byte command")
	}
}

func TestParseCommandRejectsInconsistentLc(t *testing.T) {
	if _, err := ParseCommand([]byte{0x00, 0xA4, 0x04, 0x00, 0x07, 0x01, 0x02}); err == nil {
		t.Fatal("expected error when declared Lc exceeds remaining bytes")
	}
}

func TestResponseBytes(t *testing.T) {
	r := Response{Data: []byte{0x01, 0x02}, SW: SWSuccess}
	got := r.Bytes()
	want := []byte{0x01, 0x02, 0x90, 0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("Bytes = %X, want %X", got, want)
	}
}

func TestStatusOnly(t *testing.T) {
	got := StatusOnly(SWFileOrAppNotFound).Bytes()
	want := []byte{0x6A, 0x82}
	if !bytes.Equal(got, want) {
		t.Errorf("Bytes = %X, want %X", got, want)
	}
}
