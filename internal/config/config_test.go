package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadValidCard(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "card.yaml", `
k0: "00112233445566778899AABBCCDDEEFF"
k1: "00112233445566778899AABBCCDDEEFF"
k2: "00112233445566778899AABBCCDDEEFF"
uid: "04AABBCCDDEEFF"
counter: 0
card_id: card1
lnurl_base: https://example.com/boltcard
enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CardID != "card1" {
		t.Errorf("CardID = %q, want card1", cfg.CardID)
	}
	if *cfg.Counter != 0 {
		t.Errorf("Counter = %d, want 0", *cfg.Counter)
	}
}

func TestLoadRejectsBadHexKeyLength(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "card.yaml", `
k0: "00"
k1: "00112233445566778899AABBCCDDEEFF"
k2: "00112233445566778899AABBCCDDEEFF"
uid: "04AABBCCDDEEFF"
counter: 0
card_id: card1
lnurl_base: https://example.com/boltcard
enabled: true
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for short k0")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "card.yaml", `
k0: "00112233445566778899AABBCCDDEEFF"
k1: "00112233445566778899AABBCCDDEEFF"
k2: "00112233445566778899AABBCCDDEEFF"
uid: "04AABBCCDDEEFF"
counter: 0
card_id: card1
lnurl_base: https://example.com/boltcard
enabled: true
bogus_field: oops
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown field under strict decoding")
	}
}

func TestLoadRejectsRelativeLNURLBase(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "card.yaml", `
k0: "00112233445566778899AABBCCDDEEFF"
k1: "00112233445566778899AABBCCDDEEFF"
k2: "00112233445566778899AABBCCDDEEFF"
uid: "04AABBCCDDEEFF"
counter: 0
card_id: card1
lnurl_base: /boltcard
enabled: true
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for a relative lnurl_base")
	}
}

func TestLoadFileMultiCard(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "cards.yaml", `
cards:
  card1:
    k0: "00112233445566778899AABBCCDDEEFF"
    k1: "00112233445566778899AABBCCDDEEFF"
    k2: "00112233445566778899AABBCCDDEEFF"
    uid: "04AABBCCDDEEFF"
    counter: 5
    card_id: card1
    lnurl_base: https://example.com/boltcard
    enabled: true
`)

	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(f.Cards) != 1 {
		t.Fatalf("len(Cards) = %d, want 1", len(f.Cards))
	}
}
