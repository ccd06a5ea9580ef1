// Package config loads and validates the on-disk card configuration
// record the emulator core is handed through the tagemu.Persistence
// adapter.
package config

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CardConfig is the on-disk shape of one card's configuration record.
// Keys and UID are stored as uppercase hex, matching how a reader or
// provisioning tool would display them.
type CardConfig struct {
	K0        string `yaml:"k0"`
	K1        string `yaml:"k1"`
	K2        string `yaml:"k2"`
	UID       string `yaml:"uid"`
	Counter   *int   `yaml:"counter"`
	CardID    string `yaml:"card_id"`
	LNURLBase string `yaml:"lnurl_base"`
	Enabled   *bool  `yaml:"enabled"`
}

// File is the top-level document a single-file store reads and writes:
// a card_id-keyed map, so one YAML document can hold several cards.
type File struct {
	Cards map[string]CardConfig `yaml:"cards"`
}

// Load reads and validates a single-card configuration document.
func Load(path string) (*CardConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var cfg CardConfig
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads and validates a multi-card configuration document.
func LoadFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	for id, card := range f.Cards {
		if err := card.Validate(); err != nil {
			return nil, fmt.Errorf("config: card %q: %w", id, err)
		}
	}
	return &f, nil
}

// Validate checks the structural and format constraints the emulator
// core requires before it can safely enable emulation for this card.
// Violations are configuration errors: they must never reach a reader
// as a status word, only the configuration tooling that called this.
func (c *CardConfig) Validate() error {
	if err := validateHexKey("k0", c.K0); err != nil {
		return err
	}
	if err := validateHexKey("k1", c.K1); err != nil {
		return err
	}
	if err := validateHexKey("k2", c.K2); err != nil {
		return err
	}
	if len(c.UID) != 14 {
		return fmt.Errorf("config: uid must be 14 hex characters, got %d", len(c.UID))
	}
	if _, err := hex.DecodeString(c.UID); err != nil {
		return fmt.Errorf("config: uid is not valid hex: %w", err)
	}
	if strings.TrimSpace(c.CardID) == "" {
		return fmt.Errorf("config: card_id is required")
	}
	if strings.ContainsAny(c.CardID, "/?#") {
		return fmt.Errorf("config: card_id must be URL-safe, got %q", c.CardID)
	}
	parsed, err := url.Parse(c.LNURLBase)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: lnurl_base must be an absolute URL, got %q", c.LNURLBase)
	}
	if c.Counter == nil {
		return fmt.Errorf("config: counter is required")
	}
	if *c.Counter < 0 || *c.Counter > 0xFFFFFF {
		return fmt.Errorf("config: counter must be 0..16777215, got %d", *c.Counter)
	}
	if c.Enabled == nil {
		return fmt.Errorf("config: enabled is required")
	}
	return nil
}

func validateHexKey(field, value string) error {
	if len(value) != 32 {
		return fmt.Errorf("config: %s must be 32 hex characters, got %d", field, len(value))
	}
	if _, err := hex.DecodeString(value); err != nil {
		return fmt.Errorf("config: %s is not valid hex: %w", field, err)
	}
	return nil
}

// DecodeKeys returns K0, K1, K2 and UID as raw bytes, assuming Validate
// has already accepted the record.
func (c *CardConfig) DecodeKeys() (k0, k1, k2, uid []byte, err error) {
	if k0, err = hex.DecodeString(c.K0); err != nil {
		return
	}
	if k1, err = hex.DecodeString(c.K1); err != nil {
		return
	}
	if k2, err = hex.DecodeString(c.K2); err != nil {
		return
	}
	uid, err = hex.DecodeString(c.UID)
	return
}
