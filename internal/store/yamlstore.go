// Package store provides Persistence adapters for pkg/tagemu: a
// single-file YAML store for one or a handful of cards, and a
// SQLite-backed store for larger fleets.
package store

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/barnettlynn/ntag424emu/internal/config"
	"github.com/barnettlynn/ntag424emu/pkg/tagemu"
)

// YAMLStore implements tagemu.Persistence against a single on-disk YAML
// document keyed by card ID. Writers take an exclusive lock for the
// whole file; this is adequate for the single-card, single-process
// emulator instance this core targets.
type YAMLStore struct {
	path   string
	cardID string

	mu  sync.Mutex
	doc config.File
}

// OpenYAMLStore loads path and returns a store scoped to cardID. The
// file must already contain an entry for cardID.
func OpenYAMLStore(path, cardID string) (*YAMLStore, error) {
	f, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if _, ok := f.Cards[cardID]; !ok {
		return nil, fmt.Errorf("store: no card %q in %s", cardID, path)
	}
	return &YAMLStore{path: path, cardID: cardID, doc: *f}, nil
}

func (s *YAMLStore) Load(ctx context.Context) (*tagemu.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toTagemuConfigLocked()
}

func (s *YAMLStore) toTagemuConfigLocked() (*tagemu.Config, error) {
	card := s.doc.Cards[s.cardID]
	k0, k1, k2, uid, err := card.DecodeKeys()
	if err != nil {
		return nil, fmt.Errorf("store: decoding card %q: %w", s.cardID, err)
	}
	return &tagemu.Config{
		K0:        k0,
		K1:        k1,
		K2:        k2,
		UID:       uid,
		CardID:    card.CardID,
		LNURLBase: card.LNURLBase,
		Enabled:   card.Enabled != nil && *card.Enabled,
	}, nil
}

func (s *YAMLStore) Save(ctx context.Context, cfg *tagemu.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	card := s.doc.Cards[s.cardID]
	card.CardID = cfg.CardID
	card.LNURLBase = cfg.LNURLBase
	card.K0 = hexUpper(cfg.K0)
	card.K1 = hexUpper(cfg.K1)
	card.K2 = hexUpper(cfg.K2)
	card.UID = hexUpper(cfg.UID)
	enabled := cfg.Enabled
	card.Enabled = &enabled
	s.doc.Cards[s.cardID] = card
	return s.writeLocked()
}

func (s *YAMLStore) IncrementCounter(ctx context.Context) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	card := s.doc.Cards[s.cardID]
	prev := card
	next := 1
	if card.Counter != nil {
		next = (*card.Counter + 1) & 0xFFFFFF
	}
	card.Counter = &next
	s.doc.Cards[s.cardID] = card
	if err := s.writeLocked(); err != nil {
		s.doc.Cards[s.cardID] = prev
		return 0, err
	}
	return uint32(next), nil
}

func (s *YAMLStore) SetCounter(ctx context.Context, value uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	card := s.doc.Cards[s.cardID]
	v := int(value & 0xFFFFFF)
	card.Counter = &v
	s.doc.Cards[s.cardID] = card
	return s.writeLocked()
}

func (s *YAMLStore) writeLocked() error {
	out, err := yaml.Marshal(&s.doc)
	if err != nil {
		return fmt.Errorf("store: marshal %s: %w", s.path, err)
	}
	if err := os.WriteFile(s.path, out, 0o600); err != nil {
		return fmt.Errorf("store: write %s: %w", s.path, err)
	}
	return nil
}

// CurrentCounter returns the persisted counter without advancing it,
// for diagnostic tooling that should not itself look like a tap.
func (s *YAMLStore) CurrentCounter() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	card := s.doc.Cards[s.cardID]
	if card.Counter == nil {
		return 0
	}
	return uint32(*card.Counter)
}

var _ tagemu.Persistence = (*YAMLStore)(nil)

func hexUpper(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}
