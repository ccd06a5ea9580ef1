package store

import (
	"context"
	"encoding/hex"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/barnettlynn/ntag424emu/pkg/tagemu"
)

// cardRow is the GORM model backing a fleet of cards in a single SQLite
// database, for deployments larger than the single-file YAMLStore
// comfortably supports.
type cardRow struct {
	CardID    string `gorm:"primaryKey;column:card_id"`
	K0        string
	K1        string
	K2        string
	UID       string
	LNURLBase string
	Counter   uint32
	Enabled   bool
}

func (cardRow) TableName() string { return "cards" }

// SQLStore implements tagemu.Persistence against one row of a SQLite
// database, selected by CardID at construction time.
type SQLStore struct {
	db     *gorm.DB
	cardID string
}

// OpenSQLStore opens (creating if necessary) a SQLite database at path,
// migrates the schema, and returns a store scoped to cardID.
func OpenSQLStore(path, cardID string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&cardRow{}); err != nil {
		return nil, fmt.Errorf("store: migrate schema: %w", err)
	}
	return &SQLStore{db: db, cardID: cardID}, nil
}

func (s *SQLStore) Load(ctx context.Context) (*tagemu.Config, error) {
	var row cardRow
	if err := s.db.WithContext(ctx).First(&row, "card_id = ?", s.cardID).Error; err != nil {
		return nil, fmt.Errorf("store: load card %q: %w", s.cardID, err)
	}
	return rowToConfig(row)
}

func (s *SQLStore) Save(ctx context.Context, cfg *tagemu.Config) error {
	row := cardRow{
		CardID:    s.cardID,
		K0:        hexUpper(cfg.K0),
		K1:        hexUpper(cfg.K1),
		K2:        hexUpper(cfg.K2),
		UID:       hexUpper(cfg.UID),
		LNURLBase: cfg.LNURLBase,
		Enabled:   cfg.Enabled,
	}
	return s.db.WithContext(ctx).Save(&row).Error
}

// IncrementCounter advances the stored counter inside a transaction so
// the read-modify-write is atomic even if another process shares the
// database file.
func (s *SQLStore) IncrementCounter(ctx context.Context) (uint32, error) {
	var next uint32
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row cardRow
		if err := tx.First(&row, "card_id = ?", s.cardID).Error; err != nil {
			return err
		}
		next = (row.Counter + 1) & 0xFFFFFF
		return tx.Model(&cardRow{}).
			Where("card_id = ?", s.cardID).
			Update("counter", next).Error
	})
	if err != nil {
		return 0, fmt.Errorf("store: increment counter for %q: %w", s.cardID, err)
	}
	return next, nil
}

func (s *SQLStore) SetCounter(ctx context.Context, value uint32) error {
	return s.db.WithContext(ctx).Model(&cardRow{}).
		Where("card_id = ?", s.cardID).
		Update("counter", value&0xFFFFFF).Error
}

func rowToConfig(row cardRow) (*tagemu.Config, error) {
	k0, err := hex.DecodeString(row.K0)
	if err != nil {
		return nil, fmt.Errorf("store: k0 is not valid hex: %w", err)
	}
	k1, err := hex.DecodeString(row.K1)
	if err != nil {
		return nil, fmt.Errorf("store: k1 is not valid hex: %w", err)
	}
	k2, err := hex.DecodeString(row.K2)
	if err != nil {
		return nil, fmt.Errorf("store: k2 is not valid hex: %w", err)
	}
	uid, err := hex.DecodeString(row.UID)
	if err != nil {
		return nil, fmt.Errorf("store: uid is not valid hex: %w", err)
	}
	return &tagemu.Config{
		K0:        k0,
		K1:        k1,
		K2:        k2,
		UID:       uid,
		CardID:    row.CardID,
		LNURLBase: row.LNURLBase,
		Enabled:   row.Enabled,
	}, nil
}

var _ tagemu.Persistence = (*SQLStore)(nil)
