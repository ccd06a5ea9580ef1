package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/barnettlynn/ntag424emu/internal/config"
)

func provisionCmd() *cobra.Command {
	var (
		lnurlBase  string
		uidHex     string
		generate   bool
		interactiveKeys bool
	)

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create or update a card's configuration record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagCardID == "" {
				flagCardID = uuid.NewString()
				fmt.Fprintf(os.Stderr, "no --card-id given; generated %s\n", flagCardID)
			}
			if lnurlBase == "" {
				return fmt.Errorf("--lnurl-base is required")
			}

			var k0, k1, k2 string
			var uid string
			var err error

			switch {
			case generate:
				k0, err = randomHexKey()
				if err != nil {
					return err
				}
				k1, err = randomHexKey()
				if err != nil {
					return err
				}
				k2, err = randomHexKey()
				if err != nil {
					return err
				}
				uid, err = randomUID()
				if err != nil {
					return err
				}
			case interactiveKeys:
				if k0, err = readHiddenHexKey("K0 (application master key)"); err != nil {
					return err
				}
				if k1, err = readHiddenHexKey("K1 (SDM file data key)"); err != nil {
					return err
				}
				if k2, err = readHiddenHexKey("K2 (SDM file read MAC key)"); err != nil {
					return err
				}
				if uidHex == "" {
					return fmt.Errorf("--uid is required when not generating keys")
				}
				uid = strings.ToUpper(uidHex)
			default:
				return fmt.Errorf("either --generate or --interactive-keys must be given")
			}

			enabled := true
			counter := 0
			card := config.CardConfig{
				K0:        k0,
				K1:        k1,
				K2:        k2,
				UID:       uid,
				Counter:   &counter,
				CardID:    flagCardID,
				LNURLBase: lnurlBase,
				Enabled:   &enabled,
			}
			if err := card.Validate(); err != nil {
				return err
			}

			return upsertCard(flagStorePath, flagCardID, card)
		},
	}

	cmd.Flags().StringVar(&lnurlBase, "lnurl-base", "", "LNURL base, e.g. https://example.com/boltcard")
	cmd.Flags().StringVar(&uidHex, "uid", "", "card UID as 14 hex characters (required with --interactive-keys)")
	cmd.Flags().BoolVar(&generate, "generate", false, "generate a fresh UID and K0/K1/K2 with a CSPRNG")
	cmd.Flags().BoolVar(&interactiveKeys, "interactive-keys", false, "prompt for K0/K1/K2 with echo disabled")
	return cmd
}

func randomHexKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

func randomUID() (string, error) {
	buf := make([]byte, 7)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate uid: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

func readHiddenHexKey(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s (32 hex chars): ", label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return strings.ToUpper(strings.TrimSpace(string(raw))), nil
}

func upsertCard(path, cardID string, card config.CardConfig) error {
	f, err := config.LoadFile(path)
	if err != nil {
		f = &config.File{Cards: map[string]config.CardConfig{}}
	}
	if f.Cards == nil {
		f.Cards = map[string]config.CardConfig{}
	}
	f.Cards[cardID] = card

	out, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	return os.WriteFile(path, out, 0o600)
}
