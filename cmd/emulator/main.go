// Command emulator is the composition root for the NTAG424 DNA Bolt
// Card emulator: it wires a Persistence store and a Transport into
// pkg/tagemu's state machine, and offers provisioning and diagnostic
// subcommands alongside the long-running serve command.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"hermannm.dev/devlog"

	"github.com/barnettlynn/ntag424emu/internal/store"
)

var (
	flagStorePath string
	flagCardID    string
	flagVerbose   bool
	flagLogFormat string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "emulator",
		Short: "Software emulator for an NTAG424 DNA Bolt Card",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging()
		},
	}

	root.PersistentFlags().StringVar(&flagStorePath, "store", "cards.yaml", "path to the card configuration store")
	root.PersistentFlags().StringVar(&flagCardID, "card-id", "", "card ID to operate on (required; provision generates one when omitted)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "log format: text, json, or dev")

	root.AddCommand(serveCmd())
	root.AddCommand(provisionCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(resetCounterCmd())
	root.AddCommand(conformCmd())
	return root
}

func configureLogging() {
	var level slog.LevelVar
	if flagVerbose {
		level.Set(slog.LevelDebug)
	}
	opts := &slog.HandlerOptions{Level: &level}

	switch flagLogFormat {
	case "json":
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	case "dev":
		slog.SetDefault(slog.New(devlog.NewHandler(os.Stderr, &devlog.Options{Level: &level})))
	default:
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}
}

func openStore() (*store.YAMLStore, error) {
	if flagCardID == "" {
		return nil, fmt.Errorf("--card-id is required")
	}
	return store.OpenYAMLStore(flagStorePath, flagCardID)
}
