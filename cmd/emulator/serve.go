package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/barnettlynn/ntag424emu/internal/transport"
	"github.com/barnettlynn/ntag424emu/pkg/tagemu"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Enable emulation for a card over the loopback hex-APDU bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}

			cfg, err := st.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load card: %w", err)
			}
			if !cfg.Enabled {
				return fmt.Errorf("card %q is disabled; enable it via provision first", flagCardID)
			}

			sm := tagemu.NewStateMachine(st)
			bridge := transport.NewLoopback(os.Stdin, os.Stdout, slog.Default())

			if err := bridge.Enable(tagemu.HandlerFunc(sm.HandleAPDU)); err != nil {
				return fmt.Errorf("enable transport: %w", err)
			}
			slog.Info("emulation enabled", "card_id", flagCardID)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			sm.Reset()
			return bridge.Disable()
		},
	}
}
