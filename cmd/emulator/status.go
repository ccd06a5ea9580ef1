package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print a card's configuration and counter state",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			cfg, err := st.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load card: %w", err)
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"field", "value"})
			t.AppendRow(table.Row{"card_id", cfg.CardID})
			t.AppendRow(table.Row{"uid", fmt.Sprintf("%X", cfg.UID)})
			t.AppendRow(table.Row{"lnurl_base", cfg.LNURLBase})
			t.AppendRow(table.Row{"enabled", cfg.Enabled})
			t.AppendRow(table.Row{"counter", st.CurrentCounter()})
			t.Render()
			return nil
		},
	}
}
