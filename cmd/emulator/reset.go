package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func resetCounterCmd() *cobra.Command {
	var value uint32
	cmd := &cobra.Command{
		Use:   "reset-counter",
		Short: "Force a card's persisted counter to an explicit value",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			if err := st.SetCounter(cmd.Context(), value); err != nil {
				return fmt.Errorf("set counter: %w", err)
			}
			fmt.Printf("card %q counter set to %d\n", flagCardID, value)
			return nil
		},
	}
	cmd.Flags().Uint32Var(&value, "value", 0, "new counter value (0..16777215)")
	return cmd
}
