package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petasbytes/go-chatbot/memory"
)

func newSessionsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List sessions saved in the sqlite store, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			store, err := memory.OpenSQLite(dbPath(cfg))
			if err != nil {
				return err
			}
			defer store.Close()

			ids, err := store.Sessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved sessions.")
				return nil
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}
