package main

import (
	"github.com/spf13/cobra"
)

func migrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			cmd.Println("Database schema is up to date.")
			return nil
		},
	}
}
