package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garnizeh/problemhub/internal/repository/sqlite"
)

func userCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage portal accounts",
	}
	cmd.AddCommand(
		setActiveCommand(a, "activate", true),
		setActiveCommand(a, "deactivate", false),
	)
	return cmd
}

func setActiveCommand(a *app, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " EMAIL",
		Short: fmt.Sprintf("Mark an account as %sd", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			users := sqlite.New(database, a.logger)
			u, err := users.GetUserByEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if u == nil {
				return fmt.Errorf("no user with email %s", args[0])
			}
			if err := users.SetUserActive(cmd.Context(), u.ID, active); err != nil {
				return err
			}
			cmd.Printf("User %s %sd.\n", u.Email, use)
			return nil
		},
	}
}
