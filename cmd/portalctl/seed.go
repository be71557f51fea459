package main

import (
	"errors"

	"github.com/spf13/cobra"

	dbfs "github.com/garnizeh/problemhub/db"
	"github.com/garnizeh/problemhub/internal/seed"
)

func seedCommand(a *app) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo admin, organizations and problem statements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fx, err := seed.ParseFixtures(dbfs.Fixtures)
			if err != nil {
				return err
			}
			database, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			sum, err := seed.Run(cmd.Context(), database, fx, seed.Options{
				AdminEmail:    a.cfg.AdminEmail,
				AdminPassword: a.cfg.AdminPassword,
				Reset:         reset,
			}, a.logger)
			if errors.Is(err, seed.ErrAlreadySeeded) {
				cmd.PrintErrln("Database already has users; rerun with --reset to wipe it first.")
				return err
			}
			if err != nil {
				return err
			}

			cmd.Printf("Seeded %d organizations and %d problem statements (%d approved).\n",
				sum.Organizations, sum.Problems, sum.Approved)
			cmd.Printf("Admin login: %s\n", a.cfg.AdminEmail)
			cmd.Printf("Organization logins: org1@example.com ... org%d@example.com / %s\n",
				sum.Organizations, seed.OrganizationPassword)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "delete all existing data before seeding")
	return cmd
}
