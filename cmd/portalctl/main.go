// Command portalctl administers a problemhub database: schema migrations,
// demo seeding, backups and account switches.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	dbfs "github.com/garnizeh/problemhub/db"
	"github.com/garnizeh/problemhub/internal/config"
	"github.com/garnizeh/problemhub/internal/db"
	"github.com/garnizeh/problemhub/internal/logging"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "portalctl",
		Short:        "Administer the problem statement portal database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.IsProduction())
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to config file")
	root.AddCommand(
		migrateCommand(a),
		seedCommand(a),
		backupCommand(a),
		restoreCommand(a),
		userCommand(a),
	)
	return root
}

// open connects to the configured database and brings its schema up to date.
func (a *app) open(ctx context.Context) (*db.DB, error) {
	database, err := db.New(ctx, a.cfg.DatabaseURI, a.logger, db.WithMaxOpenConns(1))
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}
