package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/garnizeh/problemhub/internal/db"
)

// dbPath extracts the file path from a sqlite dsn such as
// "file:problemhub.db?_pragma=...".
func dbPath(dsn string) (string, error) {
	if db.IsMemory(dsn) {
		return "", errors.New("in-memory databases cannot be backed up or restored")
	}
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "", fmt.Errorf("no file path in dsn %q", dsn)
	}
	return p, nil
}

func backupCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [DEST]",
		Short: "Write a consistent copy of the database to DEST",
		Long:  "Write a consistent copy of the database to DEST (default: <database>.bak). Safe while the server is running.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := dbPath(a.cfg.DatabaseURI)
			if err != nil {
				return err
			}
			dst := src + ".bak"
			if len(args) == 1 {
				dst = args[0]
			}
			// VACUUM INTO refuses to overwrite.
			if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("remove old backup: %w", err)
			}

			database, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			if _, err := database.Exec(cmd.Context(), `VACUUM INTO ?`, dst); err != nil {
				return fmt.Errorf("backup: %w", err)
			}
			cmd.Printf("Database backup written to %s.\n", dst)
			return nil
		},
	}
}

func restoreCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore [SRC]",
		Short: "Replace the database with the backup at SRC",
		Long:  "Replace the database with the backup at SRC (default: <database>.bak). Stop the server first.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dst, err := dbPath(a.cfg.DatabaseURI)
			if err != nil {
				return err
			}
			src := dst + ".bak"
			if len(args) == 1 {
				src = args[0]
			}
			if err := copyFile(src, dst); err != nil {
				return fmt.Errorf("restore: %w", err)
			}
			// Stale WAL frames would be replayed over the restored file.
			for _, suffix := range []string{"-wal", "-shm"} {
				if err := os.Remove(dst + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("restore: %w", err)
				}
			}
			cmd.Printf("Database restored from %s.\n", src)
			return nil
		},
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".restore"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
