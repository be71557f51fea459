// Package db embeds the SQL schema migrations applied by internal/db.Migrate
// and the sample data loaded by internal/seed.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed seed/fixtures.yaml
var Fixtures []byte
