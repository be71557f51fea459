package sqlite

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/garnizeh/problemhub/internal/db"
	"github.com/garnizeh/problemhub/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.UserRepo = (*SQLiteRepo)(nil)
var _ repository.Registrar = (*SQLiteRepo)(nil)
var _ repository.OrganizationRepo = (*SQLiteRepo)(nil)
var _ repository.ProblemRepo = (*SQLiteRepo)(nil)
var _ repository.PublicProblemRepo = (*SQLiteRepo)(nil)
var _ repository.AuditRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// mapWriteErr turns uniqueness violations into repository.ErrDuplicate.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlitedrv.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return errors.Join(repository.ErrDuplicate, err)
		}
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return errors.Join(repository.ErrDuplicate, err)
	}
	return err
}

func encodeList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeList(s string) ([]string, error) {
	out := []string{}
	if s == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// escapeLike escapes LIKE wildcards; queries pair it with ESCAPE '\'.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ftsQuery turns free text into an FTS5 MATCH expression of quoted tokens so
// user input can never be parsed as FTS syntax.
func ftsQuery(search string) string {
	fields := strings.Fields(search)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, `"`+strings.ReplaceAll(f, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " OR ")
}

// orderBy resolves a client sort key against a whitelist. Unknown keys and a
// nil page fall back to newest first.
func orderBy(p *repository.Page, columns map[string]string, def string) string {
	col, dir := def, "DESC"
	if p != nil {
		if c, ok := columns[p.SortBy]; ok {
			col = c
		}
		if strings.EqualFold(p.SortOrder, "asc") {
			dir = "ASC"
		}
	}
	return " ORDER BY " + col + " " + dir
}

func limitOffset(p *repository.Page) (string, []any) {
	if p == nil || p.Limit <= 0 {
		return "", nil
	}
	return " LIMIT ? OFFSET ?", []any{p.Limit, p.Offset()}
}

func where(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(clauses, " AND ")
}
