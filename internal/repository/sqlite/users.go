package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/garnizeh/problemhub/internal/db"
	"github.com/garnizeh/problemhub/internal/ids"
	"github.com/garnizeh/problemhub/internal/models"
)

const userColumns = `id, email, password_hash, name, role, avatar, is_active, last_login_at, created_at, updated_at`

func insertUser(ctx context.Context, q db.Querier, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}
	if u.ID == "" {
		u.ID = ids.New()
	}
	ts := now()
	u.Email = normalizeEmail(u.Email)
	u.CreatedAt, u.UpdatedAt = fromMillis(ts), fromMillis(ts)

	_, err := q.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.Name, string(u.Role), u.Avatar, boolInt(u.IsActive), ts, ts)
	return mapWriteErr(err)
}

func scanUser(s scanner) (*models.User, error) {
	var u models.User
	var role string
	var active int
	var lastLogin sql.NullInt64
	var created, updated int64
	if err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &role, &u.Avatar, &active, &lastLogin, &created, &updated); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	u.IsActive = active == 1
	if lastLogin.Valid {
		t := fromMillis(lastLogin.Int64)
		u.LastLoginAt = &t
	}
	u.CreatedAt, u.UpdatedAt = fromMillis(created), fromMillis(updated)
	return &u, nil
}

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) error {
	return insertUser(ctx, r.conn.GetConn(), u)
}

func (r *SQLiteRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *SQLiteRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, normalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

func (r *SQLiteRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, normalizeEmail(email)).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLiteRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.conn.Exec(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`, at.UTC().UnixMilli(), id)
	return err
}

func (r *SQLiteRepo) SetUserActive(ctx context.Context, id string, active bool) error {
	res, err := r.conn.Exec(ctx, `UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`, boolInt(active), now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateUserWithOrganization writes the account and its organization in one
// transaction; a failure on either insert leaves neither row behind.
func (r *SQLiteRepo) CreateUserWithOrganization(ctx context.Context, u *models.User, o *models.Organization) error {
	if u == nil || o == nil {
		return fmt.Errorf("user and organization are required")
	}
	return r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, u); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		o.UserID = u.ID
		if err := insertOrganization(ctx, tx, o); err != nil {
			return fmt.Errorf("insert organization: %w", err)
		}
		return nil
	})
}
