package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/garnizeh/problemhub/internal/db"
	"github.com/garnizeh/problemhub/internal/ids"
	"github.com/garnizeh/problemhub/internal/models"
	"github.com/garnizeh/problemhub/pkg/repository"
)

const orgColumns = `o.id, o.user_id, o.name, o.logo, o.description, o.website, o.industry, o.contact_person, o.contact_email, o.verified, o.is_active, o.created_at, o.updated_at`

var orgSortColumns = map[string]string{
	"createdAt":     "o.created_at",
	"updatedAt":     "o.updated_at",
	"name":          "o.name",
	"industry":      "o.industry",
	"verified":      "o.verified",
	"contactPerson": "o.contact_person",
}

func insertOrganization(ctx context.Context, q db.Querier, o *models.Organization) error {
	if o == nil {
		return fmt.Errorf("organization is nil")
	}
	if o.ID == "" {
		o.ID = ids.New()
	}
	ts := now()
	o.CreatedAt, o.UpdatedAt = fromMillis(ts), fromMillis(ts)
	_, err := q.ExecContext(ctx, `INSERT INTO organizations (id, user_id, name, logo, description, website, industry, contact_person, contact_email, verified, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, o.Name, o.Logo, o.Description, o.Website, o.Industry, o.ContactPerson, o.ContactEmail,
		boolInt(o.Verified), boolInt(o.IsActive), ts, ts)
	return mapWriteErr(err)
}

func scanOrganization(s scanner) (*models.Organization, error) {
	var o models.Organization
	var verified, active int
	var created, updated int64
	if err := s.Scan(&o.ID, &o.UserID, &o.Name, &o.Logo, &o.Description, &o.Website, &o.Industry,
		&o.ContactPerson, &o.ContactEmail, &verified, &active, &created, &updated); err != nil {
		return nil, err
	}
	o.Verified = verified == 1
	o.IsActive = active == 1
	o.CreatedAt, o.UpdatedAt = fromMillis(created), fromMillis(updated)
	return &o, nil
}

func (r *SQLiteRepo) CreateOrganization(ctx context.Context, o *models.Organization) error {
	return insertOrganization(ctx, r.conn.GetConn(), o)
}

func (r *SQLiteRepo) getOrganization(ctx context.Context, cond string, arg any) (*models.Organization, error) {
	o, err := scanOrganization(r.conn.QueryRow(ctx, `SELECT `+orgColumns+` FROM organizations o WHERE `+cond, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

func (r *SQLiteRepo) GetOrganizationByID(ctx context.Context, id string) (*models.Organization, error) {
	return r.getOrganization(ctx, `o.id = ?`, id)
}

func (r *SQLiteRepo) GetOrganizationByUserID(ctx context.Context, userID string) (*models.Organization, error) {
	return r.getOrganization(ctx, `o.user_id = ?`, userID)
}

func orgWhere(f repository.OrganizationFilter) ([]string, []any) {
	var clauses []string
	var args []any
	if f.Verified != nil {
		clauses = append(clauses, `o.verified = ?`)
		args = append(args, boolInt(*f.Verified))
	}
	if f.IsActive != nil {
		clauses = append(clauses, `o.is_active = ?`)
		args = append(args, boolInt(*f.IsActive))
	}
	if f.Industry != "" {
		clauses = append(clauses, `o.industry = ?`)
		args = append(args, f.Industry)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + escapeLike(s) + "%"
		clauses = append(clauses, `(o.name LIKE ? ESCAPE '\' OR o.contact_person LIKE ? ESCAPE '\')`)
		args = append(args, like, like)
	}
	return clauses, args
}

func (r *SQLiteRepo) ListOrganizations(ctx context.Context, f repository.OrganizationFilter, p *repository.Page) ([]models.Organization, int64, error) {
	clauses, args := orgWhere(f)
	w := where(clauses)

	var total int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM organizations o`+w, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count organizations: %w", err)
	}

	lim, limArgs := limitOffset(p)
	q := `SELECT ` + orgColumns + ` FROM organizations o` + w + orderBy(p, orgSortColumns, "o.created_at") + `, o.id DESC` + lim
	rows, err := r.conn.QueryRows(ctx, q, append(args, limArgs...)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	out := []models.Organization{}
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *o)
	}
	return out, total, rows.Err()
}

func (r *SQLiteRepo) UpdateOrganization(ctx context.Context, id string, patch models.OrganizationPatch) (*models.Organization, error) {
	var sets []string
	var args []any
	add := func(col string, v *string) {
		if v != nil {
			sets = append(sets, col+" = ?")
			args = append(args, *v)
		}
	}
	add("name", patch.Name)
	add("description", patch.Description)
	add("website", patch.Website)
	add("industry", patch.Industry)
	add("contact_person", patch.ContactPerson)
	add("contact_email", patch.ContactEmail)
	add("logo", patch.Logo)
	sets = append(sets, "updated_at = ?")
	args = append(args, now(), id)

	if _, err := r.conn.Exec(ctx, `UPDATE organizations SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
		return nil, fmt.Errorf("update organization: %w", err)
	}
	return r.GetOrganizationByID(ctx, id)
}

func (r *SQLiteRepo) SetOrganizationVerified(ctx context.Context, id string, verified bool) (*models.Organization, error) {
	if _, err := r.conn.Exec(ctx, `UPDATE organizations SET verified = ?, updated_at = ? WHERE id = ?`, boolInt(verified), now(), id); err != nil {
		return nil, fmt.Errorf("verify organization: %w", err)
	}
	return r.GetOrganizationByID(ctx, id)
}

func (r *SQLiteRepo) OrganizationStats(ctx context.Context) (*models.OrganizationStats, error) {
	var s models.OrganizationStats
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(verified = 1), 0) FROM organizations WHERE is_active = 1`).Scan(&s.Total, &s.Verified); err != nil {
		return nil, fmt.Errorf("organization stats: %w", err)
	}
	s.Unverified = s.Total - s.Verified

	byIndustry, err := r.groupCount(ctx, `SELECT industry, COUNT(*) FROM organizations WHERE is_active = 1 GROUP BY industry`)
	if err != nil {
		return nil, err
	}
	s.ByIndustry = byIndustry
	return &s, nil
}

func (r *SQLiteRepo) CountVerifiedOrganizations(ctx context.Context) (int64, error) {
	var n int64
	err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM organizations WHERE is_active = 1 AND verified = 1`).Scan(&n)
	return n, err
}

// groupCount runs a two-column key/count query.
func (r *SQLiteRepo) groupCount(ctx context.Context, q string, args ...any) (map[string]int64, error) {
	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("group count: %w", err)
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var k string
		var n int64
		if err := rows.Scan(&k, &n); err != nil {
			return nil, err
		}
		out[k] = n
	}
	return out, rows.Err()
}
