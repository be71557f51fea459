package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/garnizeh/problemhub/internal/ids"
	"github.com/garnizeh/problemhub/internal/models"
	"github.com/garnizeh/problemhub/pkg/repository"
)

const problemSelect = `SELECT p.id, p.organization_id, p.title, p.description, p.track, p.category, p.industry,
	p.expected_outcome, p.tech_stack, p.difficulty, p.datasets, p.api_links, p.reference_links,
	p.nda_required, p.mentors_provided, p.status, p.admin_notes, p.reviewed_by, p.reviewed_at,
	p.featured, p.contact_person, p.contact_email, p.created_at, p.updated_at,
	o.id, o.name, o.logo
FROM problem_statements p
LEFT JOIN organizations o ON o.id = p.organization_id`

// approvedOnly is appended to every public read.
const approvedOnly = `p.status = 'approved'`

var problemSortColumns = map[string]string{
	"createdAt":  "p.created_at",
	"updatedAt":  "p.updated_at",
	"title":      "p.title",
	"track":      "p.track",
	"category":   "p.category",
	"difficulty": "p.difficulty",
	"status":     "p.status",
	"featured":   "p.featured",
}

func scanProblem(s scanner) (*models.ProblemStatement, error) {
	var p models.ProblemStatement
	var track, difficulty, status, techStack, refLinks string
	var nda, mentors, featured int
	var reviewedBy, orgID, orgName, orgLogo sql.NullString
	var reviewedAt sql.NullInt64
	var created, updated int64
	if err := s.Scan(&p.ID, &p.OrganizationID, &p.Title, &p.Description, &track, &p.Category, &p.Industry,
		&p.ExpectedOutcome, &techStack, &difficulty, &p.Datasets, &p.APILinks, &refLinks,
		&nda, &mentors, &status, &p.AdminNotes, &reviewedBy, &reviewedAt,
		&featured, &p.ContactPerson, &p.ContactEmail, &created, &updated,
		&orgID, &orgName, &orgLogo); err != nil {
		return nil, err
	}
	p.Track = models.Track(track)
	p.Difficulty = models.Difficulty(difficulty)
	p.Status = models.ProblemStatus(status)
	p.NDARequired = nda == 1
	p.MentorsProvided = mentors == 1
	p.Featured = featured == 1
	p.ReviewedBy = reviewedBy.String
	if reviewedAt.Valid {
		t := fromMillis(reviewedAt.Int64)
		p.ReviewedAt = &t
	}
	p.CreatedAt, p.UpdatedAt = fromMillis(created), fromMillis(updated)

	var err error
	if p.TechStack, err = decodeList(techStack); err != nil {
		return nil, fmt.Errorf("decode tech_stack: %w", err)
	}
	if p.ReferenceLinks, err = decodeList(refLinks); err != nil {
		return nil, fmt.Errorf("decode reference_links: %w", err)
	}
	if orgID.Valid {
		p.Organization = &models.OrganizationRef{ID: orgID.String, Name: orgName.String, Logo: orgLogo.String}
	}
	return &p, nil
}

func (r *SQLiteRepo) queryProblems(ctx context.Context, q string, args ...any) ([]models.ProblemStatement, error) {
	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query problems: %w", err)
	}
	defer rows.Close()

	out := []models.ProblemStatement{}
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) getProblem(ctx context.Context, cond string, args ...any) (*models.ProblemStatement, error) {
	p, err := scanProblem(r.conn.QueryRow(ctx, problemSelect+` WHERE `+cond, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *SQLiteRepo) CreateProblem(ctx context.Context, p *models.ProblemStatement) error {
	if p == nil {
		return fmt.Errorf("problem is nil")
	}
	if p.ID == "" {
		p.ID = ids.New()
	}
	if p.Status == "" {
		p.Status = models.StatusPending
	}
	techStack, err := encodeList(p.TechStack)
	if err != nil {
		return err
	}
	refLinks, err := encodeList(p.ReferenceLinks)
	if err != nil {
		return err
	}
	ts := now()
	p.CreatedAt, p.UpdatedAt = fromMillis(ts), fromMillis(ts)

	_, err = r.conn.Exec(ctx, `INSERT INTO problem_statements (id, organization_id, title, description, track, category, industry,
		expected_outcome, tech_stack, difficulty, datasets, api_links, reference_links, nda_required, mentors_provided,
		status, admin_notes, featured, contact_person, contact_email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.OrganizationID, p.Title, p.Description, string(p.Track), p.Category, p.Industry,
		p.ExpectedOutcome, techStack, string(p.Difficulty), p.Datasets, p.APILinks, refLinks,
		boolInt(p.NDARequired), boolInt(p.MentorsProvided), string(p.Status), p.AdminNotes, boolInt(p.Featured),
		p.ContactPerson, p.ContactEmail, ts, ts)
	return mapWriteErr(err)
}

func (r *SQLiteRepo) GetProblemByID(ctx context.Context, id string) (*models.ProblemStatement, error) {
	return r.getProblem(ctx, `p.id = ?`, id)
}

func problemWhere(f repository.ProblemFilter) ([]string, []any) {
	var clauses []string
	var args []any
	if q := ftsQuery(f.Search); q != "" {
		clauses = append(clauses, `p.id IN (SELECT problem_id FROM problem_statements_fts WHERE problem_statements_fts MATCH ?)`)
		args = append(args, q)
	}
	if f.Track != "" {
		clauses = append(clauses, `p.track = ?`)
		args = append(args, string(f.Track))
	}
	if f.Category != "" {
		clauses = append(clauses, `p.category = ?`)
		args = append(args, f.Category)
	}
	if f.Difficulty != "" {
		clauses = append(clauses, `p.difficulty = ?`)
		args = append(args, string(f.Difficulty))
	}
	if f.Status != "" {
		clauses = append(clauses, `p.status = ?`)
		args = append(args, string(f.Status))
	}
	if f.Featured != nil {
		clauses = append(clauses, `p.featured = ?`)
		args = append(args, boolInt(*f.Featured))
	}
	if f.OrganizationID != "" {
		clauses = append(clauses, `p.organization_id = ?`)
		args = append(args, f.OrganizationID)
	}
	return clauses, args
}

func (r *SQLiteRepo) listProblems(ctx context.Context, clauses []string, args []any, p *repository.Page) ([]models.ProblemStatement, int64, error) {
	w := where(clauses)

	var total int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM problem_statements p`+w, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count problems: %w", err)
	}

	lim, limArgs := limitOffset(p)
	q := problemSelect + w + orderBy(p, problemSortColumns, "p.created_at") + `, p.id DESC` + lim
	out, err := r.queryProblems(ctx, q, append(args, limArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *SQLiteRepo) ListProblems(ctx context.Context, f repository.ProblemFilter, p *repository.Page) ([]models.ProblemStatement, int64, error) {
	clauses, args := problemWhere(f)
	return r.listProblems(ctx, clauses, args, p)
}

func (r *SQLiteRepo) ListPendingProblems(ctx context.Context) ([]models.ProblemStatement, error) {
	return r.queryProblems(ctx, problemSelect+` WHERE p.status = 'pending' ORDER BY p.created_at ASC, p.id ASC`)
}

func (r *SQLiteRepo) ListProblemsByOrganization(ctx context.Context, orgID string) ([]models.ProblemStatement, error) {
	return r.queryProblems(ctx, problemSelect+` WHERE p.organization_id = ? ORDER BY p.created_at DESC, p.id DESC`, orgID)
}

func (r *SQLiteRepo) UpdateProblem(ctx context.Context, id string, patch models.ProblemPatch) (*models.ProblemStatement, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Track != nil {
		set("track", string(*patch.Track))
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.Industry != nil {
		set("industry", *patch.Industry)
	}
	if patch.ExpectedOutcome != nil {
		set("expected_outcome", *patch.ExpectedOutcome)
	}
	if patch.TechStack != nil {
		v, err := encodeList(*patch.TechStack)
		if err != nil {
			return nil, err
		}
		set("tech_stack", v)
	}
	if patch.Difficulty != nil {
		set("difficulty", string(*patch.Difficulty))
	}
	if patch.Datasets != nil {
		set("datasets", *patch.Datasets)
	}
	if patch.APILinks != nil {
		set("api_links", *patch.APILinks)
	}
	if patch.ReferenceLinks != nil {
		v, err := encodeList(*patch.ReferenceLinks)
		if err != nil {
			return nil, err
		}
		set("reference_links", v)
	}
	if patch.NDARequired != nil {
		set("nda_required", boolInt(*patch.NDARequired))
	}
	if patch.MentorsProvided != nil {
		set("mentors_provided", boolInt(*patch.MentorsProvided))
	}
	if patch.ContactPerson != nil {
		set("contact_person", *patch.ContactPerson)
	}
	if patch.ContactEmail != nil {
		set("contact_email", *patch.ContactEmail)
	}
	set("updated_at", now())
	args = append(args, id)

	if _, err := r.conn.Exec(ctx, `UPDATE problem_statements SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...); err != nil {
		return nil, fmt.Errorf("update problem: %w", err)
	}
	return r.GetProblemByID(ctx, id)
}

// ReviewProblem stamps the reviewer and time. Moving away from approved also
// clears the featured flag so featured rows are always approved.
func (r *SQLiteRepo) ReviewProblem(ctx context.Context, id string, status models.ProblemStatus, notes *string, reviewerID string) (*models.ProblemStatement, error) {
	ts := now()
	_, err := r.conn.Exec(ctx, `UPDATE problem_statements
		SET status = ?,
			admin_notes = COALESCE(?, admin_notes),
			reviewed_by = ?,
			reviewed_at = ?,
			featured = CASE WHEN ? = 'approved' THEN featured ELSE 0 END,
			updated_at = ?
		WHERE id = ?`,
		string(status), notes, reviewerID, ts, string(status), ts, id)
	if err != nil {
		return nil, fmt.Errorf("review problem: %w", err)
	}
	return r.GetProblemByID(ctx, id)
}

func (r *SQLiteRepo) SetProblemFeatured(ctx context.Context, id string, featured bool) (*models.ProblemStatement, error) {
	if _, err := r.conn.Exec(ctx, `UPDATE problem_statements SET featured = ?, updated_at = ? WHERE id = ?`, boolInt(featured), now(), id); err != nil {
		return nil, fmt.Errorf("feature problem: %w", err)
	}
	return r.GetProblemByID(ctx, id)
}

func (r *SQLiteRepo) DeleteProblem(ctx context.Context, id string) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM problem_statements WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepo) ProblemStats(ctx context.Context) (*models.ProblemStats, error) {
	var s models.ProblemStats
	err := r.conn.QueryRow(ctx, `SELECT COUNT(*),
		COALESCE(SUM(status = 'pending'), 0),
		COALESCE(SUM(status = 'approved'), 0),
		COALESCE(SUM(status = 'rejected'), 0),
		COALESCE(SUM(featured = 1 AND status = 'approved'), 0)
		FROM problem_statements`).Scan(&s.Total, &s.Pending, &s.Approved, &s.Rejected, &s.Featured)
	if err != nil {
		return nil, fmt.Errorf("problem stats: %w", err)
	}
	if s.ByTrack, err = r.groupCount(ctx, `SELECT track, COUNT(*) FROM problem_statements GROUP BY track`); err != nil {
		return nil, err
	}
	if s.ByDifficulty, err = r.groupCount(ctx, `SELECT difficulty, COUNT(*) FROM problem_statements GROUP BY difficulty`); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SQLiteRepo) CountProblemsByStatus(ctx context.Context, orgID string) (map[models.ProblemStatus]int64, error) {
	raw, err := r.groupCount(ctx, `SELECT status, COUNT(*) FROM problem_statements WHERE organization_id = ? GROUP BY status`, orgID)
	if err != nil {
		return nil, err
	}
	out := make(map[models.ProblemStatus]int64, len(models.ProblemStatuses))
	for _, st := range models.ProblemStatuses {
		out[st] = raw[string(st)]
	}
	return out, nil
}

// Public readers. approvedOnly is part of the SQL so no caller can widen it.

func (r *SQLiteRepo) ListApprovedProblems(ctx context.Context, f repository.ProblemFilter, p *repository.Page) ([]models.ProblemStatement, int64, error) {
	f.Status = ""
	clauses, args := problemWhere(f)
	clauses = append(clauses, approvedOnly)
	return r.listProblems(ctx, clauses, args, p)
}

func (r *SQLiteRepo) GetApprovedProblemByID(ctx context.Context, id string) (*models.ProblemStatement, error) {
	return r.getProblem(ctx, `p.id = ? AND `+approvedOnly, id)
}

func (r *SQLiteRepo) ListFeaturedProblems(ctx context.Context) ([]models.ProblemStatement, error) {
	return r.queryProblems(ctx, problemSelect+` WHERE `+approvedOnly+` AND p.featured = 1 ORDER BY p.created_at DESC, p.id DESC`)
}

func (r *SQLiteRepo) ListRecentProblems(ctx context.Context, limit int) ([]models.ProblemStatement, error) {
	if limit <= 0 {
		limit = 6
	}
	return r.queryProblems(ctx, problemSelect+` WHERE `+approvedOnly+` ORDER BY p.created_at DESC, p.id DESC LIMIT ?`, limit)
}

func (r *SQLiteRepo) CountApprovedByTrack(ctx context.Context) (map[string]int64, error) {
	return r.groupCount(ctx, `SELECT track, COUNT(*) FROM problem_statements p WHERE `+approvedOnly+` GROUP BY track`)
}

func (r *SQLiteRepo) DistinctApprovedCategories(ctx context.Context) ([]string, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT DISTINCT category FROM problem_statements p WHERE `+approvedOnly+` ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
