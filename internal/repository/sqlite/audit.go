package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/garnizeh/problemhub/internal/ids"
	"github.com/garnizeh/problemhub/internal/models"
	"github.com/garnizeh/problemhub/pkg/repository"
)

const auditSelect = `SELECT a.id, a.admin_id, COALESCE(u.name, 'Unknown'), COALESCE(u.email, ''), a.action, a.target_type,
	a.target_id, a.details, a.metadata, a.ip_address, a.user_agent, a.created_at
FROM audit_logs a
LEFT JOIN users u ON u.id = a.admin_id`

func scanAudit(s scanner) (*models.AuditLog, error) {
	var l models.AuditLog
	var action, targetType string
	var metadata sql.NullString
	var created int64
	if err := s.Scan(&l.ID, &l.AdminID, &l.AdminName, &l.AdminEmail, &action, &targetType,
		&l.TargetID, &l.Details, &metadata, &l.IPAddress, &l.UserAgent, &created); err != nil {
		return nil, err
	}
	l.Action = models.AuditAction(action)
	l.TargetType = models.TargetType(targetType)
	if metadata.Valid && metadata.String != "" {
		l.Metadata = json.RawMessage(metadata.String)
	}
	l.CreatedAt = fromMillis(created)
	return &l, nil
}

func (r *SQLiteRepo) queryAudit(ctx context.Context, q string, args ...any) ([]models.AuditLog, error) {
	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	out := []models.AuditLog{}
	for rows.Next() {
		l, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) CreateAuditLog(ctx context.Context, l *models.AuditLog) error {
	if l == nil {
		return fmt.Errorf("audit log is nil")
	}
	if l.ID == "" {
		l.ID = ids.New()
	}
	ts := now()
	l.CreatedAt = fromMillis(ts)

	var metadata any
	if len(l.Metadata) > 0 {
		metadata = string(l.Metadata)
	}
	_, err := r.conn.Exec(ctx, `INSERT INTO audit_logs (id, admin_id, action, target_type, target_id, details, metadata, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.AdminID, string(l.Action), string(l.TargetType), l.TargetID, l.Details, metadata, l.IPAddress, l.UserAgent, ts)
	return err
}

func auditWhere(f repository.AuditFilter) ([]string, []any) {
	var clauses []string
	var args []any
	if f.AdminID != "" {
		clauses = append(clauses, `a.admin_id = ?`)
		args = append(args, f.AdminID)
	}
	if f.Action != "" {
		clauses = append(clauses, `a.action = ?`)
		args = append(args, string(f.Action))
	}
	if f.TargetType != "" {
		clauses = append(clauses, `a.target_type = ?`)
		args = append(args, string(f.TargetType))
	}
	if f.TargetID != "" {
		clauses = append(clauses, `a.target_id = ?`)
		args = append(args, f.TargetID)
	}
	if f.StartDate != nil {
		clauses = append(clauses, `a.created_at >= ?`)
		args = append(args, f.StartDate.UTC().UnixMilli())
	}
	if f.EndDate != nil {
		clauses = append(clauses, `a.created_at <= ?`)
		args = append(args, f.EndDate.UTC().UnixMilli())
	}
	return clauses, args
}

// ListAuditLogs is always newest first; only page and limit of p are used.
func (r *SQLiteRepo) ListAuditLogs(ctx context.Context, f repository.AuditFilter, p *repository.Page) ([]models.AuditLog, int64, error) {
	clauses, args := auditWhere(f)
	w := where(clauses)

	var total int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs a`+w, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	lim, limArgs := limitOffset(p)
	out, err := r.queryAudit(ctx, auditSelect+w+` ORDER BY a.created_at DESC, a.id DESC`+lim, append(args, limArgs...)...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *SQLiteRepo) RecentAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 10
	}
	return r.queryAudit(ctx, auditSelect+` ORDER BY a.created_at DESC, a.id DESC LIMIT ?`, limit)
}

func (r *SQLiteRepo) AuditLogsByTarget(ctx context.Context, targetType models.TargetType, targetID string) ([]models.AuditLog, error) {
	return r.queryAudit(ctx, auditSelect+` WHERE a.target_type = ? AND a.target_id = ? ORDER BY a.created_at DESC, a.id DESC`, string(targetType), targetID)
}
