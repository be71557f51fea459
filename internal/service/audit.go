package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/garnizeh/problemhub/internal/metrics"
	"github.com/garnizeh/problemhub/internal/models"
	"github.com/garnizeh/problemhub/pkg/repository"
)

type AuditService struct {
	repo   repository.AuditRepo
	logger *slog.Logger
}

func NewAuditService(repo repository.AuditRepo, logger *slog.Logger) *AuditService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditService{repo: repo, logger: logger}
}

type AuditList struct {
	Logs       []models.AuditLog `json:"logs"`
	Pagination Pagination        `json:"pagination"`
}

// Record writes an audit entry after a mutation has already succeeded. A
// failed write is logged and counted but never reported to the caller.
func (s *AuditService) Record(ctx context.Context, adminID string, action models.AuditAction, targetType models.TargetType, targetID, details string, metadata map[string]any) {
	meta := RequestMetaFrom(ctx)
	entry := &models.AuditLog{
		AdminID:    adminID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    truncate(details, 500),
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			s.logger.Warn("audit metadata not encodable", slog.String("action", string(action)), slog.Any("err", err))
		} else {
			entry.Metadata = b
		}
	}
	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		metrics.AuditWriteFailed()
		s.logger.Error("audit write failed",
			slog.String("action", string(action)),
			slog.String("target_id", targetID),
			slog.String("admin_id", adminID),
			slog.Any("err", err))
	}
}

func (s *AuditService) List(ctx context.Context, f repository.AuditFilter, p *repository.Page) (*AuditList, error) {
	logs, total, err := s.repo.ListAuditLogs(ctx, f, p)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return &AuditList{Logs: logs, Pagination: paginate(p, total)}, nil
}

func (s *AuditService) Recent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 {
		limit = 10
	}
	logs, err := s.repo.RecentAuditLogs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent audit logs: %w", err)
	}
	return logs, nil
}

func (s *AuditService) ByTarget(ctx context.Context, targetType models.TargetType, targetID string) ([]models.AuditLog, error) {
	logs, err := s.repo.AuditLogsByTarget(ctx, targetType, targetID)
	if err != nil {
		return nil, fmt.Errorf("audit logs by target: %w", err)
	}
	return logs, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
