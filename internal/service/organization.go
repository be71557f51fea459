package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/garnizeh/problemhub/internal/apperr"
	"github.com/garnizeh/problemhub/internal/models"
	"github.com/garnizeh/problemhub/pkg/repository"
)

const dashboardRecent = 5

type OrganizationService struct {
	orgs     repository.OrganizationRepo
	problems repository.ProblemRepo
	audit    *AuditService
	cache    *StatsCache
	logger   *slog.Logger
}

func NewOrganizationService(orgs repository.OrganizationRepo, problems repository.ProblemRepo, audit *AuditService, cache *StatsCache, logger *slog.Logger) *OrganizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrganizationService{orgs: orgs, problems: problems, audit: audit, cache: cache, logger: logger}
}

type OrganizationList struct {
	Organizations []models.Organization `json:"organizations"`
	Pagination    Pagination            `json:"pagination"`
}

type DashboardStats struct {
	TotalProblems int64 `json:"totalProblems"`
	Pending       int64 `json:"pending"`
	Approved      int64 `json:"approved"`
	Rejected      int64 `json:"rejected"`
}

type RecentProblem struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Track     models.Track         `json:"track"`
	Category  string               `json:"category"`
	Status    models.ProblemStatus `json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
}

type OrganizationDashboard struct {
	Organization   *models.Organization `json:"organization"`
	Stats          DashboardStats       `json:"stats"`
	RecentProblems []RecentProblem      `json:"recentProblems"`
}

func (s *OrganizationService) List(ctx context.Context, f repository.OrganizationFilter, p *repository.Page) (*OrganizationList, error) {
	orgs, total, err := s.orgs.ListOrganizations(ctx, f, p)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return &OrganizationList{Organizations: orgs, Pagination: paginate(p, total)}, nil
}

func (s *OrganizationService) Get(ctx context.Context, id string) (*models.Organization, error) {
	o, err := s.orgs.GetOrganizationByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load organization: %w", err)
	}
	if o == nil {
		return nil, apperr.NotFound("Organization not found")
	}
	return o, nil
}

func (s *OrganizationService) GetByUser(ctx context.Context, userID string) (*models.Organization, error) {
	o, err := s.orgs.GetOrganizationByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load organization: %w", err)
	}
	if o == nil {
		return nil, apperr.NotFound("Organization not found")
	}
	return o, nil
}

func (s *OrganizationService) Update(ctx context.Context, orgID, actingUserID string, patch models.OrganizationPatch) (*models.Organization, error) {
	o, err := s.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if o.UserID != actingUserID {
		return nil, apperr.Forbidden("", "You can only update your own organization")
	}
	merged := patch.Apply(*o)
	if merged == *o {
		return o, nil
	}
	if !models.IsIndustry(merged.Industry) {
		return nil, apperr.Validation(map[string]string{"industry": "Invalid industry"})
	}
	updated, err := s.orgs.UpdateOrganization(ctx, orgID, patch)
	if err != nil {
		return nil, fmt.Errorf("update organization: %w", err)
	}
	if updated == nil {
		return nil, apperr.NotFound("Organization not found")
	}
	s.logger.Info("organization updated", slog.String("organization_id", orgID), slog.String("user_id", actingUserID))
	return updated, nil
}

// Verify sets the verified flag and always writes an audit entry, even when
// the value does not change.
func (s *OrganizationService) Verify(ctx context.Context, orgID, adminID string, verified bool) (*models.Organization, error) {
	if _, err := s.Get(ctx, orgID); err != nil {
		return nil, err
	}
	updated, err := s.orgs.SetOrganizationVerified(ctx, orgID, verified)
	if err != nil {
		return nil, fmt.Errorf("verify organization: %w", err)
	}
	if updated == nil {
		return nil, apperr.NotFound("Organization not found")
	}
	s.cache.Invalidate()

	action, verb := models.ActionVerifyOrganization, "Verified"
	if !verified {
		action, verb = models.ActionSuspendOrganization, "Unverified"
	}
	s.audit.Record(ctx, adminID, action, models.TargetOrganization, updated.ID, verb+" organization: "+updated.Name, nil)

	s.logger.Info("organization verification status updated", slog.String("organization_id", orgID), slog.String("admin_id", adminID), slog.Bool("verified", verified))
	return updated, nil
}

func (s *OrganizationService) Dashboard(ctx context.Context, orgID string) (*OrganizationDashboard, error) {
	o, err := s.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	counts, err := s.problems.CountProblemsByStatus(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("count problems: %w", err)
	}
	recent, _, err := s.problems.ListProblems(ctx, repository.ProblemFilter{OrganizationID: orgID}, &repository.Page{Page: 1, Limit: dashboardRecent})
	if err != nil {
		return nil, fmt.Errorf("recent problems: %w", err)
	}

	d := &OrganizationDashboard{
		Organization: o,
		Stats: DashboardStats{
			Pending:  counts[models.StatusPending],
			Approved: counts[models.StatusApproved],
			Rejected: counts[models.StatusRejected],
		},
		RecentProblems: make([]RecentProblem, 0, len(recent)),
	}
	d.Stats.TotalProblems = d.Stats.Pending + d.Stats.Approved + d.Stats.Rejected
	for _, p := range recent {
		d.RecentProblems = append(d.RecentProblems, RecentProblem{ID: p.ID, Title: p.Title, Track: p.Track, Category: p.Category, Status: p.Status, CreatedAt: p.CreatedAt})
	}
	return d, nil
}

func (s *OrganizationService) Stats(ctx context.Context) (*models.OrganizationStats, error) {
	st, err := s.orgs.OrganizationStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("organization stats: %w", err)
	}
	return st, nil
}
