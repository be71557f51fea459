package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/garnizeh/problemhub/internal/models"
	"github.com/garnizeh/problemhub/pkg/repository"
)

const dashboardActivity = 10

type AdminService struct {
	problems repository.ProblemRepo
	orgs     repository.OrganizationRepo
	audit    repository.AuditRepo
}

func NewAdminService(problems repository.ProblemRepo, orgs repository.OrganizationRepo, audit repository.AuditRepo) *AdminService {
	return &AdminService{problems: problems, orgs: orgs, audit: audit}
}

type DashboardProblems struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Featured int64 `json:"featured"`
}

type DashboardOrganizations struct {
	Total      int64 `json:"total"`
	Verified   int64 `json:"verified"`
	Unverified int64 `json:"unverified"`
}

type Activity struct {
	ID         string             `json:"id"`
	AdminName  string             `json:"adminName"`
	Action     models.AuditAction `json:"action"`
	TargetType models.TargetType  `json:"targetType"`
	Details    string             `json:"details"`
	CreatedAt  time.Time          `json:"createdAt"`
}

type AdminDashboard struct {
	Problems       DashboardProblems      `json:"problems"`
	Organizations  DashboardOrganizations `json:"organizations"`
	RecentActivity []Activity             `json:"recentActivity"`
}

// Dashboard runs the three aggregations concurrently.
func (s *AdminService) Dashboard(ctx context.Context) (*AdminDashboard, error) {
	var (
		ps   *models.ProblemStats
		org  *models.OrganizationStats
		logs []models.AuditLog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ps, err = s.problems.ProblemStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		org, err = s.orgs.OrganizationStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		logs, err = s.audit.RecentAuditLogs(gctx, dashboardActivity)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("admin dashboard: %w", err)
	}

	d := &AdminDashboard{
		Problems:       DashboardProblems{Total: ps.Total, Pending: ps.Pending, Approved: ps.Approved, Rejected: ps.Rejected, Featured: ps.Featured},
		Organizations:  DashboardOrganizations{Total: org.Total, Verified: org.Verified, Unverified: org.Unverified},
		RecentActivity: make([]Activity, 0, len(logs)),
	}
	for _, l := range logs {
		d.RecentActivity = append(d.RecentActivity, Activity{ID: l.ID, AdminName: l.AdminName, Action: l.Action, TargetType: l.TargetType, Details: l.Details, CreatedAt: l.CreatedAt})
	}
	return d, nil
}
