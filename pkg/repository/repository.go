package repository

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/garnizeh/problemhub/internal/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.

// ErrDuplicate is returned when a write violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate key")

// Page is an optional pagination request. A nil *Page means "no pagination,
// newest first".
type Page struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Offset returns the number of rows skipped for the page. It saturates at
// math.MaxInt instead of wrapping.
func (p Page) Offset() int {
	if p.Page < 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// TotalPages returns ceil(total / limit).
func (p Page) TotalPages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// ProblemFilter fields left at their zero value are not filtered on.
type ProblemFilter struct {
	Search         string
	Track          models.Track
	Category       string
	Difficulty     models.Difficulty
	Status         models.ProblemStatus
	Featured       *bool
	OrganizationID string
}

type OrganizationFilter struct {
	Verified *bool
	IsActive *bool
	Industry string
	Search   string
}

type AuditFilter struct {
	AdminID    string
	Action     models.AuditAction
	TargetType models.TargetType
	TargetID   string
	StartDate  *time.Time
	EndDate    *time.Time
}

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetUserActive(ctx context.Context, id string, active bool) error
}

// Registrar creates an organization account and its profile atomically.
type Registrar interface {
	CreateUserWithOrganization(ctx context.Context, u *models.User, o *models.Organization) error
}

type OrganizationRepo interface {
	CreateOrganization(ctx context.Context, o *models.Organization) error
	GetOrganizationByID(ctx context.Context, id string) (*models.Organization, error)
	GetOrganizationByUserID(ctx context.Context, userID string) (*models.Organization, error)
	ListOrganizations(ctx context.Context, f OrganizationFilter, p *Page) ([]models.Organization, int64, error)
	UpdateOrganization(ctx context.Context, id string, patch models.OrganizationPatch) (*models.Organization, error)
	SetOrganizationVerified(ctx context.Context, id string, verified bool) (*models.Organization, error)
	OrganizationStats(ctx context.Context) (*models.OrganizationStats, error)
	CountVerifiedOrganizations(ctx context.Context) (int64, error)
}

type ProblemRepo interface {
	CreateProblem(ctx context.Context, p *models.ProblemStatement) error
	GetProblemByID(ctx context.Context, id string) (*models.ProblemStatement, error)
	ListProblems(ctx context.Context, f ProblemFilter, p *Page) ([]models.ProblemStatement, int64, error)
	ListPendingProblems(ctx context.Context) ([]models.ProblemStatement, error)
	ListProblemsByOrganization(ctx context.Context, orgID string) ([]models.ProblemStatement, error)
	UpdateProblem(ctx context.Context, id string, patch models.ProblemPatch) (*models.ProblemStatement, error)
	ReviewProblem(ctx context.Context, id string, status models.ProblemStatus, notes *string, reviewerID string) (*models.ProblemStatement, error)
	SetProblemFeatured(ctx context.Context, id string, featured bool) (*models.ProblemStatement, error)
	DeleteProblem(ctx context.Context, id string) error
	ProblemStats(ctx context.Context) (*models.ProblemStats, error)
	CountProblemsByStatus(ctx context.Context, orgID string) (map[models.ProblemStatus]int64, error)
}

// PublicProblemRepo is the read side exposed to anonymous callers. Every
// method only ever yields approved problem statements.
type PublicProblemRepo interface {
	ListApprovedProblems(ctx context.Context, f ProblemFilter, p *Page) ([]models.ProblemStatement, int64, error)
	GetApprovedProblemByID(ctx context.Context, id string) (*models.ProblemStatement, error)
	ListFeaturedProblems(ctx context.Context) ([]models.ProblemStatement, error)
	ListRecentProblems(ctx context.Context, limit int) ([]models.ProblemStatement, error)
	CountApprovedByTrack(ctx context.Context) (map[string]int64, error)
	DistinctApprovedCategories(ctx context.Context) ([]string, error)
}

// AuditRepo is append-only.
type AuditRepo interface {
	CreateAuditLog(ctx context.Context, l *models.AuditLog) error
	ListAuditLogs(ctx context.Context, f AuditFilter, p *Page) ([]models.AuditLog, int64, error)
	RecentAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error)
	AuditLogsByTarget(ctx context.Context, targetType models.TargetType, targetID string) ([]models.AuditLog, error)
}
