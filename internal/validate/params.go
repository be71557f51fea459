package validate

import (
	"time"

	"github.com/garnizeh/problemhub/internal/apperr"
	"github.com/garnizeh/problemhub/internal/models"
	"github.com/garnizeh/problemhub/pkg/repository"
)

const (
	DefaultPage   = 1
	DefaultLimit  = 20
	MaxPage       = 1_000_000
	DefaultRecent = 6
)

// PageParams is the decoded pagination part of a list query.
type PageParams struct {
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

func (p *PageParams) ApplyDefaults() {
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.SortBy == "" {
		p.SortBy = "createdAt"
	}
	if p.SortOrder == "" {
		p.SortOrder = "desc"
	}
}

func (p PageParams) ToPage() *repository.Page {
	return &repository.Page{Page: p.Page, Limit: p.Limit, SortBy: p.SortBy, SortOrder: p.SortOrder}
}

type ProblemParams struct {
	PageParams
	Search         string               `json:"search"`
	Track          models.Track         `json:"track"`
	Category       string               `json:"category"`
	Difficulty     models.Difficulty    `json:"difficulty"`
	Status         models.ProblemStatus `json:"status"`
	Featured       *bool                `json:"featured"`
	OrganizationID string               `json:"organizationId"`
}

func (p ProblemParams) Filter() repository.ProblemFilter {
	return repository.ProblemFilter{
		Search:         p.Search,
		Track:          p.Track,
		Category:       p.Category,
		Difficulty:     p.Difficulty,
		Status:         p.Status,
		Featured:       p.Featured,
		OrganizationID: p.OrganizationID,
	}
}

type OrganizationParams struct {
	PageParams
	Search   string `json:"search"`
	Verified *bool  `json:"verified"`
	Industry string `json:"industry"`
}

func (p OrganizationParams) Filter() repository.OrganizationFilter {
	return repository.OrganizationFilter{Search: p.Search, Verified: p.Verified, Industry: p.Industry}
}

type AuditParams struct {
	PageParams
	Action     models.AuditAction `json:"action"`
	TargetType models.TargetType  `json:"targetType"`
	AdminID    string             `json:"adminId"`
	TargetID   string             `json:"targetId"`
	StartDate  string             `json:"startDate"`
	EndDate    string             `json:"endDate"`
}

// Filter parses the date bounds. A date-only endDate covers the whole day.
func (p AuditParams) Filter() (repository.AuditFilter, error) {
	f := repository.AuditFilter{
		Action:     p.Action,
		TargetType: p.TargetType,
		AdminID:    p.AdminID,
		TargetID:   p.TargetID,
	}
	fields := map[string]string{}
	if p.StartDate != "" {
		t, _, err := parseDate(p.StartDate)
		if err != nil {
			fields["startDate"] = "Invalid date"
		} else {
			f.StartDate = &t
		}
	}
	if p.EndDate != "" {
		t, dateOnly, err := parseDate(p.EndDate)
		if err != nil {
			fields["endDate"] = "Invalid date"
		} else {
			if dateOnly {
				t = t.Add(24*time.Hour - time.Millisecond)
			}
			f.EndDate = &t
		}
	}
	if len(fields) > 0 {
		return f, apperr.Validation(fields)
	}
	return f, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	return t, true, err
}

type RecentParams struct {
	Limit int `json:"limit"`
}

func (p *RecentParams) ApplyDefaults() {
	if p.Limit == 0 {
		p.Limit = DefaultRecent
	}
}
