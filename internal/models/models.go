package models

import (
	"encoding/json"
	"time"
)

// Domain models matching the database schema in db/migrations/0001_init.sql

type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Name         string     `json:"name" db:"name"`
	Role         Role       `json:"role" db:"role"`
	Avatar       string     `json:"avatar,omitempty" db:"avatar"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

type Organization struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"-" db:"user_id"`
	Name          string    `json:"name" db:"name"`
	Logo          string    `json:"logo,omitempty" db:"logo"`
	Description   string    `json:"description,omitempty" db:"description"`
	Website       string    `json:"website,omitempty" db:"website"`
	Industry      string    `json:"industry" db:"industry"`
	ContactPerson string    `json:"contactPerson" db:"contact_person"`
	ContactEmail  string    `json:"contactEmail" db:"contact_email"`
	Verified      bool      `json:"verified" db:"verified"`
	IsActive      bool      `json:"isActive" db:"is_active"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// OrganizationRef is the slice of an Organization joined onto a problem row.
type OrganizationRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

type ProblemStatement struct {
	ID              string           `json:"id" db:"id"`
	OrganizationID  string           `json:"-" db:"organization_id"`
	Title           string           `json:"title" db:"title"`
	Description     string           `json:"description" db:"description"`
	Track           Track            `json:"track" db:"track"`
	Category        string           `json:"category" db:"category"`
	Industry        string           `json:"industry" db:"industry"`
	ExpectedOutcome string           `json:"expectedOutcome" db:"expected_outcome"`
	TechStack       []string         `json:"techStack" db:"tech_stack"`
	Difficulty      Difficulty       `json:"difficulty" db:"difficulty"`
	Datasets        string           `json:"datasets,omitempty" db:"datasets"`
	APILinks        string           `json:"apiLinks,omitempty" db:"api_links"`
	ReferenceLinks  []string         `json:"referenceLinks" db:"reference_links"`
	NDARequired     bool             `json:"ndaRequired" db:"nda_required"`
	MentorsProvided bool             `json:"mentorsProvided" db:"mentors_provided"`
	Status          ProblemStatus    `json:"status" db:"status"`
	AdminNotes      string           `json:"adminNotes,omitempty" db:"admin_notes"`
	ReviewedBy      string           `json:"reviewedBy,omitempty" db:"reviewed_by"`
	ReviewedAt      *time.Time       `json:"reviewedAt,omitempty" db:"reviewed_at"`
	Featured        bool             `json:"featured" db:"featured"`
	ContactPerson   string           `json:"contactPerson" db:"contact_person"`
	ContactEmail    string           `json:"contactEmail" db:"contact_email"`
	Organization    *OrganizationRef `json:"organization"`
	CreatedAt       time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time        `json:"updatedAt" db:"updated_at"`
}

// AuditLog is append-only; nothing in the repository layer updates or deletes it.
type AuditLog struct {
	ID         string          `json:"id" db:"id"`
	AdminID    string          `json:"adminId" db:"admin_id"`
	AdminName  string          `json:"adminName"`
	AdminEmail string          `json:"adminEmail,omitempty"`
	Action     AuditAction     `json:"action" db:"action"`
	TargetType TargetType      `json:"targetType" db:"target_type"`
	TargetID   string          `json:"targetId" db:"target_id"`
	Details    string          `json:"details" db:"details"`
	Metadata   json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	IPAddress  string          `json:"ipAddress,omitempty" db:"ip_address"`
	UserAgent  string          `json:"userAgent,omitempty" db:"user_agent"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
}

// CanBeEditedByOwner reports whether the owning organization may still change p.
func (p *ProblemStatement) CanBeEditedByOwner() bool {
	return p.Status != StatusApproved
}

// CanBeFeatured reports whether p may carry the featured flag.
func (p *ProblemStatement) CanBeFeatured() bool {
	return p.Status == StatusApproved
}
