package models

import "slices"

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleOrganization Role = "organization"
	RolePublic       Role = "public"
)

// Roles lists every role in declaration order.
var Roles = []Role{RoleAdmin, RoleOrganization, RolePublic}

// Valid reports whether r is a known role. The switch is exhaustive so that
// adding a role forces a decision here.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOrganization, RolePublic:
		return true
	default:
		return false
	}
}

// ParseRole converts a stored or claimed role string.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

type Track string

const (
	TrackSoftware Track = "software"
	TrackHardware Track = "hardware"
)

var Tracks = []Track{TrackSoftware, TrackHardware}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

type ProblemStatus string

const (
	StatusPending  ProblemStatus = "pending"
	StatusApproved ProblemStatus = "approved"
	StatusRejected ProblemStatus = "rejected"
)

var ProblemStatuses = []ProblemStatus{StatusPending, StatusApproved, StatusRejected}

type AuditAction string

const (
	ActionApproveProblem      AuditAction = "APPROVE_PROBLEM"
	ActionRejectProblem       AuditAction = "REJECT_PROBLEM"
	ActionFeatureProblem      AuditAction = "FEATURE_PROBLEM"
	ActionUnfeatureProblem    AuditAction = "UNFEATURE_PROBLEM"
	ActionVerifyOrganization  AuditAction = "VERIFY_ORGANIZATION"
	ActionSuspendOrganization AuditAction = "SUSPEND_ORGANIZATION"
	ActionCreateProblem       AuditAction = "CREATE_PROBLEM"
	ActionUpdateProblem       AuditAction = "UPDATE_PROBLEM"
	ActionDeleteProblem       AuditAction = "DELETE_PROBLEM"
)

var AuditActions = []AuditAction{
	ActionApproveProblem,
	ActionRejectProblem,
	ActionFeatureProblem,
	ActionUnfeatureProblem,
	ActionVerifyOrganization,
	ActionSuspendOrganization,
	ActionCreateProblem,
	ActionUpdateProblem,
	ActionDeleteProblem,
}

type TargetType string

const (
	TargetProblem      TargetType = "problem"
	TargetOrganization TargetType = "organization"
	TargetUser         TargetType = "user"
)

var TargetTypes = []TargetType{TargetProblem, TargetOrganization, TargetUser}

var SoftwareCategories = []string{
	"HealthTech, BioTech & MedTech",
	"EdTech & Smart Learning",
	"AI, Generative AI, Agentic AI & Intelligent Automation",
	"Cybersecurity, Blockchain & Digital Trust",
	"FinTech & Digital Economy",
	"ClimateTech, AgriTech & Sustainability",
	"Smart Cities, Mobility & Infrastructure",
}

var HardwareCategories = []string{
	"IoT & Smart Devices",
	"Robotics & Automation",
	"Embedded Systems & Edge Computing",
	"Smart Energy & Green Hardware",
	"Healthcare & Assistive Hardware",
}

var Industries = []string{
	"Technology",
	"Healthcare",
	"Finance",
	"Education",
	"Manufacturing",
	"Retail",
	"Energy",
	"Agriculture",
	"Transportation",
	"Government",
	"Non-Profit",
	"Research",
	"Other",
}

// CategoriesFor returns the category list belonging to a track.
func CategoriesFor(t Track) []string {
	switch t {
	case TrackSoftware:
		return SoftwareCategories
	case TrackHardware:
		return HardwareCategories
	default:
		return nil
	}
}

// CategoryAllowed reports whether category belongs to track's category list.
func CategoryAllowed(t Track, category string) bool {
	return slices.Contains(CategoriesFor(t), category)
}

// IsIndustry reports whether s is one of the known industries.
func IsIndustry(s string) bool {
	return slices.Contains(Industries, s)
}
