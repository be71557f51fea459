// Package seed loads the sample organizations and problem statements used for
// local development and demos.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/garnizeh/problemhub/internal/auth"
	"github.com/garnizeh/problemhub/internal/db"
	"github.com/garnizeh/problemhub/internal/models"
	"github.com/garnizeh/problemhub/internal/repository/sqlite"
)

// OrganizationPassword is the password of every seeded organization user.
const OrganizationPassword = "Password@123"

// ErrAlreadySeeded is returned when the admin account exists and reset was
// not requested.
var ErrAlreadySeeded = errors.New("database already seeded")

type Fixtures struct {
	Organizations []OrganizationFixture `yaml:"organizations"`
	Problems      []ProblemFixture      `yaml:"problems"`
}

type OrganizationFixture struct {
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	Website       string `yaml:"website"`
	Industry      string `yaml:"industry"`
	ContactPerson string `yaml:"contactPerson"`
	ContactEmail  string `yaml:"contactEmail"`
}

type ProblemFixture struct {
	Title           string               `yaml:"title"`
	Description     string               `yaml:"description"`
	Track           models.Track         `yaml:"track"`
	Category        string               `yaml:"category"`
	Industry        string               `yaml:"industry"`
	ExpectedOutcome string               `yaml:"expectedOutcome"`
	TechStack       []string             `yaml:"techStack"`
	Difficulty      models.Difficulty    `yaml:"difficulty"`
	Datasets        string               `yaml:"datasets"`
	APILinks        string               `yaml:"apiLinks"`
	ReferenceLinks  []string             `yaml:"referenceLinks"`
	NDARequired     bool                 `yaml:"ndaRequired"`
	MentorsProvided bool                 `yaml:"mentorsProvided"`
	Status          models.ProblemStatus `yaml:"status"`
	Featured        bool                 `yaml:"featured"`
}

// ParseFixtures decodes and checks a fixtures document.
func ParseFixtures(raw []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	if len(f.Organizations) == 0 {
		return nil, errors.New("fixtures: no organizations")
	}
	for i, p := range f.Problems {
		if !models.CategoryAllowed(p.Track, p.Category) {
			return nil, fmt.Errorf("fixtures: problem %d (%s): category %q not in track %q", i, p.Title, p.Category, p.Track)
		}
		if p.Featured && p.Status != models.StatusApproved {
			return nil, fmt.Errorf("fixtures: problem %d (%s): only approved problems can be featured", i, p.Title)
		}
	}
	return &f, nil
}

type Options struct {
	AdminEmail    string
	AdminPassword string
	// Reset wipes every table before loading.
	Reset bool
}

// Summary reports what Run created.
type Summary struct {
	AdminID       string
	Organizations int
	Problems      int
	Approved      int
}

// Run loads fixtures into database. Without Reset it refuses to run twice.
func Run(ctx context.Context, database *db.DB, fx *Fixtures, opts Options, logger *slog.Logger) (*Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	repo := sqlite.New(database, logger)

	if opts.Reset {
		logger.Info("clearing existing data")
		if err := reset(ctx, database); err != nil {
			return nil, err
		}
	} else {
		exists, err := repo.EmailExists(ctx, opts.AdminEmail)
		if err != nil {
			return nil, fmt.Errorf("check admin: %w", err)
		}
		if exists {
			return nil, ErrAlreadySeeded
		}
	}

	adminHash, err := auth.HashPassword(opts.AdminPassword)
	if err != nil {
		return nil, err
	}
	admin := &models.User{Email: opts.AdminEmail, PasswordHash: adminHash, Name: "Admin User", Role: models.RoleAdmin, IsActive: true}
	if err := repo.CreateUser(ctx, admin); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	logger.Info("admin user created", slog.String("email", admin.Email))

	orgHash, err := auth.HashPassword(OrganizationPassword)
	if err != nil {
		return nil, err
	}
	orgs := make([]*models.Organization, 0, len(fx.Organizations))
	for i, of := range fx.Organizations {
		u := &models.User{
			Email:        fmt.Sprintf("org%d@example.com", i+1),
			PasswordHash: orgHash,
			Name:         of.ContactPerson,
			Role:         models.RoleOrganization,
			IsActive:     true,
		}
		o := &models.Organization{
			Name:          of.Name,
			Description:   of.Description,
			Website:       of.Website,
			Industry:      of.Industry,
			ContactPerson: of.ContactPerson,
			ContactEmail:  of.ContactEmail,
			Verified:      true,
			IsActive:      true,
		}
		if err := repo.CreateUserWithOrganization(ctx, u, o); err != nil {
			return nil, fmt.Errorf("create organization %s: %w", of.Name, err)
		}
		orgs = append(orgs, o)
		logger.Info("organization created", slog.String("name", o.Name), slog.String("login", u.Email))
	}

	sum := &Summary{AdminID: admin.ID, Organizations: len(orgs)}
	for i, pf := range fx.Problems {
		org := orgs[i%len(orgs)]
		p := &models.ProblemStatement{
			OrganizationID:  org.ID,
			Title:           pf.Title,
			Description:     pf.Description,
			Track:           pf.Track,
			Category:        pf.Category,
			Industry:        pf.Industry,
			ExpectedOutcome: pf.ExpectedOutcome,
			TechStack:       pf.TechStack,
			Difficulty:      pf.Difficulty,
			Datasets:        pf.Datasets,
			APILinks:        pf.APILinks,
			ReferenceLinks:  pf.ReferenceLinks,
			NDARequired:     pf.NDARequired,
			MentorsProvided: pf.MentorsProvided,
			Status:          models.StatusPending,
			ContactPerson:   org.ContactPerson,
			ContactEmail:    org.ContactEmail,
		}
		if err := repo.CreateProblem(ctx, p); err != nil {
			return nil, fmt.Errorf("create problem %q: %w", pf.Title, err)
		}

		if pf.Status != "" && pf.Status != models.StatusPending {
			if _, err := repo.ReviewProblem(ctx, p.ID, pf.Status, nil, admin.ID); err != nil {
				return nil, fmt.Errorf("review problem %q: %w", pf.Title, err)
			}
		}
		if pf.Featured {
			if _, err := repo.SetProblemFeatured(ctx, p.ID, true); err != nil {
				return nil, fmt.Errorf("feature problem %q: %w", pf.Title, err)
			}
		}
		if pf.Status == models.StatusApproved {
			sum.Approved++
			entry := &models.AuditLog{
				AdminID:    admin.ID,
				Action:     models.ActionApproveProblem,
				TargetType: models.TargetProblem,
				TargetID:   p.ID,
				Details:    "Approved problem statement: " + p.Title,
			}
			if err := repo.CreateAuditLog(ctx, entry); err != nil {
				return nil, fmt.Errorf("audit problem %q: %w", pf.Title, err)
			}
		}
		sum.Problems++
		logger.Debug("problem created", slog.String("title", p.Title), slog.String("status", string(pf.Status)))
	}

	logger.Info("seed completed",
		slog.Int("organizations", sum.Organizations),
		slog.Int("problems", sum.Problems),
		slog.Int("approved", sum.Approved))
	return sum, nil
}

// reset lifts the append-only guard on audit_logs for the duration of the wipe.
func reset(ctx context.Context, database *db.DB) error {
	return database.WithTx(ctx, func(tx *sql.Tx) error {
		stmts := []string{
			`DROP TRIGGER IF EXISTS audit_logs_no_delete`,
			`DELETE FROM audit_logs`,
			`DELETE FROM problem_statements`,
			`DELETE FROM organizations`,
			`DELETE FROM users`,
			`CREATE TRIGGER audit_logs_no_delete BEFORE DELETE ON audit_logs BEGIN
    SELECT RAISE(ABORT, 'audit_logs is append-only');
END`,
		}
		for _, s := range stmts {
			if _, err := tx.ExecContext(ctx, s); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
		}
		return nil
	})
}
