package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/garnizeh/problemhub/internal/apperr"
	"github.com/garnizeh/problemhub/internal/metrics"
	"github.com/garnizeh/problemhub/internal/models"
	"github.com/garnizeh/problemhub/pkg/repository"
)

type ProblemService struct {
	problems repository.ProblemRepo
	public   repository.PublicProblemRepo
	orgs     repository.OrganizationRepo
	audit    *AuditService
	cache    *StatsCache
	logger   *slog.Logger
}

func NewProblemService(problems repository.ProblemRepo, public repository.PublicProblemRepo, orgs repository.OrganizationRepo, audit *AuditService, cache *StatsCache, logger *slog.Logger) *ProblemService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProblemService{problems: problems, public: public, orgs: orgs, audit: audit, cache: cache, logger: logger}
}

// ProblemInput is the submission payload. Status, featured and review
// fields are not settable by the submitter.
type ProblemInput struct {
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Track           models.Track      `json:"track"`
	Category        string            `json:"category"`
	Industry        string            `json:"industry"`
	ExpectedOutcome string            `json:"expectedOutcome"`
	TechStack       []string          `json:"techStack"`
	Difficulty      models.Difficulty `json:"difficulty"`
	Datasets        string            `json:"datasets"`
	APILinks        string            `json:"apiLinks"`
	ReferenceLinks  []string          `json:"referenceLinks"`
	NDARequired     bool              `json:"ndaRequired"`
	MentorsProvided bool              `json:"mentorsProvided"`
	ContactPerson   string            `json:"contactPerson"`
	ContactEmail    string            `json:"contactEmail"`
}

func (in *ProblemInput) ApplyDefaults() {
	if in.TechStack == nil {
		in.TechStack = []string{}
	}
	if in.ReferenceLinks == nil {
		in.ReferenceLinks = []string{}
	}
}

type ProblemList struct {
	Problems   []models.ProblemStatement `json:"problems"`
	Pagination Pagination                `json:"pagination"`
}

func (s *ProblemService) load(ctx context.Context, id string) (*models.ProblemStatement, error) {
	p, err := s.problems.GetProblemByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load problem: %w", err)
	}
	if p == nil {
		return nil, apperr.NotFound("Problem not found")
	}
	return p, nil
}

func (s *ProblemService) Create(ctx context.Context, orgID string, in ProblemInput) (*models.ProblemStatement, error) {
	org, err := s.orgs.GetOrganizationByID(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("load organization: %w", err)
	}
	if org == nil {
		return nil, apperr.NotFound("Organization not found")
	}
	if !models.CategoryAllowed(in.Track, in.Category) {
		return nil, apperr.Validation(map[string]string{"category": "Invalid category"})
	}
	in.ApplyDefaults()

	p := &models.ProblemStatement{
		OrganizationID:  org.ID,
		Title:           in.Title,
		Description:     in.Description,
		Track:           in.Track,
		Category:        in.Category,
		Industry:        in.Industry,
		ExpectedOutcome: in.ExpectedOutcome,
		TechStack:       in.TechStack,
		Difficulty:      in.Difficulty,
		Datasets:        in.Datasets,
		APILinks:        in.APILinks,
		ReferenceLinks:  in.ReferenceLinks,
		NDARequired:     in.NDARequired,
		MentorsProvided: in.MentorsProvided,
		Status:          models.StatusPending,
		ContactPerson:   in.ContactPerson,
		ContactEmail:    in.ContactEmail,
	}
	if err := s.problems.CreateProblem(ctx, p); err != nil {
		return nil, fmt.Errorf("create problem: %w", err)
	}
	metrics.ProblemEvent("created")
	s.logger.Info("problem created", slog.String("problem_id", p.ID), slog.String("organization_id", org.ID))
	return s.load(ctx, p.ID)
}

// Update applies an owner's patch. Approved problems are locked; pending and
// rejected ones stay editable.
func (s *ProblemService) Update(ctx context.Context, problemID, orgID string, patch models.ProblemPatch) (*models.ProblemStatement, error) {
	p, err := s.load(ctx, problemID)
	if err != nil {
		return nil, err
	}
	if p.OrganizationID != orgID {
		return nil, apperr.Forbidden("", "You can only update your own problems")
	}
	if !p.CanBeEditedByOwner() {
		return nil, apperr.BadRequest(apperr.CodeProblemLocked, "Cannot update approved problems. Please contact admin.")
	}
	merged := patch.Apply(*p)
	if !models.CategoryAllowed(merged.Track, merged.Category) {
		return nil, apperr.Validation(map[string]string{"category": "Invalid category"})
	}

	updated, err := s.problems.UpdateProblem(ctx, problemID, patch)
	if err != nil {
		return nil, fmt.Errorf("update problem: %w", err)
	}
	if updated == nil {
		return nil, apperr.NotFound("Problem not found")
	}
	metrics.ProblemEvent("updated")
	s.logger.Info("problem updated", slog.String("problem_id", problemID), slog.String("organization_id", orgID))
	return updated, nil
}

// Delete removes an owned problem regardless of its review status.
func (s *ProblemService) Delete(ctx context.Context, problemID, orgID string) error {
	p, err := s.load(ctx, problemID)
	if err != nil {
		return err
	}
	if p.OrganizationID != orgID {
		return apperr.Forbidden("", "You can only delete your own problems")
	}
	if err := s.problems.DeleteProblem(ctx, problemID); err != nil {
		return fmt.Errorf("delete problem: %w", err)
	}
	if p.Status == models.StatusApproved {
		s.cache.Invalidate()
	}
	metrics.ProblemEvent("deleted")
	s.logger.Info("problem deleted", slog.String("problem_id", problemID), slog.String("organization_id", orgID))
	return nil
}

// Review stamps the reviewer and writes one audit entry per call, including
// repeated reviews of the same problem.
func (s *ProblemService) Review(ctx context.Context, problemID, adminID string, status models.ProblemStatus, notes *string) (*models.ProblemStatement, error) {
	if status != models.StatusApproved && status != models.StatusRejected {
		return nil, apperr.Validation(map[string]string{"status": "Invalid status"})
	}
	if _, err := s.load(ctx, problemID); err != nil {
		return nil, err
	}
	updated, err := s.problems.ReviewProblem(ctx, problemID, status, notes, adminID)
	if err != nil {
		return nil, fmt.Errorf("review problem: %w", err)
	}
	if updated == nil {
		return nil, apperr.NotFound("Problem not found")
	}
	s.cache.Invalidate()

	action, verb := models.ActionApproveProblem, "Approved"
	if status == models.StatusRejected {
		action, verb = models.ActionRejectProblem, "Rejected"
	}
	meta := map[string]any{}
	if notes != nil {
		meta["adminNotes"] = *notes
	}
	s.audit.Record(ctx, adminID, action, models.TargetProblem, updated.ID, verb+" problem: "+updated.Title, meta)

	metrics.ProblemEvent(string(status))
	s.logger.Info("problem reviewed", slog.String("problem_id", problemID), slog.String("admin_id", adminID), slog.String("status", string(status)))
	return updated, nil
}

// SetFeatured toggles the featured flag. Both directions require the problem
// to be approved.
func (s *ProblemService) SetFeatured(ctx context.Context, problemID, adminID string, featured bool) (*models.ProblemStatement, error) {
	p, err := s.load(ctx, problemID)
	if err != nil {
		return nil, err
	}
	if !p.CanBeFeatured() {
		return nil, apperr.BadRequest(apperr.CodeNotApproved, "Only approved problems can be featured")
	}
	updated, err := s.problems.SetProblemFeatured(ctx, problemID, featured)
	if err != nil {
		return nil, fmt.Errorf("feature problem: %w", err)
	}
	if updated == nil {
		return nil, apperr.NotFound("Problem not found")
	}

	action, verb, event := models.ActionFeatureProblem, "Featured", "featured"
	if !featured {
		action, verb, event = models.ActionUnfeatureProblem, "Unfeatured", "unfeatured"
	}
	s.audit.Record(ctx, adminID, action, models.TargetProblem, updated.ID, verb+" problem: "+updated.Title, nil)

	metrics.ProblemEvent(event)
	s.logger.Info("problem feature status updated", slog.String("problem_id", problemID), slog.String("admin_id", adminID), slog.Bool("featured", featured))
	return updated, nil
}

func (s *ProblemService) ListAll(ctx context.Context, f repository.ProblemFilter, p *repository.Page) (*ProblemList, error) {
	problems, total, err := s.problems.ListProblems(ctx, f, p)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	return &ProblemList{Problems: problems, Pagination: paginate(p, total)}, nil
}

// ListPending returns the review queue, oldest first.
func (s *ProblemService) ListPending(ctx context.Context) ([]models.ProblemStatement, error) {
	out, err := s.problems.ListPendingProblems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending problems: %w", err)
	}
	return out, nil
}

func (s *ProblemService) GetByID(ctx context.Context, id string) (*models.ProblemStatement, error) {
	return s.load(ctx, id)
}

func (s *ProblemService) ListOwn(ctx context.Context, orgID string) ([]models.ProblemStatement, error) {
	out, err := s.problems.ListProblemsByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list organization problems: %w", err)
	}
	return out, nil
}

// GetOwn returns one of the organization's own problems in any status.
func (s *ProblemService) GetOwn(ctx context.Context, problemID, orgID string) (*models.ProblemStatement, error) {
	p, err := s.load(ctx, problemID)
	if err != nil {
		return nil, err
	}
	if p.OrganizationID != orgID {
		return nil, apperr.NotFound("Problem not found")
	}
	return p, nil
}

func (s *ProblemService) Stats(ctx context.Context) (*models.ProblemStats, error) {
	st, err := s.problems.ProblemStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("problem stats: %w", err)
	}
	return st, nil
}

func (s *ProblemService) ListPublic(ctx context.Context, f repository.ProblemFilter, p *repository.Page) (*ProblemList, error) {
	f.Status = ""
	problems, total, err := s.public.ListApprovedProblems(ctx, f, p)
	if err != nil {
		return nil, fmt.Errorf("list public problems: %w", err)
	}
	return &ProblemList{Problems: problems, Pagination: paginate(p, total)}, nil
}

func (s *ProblemService) GetPublic(ctx context.Context, id string) (*models.ProblemStatement, error) {
	p, err := s.public.GetApprovedProblemByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load public problem: %w", err)
	}
	if p == nil {
		return nil, apperr.NotFound("Problem not found")
	}
	return p, nil
}

func (s *ProblemService) ListFeatured(ctx context.Context) ([]models.ProblemStatement, error) {
	out, err := s.public.ListFeaturedProblems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list featured problems: %w", err)
	}
	return out, nil
}

func (s *ProblemService) ListRecent(ctx context.Context, limit int) ([]models.ProblemStatement, error) {
	if limit <= 0 {
		limit = 6
	}
	out, err := s.public.ListRecentProblems(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent problems: %w", err)
	}
	return out, nil
}

// PublicStats serves the landing page counters from cache when possible.
func (s *ProblemService) PublicStats(ctx context.Context) (*models.PublicStats, error) {
	if st, ok := s.cache.Get(); ok {
		metrics.StatsCacheHit()
		return &st, nil
	}
	metrics.StatsCacheMiss()
	return s.RefreshPublicStats(ctx)
}

// RefreshPublicStats recomputes the public statistics and stores them in the
// cache unless a mutation invalidated it while the queries ran.
func (s *ProblemService) RefreshPublicStats(ctx context.Context) (*models.PublicStats, error) {
	gen := s.cache.Generation()
	var (
		byTrack    map[string]int64
		orgs       int64
		categories []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byTrack, err = s.public.CountApprovedByTrack(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		orgs, err = s.orgs.CountVerifiedOrganizations(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.public.DistinctApprovedCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("public stats: %w", err)
	}

	st := models.PublicStats{
		TotalOrganizations: orgs,
		TotalCategories:    int64(len(categories)),
		ByTrack:            map[string]int64{},
	}
	for _, t := range models.Tracks {
		st.ByTrack[string(t)] = byTrack[string(t)]
		st.TotalProblems += byTrack[string(t)]
	}
	s.cache.Store(gen, st)
	return &st, nil
}
