package api

import (
	"net/http"
	"slices"

	"github.com/gorilla/mux"

	"github.com/garnizeh/problemhub/internal/apperr"
	"github.com/garnizeh/problemhub/internal/ids"
	"github.com/garnizeh/problemhub/internal/models"
	"github.com/garnizeh/problemhub/internal/service"
	"github.com/garnizeh/problemhub/internal/validate"
)

// AdminHandler serves the review console.
type AdminHandler struct {
	admin    *service.AdminService
	problems *service.ProblemService
	orgs     *service.OrganizationService
	audit    *service.AuditService
}

func NewAdminHandler(admin *service.AdminService, problems *service.ProblemService, orgs *service.OrganizationService, audit *service.AuditService) *AdminHandler {
	return &AdminHandler{admin: admin, problems: problems, orgs: orgs, audit: audit}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.admin.Dashboard(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, d)
}

func (h *AdminHandler) ListProblems(w http.ResponseWriter, r *http.Request) {
	var q validate.ProblemParams
	if err := validate.ProblemQuery.DecodeQuery(r.Context(), r.URL.Query(), &q); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.problems.ListAll(r.Context(), q.Filter(), q.ToPage())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, res)
}

func (h *AdminHandler) PendingProblems(w http.ResponseWriter, r *http.Request) {
	out, err := h.problems.ListPending(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, out)
}

func (h *AdminHandler) ProblemStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.problems.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, st)
}

func (h *AdminHandler) GetProblem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.problems.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, p)
}

type reviewRequest struct {
	Status     models.ProblemStatus `json:"status"`
	AdminNotes *string              `json:"adminNotes"`
}

func (h *AdminHandler) ReviewProblem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reviewRequest
	if err := validate.ReviewProblem.DecodeBody(r.Context(), r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.problems.Review(r.Context(), id, UserFrom(r.Context()).ID, req.Status, req.AdminNotes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Problem "+string(req.Status)+" successfully", p)
}

type featureRequest struct {
	Featured bool `json:"featured"`
}

func (h *AdminHandler) FeatureProblem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req featureRequest
	if err := validate.FeatureProblem.DecodeBody(r.Context(), r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.problems.SetFeatured(r.Context(), id, UserFrom(r.Context()).ID, req.Featured)
	if err != nil {
		writeError(w, r, err)
		return
	}
	msg := "Problem featured successfully"
	if !req.Featured {
		msg = "Problem unfeatured successfully"
	}
	writeData(w, http.StatusOK, msg, p)
}

func (h *AdminHandler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	var q validate.OrganizationParams
	if err := validate.OrganizationQuery.DecodeQuery(r.Context(), r.URL.Query(), &q); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.orgs.List(r.Context(), q.Filter(), q.ToPage())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, res)
}

func (h *AdminHandler) OrganizationStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.orgs.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, st)
}

func (h *AdminHandler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	org, err := h.orgs.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, org)
}

type verifyRequest struct {
	Verified bool `json:"verified"`
}

func (h *AdminHandler) VerifyOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req verifyRequest
	if err := validate.VerifyOrganization.DecodeBody(r.Context(), r.Body, &req); err != nil {
		writeError(w, r, err)
		return
	}
	org, err := h.orgs.Verify(r.Context(), id, UserFrom(r.Context()).ID, req.Verified)
	if err != nil {
		writeError(w, r, err)
		return
	}
	msg := "Organization verified successfully"
	if !req.Verified {
		msg = "Organization unverified"
	}
	writeData(w, http.StatusOK, msg, org)
}

func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	var q validate.AuditParams
	if err := validate.AuditQuery.DecodeQuery(r.Context(), r.URL.Query(), &q); err != nil {
		writeError(w, r, err)
		return
	}
	f, err := q.Filter()
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.audit.List(r.Context(), f, q.ToPage())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, res)
}

// AuditTrail lists every entry recorded against one entity.
func (h *AdminHandler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	targetType := models.TargetType(mux.Vars(r)["targetType"])
	if !slices.Contains(models.TargetTypes, targetType) {
		writeError(w, r, apperr.BadRequest("", "Invalid target type: "+string(targetType)))
		return
	}
	id := mux.Vars(r)["id"]
	if !ids.Valid(id) {
		writeError(w, r, apperr.BadRequest(apperr.CodeInvalidID, "Invalid id: "+id))
		return
	}
	out, err := h.audit.ByTarget(r.Context(), targetType, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, out)
}

type activityParams struct {
	Limit int `json:"limit"`
}

func (h *AdminHandler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	var q activityParams
	if err := validate.RecentQuery.DecodeQuery(r.Context(), r.URL.Query(), &q); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.audit.Recent(r.Context(), q.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, out)
}
