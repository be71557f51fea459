package api

import (
	"net/http"

	"github.com/garnizeh/problemhub/internal/models"
	"github.com/garnizeh/problemhub/internal/service"
	"github.com/garnizeh/problemhub/internal/validate"
)

// OrganizationHandler serves the organization portal. Every operation is
// scoped to the organization owned by the authenticated user.
type OrganizationHandler struct {
	orgs     *service.OrganizationService
	problems *service.ProblemService
}

func NewOrganizationHandler(orgs *service.OrganizationService, problems *service.ProblemService) *OrganizationHandler {
	return &OrganizationHandler{orgs: orgs, problems: problems}
}

func (h *OrganizationHandler) own(r *http.Request) (*models.Organization, error) {
	return h.orgs.GetByUser(r.Context(), UserFrom(r.Context()).ID)
}

func (h *OrganizationHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	org, err := h.own(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.orgs.Dashboard(r.Context(), org.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, d)
}

func (h *OrganizationHandler) Profile(w http.ResponseWriter, r *http.Request) {
	org, err := h.own(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, org)
}

func (h *OrganizationHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch models.OrganizationPatch
	if err := validate.UpdateOrganization.DecodeBody(r.Context(), r.Body, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	org, err := h.own(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.orgs.Update(r.Context(), org.ID, UserFrom(r.Context()).ID, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Organization updated successfully", updated)
}

func (h *OrganizationHandler) ListProblems(w http.ResponseWriter, r *http.Request) {
	org, err := h.own(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.problems.ListOwn(r.Context(), org.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, out)
}

func (h *OrganizationHandler) GetProblem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	org, err := h.own(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.problems.GetOwn(r.Context(), id, org.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, p)
}

func (h *OrganizationHandler) CreateProblem(w http.ResponseWriter, r *http.Request) {
	var in service.ProblemInput
	if err := validate.CreateProblem.DecodeBody(r.Context(), r.Body, &in); err != nil {
		writeError(w, r, err)
		return
	}
	org, err := h.own(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.problems.Create(r.Context(), org.ID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Problem submitted successfully", p)
}

func (h *OrganizationHandler) UpdateProblem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch models.ProblemPatch
	if err := validate.UpdateProblem.DecodeBody(r.Context(), r.Body, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	org, err := h.own(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.problems.Update(r.Context(), id, org.ID, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Problem updated successfully", p)
}

func (h *OrganizationHandler) DeleteProblem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	org, err := h.own(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.problems.Delete(r.Context(), id, org.ID); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Problem deleted successfully", nil)
}
