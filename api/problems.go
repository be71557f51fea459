package api

import (
	"net/http"

	"github.com/garnizeh/problemhub/internal/service"
	"github.com/garnizeh/problemhub/internal/validate"
)

// ProblemsHandler serves the public, approved-only problem catalogue.
type ProblemsHandler struct {
	problems *service.ProblemService
}

func NewProblemsHandler(s *service.ProblemService) *ProblemsHandler {
	return &ProblemsHandler{problems: s}
}

func (h *ProblemsHandler) List(w http.ResponseWriter, r *http.Request) {
	var q validate.ProblemParams
	if err := validate.ProblemQuery.DecodeQuery(r.Context(), r.URL.Query(), &q); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.problems.ListPublic(r.Context(), q.Filter(), q.ToPage())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, res)
}

func (h *ProblemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.problems.GetPublic(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, p)
}

func (h *ProblemsHandler) Featured(w http.ResponseWriter, r *http.Request) {
	out, err := h.problems.ListFeatured(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, out)
}

func (h *ProblemsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	var q validate.RecentParams
	if err := validate.RecentQuery.DecodeQuery(r.Context(), r.URL.Query(), &q); err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.problems.ListRecent(r.Context(), q.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, out)
}

func (h *ProblemsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.problems.PublicStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, st)
}
