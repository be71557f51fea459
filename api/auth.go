package api

import (
	"context"
	"net/http"

	"github.com/garnizeh/problemhub/internal/apperr"
	"github.com/garnizeh/problemhub/internal/service"
	"github.com/garnizeh/problemhub/internal/validate"
)

type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(s *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: s}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := validate.Register.DecodeBody(r.Context(), r.Body, &in); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.auth.RegisterOrganization(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, "Registration successful", res)
}

func (h *AuthHandler) LoginOrganization(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.auth.LoginOrganization)
}

func (h *AuthHandler) LoginAdmin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.auth.LoginAdmin)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, in service.LoginInput) (*service.AuthResult, error)) {
	var in service.LoginInput
	if err := validate.Login.DecodeBody(r.Context(), r.Body, &in); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := fn(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Login successful", res)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := validate.Refresh.DecodeBody(r.Context(), r.Body, &req); err != nil {
		if apperr.HasCode(err, apperr.CodeValidation) {
			err = apperr.BadRequest("", "Refresh token is required")
		}
		writeError(w, r, err)
		return
	}
	token, err := h.auth.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, refreshResponse{AccessToken: token})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	me, err := h.auth.GetCurrentUser(r.Context(), UserFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, me)
}

// Logout is client-side for stateless tokens; the server keeps no revocation list.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, "Logged out successfully", nil)
}
