package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/garnizeh/problemhub/api"
	dbfs "github.com/garnizeh/problemhub/db"
	"github.com/garnizeh/problemhub/internal/auth"
	"github.com/garnizeh/problemhub/internal/config"
	dbpkg "github.com/garnizeh/problemhub/internal/db"
	"github.com/garnizeh/problemhub/internal/models"
)

type response struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Errors  map[string]string `json:"errors"`
}

type harness struct {
	t   *testing.T
	h   http.Handler
	svc *api.Services
}

func newHarness(t *testing.T, tweak func(*config.Config)) *harness {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := config.Default()
	cfg.Env = config.EnvTest
	cfg.JWTSecret = "test-secret"
	cfg.JWTExpiresIn = config.Duration(time.Hour)
	cfg.RateLimitMaxRequests = 10000
	if tweak != nil {
		tweak(cfg)
	}
	svc := api.NewServices(cfg, d, nil)
	return &harness{t: t, h: api.SetupRoutes(cfg, "test", "2026-01-01T00:00:00Z", svc), svc: svc}
}

func (h *harness) do(method, path, token string, body any) (int, response) {
	h.t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			h.t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.h.ServeHTTP(w, req)

	var res response
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		h.t.Fatalf("%s %s: decode body %q: %v", method, path, w.Body.String(), err)
	}
	return w.Code, res
}

// expect performs a request and fails unless the status matches.
func (h *harness) expect(status int, method, path, token string, body any) response {
	h.t.Helper()
	got, res := h.do(method, path, token, body)
	if got != status {
		h.t.Fatalf("%s %s = %d (%s %s %v), want %d", method, path, got, res.Code, res.Message, res.Errors, status)
	}
	return res
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

type authData struct {
	User struct {
		ID   string      `json:"id"`
		Role models.Role `json:"role"`
	} `json:"user"`
	Organization *struct {
		ID string `json:"id"`
	} `json:"organization"`
	Tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	} `json:"tokens"`
}

func registerBody(email string) map[string]any {
	return map[string]any{
		"email":            email,
		"password":         "Abcd1234",
		"organizationName": "Org " + email,
		"industry":         "Technology",
		"contactPerson":    "Jane Doe",
		"contactEmail":     email,
	}
}

func (h *harness) registerOrg(email string) authData {
	h.t.Helper()
	res := h.expect(http.StatusCreated, http.MethodPost, "/api/auth/register", "", registerBody(email))
	return decode[authData](h.t, res.Data)
}

func (h *harness) loginAdmin() authData {
	h.t.Helper()
	hash, err := auth.HashPassword("Admin@123456")
	if err != nil {
		h.t.Fatal(err)
	}
	u := &models.User{Email: "admin@devup.org", PasswordHash: hash, Name: "Admin User", Role: models.RoleAdmin, IsActive: true}
	if err := h.svc.Users.CreateUser(context.Background(), u); err != nil {
		h.t.Fatalf("create admin: %v", err)
	}
	res := h.expect(http.StatusOK, http.MethodPost, "/api/auth/login/admin", "", map[string]string{
		"email": "admin@devup.org", "password": "Admin@123456",
	})
	return decode[authData](h.t, res.Data)
}

func problemBody(title string) map[string]any {
	return map[string]any{
		"title":           title,
		"description":     "Communities need a low-cost way to track and share local air quality readings daily.",
		"track":           "software",
		"category":        "ClimateTech, AgriTech & Sustainability",
		"industry":        "Energy",
		"expectedOutcome": "A deployed dashboard with open data export",
		"difficulty":      "medium",
		"techStack":       []string{"Go", "SQLite"},
		"referenceLinks":  []string{"https://example.com/aq"},
		"contactPerson":   "Jane Doe",
		"contactEmail":    "jane@example.com",
	}
}

type problemData struct {
	ID       string               `json:"id"`
	Title    string               `json:"title"`
	Status   models.ProblemStatus `json:"status"`
	Featured bool                 `json:"featured"`
}

func (h *harness) submit(token, title string) problemData {
	h.t.Helper()
	res := h.expect(http.StatusCreated, http.MethodPost, "/api/org/problems", token, problemBody(title))
	return decode[problemData](h.t, res.Data)
}

func (h *harness) raw(req *http.Request) (int, response) {
	h.t.Helper()
	w := httptest.NewRecorder()
	h.h.ServeHTTP(w, req)
	var res response
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		h.t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return w.Code, res
}
