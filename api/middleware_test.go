package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/garnizeh/problemhub/api"
	"github.com/garnizeh/problemhub/internal/auth"
	"github.com/garnizeh/problemhub/internal/config"
	"github.com/garnizeh/problemhub/internal/models"
	"github.com/garnizeh/problemhub/internal/service"
	"github.com/garnizeh/problemhub/pkg/repository/mock"
)

func TestLoggingMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("ok"))
	})

	handler := api.LoggingMiddleware(next)
	req := httptest.NewRequest(http.MethodGet, "/log", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	res := w.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusTeapot {
		t.Fatalf("expected status 418, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if string(b) != "ok" {
		t.Fatalf("unexpected body: %q", string(b))
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	pan := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := api.RecoveryMiddleware(pan)
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", w.Code)
	}
	var res response
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Success || res.Code != "INTERNAL_ERROR" {
		t.Fatalf("unexpected envelope %+v", res)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	var meta service.RequestMeta
	handler := api.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = api.RequestIDFrom(r.Context())
		meta = service.RequestMetaFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "probe/1.0")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if seen == "" || w.Header().Get("X-Request-ID") != seen {
		t.Fatalf("request id %q not echoed (%q)", seen, w.Header().Get("X-Request-ID"))
	}
	if meta.IP != "192.0.2.1" || meta.UserAgent != "probe/1.0" {
		t.Fatalf("request meta = %+v", meta)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc-123" {
		t.Fatalf("client request id not reused: %q", seen)
	}
}

func TestBodyLimitMiddleware(t *testing.T) {
	handler := api.BodyLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	big := strings.NewReader(strings.Repeat("x", 10<<20+1))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", big))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected oversized body to fail, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}")))
	if w.Code != http.StatusOK {
		t.Fatalf("small body rejected: %d", w.Code)
	}
}

func TestRateLimiterAllow(t *testing.T) {
	l := api.NewRateLimiter(time.Minute, 2)
	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("first two requests should pass")
	}
	if l.Allow("a") {
		t.Fatalf("third request inside the window should be limited")
	}
	if !l.Allow("b") {
		t.Fatalf("limits are per client")
	}
}

func TestRateLimitedRoutes(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.RateLimitMaxRequests = 2 })

	h.expect(http.StatusOK, http.MethodGet, "/api/health", "", nil)
	h.expect(http.StatusOK, http.MethodGet, "/api/health", "", nil)
	res := h.expect(http.StatusTooManyRequests, http.MethodGet, "/api/health", "", nil)
	if res.Code != "RATE_LIMIT_EXCEEDED" || res.Message != "Too many requests, please try again later" {
		t.Fatalf("unexpected envelope %+v", res)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.CORSOrigins = []string{"https://portal.example.com"} })

	req := httptest.NewRequest(http.MethodOptions, "/api/problems", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	h.h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://portal.example.com" {
		t.Fatalf("allow origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("allow credentials = %q", got)
	}
}

func newAuthenticator(t *testing.T) (*api.Authenticator, *auth.TokenIssuer, *mock.Mocks) {
	t.Helper()
	m := mock.NewMocks()
	tokens := auth.NewTokenIssuer("secret", time.Hour, time.Hour)
	return api.NewAuthenticator(tokens, m.UserRepo), tokens, m
}

func TestRequireRole(t *testing.T) {
	a, tokens, m := newAuthenticator(t)
	u := &models.User{ID: "u1", Email: "org@example.com", Role: models.RoleOrganization, IsActive: true}
	if err := m.UserRepo.CreateUser(t.Context(), u); err != nil {
		t.Fatal(err)
	}
	token, err := tokens.IssueAccessToken(auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		t.Fatal(err)
	}

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.UserFrom(r.Context()).ID != "u1" {
			t.Errorf("user not attached")
		}
		w.WriteHeader(http.StatusNoContent)
	})

	cases := []struct {
		name  string
		roles []models.Role
		want  int
	}{
		{"matching role", []models.Role{models.RoleOrganization}, http.StatusNoContent},
		{"one of many", []models.Role{models.RoleAdmin, models.RoleOrganization}, http.StatusNoContent},
		{"other role", []models.Role{models.RoleAdmin}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := a.RequireAuth(a.RequireRole(tc.roles...)(ok))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("status = %d want %d", w.Code, tc.want)
			}
		})
	}
}

func TestRequireAuthUnknownUser(t *testing.T) {
	a, tokens, _ := newAuthenticator(t)
	token, _ := tokens.IssueAccessToken(auth.Identity{UserID: "ghost", Role: models.RoleAdmin})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.RequireAuth(http.NotFoundHandler()).ServeHTTP(w, req)

	var res response
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if w.Code != http.StatusUnauthorized || res.Code != "USER_NOT_FOUND" {
		t.Fatalf("got %d/%s", w.Code, res.Code)
	}
}

func TestOptionalAuth(t *testing.T) {
	a, _, _ := newAuthenticator(t)
	var user *models.User
	called := false
	h := a.OptionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		user = api.UserFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !called || user != nil {
		t.Fatalf("invalid token should degrade to anonymous (called=%v user=%v)", called, user)
	}
}
