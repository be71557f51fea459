package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/garnizeh/problemhub/api"
)

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("disk I/O error") }

func TestHealthHandler(t *testing.T) {
	h := newHarness(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	h.h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Message != "DevThon API by DevUp Society is running" || body.Timestamp == "" {
		t.Fatalf("unexpected health body %+v", body)
	}
}

func TestHealthHandlerDatabaseDown(t *testing.T) {
	w := httptest.NewRecorder()
	api.NewSystemHandler(downStore{}).HealthHandler(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success || body.Message != "Database unavailable" {
		t.Fatalf("unexpected health body %+v", body)
	}
}

func TestVersionHandler(t *testing.T) {
	h := newHarness(t, nil)
	res := h.expect(http.StatusOK, http.MethodGet, "/api/version", "", nil)
	v := decode[struct {
		Version   string `json:"version"`
		BuildTime string `json:"buildTime"`
	}](t, res.Data)
	if v.Version != "test" || v.BuildTime == "" {
		t.Fatalf("unexpected version %+v", v)
	}
}

func TestUnknownRoutes(t *testing.T) {
	h := newHarness(t, nil)

	res := h.expect(http.StatusNotFound, http.MethodGet, "/api/nope", "", nil)
	if res.Code != "NOT_FOUND" || res.Message != "Cannot GET /api/nope" {
		t.Fatalf("unexpected 404 envelope %+v", res)
	}
	if res := h.expect(http.StatusNotFound, http.MethodGet, "/api/org/nope", "", nil); res.Code != "NOT_FOUND" {
		t.Fatalf("unknown org route %+v", res)
	}

	for _, c := range []struct{ method, path string }{
		{http.MethodDelete, "/api/health"},
		{http.MethodPatch, "/api/auth/login/admin"},
		{http.MethodPost, "/api/problems/featured"},
		{http.MethodDelete, "/api/org/dashboard"},
		{http.MethodPut, "/api/admin/problems/pending"},
		{http.MethodDelete, "/metrics"},
	} {
		res := h.expect(http.StatusMethodNotAllowed, c.method, c.path, "", nil)
		if res.Code != "METHOD_NOT_ALLOWED" {
			t.Fatalf("%s %s: unexpected envelope %+v", c.method, c.path, res)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t, nil)
	h.expect(http.StatusOK, http.MethodGet, "/api/health", "", nil)

	w := httptest.NewRecorder()
	h.h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `problemhub_http_requests_total{method="GET",route="/api/health"`) {
		t.Fatalf("route label missing from exposition")
	}
}
