package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/garnizeh/problemhub/internal/models"
)

func TestRegistrationThenLogin(t *testing.T) {
	h := newHarness(t, nil)

	reg := h.registerOrg("a@b.com")
	if reg.Tokens.AccessToken == "" || reg.Tokens.RefreshToken == "" {
		t.Fatalf("expected tokens, got %+v", reg.Tokens)
	}
	if reg.Organization == nil {
		t.Fatalf("expected organization in registration response")
	}

	res := h.expect(http.StatusOK, http.MethodPost, "/api/auth/login/organization", "", map[string]string{
		"email": "a@b.com", "password": "Abcd1234",
	})
	login := decode[authData](t, res.Data)
	if login.User.Role != models.RoleOrganization || login.User.ID != reg.User.ID {
		t.Fatalf("unexpected login user %+v", login.User)
	}
	if res.Message != "Login successful" {
		t.Fatalf("message = %q", res.Message)
	}

	_, dup := h.do(http.MethodPost, "/api/auth/register", "", registerBody("A@B.com"))
	if dup.Code != "EMAIL_EXISTS" {
		t.Fatalf("duplicate registration code = %q", dup.Code)
	}

	_, wrongType := h.do(http.MethodPost, "/api/auth/login/admin", "", map[string]string{
		"email": "a@b.com", "password": "Abcd1234",
	})
	if wrongType.Code != "INVALID_LOGIN_TYPE" {
		t.Fatalf("admin login as organization code = %q", wrongType.Code)
	}
}

func TestSubmitApproveFeature(t *testing.T) {
	h := newHarness(t, nil)
	org := h.registerOrg("org@example.com")
	admin := h.loginAdmin()
	orgToken, adminToken := org.Tokens.AccessToken, admin.Tokens.AccessToken

	p := h.submit(orgToken, "Air quality map")
	if p.Status != models.StatusPending {
		t.Fatalf("new problem status = %q", p.Status)
	}
	h.expect(http.StatusNotFound, http.MethodGet, "/api/problems/"+p.ID, "", nil)

	res := h.expect(http.StatusOK, http.MethodPost, "/api/admin/problems/"+p.ID+"/review", adminToken, map[string]any{
		"status": "approved", "adminNotes": "Looks good",
	})
	if res.Message != "Problem approved successfully" {
		t.Fatalf("review message = %q", res.Message)
	}

	pub := decode[problemData](t, h.expect(http.StatusOK, http.MethodGet, "/api/problems/"+p.ID, "", nil).Data)
	if pub.Status != models.StatusApproved {
		t.Fatalf("public status = %q", pub.Status)
	}

	h.expect(http.StatusOK, http.MethodPost, "/api/admin/problems/"+p.ID+"/feature", adminToken, map[string]bool{"featured": true})
	featured := decode[[]problemData](t, h.expect(http.StatusOK, http.MethodGet, "/api/problems/featured", "", nil).Data)
	if len(featured) != 1 || featured[0].ID != p.ID || !featured[0].Featured {
		t.Fatalf("featured list = %+v", featured)
	}

	other := h.submit(orgToken, "Flood early warning")
	_, bad := h.do(http.MethodPost, "/api/admin/problems/"+other.ID+"/feature", adminToken, map[string]bool{"featured": false})
	if bad.Code != "PROBLEM_NOT_APPROVED" {
		t.Fatalf("feature on pending problem code = %q", bad.Code)
	}
	if got, _ := h.do(http.MethodPost, "/api/admin/problems/"+other.ID+"/feature", adminToken, map[string]bool{"featured": false}); got != http.StatusBadRequest {
		t.Fatalf("feature on pending problem status = %d", got)
	}

	// an approved problem is locked for its owner
	_, locked := h.do(http.MethodPut, "/api/org/problems/"+p.ID, orgToken, map[string]string{"title": "Renamed problem"})
	if locked.Code != "PROBLEM_LOCKED" {
		t.Fatalf("update approved problem code = %q", locked.Code)
	}

	type auditData struct {
		Logs []struct {
			Action   models.AuditAction `json:"action"`
			TargetID string             `json:"targetId"`
		} `json:"logs"`
	}
	audit := decode[auditData](t, h.expect(http.StatusOK, http.MethodGet, "/api/admin/audit", adminToken, nil).Data)
	if len(audit.Logs) != 2 {
		t.Fatalf("audit logs = %+v", audit.Logs)
	}
	if audit.Logs[0].Action != models.ActionFeatureProblem || audit.Logs[1].Action != models.ActionApproveProblem {
		t.Fatalf("audit actions out of order: %+v", audit.Logs)
	}
	trail := decode[[]struct {
		TargetID string `json:"targetId"`
	}](t, h.expect(http.StatusOK, http.MethodGet, "/api/admin/audit/problem/"+p.ID, adminToken, nil).Data)
	if len(trail) != 2 || trail[0].TargetID != p.ID {
		t.Fatalf("audit trail = %+v", trail)
	}
}

func TestDeactivatedAccount(t *testing.T) {
	h := newHarness(t, nil)
	org := h.registerOrg("gone@example.com")
	h.expect(http.StatusOK, http.MethodGet, "/api/auth/me", org.Tokens.AccessToken, nil)

	if err := h.svc.Users.SetUserActive(context.Background(), org.User.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	res := h.expect(http.StatusForbidden, http.MethodGet, "/api/auth/me", org.Tokens.AccessToken, nil)
	if res.Code != "ACCOUNT_DEACTIVATED" {
		t.Fatalf("code = %q", res.Code)
	}
	res = h.expect(http.StatusUnauthorized, http.MethodPost, "/api/auth/login/organization", "", map[string]string{
		"email": "gone@example.com", "password": "Abcd1234",
	})
	if res.Code != "ACCOUNT_DEACTIVATED" {
		t.Fatalf("login code = %q", res.Code)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	h := newHarness(t, nil)
	one := h.registerOrg("one@example.com")
	two := h.registerOrg("two@example.com")

	p := h.submit(one.Tokens.AccessToken, "Water leak sensors")

	h.expect(http.StatusForbidden, http.MethodPut, "/api/org/problems/"+p.ID, two.Tokens.AccessToken, map[string]string{"title": "Hijacked title"})
	h.expect(http.StatusForbidden, http.MethodDelete, "/api/org/problems/"+p.ID, two.Tokens.AccessToken, nil)

	mine := decode[[]problemData](t, h.expect(http.StatusOK, http.MethodGet, "/api/org/problems", two.Tokens.AccessToken, nil).Data)
	if len(mine) != 0 {
		t.Fatalf("second organization sees %d problems", len(mine))
	}

	updated := decode[problemData](t, h.expect(http.StatusOK, http.MethodPut, "/api/org/problems/"+p.ID, one.Tokens.AccessToken, map[string]string{"title": "Water leak sensors v2"}).Data)
	if updated.Title != "Water leak sensors v2" {
		t.Fatalf("title = %q", updated.Title)
	}
	h.expect(http.StatusOK, http.MethodDelete, "/api/org/problems/"+p.ID, one.Tokens.AccessToken, nil)
	h.expect(http.StatusNotFound, http.MethodGet, "/api/org/problems/"+p.ID, one.Tokens.AccessToken, nil)
}

func TestAuthGuards(t *testing.T) {
	h := newHarness(t, nil)
	org := h.registerOrg("guard@example.com")

	tests := []struct {
		name   string
		header string
		path   string
		status int
		code   string
	}{
		{"no header", "", "/api/auth/me", http.StatusUnauthorized, "NO_TOKEN"},
		{"not bearer", "Basic abc", "/api/auth/me", http.StatusUnauthorized, "NO_TOKEN"},
		{"empty bearer", "Bearer ", "/api/auth/me", http.StatusUnauthorized, "INVALID_TOKEN_FORMAT"},
		{"garbage token", "Bearer not.a.jwt", "/api/auth/me", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"refresh token as access", "Bearer " + org.Tokens.RefreshToken, "/api/auth/me", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"wrong role", "Bearer " + org.Tokens.AccessToken, "/api/admin/dashboard", http.StatusForbidden, "FORBIDDEN"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			status, res := h.raw(req)
			if status != tc.status || res.Code != tc.code {
				t.Fatalf("got %d/%s, want %d/%s", status, res.Code, tc.status, tc.code)
			}
		})
	}
}

func TestRefreshToken(t *testing.T) {
	h := newHarness(t, nil)
	org := h.registerOrg("refresh@example.com")

	res := h.expect(http.StatusOK, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": org.Tokens.RefreshToken})
	data := decode[struct {
		AccessToken string `json:"accessToken"`
	}](t, res.Data)
	if data.AccessToken == "" {
		t.Fatalf("expected new access token")
	}
	h.expect(http.StatusOK, http.MethodGet, "/api/auth/me", data.AccessToken, nil)

	missing := h.expect(http.StatusBadRequest, http.MethodPost, "/api/auth/refresh", "", map[string]string{})
	if missing.Message != "Refresh token is required" {
		t.Fatalf("message = %q", missing.Message)
	}
	bad := h.expect(http.StatusUnauthorized, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": org.Tokens.AccessToken})
	if bad.Code != "INVALID_REFRESH_TOKEN" {
		t.Fatalf("code = %q", bad.Code)
	}
}

func TestValidationAndIDErrors(t *testing.T) {
	h := newHarness(t, nil)
	org := h.registerOrg("valid@example.com")

	res := h.expect(http.StatusUnprocessableEntity, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "nope"})
	if res.Code != "VALIDATION_ERROR" || res.Errors["email"] == "" || res.Errors["password"] == "" {
		t.Fatalf("validation response = %+v", res)
	}

	body := problemBody("Mismatched category")
	body["track"] = "hardware"
	res = h.expect(http.StatusUnprocessableEntity, http.MethodPost, "/api/org/problems", org.Tokens.AccessToken, body)
	if res.Errors["category"] == "" {
		t.Fatalf("expected category error, got %v", res.Errors)
	}

	h.expect(http.StatusBadRequest, http.MethodPost, "/api/auth/login/organization", "", "{not json")

	res = h.expect(http.StatusBadRequest, http.MethodGet, "/api/problems/not-an-id", "", nil)
	if res.Code != "INVALID_ID" {
		t.Fatalf("code = %q", res.Code)
	}

	res = h.expect(http.StatusUnprocessableEntity, http.MethodGet, "/api/problems?limit=500", "", nil)
	if res.Errors["limit"] == "" {
		t.Fatalf("expected limit error, got %v", res.Errors)
	}
}

func TestOrganizationPortal(t *testing.T) {
	h := newHarness(t, nil)
	org := h.registerOrg("portal@example.com")
	token := org.Tokens.AccessToken
	h.submit(token, "Smart irrigation")

	dash := decode[struct {
		Stats struct {
			TotalProblems int64 `json:"totalProblems"`
			Pending       int64 `json:"pending"`
		} `json:"stats"`
		RecentProblems []struct {
			Title string `json:"title"`
		} `json:"recentProblems"`
	}](t, h.expect(http.StatusOK, http.MethodGet, "/api/org/dashboard", token, nil).Data)
	if dash.Stats.TotalProblems != 1 || dash.Stats.Pending != 1 || len(dash.RecentProblems) != 1 {
		t.Fatalf("dashboard = %+v", dash)
	}

	res := h.expect(http.StatusOK, http.MethodPut, "/api/org/profile", token, map[string]string{"description": "We grow things"})
	if res.Message != "Organization updated successfully" {
		t.Fatalf("message = %q", res.Message)
	}
	profile := decode[models.Organization](t, h.expect(http.StatusOK, http.MethodGet, "/api/org/profile", token, nil).Data)
	if profile.Description != "We grow things" {
		t.Fatalf("description = %q", profile.Description)
	}
}

func TestAdminConsole(t *testing.T) {
	h := newHarness(t, nil)
	org := h.registerOrg("console@example.com")
	admin := h.loginAdmin()
	token := admin.Tokens.AccessToken
	p := h.submit(org.Tokens.AccessToken, "Cold chain monitor")

	pending := decode[[]problemData](t, h.expect(http.StatusOK, http.MethodGet, "/api/admin/problems/pending", token, nil).Data)
	if len(pending) != 1 || pending[0].ID != p.ID {
		t.Fatalf("pending = %+v", pending)
	}
	h.expect(http.StatusOK, http.MethodPost, "/api/admin/problems/"+p.ID+"/review", token, map[string]string{"status": "rejected"})

	list := decode[struct {
		Problems   []problemData `json:"problems"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}](t, h.expect(http.StatusOK, http.MethodGet, "/api/admin/problems?status=rejected", token, nil).Data)
	if list.Pagination.Total != 1 || list.Problems[0].Status != models.StatusRejected {
		t.Fatalf("rejected list = %+v", list)
	}

	res := h.expect(http.StatusOK, http.MethodPost, "/api/admin/organizations/"+org.Organization.ID+"/verify", token, map[string]bool{"verified": true})
	if res.Message != "Organization verified successfully" {
		t.Fatalf("message = %q", res.Message)
	}
	orgs := decode[struct {
		Organizations []models.Organization `json:"organizations"`
	}](t, h.expect(http.StatusOK, http.MethodGet, "/api/admin/organizations?verified=true", token, nil).Data)
	if len(orgs.Organizations) != 1 || !orgs.Organizations[0].Verified {
		t.Fatalf("verified organizations = %+v", orgs.Organizations)
	}

	dash := decode[struct {
		Problems struct {
			Rejected int64 `json:"rejected"`
		} `json:"problems"`
		Organizations struct {
			Verified int64 `json:"verified"`
		} `json:"organizations"`
		RecentActivity []struct {
			Action models.AuditAction `json:"action"`
		} `json:"recentActivity"`
	}](t, h.expect(http.StatusOK, http.MethodGet, "/api/admin/dashboard", token, nil).Data)
	if dash.Problems.Rejected != 1 || dash.Organizations.Verified != 1 || len(dash.RecentActivity) != 2 {
		t.Fatalf("dashboard = %+v", dash)
	}

	activity := decode[[]struct {
		Action models.AuditAction `json:"action"`
	}](t, h.expect(http.StatusOK, http.MethodGet, "/api/admin/activity?limit=1", token, nil).Data)
	if len(activity) != 1 || activity[0].Action != models.ActionVerifyOrganization {
		t.Fatalf("activity = %+v", activity)
	}

	h.expect(http.StatusOK, http.MethodGet, "/api/admin/problems/stats", token, nil)
	h.expect(http.StatusOK, http.MethodGet, "/api/admin/organizations/stats", token, nil)
	h.expect(http.StatusBadRequest, http.MethodGet, "/api/admin/audit/widget/"+p.ID, token, nil)
}
