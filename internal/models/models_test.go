package models_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/garnizeh/problemhub/internal/models"
)

func TestRoleValid(t *testing.T) {
	for _, r := range models.Roles {
		if !r.Valid() {
			t.Fatalf("expected %q to be valid", r)
		}
	}
	if _, ok := models.ParseRole("superuser"); ok {
		t.Fatalf("expected unknown role to be rejected")
	}
	if r, ok := models.ParseRole("admin"); !ok || r != models.RoleAdmin {
		t.Fatalf("ParseRole(admin) = %q, %v", r, ok)
	}
}

func TestCategoryAllowed(t *testing.T) {
	cases := []struct {
		track    models.Track
		category string
		want     bool
	}{
		{models.TrackSoftware, "EdTech & Smart Learning", true},
		{models.TrackHardware, "Robotics & Automation", true},
		{models.TrackSoftware, "Robotics & Automation", false},
		{models.TrackHardware, "EdTech & Smart Learning", false},
		{models.Track("quantum"), "EdTech & Smart Learning", false},
	}
	for _, c := range cases {
		if got := models.CategoryAllowed(c.track, c.category); got != c.want {
			t.Fatalf("CategoryAllowed(%q, %q) = %v want %v", c.track, c.category, got, c.want)
		}
	}
}

func TestUserPasswordNeverSerialized(t *testing.T) {
	u := models.User{ID: "1", Email: "a@b.com", PasswordHash: "$2a$12$secret", Role: models.RoleAdmin}
	b, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "secret") || strings.Contains(string(b), "password") {
		t.Fatalf("password leaked into json: %s", b)
	}
}

func TestProblemStateHelpers(t *testing.T) {
	p := &models.ProblemStatement{Status: models.StatusPending}
	if !p.CanBeEditedByOwner() || p.CanBeFeatured() {
		t.Fatalf("pending problem: editable=%v featurable=%v", p.CanBeEditedByOwner(), p.CanBeFeatured())
	}
	p.Status = models.StatusRejected
	if !p.CanBeEditedByOwner() || p.CanBeFeatured() {
		t.Fatalf("rejected problem should be editable and not featurable")
	}
	p.Status = models.StatusApproved
	if p.CanBeEditedByOwner() || !p.CanBeFeatured() {
		t.Fatalf("approved problem should be locked and featurable")
	}
}

func TestProblemPatchApply(t *testing.T) {
	orig := models.ProblemStatement{Title: "Original title", Track: models.TrackSoftware, TechStack: []string{"Go"}}
	title := "Updated title"
	hw := models.TrackHardware
	stack := []string{}
	got := models.ProblemPatch{Title: &title, Track: &hw, TechStack: &stack}.Apply(orig)

	if got.Title != title || got.Track != models.TrackHardware || len(got.TechStack) != 0 {
		t.Fatalf("patch not applied: %+v", got)
	}
	if orig.Title != "Original title" {
		t.Fatalf("Apply must not mutate its input")
	}

	unchanged := models.ProblemPatch{}.Apply(orig)
	if unchanged.Title != orig.Title || unchanged.Track != orig.Track {
		t.Fatalf("empty patch changed fields: %+v", unchanged)
	}
}
