package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	dbpkg "github.com/garnizeh/problemhub/internal/db"
	"github.com/garnizeh/problemhub/internal/models"
	sqlite "github.com/garnizeh/problemhub/internal/repository/sqlite"
	"github.com/garnizeh/problemhub/pkg/repository"
)

func newMockRepo(t *testing.T) (*sqlite.SQLiteRepo, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return sqlite.New(dbpkg.FromConn(conn, nil), nil), mock
}

func TestListProblems_CountErrorIsWrapped(t *testing.T) {
	repo, mock := newMockRepo(t)
	boom := errors.New("disk I/O error")

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM problem_statements p WHERE p.track = \?`).
		WithArgs("hardware").
		WillReturnError(boom)

	_, _, err := repo.ListProblems(context.Background(), repository.ProblemFilter{Track: models.TrackHardware}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListApprovedProblems_AlwaysConstrainsStatus(t *testing.T) {
	repo, mock := newMockRepo(t)
	boom := errors.New("stop")

	// the caller's status is dropped and the approved clause is appended
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM problem_statements p WHERE p.category = \? AND p.status = 'approved'`).
		WithArgs("Robotics & Automation").
		WillReturnError(boom)

	f := repository.ProblemFilter{Category: "Robotics & Automation", Status: models.StatusPending}
	if _, _, err := repo.ListApprovedProblems(context.Background(), f, nil); !errors.Is(err, boom) {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateOrganization_OnlyWritesPatchedColumns(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE organizations SET name = \?, website = \?, updated_at = \? WHERE id = \?`).
		WithArgs("New Name", "", sqlmock.AnyArg(), "org-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT .* FROM organizations o WHERE o.id = \?`).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "logo", "description", "website", "industry",
			"contact_person", "contact_email", "verified", "is_active", "created_at", "updated_at"}).
			AddRow("org-1", "user-1", "New Name", "", "", "", "Technology", "Jane", "jane@example.com", 1, 1, int64(1700000000000), int64(1700000000000)))

	name, website := "New Name", ""
	o, err := repo.UpdateOrganization(context.Background(), "org-1", models.OrganizationPatch{Name: &name, Website: &website})
	if err != nil {
		t.Fatalf("UpdateOrganization: %v", err)
	}
	if o.Name != "New Name" || !o.Verified || o.UserID != "user-1" {
		t.Fatalf("unexpected organization: %+v", o)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateUser_UniqueViolationMapsToDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"))

	u := &models.User{Email: "a@example.com", PasswordHash: "h", Name: "A", Role: models.RoleAdmin, IsActive: true}
	if err := repo.CreateUser(context.Background(), u); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateUserWithOrganization_RollsBackOnOrgFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	boom := errors.New("foreign key mismatch")

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO organizations`).WillReturnError(boom)
	mock.ExpectRollback()

	u := &models.User{Email: "org@example.com", PasswordHash: "h", Name: "Org", Role: models.RoleOrganization, IsActive: true}
	o := &models.Organization{Name: "Org", Industry: "Other", ContactPerson: "Org", ContactEmail: "org@example.com", IsActive: true}
	if err := repo.CreateUserWithOrganization(context.Background(), u, o); !errors.Is(err, boom) {
		t.Fatalf("expected org insert error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
