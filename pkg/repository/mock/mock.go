package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/garnizeh/problemhub/internal/models"
	"github.com/garnizeh/problemhub/pkg/repository"
)

// Test helpers and mocks
type Mocks struct {
	UserRepo  *mockUserRepo
	AuditRepo *mockAuditRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		UserRepo:  &mockUserRepo{byID: map[string]*models.User{}},
		AuditRepo: &mockAuditRepo{},
	}
}

var _ repository.UserRepo = (*mockUserRepo)(nil)
var _ repository.AuditRepo = (*mockAuditRepo)(nil)

type mockUserRepo struct {
	mu        sync.Mutex
	byID      map[string]*models.User
	CreateErr error
	GetErr    error
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *models.User) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = "user-" + strings.ToLower(u.Email)
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	u, err := m.GetUserByEmail(ctx, email)
	return u != nil, err
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (m *mockUserRepo) SetUserActive(ctx context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		u.IsActive = active
	}
	return nil
}

type mockAuditRepo struct {
	mu        sync.Mutex
	Logs      []models.AuditLog
	CreateErr error
}

func (m *mockAuditRepo) CreateAuditLog(ctx context.Context, l *models.AuditLog) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l.CreatedAt = time.Now().UTC()
	m.Logs = append(m.Logs, *l)
	return nil
}

func (m *mockAuditRepo) ListAuditLogs(ctx context.Context, f repository.AuditFilter, p *repository.Page) ([]models.AuditLog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.AuditLog{}
	for i := len(m.Logs) - 1; i >= 0; i-- {
		l := m.Logs[i]
		if f.Action != "" && l.Action != f.Action {
			continue
		}
		if f.TargetType != "" && l.TargetType != f.TargetType {
			continue
		}
		if f.AdminID != "" && l.AdminID != f.AdminID {
			continue
		}
		out = append(out, l)
	}
	return out, int64(len(out)), nil
}

func (m *mockAuditRepo) RecentAuditLogs(ctx context.Context, limit int) ([]models.AuditLog, error) {
	out, _, _ := m.ListAuditLogs(ctx, repository.AuditFilter{}, nil)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockAuditRepo) AuditLogsByTarget(ctx context.Context, targetType models.TargetType, targetID string) ([]models.AuditLog, error) {
	out, _, _ := m.ListAuditLogs(ctx, repository.AuditFilter{TargetType: targetType}, nil)
	filtered := out[:0]
	for _, l := range out {
		if l.TargetID == targetID {
			filtered = append(filtered, l)
		}
	}
	return filtered, nil
}
