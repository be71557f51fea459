package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/garnizeh/problemhub/internal/apperr"
	"github.com/garnizeh/problemhub/internal/auth"
	"github.com/garnizeh/problemhub/internal/metrics"
	"github.com/garnizeh/problemhub/internal/models"
	"github.com/garnizeh/problemhub/pkg/repository"
)

type AuthService struct {
	users     repository.UserRepo
	registrar repository.Registrar
	orgs      repository.OrganizationRepo
	tokens    *auth.TokenIssuer
	logger    *slog.Logger
	now       func() time.Time
}

func NewAuthService(users repository.UserRepo, registrar repository.Registrar, orgs repository.OrganizationRepo, tokens *auth.TokenIssuer, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{users: users, registrar: registrar, orgs: orgs, tokens: tokens, logger: logger, now: time.Now}
}

// RegisterInput is the organization sign-up payload. Name is the account
// holder's display name and defaults to the contact person.
type RegisterInput struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	Name             string `json:"name"`
	OrganizationName string `json:"organizationName"`
	Industry         string `json:"industry"`
	Website          string `json:"website"`
	Description      string `json:"description"`
	ContactPerson    string `json:"contactPerson"`
	ContactEmail     string `json:"contactEmail"`
}

func (in *RegisterInput) ApplyDefaults() {
	if strings.TrimSpace(in.Name) == "" {
		in.Name = in.ContactPerson
	}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthUser struct {
	ID     string      `json:"id"`
	Email  string      `json:"email"`
	Name   string      `json:"name"`
	Role   models.Role `json:"role"`
	Avatar string      `json:"avatar,omitempty"`
}

type AuthOrganization struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthResult struct {
	User         AuthUser          `json:"user"`
	Organization *AuthOrganization `json:"organization,omitempty"`
	Tokens       Tokens            `json:"tokens"`
}

type CurrentOrganization struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
	Industry string `json:"industry"`
}

type CurrentUser struct {
	ID           string               `json:"id"`
	Email        string               `json:"email"`
	Name         string               `json:"name"`
	Role         models.Role          `json:"role"`
	Avatar       string               `json:"avatar,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	Organization *CurrentOrganization `json:"organization,omitempty"`
}

func authUser(u *models.User) AuthUser {
	return AuthUser{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, Avatar: u.Avatar}
}

func authOrganization(o *models.Organization) *AuthOrganization {
	if o == nil {
		return nil
	}
	return &AuthOrganization{ID: o.ID, Name: o.Name, Verified: o.Verified}
}

func (s *AuthService) issue(u *models.User) (Tokens, error) {
	id := auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
	access, err := s.tokens.IssueAccessToken(id)
	if err != nil {
		return Tokens{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(id)
	if err != nil {
		return Tokens{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

// RegisterOrganization creates the account and its organization in one
// transaction and signs the caller in.
func (s *AuthService) RegisterOrganization(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	exists, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, apperr.Conflict(apperr.CodeEmailExists, "Email already registered")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Role:         models.RoleOrganization,
		IsActive:     true,
	}
	o := &models.Organization{
		Name:          in.OrganizationName,
		Industry:      in.Industry,
		Website:       strings.TrimSpace(in.Website),
		Description:   in.Description,
		ContactPerson: in.ContactPerson,
		ContactEmail:  in.ContactEmail,
		IsActive:      true,
	}
	if err := s.registrar.CreateUserWithOrganization(ctx, u, o); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict(apperr.CodeEmailExists, "Email already registered")
		}
		return nil, fmt.Errorf("register organization: %w", err)
	}

	tokens, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateLastLogin(ctx, u.ID, s.now()); err != nil {
		s.logger.Warn("update last login failed", slog.String("user_id", u.ID), slog.Any("err", err))
	}

	metrics.Registered()
	s.logger.Info("organization registered", slog.String("user_id", u.ID), slog.String("organization_id", o.ID))
	return &AuthResult{User: authUser(u), Organization: authOrganization(o), Tokens: tokens}, nil
}

// Login checks credentials. A non-empty expected role keeps the admin and
// organization sign-in endpoints apart over one credential store.
func (s *AuthService) Login(ctx context.Context, in LoginInput, expected models.Role) (*AuthResult, error) {
	res, err := s.login(ctx, in, expected)
	if err != nil {
		if ae := apperr.As(err); ae != nil {
			metrics.Login(ae.Code)
		}
		return nil, err
	}
	metrics.Login("success")
	return res, nil
}

func (s *AuthService) login(ctx context.Context, in LoginInput, expected models.Role) (*AuthResult, error) {
	u, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if u == nil {
		return nil, apperr.Unauthorized(apperr.CodeInvalidCredentials, "Invalid credentials")
	}
	if !u.IsActive {
		return nil, apperr.Unauthorized(apperr.CodeAccountDeactivated, "Account is deactivated")
	}
	if !auth.CheckPassword(in.Password, u.PasswordHash) {
		return nil, apperr.Unauthorized(apperr.CodeInvalidCredentials, "Invalid credentials")
	}
	if expected != "" && u.Role != expected {
		return nil, apperr.Unauthorized(apperr.CodeInvalidLoginType, "Invalid credentials for this login type")
	}

	tokens, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateLastLogin(ctx, u.ID, s.now()); err != nil {
		s.logger.Warn("update last login failed", slog.String("user_id", u.ID), slog.Any("err", err))
	}

	var org *models.Organization
	if u.Role == models.RoleOrganization {
		if org, err = s.orgs.GetOrganizationByUserID(ctx, u.ID); err != nil {
			return nil, fmt.Errorf("load organization: %w", err)
		}
	}

	s.logger.Info("user logged in", slog.String("user_id", u.ID), slog.String("role", string(u.Role)))
	return &AuthResult{User: authUser(u), Organization: authOrganization(org), Tokens: tokens}, nil
}

func (s *AuthService) LoginAdmin(ctx context.Context, in LoginInput) (*AuthResult, error) {
	return s.Login(ctx, in, models.RoleAdmin)
}

func (s *AuthService) LoginOrganization(ctx context.Context, in LoginInput) (*AuthResult, error) {
	return s.Login(ctx, in, models.RoleOrganization)
}

// RefreshToken issues a new access token; the refresh token is not rotated.
// Every failure is reported as INVALID_REFRESH_TOKEN.
func (s *AuthService) RefreshToken(ctx context.Context, token string) (string, error) {
	invalid := apperr.Unauthorized(apperr.CodeInvalidRefreshToken, "Invalid refresh token")

	claims, err := s.tokens.VerifyToken(token)
	if err != nil || claims.Type != auth.TypeRefresh {
		return "", invalid
	}
	u, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		s.logger.Warn("refresh lookup failed", slog.String("user_id", claims.UserID), slog.Any("err", err))
		return "", invalid
	}
	if u == nil || !u.IsActive {
		return "", invalid
	}
	access, err := s.tokens.IssueAccessToken(auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return "", invalid
	}
	return access, nil
}

func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*CurrentUser, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, apperr.NotFound("User not found")
	}
	out := &CurrentUser{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, Avatar: u.Avatar, CreatedAt: u.CreatedAt}
	if u.Role == models.RoleOrganization {
		o, err := s.orgs.GetOrganizationByUserID(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("load organization: %w", err)
		}
		if o != nil {
			out.Organization = &CurrentOrganization{ID: o.ID, Name: o.Name, Verified: o.Verified, Industry: o.Industry}
		}
	}
	return out, nil
}
