package api

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/garnizeh/problemhub/internal/apperr"
	"github.com/garnizeh/problemhub/internal/auth"
	"github.com/garnizeh/problemhub/internal/models"
	"github.com/garnizeh/problemhub/pkg/repository"
)

const ctxUser ctxKey = "user"

// WithUser attaches the authenticated user to ctx.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxUser, u)
}

// UserFrom returns the authenticated user, or nil for anonymous requests.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(ctxUser).(*models.User)
	return u
}

// Authenticator resolves bearer tokens to active users.
type Authenticator struct {
	tokens *auth.TokenIssuer
	users  repository.UserRepo
}

func NewAuthenticator(tokens *auth.TokenIssuer, users repository.UserRepo) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

func (a *Authenticator) authenticate(r *http.Request) (*models.User, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, apperr.Unauthorized(apperr.CodeNoToken, "No token provided")
	}
	if token == "" || strings.Contains(token, " ") {
		return nil, apperr.Unauthorized(apperr.CodeInvalidTokenFormat, "Invalid token format")
	}

	claims, err := a.tokens.VerifyToken(token)
	if err != nil || claims.Type != auth.TypeAccess {
		return nil, apperr.Unauthorized(apperr.CodeInvalidToken, "Invalid or expired token")
	}

	u, err := a.users.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("load user: %w", err))
	}
	if u == nil {
		return nil, apperr.Unauthorized(apperr.CodeUserNotFound, "User not found")
	}
	if !u.IsActive {
		return nil, apperr.Forbidden(apperr.CodeAccountDeactivated, "Account is deactivated")
	}
	return u, nil
}

// RequireAuth rejects requests without a valid access token for an active user.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := a.authenticate(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

// RequireRole must run after RequireAuth.
func (a *Authenticator) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	for _, role := range roles {
		if !role.Valid() {
			panic("api: unknown role " + string(role))
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := UserFrom(r.Context())
			if u == nil {
				writeError(w, r, apperr.Unauthorized("", "Authentication required"))
				return
			}
			if !slices.Contains(roles, u.Role) {
				writeError(w, r, apperr.Forbidden("", "You do not have permission to access this resource"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OptionalAuth attaches the user when a valid token is present and otherwise
// treats the request as anonymous.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, err := a.authenticate(r); err == nil {
			r = r.WithContext(WithUser(r.Context(), u))
		}
		next.ServeHTTP(w, r)
	})
}
