// Package auth issues and verifies the signed tokens used by the HTTP surface
// and hashes account passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/garnizeh/problemhub/internal/models"
)

// ErrInvalidToken is returned for any token that fails signature, algorithm,
// expiry or shape checks.
var ErrInvalidToken = errors.New("invalid token")

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	issuer = "problemhub"
)

// Identity is the subject a token is issued for.
type Identity struct {
	UserID string
	Email  string
	Role   models.Role
}

// Claims is the signed payload.
type Claims struct {
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	Type   string      `json:"typ"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens with a shared secret.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (t *TokenIssuer) IssueAccessToken(id Identity) (string, error) {
	return t.issue(id, TypeAccess, t.accessTTL)
}

func (t *TokenIssuer) IssueRefreshToken(id Identity) (string, error) {
	return t.issue(id, TypeRefresh, t.refreshTTL)
}

func (t *TokenIssuer) issue(id Identity, typ string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		UserID: id.UserID,
		Email:  id.Email,
		Role:   id.Role,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return s, nil
}

// VerifyToken parses tokenString and returns its claims. Every failure is
// reported as ErrInvalidToken.
func (t *TokenIssuer) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
