// Package service holds the domain services behind the HTTP handlers. Every
// method takes a context first and returns *apperr.Error for expected
// failures; anything else is an internal error.
package service

import (
	"context"

	"github.com/garnizeh/problemhub/pkg/repository"
)

type requestMetaKey struct{}

// RequestMeta is the caller information copied into audit entries.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// WithRequestMeta attaches caller information to ctx.
func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, m)
}

// RequestMetaFrom returns the caller information attached to ctx, if any.
func RequestMetaFrom(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return m
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func paginate(p *repository.Page, total int64) Pagination {
	if p == nil {
		return Pagination{Page: 1, Limit: int(total), Total: total, TotalPages: 1}
	}
	return Pagination{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: p.TotalPages(total)}
}

