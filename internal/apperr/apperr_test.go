package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/garnizeh/problemhub/internal/apperr"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  *apperr.Error
		want int
	}{
		{apperr.Validation(map[string]string{"email": "bad"}), http.StatusUnprocessableEntity},
		{apperr.Unauthorized(apperr.CodeNoToken, "no token"), http.StatusUnauthorized},
		{apperr.Forbidden(apperr.CodeAccountDeactivated, "off"), http.StatusForbidden},
		{apperr.NotFound("gone"), http.StatusNotFound},
		{apperr.Conflict(apperr.CodeEmailExists, "dup"), http.StatusConflict},
		{apperr.BadRequest(apperr.CodeInvalidID, "bad id"), http.StatusBadRequest},
		{apperr.RateLimited(), http.StatusTooManyRequests},
		{apperr.Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := c.err.Status(); got != c.want {
			t.Fatalf("%s: status %d want %d", c.err.Code, got, c.want)
		}
	}
}

func TestAsUnwrapsWrappedErrors(t *testing.T) {
	base := apperr.Conflict(apperr.CodeEmailExists, "Email already registered")
	wrapped := fmt.Errorf("register: %w", base)

	got := apperr.As(wrapped)
	if got.Code != apperr.CodeEmailExists {
		t.Fatalf("expected EMAIL_EXISTS, got %q", got.Code)
	}
	if !apperr.Is(wrapped, apperr.KindConflict) {
		t.Fatalf("expected conflict kind")
	}
	if !apperr.HasCode(wrapped, apperr.CodeEmailExists) {
		t.Fatalf("expected HasCode to match")
	}

	plain := apperr.As(errors.New("disk on fire"))
	if plain.Kind != apperr.KindInternal {
		t.Fatalf("untyped error should map to internal, got %v", plain.Kind)
	}
}
