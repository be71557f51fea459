// Package apperr defines the error taxonomy shared by the domain services and
// the HTTP surface. Services return *Error values; the HTTP layer maps Kind to
// a status code in one place.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindBadRequest
	KindRateLimited
)

// Machine-readable codes returned to clients.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeNoToken             = "NO_TOKEN"
	CodeInvalidTokenFormat  = "INVALID_TOKEN_FORMAT"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeAccountDeactivated  = "ACCOUNT_DEACTIVATED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInvalidLoginType    = "INVALID_LOGIN_TYPE"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeEmailExists         = "EMAIL_EXISTS"
	CodeDuplicateKey        = "DUPLICATE_KEY"
	CodeBadRequest          = "BAD_REQUEST"
	CodeInvalidID           = "INVALID_ID"
	CodeInvalidJSON         = "INVALID_JSON"
	CodeProblemLocked       = "PROBLEM_LOCKED"
	CodeNotApproved         = "PROBLEM_NOT_APPROVED"
	CodeRateLimited         = "RATE_LIMIT_EXCEEDED"
	CodeInternal            = "INTERNAL_ERROR"
)

// Error is a typed application error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// Fields maps a request field path to a message; only set for KindValidation.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindBadRequest:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: "Validation failed", Fields: fields}
}

func Unauthorized(code, msg string) *Error {
	if code == "" {
		code = CodeUnauthorized
	}
	return &Error{Kind: KindUnauthorized, Code: code, Message: msg}
}

func Forbidden(code, msg string) *Error {
	if code == "" {
		code = CodeForbidden
	}
	return &Error{Kind: KindForbidden, Code: code, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: msg}
}

func Conflict(code, msg string) *Error {
	if code == "" {
		code = CodeDuplicateKey
	}
	return &Error{Kind: KindConflict, Code: code, Message: msg}
}

func BadRequest(code, msg string) *Error {
	if code == "" {
		code = CodeBadRequest
	}
	return &Error{Kind: KindBadRequest, Code: code, Message: msg}
}

func RateLimited() *Error {
	return &Error{Kind: KindRateLimited, Code: CodeRateLimited, Message: "Too many requests, please try again later"}
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "Internal server error", Err: err}
}

// As extracts an *Error from err. Untyped errors come back as KindInternal.
func As(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}

// HasCode reports whether err is an *Error carrying code.
func HasCode(err error, code string) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == code
}
