package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/problemhub/internal/apperr"
	"github.com/garnizeh/problemhub/internal/ids"
)

// envelope is the uniform response body.
type envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Code    string            `json:"code,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	// Error carries the internal failure text outside production.
	Error string `json:"error,omitempty"`
}

// exposeInternalErrors controls whether 500 responses include the error text.
var exposeInternalErrors = true

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeOK(w http.ResponseWriter, data any) {
	writeData(w, http.StatusOK, "", data)
}

// writeError is the single place application errors become responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.As(err)
	status := ae.Status()
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		ae = apperr.BadRequest("", "Request body too large")
		status = http.StatusRequestEntityTooLarge
	}

	attrs := []any{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", RequestIDFrom(r.Context())),
		slog.Int("status", status),
		slog.String("code", ae.Code),
	}
	if u := UserFrom(r.Context()); u != nil {
		attrs = append(attrs, slog.String("user_id", u.ID))
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", append(attrs, slog.Any("err", err))...)
	} else {
		logger.Warn("request rejected", append(attrs, slog.String("message", ae.Message))...)
	}

	body := envelope{Success: false, Message: ae.Message, Code: ae.Code, Errors: ae.Fields}
	if status >= http.StatusInternalServerError && exposeInternalErrors {
		body.Error = err.Error()
	}
	writeJSON(w, status, body)
}

// pathID returns the {id} route variable, rejecting anything that is not a
// well-formed identifier.
func pathID(r *http.Request) (string, error) {
	id := mux.Vars(r)["id"]
	if !ids.Valid(id) {
		return "", apperr.BadRequest(apperr.CodeInvalidID, "Invalid id: "+id)
	}
	return id, nil
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, envelope{
		Success: false,
		Message: "Cannot " + r.Method + " " + r.URL.Path,
		Code:    apperr.CodeNotFound,
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, envelope{
		Success: false,
		Message: "Method " + r.Method + " not allowed on " + r.URL.Path,
		Code:    "METHOD_NOT_ALLOWED",
	})
}
