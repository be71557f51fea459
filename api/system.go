package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/garnizeh/problemhub/internal/metrics"
)

const healthPingTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type SystemHandler struct {
	store Pinger
}

// NewSystemHandler returns the health, version and metrics handlers. A nil
// store skips the database check.
func NewSystemHandler(store Pinger) *SystemHandler {
	return &SystemHandler{store: store}
}

type healthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			logger.Warn("health check: database unreachable", slog.Any("err", err))
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{
				Success:   false,
				Message:   "Database unavailable",
				Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Success:   true,
		Message:   "DevThon API by DevUp Society is running",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

type versionResponse struct {
	Version   string `json:"version"`
	BuildTime string `json:"buildTime"`
}

func (h *SystemHandler) VersionHandler(version, buildTime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, versionResponse{Version: version, BuildTime: buildTime})
	}
}

func (h *SystemHandler) MetricsHandler() http.Handler {
	return metrics.Handler()
}
