package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/garnizeh/problemhub/internal/apperr"
	"github.com/garnizeh/problemhub/internal/metrics"
	"github.com/garnizeh/problemhub/internal/service"
)

type ctxKey string

const (
	ctxRequestID ctxKey = "request_id"
	ctxRoute     ctxKey = "route"
)

const maxBodyBytes = 10 << 20

// package-level logger used by middleware and helpers; can be set via SetLogger from caller
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger installs a logger for the api package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// RequestIDFrom returns the id assigned to the request, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxRequestID).(string)
	return id
}

// statusRecorder remembers the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) code() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

// RequestIDMiddleware tags every request with an id (reusing a client supplied
// X-Request-ID) and records the caller's address and user agent for auditing.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		ctx := context.WithValue(r.Context(), ctxRequestID, id)
		ctx = service.WithRequestMeta(ctx, service.RequestMeta{IP: clientIP(r), UserAgent: r.UserAgent()})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				logger.Error("panic",
					slog.Any("err", err),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("request_id", RequestIDFrom(r.Context())),
				)
				writeJSON(w, http.StatusInternalServerError, envelope{
					Success: false,
					Message: "Internal server error",
					Code:    apperr.CodeInternal,
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.code()),
			slog.Duration("took", time.Since(start)),
			slog.String("remote", clientIP(r)),
			slog.String("request_id", RequestIDFrom(r.Context())),
		)
	})
}

type routeHolder struct {
	template string
}

// MetricsMiddleware records request counts and latency labelled by route
// template. Requests that match no route are labelled "unmatched".
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestStarted()
		defer metrics.RequestFinished()

		start := time.Now()
		holder := &routeHolder{template: "unmatched"}
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), ctxRoute, holder)))
		metrics.ObserveHTTPRequest(r.Method, holder.template, strconv.Itoa(rec.code()), time.Since(start))
	})
}

// captureRoute runs inside the router, where the matched route is known, and
// hands its template back to MetricsMiddleware.
func captureRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if holder, ok := r.Context().Value(ctxRoute).(*routeHolder); ok {
			if route := mux.CurrentRoute(r); route != nil {
				if tmpl, err := route.GetPathTemplate(); err == nil {
					holder.template = tmpl
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// CORSMiddleware allows credentialed requests from the configured origins.
func CORSMiddleware(origins []string) func(http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)
}

func CompressionMiddleware(next http.Handler) http.Handler {
	return handlers.CompressHandler(next)
}

// BodyLimitMiddleware caps request bodies at 10 MiB.
func BodyLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimiter allows each client address max requests per window. Idle
// clients are forgotten after a window without traffic.
type RateLimiter struct {
	limit  rate.Limit
	burst  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Every(window / time.Duration(max)),
		burst:   max,
		window:  window,
		now:     time.Now,
		clients: make(map[string]*client),
	}
}

// Allow reports whether key may make another request now.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.window {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > l.window {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientIP(r)) {
			metrics.RateLimited()
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window/time.Second)))
			writeError(w, r, apperr.RateLimited())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
