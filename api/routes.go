package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/garnizeh/problemhub/internal/auth"
	"github.com/garnizeh/problemhub/internal/config"
	"github.com/garnizeh/problemhub/internal/db"
	"github.com/garnizeh/problemhub/internal/models"
	"github.com/garnizeh/problemhub/internal/repository/sqlite"
	"github.com/garnizeh/problemhub/internal/service"
	"github.com/garnizeh/problemhub/pkg/repository"
)

// Services bundles the domain services the HTTP surface depends on.
type Services struct {
	Store         Pinger
	Users         repository.UserRepo
	Tokens        *auth.TokenIssuer
	Auth          *service.AuthService
	Problems      *service.ProblemService
	Organizations *service.OrganizationService
	Admin         *service.AdminService
	Audit         *service.AuditService
}

// NewServices wires the repositories and services over one database handle.
func NewServices(cfg *config.Config, database *db.DB, logger *slog.Logger) *Services {
	repo := sqlite.New(database, logger)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiresIn.Std(), cfg.JWTRefreshExpiresIn.Std())
	cache := service.NewStatsCache(cfg.StatsCacheTTL.Std())
	audit := service.NewAuditService(repo, logger)
	return &Services{
		Store:         database,
		Users:         repo,
		Tokens:        tokens,
		Auth:          service.NewAuthService(repo, repo, repo, tokens, logger),
		Problems:      service.NewProblemService(repo, repo, repo, audit, cache, logger),
		Organizations: service.NewOrganizationService(repo, repo, audit, cache, logger),
		Admin:         service.NewAdminService(repo, repo, repo),
		Audit:         audit,
	}
}

// subrouter mounts prefix under parent. mux does not inherit the fallback
// handlers, so without them a method mismatch inside a subrouter becomes 404.
func subrouter(parent *mux.Router, prefix string) *mux.Router {
	sr := parent.PathPrefix(prefix).Subrouter()
	sr.NotFoundHandler = parent.NotFoundHandler
	sr.MethodNotAllowedHandler = parent.MethodNotAllowedHandler
	return sr
}

func SetupRoutes(cfg *config.Config, version, buildTime string, svc *Services) http.Handler {
	exposeInternalErrors = !cfg.IsProduction()

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	r.Use(captureRoute)

	authn := NewAuthenticator(svc.Tokens, svc.Users)
	systemHandler := NewSystemHandler(svc.Store)
	authHandler := NewAuthHandler(svc.Auth)
	problemsHandler := NewProblemsHandler(svc.Problems)
	orgHandler := NewOrganizationHandler(svc.Organizations, svc.Problems)
	adminHandler := NewAdminHandler(svc.Admin, svc.Problems, svc.Organizations, svc.Audit)

	r.Handle("/metrics", systemHandler.MetricsHandler()).Methods("GET")

	apiR := subrouter(r, "/api")
	apiR.Use(NewRateLimiter(cfg.RateLimitWindow(), cfg.RateLimitMaxRequests).Middleware)

	// Open endpoints
	apiR.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	apiR.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")

	authR := subrouter(apiR, "/auth")
	authR.HandleFunc("/register", authHandler.Register).Methods("POST")
	authR.HandleFunc("/login/organization", authHandler.LoginOrganization).Methods("POST")
	authR.HandleFunc("/login/admin", authHandler.LoginAdmin).Methods("POST")
	authR.HandleFunc("/refresh", authHandler.Refresh).Methods("POST")
	authR.Handle("/me", authn.RequireAuth(http.HandlerFunc(authHandler.Me))).Methods("GET")
	authR.Handle("/logout", authn.RequireAuth(http.HandlerFunc(authHandler.Logout))).Methods("POST")

	problemsR := subrouter(apiR, "/problems")
	problemsR.Use(authn.OptionalAuth)
	problemsR.HandleFunc("", problemsHandler.List).Methods("GET")
	problemsR.HandleFunc("/featured", problemsHandler.Featured).Methods("GET")
	problemsR.HandleFunc("/recent", problemsHandler.Recent).Methods("GET")
	problemsR.HandleFunc("/stats/public", problemsHandler.Stats).Methods("GET")
	problemsR.HandleFunc("/{id}", problemsHandler.Get).Methods("GET")

	orgR := subrouter(apiR, "/org")
	orgR.Use(authn.RequireAuth, authn.RequireRole(models.RoleOrganization))
	orgR.HandleFunc("/dashboard", orgHandler.Dashboard).Methods("GET")
	orgR.HandleFunc("/profile", orgHandler.Profile).Methods("GET")
	orgR.HandleFunc("/profile", orgHandler.UpdateProfile).Methods("PUT")
	orgR.HandleFunc("/problems", orgHandler.ListProblems).Methods("GET")
	orgR.HandleFunc("/problems", orgHandler.CreateProblem).Methods("POST")
	orgR.HandleFunc("/problems/{id}", orgHandler.GetProblem).Methods("GET")
	orgR.HandleFunc("/problems/{id}", orgHandler.UpdateProblem).Methods("PUT")
	orgR.HandleFunc("/problems/{id}", orgHandler.DeleteProblem).Methods("DELETE")

	adminR := subrouter(apiR, "/admin")
	adminR.Use(authn.RequireAuth, authn.RequireRole(models.RoleAdmin))
	adminR.HandleFunc("/dashboard", adminHandler.Dashboard).Methods("GET")
	adminR.HandleFunc("/problems", adminHandler.ListProblems).Methods("GET")
	adminR.HandleFunc("/problems/pending", adminHandler.PendingProblems).Methods("GET")
	adminR.HandleFunc("/problems/stats", adminHandler.ProblemStats).Methods("GET")
	adminR.HandleFunc("/problems/{id}", adminHandler.GetProblem).Methods("GET")
	adminR.HandleFunc("/problems/{id}/review", adminHandler.ReviewProblem).Methods("POST")
	adminR.HandleFunc("/problems/{id}/feature", adminHandler.FeatureProblem).Methods("POST")
	adminR.HandleFunc("/organizations", adminHandler.ListOrganizations).Methods("GET")
	adminR.HandleFunc("/organizations/stats", adminHandler.OrganizationStats).Methods("GET")
	adminR.HandleFunc("/organizations/{id}", adminHandler.GetOrganization).Methods("GET")
	adminR.HandleFunc("/organizations/{id}/verify", adminHandler.VerifyOrganization).Methods("POST")
	adminR.HandleFunc("/audit", adminHandler.AuditLogs).Methods("GET")
	adminR.HandleFunc("/audit/{targetType}/{id}", adminHandler.AuditTrail).Methods("GET")
	adminR.HandleFunc("/activity", adminHandler.RecentActivity).Methods("GET")

	// Outermost first.
	var h http.Handler = r
	h = BodyLimitMiddleware(h)
	h = CompressionMiddleware(h)
	h = CORSMiddleware(cfg.CORSOrigins)(h)
	h = MetricsMiddleware(h)
	h = LoggingMiddleware(h)
	h = RecoveryMiddleware(h)
	h = RequestIDMiddleware(h)
	if cfg.TrustProxy {
		h = handlers.ProxyHeaders(h)
	}
	return h
}
