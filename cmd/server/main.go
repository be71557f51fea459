package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/garnizeh/problemhub/api"
	dbfs "github.com/garnizeh/problemhub/db"
	"github.com/garnizeh/problemhub/internal/config"
	"github.com/garnizeh/problemhub/internal/db"
	"github.com/garnizeh/problemhub/internal/jobs"
	"github.com/garnizeh/problemhub/internal/logging"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.IsProduction())
	slog.SetDefault(logger)
	api.SetLogger(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", slog.Any("err", err))
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting problemhub", slog.String("version", version), slog.String("build_time", buildTime), slog.String("env", cfg.Env))

	ctx := context.Background()

	database, err := db.New(ctx, cfg.DatabaseURI, logger, db.WithMaxOpenConns(cfg.DBMaxOpenConns))
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("close database", slog.Any("err", err))
		}
	}()
	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		return err
	}

	svc := api.NewServices(cfg, database, logger)

	scheduler := jobs.NewScheduler(logger, 30*time.Second)
	warm := jobs.WarmPublicStats(svc.Problems, logger)
	if err := scheduler.RunNow(jobs.StatsWarmJob, warm); err != nil {
		logger.Warn("initial stats warm-up failed", slog.Any("err", err))
	}
	if err := scheduler.Add(jobs.StatsWarmJob, cfg.StatsWarmSchedule, warm); err != nil {
		return err
	}
	scheduler.Start()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.SetupRoutes(cfg, version, buildTime, svc),
		ReadTimeout:  cfg.ReadTimeout.Std(),
		WriteTimeout: cfg.WriteTimeout.Std(),
		IdleTimeout:  cfg.IdleTimeout.Std(),
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	case err := <-errc:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout.Std())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("err", err))
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Error("scheduler did not stop cleanly", slog.Any("err", err))
	}
	logger.Info("server exited")
	return nil
}
