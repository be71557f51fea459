package jobs

import (
	"context"
	"log/slog"

	"github.com/garnizeh/problemhub/internal/models"
)

const StatsWarmJob = "warm-public-stats"

// StatsRefresher recomputes and caches the public statistics.
type StatsRefresher interface {
	RefreshPublicStats(ctx context.Context) (*models.PublicStats, error)
}

// WarmPublicStats keeps the public statistics cache populated so the
// unauthenticated stats endpoint rarely touches the database.
func WarmPublicStats(r StatsRefresher, logger *slog.Logger) Func {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context) error {
		st, err := r.RefreshPublicStats(ctx)
		if err != nil {
			return err
		}
		logger.Debug("public stats warmed",
			slog.Int64("problems", st.TotalProblems),
			slog.Int64("organizations", st.TotalOrganizations))
		return nil
	}
}
