package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/relationship"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/stats"
	"github.com/vidtube/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned cleanup drains background workers and must be called
// before the process exits.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, func(context.Context) error, error) {
	accounts := repositories.NewPostgresAccountRepository(pool)
	content := repositories.NewPostgresContentRepository(pool)
	edges := repositories.NewPostgresEdgeStore(pool)

	sessions := auth.NewTokenService(
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
		accounts,
	)

	s3, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, nil, fmt.Errorf("configure object storage: %w", err)
	}

	ingestor := media.NewAssetIngestor(s3, content, media.AssetIngestorConfig{
		QueueSize: cfg.Ingest.QueueSize,
		Workers:   cfg.Ingest.Workers,
	}, slog.Default())

	limiter := middleware.NewIPRateLimiter(
		cfg.AuthRateLimit.Requests,
		cfg.AuthRateLimit.Window,
		cfg.AuthRateLimit.Burst,
		cfg.AuthRateLimit.TTL,
	)

	deps := handlers.Dependencies{
		Accounts: accounts,
		Sessions: sessions,
		Verifier: sessions,
		Content:  content,
		Toggles:  relationship.NewEngine(edges, content),
		Stats:    stats.NewReader(repositories.NewPostgresStatsRepository(pool)),
		Storage:  s3,
		Ingestor: ingestor,
		Limiter:  limiter,
	}

	cleanup := func(ctx context.Context) error {
		return ingestor.Shutdown(ctx)
	}

	return deps, cleanup, nil
}
