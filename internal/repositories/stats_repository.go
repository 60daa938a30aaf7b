package repositories

import (
	"context"
	"fmt"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/relationship"
	"github.com/vidtube/backend/internal/stats"
)

// PostgresStatsRepository serves the aggregation reader with count, sum, and
// join queries over accounts, content, and edges. Every method is an
// independent read; no cross-query transaction is taken.
type PostgresStatsRepository struct {
	pool db.Pool
}

// NewPostgresStatsRepository constructs a stats repository backed by PostgreSQL.
func NewPostgresStatsRepository(pool db.Pool) *PostgresStatsRepository {
	return &PostgresStatsRepository{pool: pool}
}

// CountOwnedVideos counts the videos owned by the account.
func (r *PostgresStatsRepository) CountOwnedVideos(ctx context.Context, ownerID string) (int64, error) {
	return r.queryCount(ctx, `
        SELECT COUNT(*) FROM videos WHERE owner_id = $1
    `, "count owned videos", ownerID)
}

// SumOwnedVideoViews sums the view counters across the account's videos.
func (r *PostgresStatsRepository) SumOwnedVideoViews(ctx context.Context, ownerID string) (int64, error) {
	return r.queryCount(ctx, `
        SELECT COALESCE(SUM(views), 0) FROM videos WHERE owner_id = $1
    `, "sum owned video views", ownerID)
}

// CountEdgesToTarget counts edges pointing directly at the target.
func (r *PostgresStatsRepository) CountEdgesToTarget(ctx context.Context, targetID string, kind relationship.TargetKind) (int64, error) {
	return r.queryCount(ctx, `
        SELECT COUNT(*) FROM edges WHERE target_id = $1 AND target_kind = $2
    `, "count edges to target", targetID, string(kind))
}

// CountEdgesToOwnedContent counts edges whose target is content owned by the
// account, e.g. likes received across all of a channel's videos.
func (r *PostgresStatsRepository) CountEdgesToOwnedContent(ctx context.Context, ownerID string, kind relationship.TargetKind) (int64, error) {
	table, ok := map[relationship.TargetKind]string{
		relationship.KindVideo:   "videos",
		relationship.KindComment: "comments",
		relationship.KindTweet:   "tweets",
	}[kind]
	if !ok {
		return 0, fmt.Errorf("kind %q has no owned content", kind)
	}

	return r.queryCount(ctx, `
        SELECT COUNT(*)
        FROM edges e
        JOIN `+table+` c ON c.id = e.target_id
        WHERE e.target_kind = $2 AND c.owner_id = $1
    `, "count edges to owned content", ownerID, string(kind))
}

// CountEdgesFromActor counts edges originating from the actor.
func (r *PostgresStatsRepository) CountEdgesFromActor(ctx context.Context, actorID string, kind relationship.TargetKind) (int64, error) {
	return r.queryCount(ctx, `
        SELECT COUNT(*) FROM edges WHERE actor_id = $1 AND target_kind = $2
    `, "count edges from actor", actorID, string(kind))
}

// EdgeExists reports whether a single edge is present.
func (r *PostgresStatsRepository) EdgeExists(ctx context.Context, actorID, targetID string, kind relationship.TargetKind) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	var exists bool
	err = conn.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM edges
            WHERE actor_id = $1 AND target_id = $2 AND target_kind = $3
        )
    `, actorID, targetID, string(kind)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check edge exists: %w", mapTimeout(err))
	}

	return exists, nil
}

// ListSubscribers returns the accounts with a channel edge pointing at the channel.
func (r *PostgresStatsRepository) ListSubscribers(ctx context.Context, channelID string) ([]models.PublicAccount, error) {
	return r.queryAccounts(ctx, `
        SELECT a.id, a.username, a.email, a.full_name, a.avatar_url, a.cover_image_url, a.created_at
        FROM accounts a
        JOIN edges e ON e.actor_id = a.id
        WHERE e.target_id = $1 AND e.target_kind = $2
        ORDER BY e.created_at DESC
    `, "query subscribers", channelID, string(relationship.KindChannel))
}

// ListSubscribedChannels returns the accounts the subscriber has a channel edge to.
func (r *PostgresStatsRepository) ListSubscribedChannels(ctx context.Context, subscriberID string) ([]models.PublicAccount, error) {
	return r.queryAccounts(ctx, `
        SELECT a.id, a.username, a.email, a.full_name, a.avatar_url, a.cover_image_url, a.created_at
        FROM accounts a
        JOIN edges e ON e.target_id = a.id
        WHERE e.actor_id = $1 AND e.target_kind = $2
        ORDER BY e.created_at DESC
    `, "query subscribed channels", subscriberID, string(relationship.KindChannel))
}

// ListLikedVideos returns the videos the actor currently has a like edge to.
func (r *PostgresStatsRepository) ListLikedVideos(ctx context.Context, actorID string) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.owner_id, v.title, v.description, v.asset_url, v.asset_status, v.thumbnail_url, v.views, v.created_at
        FROM videos v
        JOIN edges e ON e.target_id = v.id
        WHERE e.actor_id = $1 AND e.target_kind = $2
        ORDER BY e.created_at DESC
    `, actorID, string(relationship.KindVideo))
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", mapTimeout(err))
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var video models.Video
		if err := rows.Scan(&video.ID, &video.OwnerID, &video.Title, &video.Description, &video.AssetURL, &video.AssetStatus, &video.ThumbnailURL, &video.Views, &video.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan liked video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liked videos: %w", mapTimeout(err))
	}

	return videos, nil
}

func (r *PostgresStatsRepository) queryCount(ctx context.Context, query, op string, args ...any) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	var count int64
	if err := conn.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapTimeout(err))
	}

	return count, nil
}

func (r *PostgresStatsRepository) queryAccounts(ctx context.Context, query, op string, args ...any) ([]models.PublicAccount, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", mapTimeout(err))
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapTimeout(err))
	}
	defer rows.Close()

	var accounts []models.PublicAccount
	for rows.Next() {
		var account models.PublicAccount
		if err := rows.Scan(&account.ID, &account.Username, &account.Email, &account.FullName, &account.AvatarURL, &account.CoverImageURL, &account.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapTimeout(err))
	}

	return accounts, nil
}

var _ stats.Store = (*PostgresStatsRepository)(nil)
