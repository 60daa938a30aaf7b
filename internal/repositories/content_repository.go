package repositories

import (
	"context"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/relationship"
)

// ContentRepository defines data access for videos, tweets, and comments,
// plus the cross-kind lookups the toggle engine and ownership checks need.
type ContentRepository interface {
	CreateVideo(ctx context.Context, video models.Video) error
	FindVideo(ctx context.Context, id string) (models.Video, error)
	ListVideosByOwner(ctx context.Context, ownerID string) ([]models.Video, error)
	DeleteVideo(ctx context.Context, id string) error
	AddView(ctx context.Context, videoID string) error
	MarkAssetReady(ctx context.Context, videoID, assetURL string) error
	MarkAssetFailed(ctx context.Context, videoID string) error

	CreateTweet(ctx context.Context, tweet models.Tweet) error
	ListTweetsByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
	DeleteTweet(ctx context.Context, id string) error

	CreateComment(ctx context.Context, comment models.Comment) error
	ListCommentsByVideo(ctx context.Context, videoID string) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id string) error

	// TargetExists resolves toggle targets across kinds; channel targets are
	// accounts.
	TargetExists(ctx context.Context, targetID string, kind relationship.TargetKind) (bool, error)
	// OwnerOf returns the owning account for a content record, backing the
	// uniform caller-is-owner check on mutating operations.
	OwnerOf(ctx context.Context, targetID string, kind relationship.TargetKind) (string, error)
}
