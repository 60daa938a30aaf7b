package handlers

import (
	"context"
	"io"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/relationship"
)

// AccountStore captures the persistence operations required by the auth and
// channel handlers.
type AccountStore interface {
	Create(ctx context.Context, account models.Account) error
	FindByID(ctx context.Context, id string) (models.Account, error)
	FindByIdentifier(ctx context.Context, emailOrUsername string) (models.Account, error)
	FindByUsername(ctx context.Context, username string) (models.Account, error)
	UpdateDetails(ctx context.Context, id, fullName, email string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateAvatar(ctx context.Context, id, url string) error
	UpdateCoverImage(ctx context.Context, id, url string) error
}

// SessionManager issues, rotates, and revokes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, accountID string) (models.SessionTokens, error)
	Rotate(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, accountID string) error
}

// Toggler flips a relationship edge between present and absent.
type Toggler interface {
	Toggle(ctx context.Context, actorID, targetID string, kind relationship.TargetKind) (relationship.ToggleResult, error)
}

// StatsProvider serves derived counters and relationship-backed listings.
type StatsProvider interface {
	ChannelStats(ctx context.Context, accountID string) (models.ChannelStats, error)
	ChannelProfile(ctx context.Context, account models.Account, viewerID string) (models.ChannelProfile, error)
	Subscribers(ctx context.Context, channelID string) ([]models.PublicAccount, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]models.PublicAccount, error)
	LikedVideos(ctx context.Context, actorID string) ([]models.Video, error)
}

// ContentStore captures persistence for videos, tweets, and comments.
type ContentStore interface {
	CreateVideo(ctx context.Context, video models.Video) error
	FindVideo(ctx context.Context, id string) (models.Video, error)
	ListVideosByOwner(ctx context.Context, ownerID string) ([]models.Video, error)
	DeleteVideo(ctx context.Context, id string) error
	AddView(ctx context.Context, videoID string) error

	CreateTweet(ctx context.Context, tweet models.Tweet) error
	ListTweetsByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
	DeleteTweet(ctx context.Context, id string) error

	CreateComment(ctx context.Context, comment models.Comment) error
	ListCommentsByVideo(ctx context.Context, videoID string) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id string) error

	OwnerOf(ctx context.Context, targetID string, kind relationship.TargetKind) (string, error)
}

// ImageStorage persists uploaded images and returns their public location.
type ImageStorage interface {
	Save(ctx context.Context, key string, r io.Reader) (string, error)
}

// AssetIngestor schedules background persistence of uploaded video payloads.
type AssetIngestor interface {
	Enqueue(ctx context.Context, videoID, filename string, payload []byte) error
}
