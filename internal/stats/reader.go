// Package stats computes display-only derived counters from current edge and
// content state. Nothing here is cached or persisted; every call recomputes
// from the store, trading latency for consistency.
package stats

import (
	"context"
	"fmt"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/relationship"
)

// Store captures the aggregate queries the reader composes. Each query is an
// independent read; implementations are not expected to wrap them in a
// transaction.
type Store interface {
	CountOwnedVideos(ctx context.Context, ownerID string) (int64, error)
	SumOwnedVideoViews(ctx context.Context, ownerID string) (int64, error)
	CountEdgesToTarget(ctx context.Context, targetID string, kind relationship.TargetKind) (int64, error)
	CountEdgesToOwnedContent(ctx context.Context, ownerID string, kind relationship.TargetKind) (int64, error)
	CountEdgesFromActor(ctx context.Context, actorID string, kind relationship.TargetKind) (int64, error)
	EdgeExists(ctx context.Context, actorID, targetID string, kind relationship.TargetKind) (bool, error)
	ListSubscribers(ctx context.Context, channelID string) ([]models.PublicAccount, error)
	ListSubscribedChannels(ctx context.Context, subscriberID string) ([]models.PublicAccount, error)
	ListLikedVideos(ctx context.Context, actorID string) ([]models.Video, error)
}

// Reader assembles channel statistics from independently-consistent reads.
// Under concurrent writes the assembled struct is a valid snapshot of no
// single instant, but each component is accurate as of its own read time.
type Reader struct {
	store Store
}

// NewReader constructs an aggregation reader.
func NewReader(store Store) *Reader {
	if store == nil {
		panic("stats: store must not be nil")
	}
	return &Reader{store: store}
}

// ChannelStats folds owned-content and edge counts into the dashboard figures
// for the account's channel.
func (r *Reader) ChannelStats(ctx context.Context, accountID string) (models.ChannelStats, error) {
	var out models.ChannelStats
	var err error

	if out.TotalVideos, err = r.store.CountOwnedVideos(ctx, accountID); err != nil {
		return models.ChannelStats{}, fmt.Errorf("count owned videos: %w", err)
	}
	if out.TotalViews, err = r.store.SumOwnedVideoViews(ctx, accountID); err != nil {
		return models.ChannelStats{}, fmt.Errorf("sum owned video views: %w", err)
	}
	if out.TotalSubscribers, err = r.store.CountEdgesToTarget(ctx, accountID, relationship.KindChannel); err != nil {
		return models.ChannelStats{}, fmt.Errorf("count subscribers: %w", err)
	}
	if out.TotalVideoLikes, err = r.store.CountEdgesToOwnedContent(ctx, accountID, relationship.KindVideo); err != nil {
		return models.ChannelStats{}, fmt.Errorf("count video likes: %w", err)
	}
	if out.TotalTweetLikes, err = r.store.CountEdgesToOwnedContent(ctx, accountID, relationship.KindTweet); err != nil {
		return models.ChannelStats{}, fmt.Errorf("count tweet likes: %w", err)
	}

	return out, nil
}

// ChannelProfile builds the public channel page for an account, including
// whether the viewer currently subscribes. viewerID may be empty for
// anonymous requests.
func (r *Reader) ChannelProfile(ctx context.Context, account models.Account, viewerID string) (models.ChannelProfile, error) {
	profile := models.ChannelProfile{PublicAccount: account.Public()}
	var err error

	if profile.SubscriberCount, err = r.store.CountEdgesToTarget(ctx, account.ID, relationship.KindChannel); err != nil {
		return models.ChannelProfile{}, fmt.Errorf("count subscribers: %w", err)
	}
	if profile.SubscribedTo, err = r.store.CountEdgesFromActor(ctx, account.ID, relationship.KindChannel); err != nil {
		return models.ChannelProfile{}, fmt.Errorf("count subscribed channels: %w", err)
	}

	if viewerID != "" {
		if profile.IsSubscribed, err = r.store.EdgeExists(ctx, viewerID, account.ID, relationship.KindChannel); err != nil {
			return models.ChannelProfile{}, fmt.Errorf("check viewer subscription: %w", err)
		}
	}

	return profile, nil
}

// Subscribers lists the accounts subscribed to the channel.
func (r *Reader) Subscribers(ctx context.Context, channelID string) ([]models.PublicAccount, error) {
	return r.store.ListSubscribers(ctx, channelID)
}

// SubscribedChannels lists the channels the account subscribes to.
func (r *Reader) SubscribedChannels(ctx context.Context, subscriberID string) ([]models.PublicAccount, error) {
	return r.store.ListSubscribedChannels(ctx, subscriberID)
}

// LikedVideos lists the videos the account currently likes.
func (r *Reader) LikedVideos(ctx context.Context, actorID string) ([]models.Video, error) {
	return r.store.ListLikedVideos(ctx, actorID)
}
