package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/relationship"
)

type fakeStore struct {
	ownedVideos int64
	ownedViews  int64
	subscribers int64
	videoLikes  int64
	tweetLikes  int64
	subscribed  int64
	viewerSubs  map[string]bool
	err         error
}

func (f fakeStore) CountOwnedVideos(context.Context, string) (int64, error) {
	return f.ownedVideos, f.err
}

func (f fakeStore) SumOwnedVideoViews(context.Context, string) (int64, error) {
	return f.ownedViews, f.err
}

func (f fakeStore) CountEdgesToTarget(_ context.Context, _ string, kind relationship.TargetKind) (int64, error) {
	if kind != relationship.KindChannel {
		return 0, errors.New("unexpected kind")
	}
	return f.subscribers, f.err
}

func (f fakeStore) CountEdgesToOwnedContent(_ context.Context, _ string, kind relationship.TargetKind) (int64, error) {
	switch kind {
	case relationship.KindVideo:
		return f.videoLikes, f.err
	case relationship.KindTweet:
		return f.tweetLikes, f.err
	default:
		return 0, errors.New("unexpected kind")
	}
}

func (f fakeStore) CountEdgesFromActor(context.Context, string, relationship.TargetKind) (int64, error) {
	return f.subscribed, f.err
}

func (f fakeStore) EdgeExists(_ context.Context, actorID, _ string, _ relationship.TargetKind) (bool, error) {
	return f.viewerSubs[actorID], f.err
}

func (f fakeStore) ListSubscribers(context.Context, string) ([]models.PublicAccount, error) {
	return []models.PublicAccount{{Username: "alice"}}, f.err
}

func (f fakeStore) ListSubscribedChannels(context.Context, string) ([]models.PublicAccount, error) {
	return nil, f.err
}

func (f fakeStore) ListLikedVideos(context.Context, string) ([]models.Video, error) {
	return nil, f.err
}

func TestReaderChannelStats(t *testing.T) {
	reader := NewReader(fakeStore{
		ownedVideos: 3,
		ownedViews:  1200,
		subscribers: 42,
		videoLikes:  17,
		tweetLikes:  5,
	})

	stats, err := reader.ChannelStats(context.Background(), "account-1")
	if err != nil {
		t.Fatalf("channel stats: %v", err)
	}

	want := models.ChannelStats{
		TotalVideos:      3,
		TotalViews:       1200,
		TotalSubscribers: 42,
		TotalVideoLikes:  17,
		TotalTweetLikes:  5,
	}
	if stats != want {
		t.Fatalf("expected %+v got %+v", want, stats)
	}
}

func TestReaderChannelStatsPropagatesErrors(t *testing.T) {
	storeErr := errors.New("store down")
	reader := NewReader(fakeStore{err: storeErr})

	if _, err := reader.ChannelStats(context.Background(), "account-1"); !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestReaderChannelProfile(t *testing.T) {
	account := models.Account{
		ID:           "channel-1",
		Username:     "creator",
		PasswordHash: "must-not-leak",
		CreatedAt:    time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	}

	reader := NewReader(fakeStore{
		subscribers: 10,
		subscribed:  2,
		viewerSubs:  map[string]bool{"viewer-1": true},
	})

	profile, err := reader.ChannelProfile(context.Background(), account, "viewer-1")
	if err != nil {
		t.Fatalf("channel profile: %v", err)
	}
	if profile.SubscriberCount != 10 || profile.SubscribedTo != 2 {
		t.Fatalf("unexpected counts: %+v", profile)
	}
	if !profile.IsSubscribed {
		t.Fatal("expected viewer to be marked as subscribed")
	}

	anonymous, err := reader.ChannelProfile(context.Background(), account, "")
	if err != nil {
		t.Fatalf("anonymous profile: %v", err)
	}
	if anonymous.IsSubscribed {
		t.Fatal("anonymous viewers are never subscribed")
	}
}
