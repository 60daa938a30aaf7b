package models

import "time"

// Account represents a registered user, which doubles as a channel.
type Account struct {
	ID                 string
	Username           string
	Email              string
	FullName           string
	AvatarURL          string
	CoverImageURL      string
	PasswordHash       string
	RefreshFingerprint string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Public strips credential material so the account can be attached to a
// request or serialized into a response.
func (a Account) Public() PublicAccount {
	return PublicAccount{
		ID:            a.ID,
		Username:      a.Username,
		Email:         a.Email,
		FullName:      a.FullName,
		AvatarURL:     a.AvatarURL,
		CoverImageURL: a.CoverImageURL,
		CreatedAt:     a.CreatedAt,
	}
}

// PublicAccount is the projection of an account safe to expose to callers.
type PublicAccount struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatarUrl"`
	CoverImageURL string    `json:"coverImageUrl"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Video is a published video owned by an account.
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	AssetURL     string    `json:"assetUrl"`
	AssetStatus  string    `json:"assetStatus"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	Views        int64     `json:"views"`
	CreatedAt    time.Time `json:"createdAt"`
}

const (
	AssetStatusPending = "pending"
	AssetStatusReady   = "ready"
	AssetStatusFailed  = "failed"
)

// Tweet is a short text post owned by an account.
type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is a reply attached to a video.
type Comment struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	VideoID   string    `json:"videoId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionTokens groups the bearer credentials issued to authenticated accounts.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// ChannelStats aggregates display-only counters for an account's channel.
// Each field is read independently; the struct is not a snapshot of a
// single instant.
type ChannelStats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalVideoLikes  int64 `json:"totalVideoLikes"`
	TotalTweetLikes  int64 `json:"totalTweetLikes"`
}

// ChannelProfile is the public channel page for an account.
type ChannelProfile struct {
	PublicAccount
	SubscriberCount int64 `json:"subscriberCount"`
	SubscribedTo    int64 `json:"subscribedToCount"`
	IsSubscribed    bool  `json:"isSubscribed"`
}
