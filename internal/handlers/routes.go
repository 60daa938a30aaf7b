package handlers

import (
	"net/http"
	"time"

	"github.com/vidtube/backend/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Accounts AccountStore
	Sessions SessionManager
	Verifier middleware.AccessVerifier
	Content  ContentStore
	Toggles  Toggler
	Stats    StatsProvider
	Storage  ImageStorage
	Ingestor AssetIngestor
	Limiter  RateLimiter
	NowFunc  func() time.Time
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Accounts: deps.Accounts, Sessions: deps.Sessions, Limiter: deps.Limiter, NowFunc: deps.NowFunc}
	channels := ChannelHandler{Accounts: deps.Accounts, Stats: deps.Stats, Storage: deps.Storage}
	likes := LikeHandler{Toggles: deps.Toggles, Stats: deps.Stats}
	subs := SubscriptionHandler{Toggles: deps.Toggles, Stats: deps.Stats}
	videos := VideoHandler{Videos: deps.Content, Storage: deps.Storage, Ingestor: deps.Ingestor, NowFunc: deps.NowFunc}
	tweets := TweetHandler{Tweets: deps.Content, NowFunc: deps.NowFunc}
	comments := CommentHandler{Comments: deps.Content, NowFunc: deps.NowFunc}

	session := middleware.RequireSession(deps.Verifier, deps.Accounts)
	viewer := middleware.OptionalSession(deps.Verifier, deps.Accounts)

	mux.HandleFunc("/healthz", health.Handle)

	mux.HandleFunc("POST /api/v1/auth/register", auth.Register)
	mux.HandleFunc("POST /api/v1/auth/login", auth.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", auth.Refresh)
	mux.Handle("POST /api/v1/auth/logout", session(http.HandlerFunc(auth.Logout)))
	mux.Handle("GET /api/v1/auth/me", session(http.HandlerFunc(auth.Me)))
	mux.Handle("POST /api/v1/auth/password", session(http.HandlerFunc(auth.ChangePassword)))
	mux.Handle("PATCH /api/v1/accounts", session(http.HandlerFunc(auth.UpdateDetails)))

	mux.Handle("GET /api/v1/channels/dashboard", session(http.HandlerFunc(channels.Dashboard)))
	mux.Handle("GET /api/v1/channels/{username}", viewer(http.HandlerFunc(channels.Profile)))
	mux.Handle("PATCH /api/v1/channels/avatar", session(http.HandlerFunc(channels.UpdateAvatar)))
	mux.Handle("PATCH /api/v1/channels/cover", session(http.HandlerFunc(channels.UpdateCoverImage)))

	mux.Handle("POST /api/v1/likes/video/{id}", session(http.HandlerFunc(likes.ToggleVideo)))
	mux.Handle("POST /api/v1/likes/comment/{id}", session(http.HandlerFunc(likes.ToggleComment)))
	mux.Handle("POST /api/v1/likes/tweet/{id}", session(http.HandlerFunc(likes.ToggleTweet)))
	mux.Handle("GET /api/v1/likes/videos", session(http.HandlerFunc(likes.LikedVideos)))

	mux.Handle("POST /api/v1/subscriptions/{channelId}", session(http.HandlerFunc(subs.Toggle)))
	mux.HandleFunc("GET /api/v1/subscriptions/{channelId}/subscribers", subs.Subscribers)
	mux.Handle("GET /api/v1/subscriptions", session(http.HandlerFunc(subs.Subscribed)))

	mux.Handle("POST /api/v1/videos", session(http.HandlerFunc(videos.Publish)))
	mux.Handle("GET /api/v1/videos", viewer(http.HandlerFunc(videos.List)))
	mux.HandleFunc("GET /api/v1/videos/{id}", videos.Get)
	mux.Handle("DELETE /api/v1/videos/{id}", session(http.HandlerFunc(videos.Delete)))

	mux.Handle("POST /api/v1/tweets", session(http.HandlerFunc(tweets.Create)))
	mux.Handle("GET /api/v1/tweets", viewer(http.HandlerFunc(tweets.List)))
	mux.Handle("DELETE /api/v1/tweets/{id}", session(http.HandlerFunc(tweets.Delete)))

	mux.Handle("POST /api/v1/videos/{id}/comments", session(http.HandlerFunc(comments.Create)))
	mux.HandleFunc("GET /api/v1/videos/{id}/comments", comments.List)
	mux.Handle("DELETE /api/v1/comments/{id}", session(http.HandlerFunc(comments.Delete)))
}
