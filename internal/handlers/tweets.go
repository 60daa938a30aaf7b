package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/relationship"
)

const maxTweetLength = 280

// TweetHandler provides endpoints for short text posts.
type TweetHandler struct {
	Tweets  ContentStore
	NowFunc func() time.Time
}

// Create handles POST /api/v1/tweets.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	account, ok := middleware.AccountFrom(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid tweet payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "content is required"})
		return
	}
	if len(req.Content) > maxTweetLength {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "content exceeds 280 characters"})
		return
	}

	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   account.ID,
		Content:   req.Content,
		CreatedAt: h.now(),
	}

	if err := h.Tweets.CreateTweet(ctx, tweet); err != nil {
		logger.Error("create tweet failed", "accountId", account.ID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, tweet)
}

// List handles GET /api/v1/tweets. An ownerId query parameter lists another
// account's tweets; without it the caller's own tweets are listed.
func (h TweetHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	ownerID := strings.TrimSpace(r.URL.Query().Get("ownerId"))
	if ownerID == "" {
		account, ok := middleware.AccountFrom(ctx)
		if !ok {
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		ownerID = account.ID
	}

	tweets, err := h.Tweets.ListTweetsByOwner(ctx, ownerID)
	if err != nil {
		logging.FromContext(ctx).Error("list tweets failed", "ownerId", ownerID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"tweets": tweets})
}

// Delete handles DELETE /api/v1/tweets/{id}. Only the owner may delete.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	account, ok := middleware.AccountFrom(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	tweetID := r.PathValue("id")
	if err := requireOwner(ctx, h.Tweets, account.ID, tweetID, relationship.KindTweet); err != nil {
		logger.Warn("tweet delete rejected", "tweetId", tweetID, "accountId", account.ID, "error", err)
		respondError(ctx, w, err)
		return
	}

	if err := h.Tweets.DeleteTweet(ctx, tweetID); err != nil {
		logger.Error("tweet delete failed", "tweetId", tweetID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

type tweetRequest struct {
	Content string `json:"content"`
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
