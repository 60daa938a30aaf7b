package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/relationship"
)

// LikeHandler flips like edges for videos, comments, and tweets.
type LikeHandler struct {
	Toggles Toggler
	Stats   StatsProvider
}

// ToggleVideo handles POST /api/v1/likes/video/{id}.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, relationship.KindVideo)
}

// ToggleComment handles POST /api/v1/likes/comment/{id}.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, relationship.KindComment)
}

// ToggleTweet handles POST /api/v1/likes/tweet/{id}.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, relationship.KindTweet)
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, kind relationship.TargetKind) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	account, ok := middleware.AccountFrom(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	targetID := r.PathValue("id")
	result, err := h.Toggles.Toggle(ctx, account.ID, targetID, kind)
	if err != nil {
		logging.FromContext(ctx).Warn("toggle like failed", "kind", kind, "targetId", targetID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, toggleResponse{Liked: result.State == relationship.StateCreated})
}

// LikedVideos handles GET /api/v1/likes/videos, listing the caller's liked
// videos, most recent like first.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	account, ok := middleware.AccountFrom(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	videos, err := h.Stats.LikedVideos(ctx, account.ID)
	if err != nil {
		logging.FromContext(ctx).Error("list liked videos failed", "accountId", account.ID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"videos": videos})
}

type toggleResponse struct {
	Liked bool `json:"liked"`
}
