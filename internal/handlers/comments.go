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

// CommentHandler provides endpoints for video comments.
type CommentHandler struct {
	Comments ContentStore
	NowFunc  func() time.Time
}

// Create handles POST /api/v1/videos/{id}/comments.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	videoID := r.PathValue("id")
	if _, err := h.Comments.FindVideo(ctx, videoID); err != nil {
		logger.Warn("comment target lookup failed", "videoId", videoID, "error", err)
		respondError(ctx, w, err)
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid comment payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "content is required"})
		return
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		OwnerID:   account.ID,
		VideoID:   videoID,
		Content:   req.Content,
		CreatedAt: h.now(),
	}

	if err := h.Comments.CreateComment(ctx, comment); err != nil {
		logger.Error("create comment failed", "videoId", videoID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusCreated, comment)
}

// List handles GET /api/v1/videos/{id}/comments.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	videoID := r.PathValue("id")

	comments, err := h.Comments.ListCommentsByVideo(ctx, videoID)
	if err != nil {
		logging.FromContext(ctx).Error("list comments failed", "videoId", videoID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"comments": comments})
}

// Delete handles DELETE /api/v1/comments/{id}. Only the owner may delete.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	commentID := r.PathValue("id")
	if err := requireOwner(ctx, h.Comments, account.ID, commentID, relationship.KindComment); err != nil {
		logger.Warn("comment delete rejected", "commentId", commentID, "accountId", account.ID, "error", err)
		respondError(ctx, w, err)
		return
	}

	if err := h.Comments.DeleteComment(ctx, commentID); err != nil {
		logger.Error("comment delete failed", "commentId", commentID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

type commentRequest struct {
	Content string `json:"content"`
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
