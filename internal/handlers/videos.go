package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/relationship"
)

const maxVideoUploadBytes = 256 << 20

// VideoHandler provides endpoints for publishing and fetching videos.
type VideoHandler struct {
	Videos   ContentStore
	Storage  ImageStorage
	Ingestor AssetIngestor
	NowFunc  func() time.Time
}

// Publish handles POST /api/v1/videos. The video payload is accepted
// immediately and persisted by the background ingestor; the record starts in
// the pending state.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
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

	if err := r.ParseMultipartForm(maxVideoUploadBytes); err != nil {
		logger.Warn("invalid video upload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	description := strings.TrimSpace(r.FormValue("description"))

	file, header, err := r.FormFile("video")
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "video file is required"})
		return
	}
	defer file.Close()

	payload, err := io.ReadAll(io.LimitReader(file, maxVideoUploadBytes))
	if err != nil {
		logger.Error("read video payload failed", "error", err)
		respondError(ctx, w, err)
		return
	}

	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     account.ID,
		Title:       title,
		Description: description,
		AssetStatus: models.AssetStatusPending,
		CreatedAt:   h.now(),
	}

	if thumb, thumbHeader, err := r.FormFile("thumbnail"); err == nil {
		key := fmt.Sprintf("thumbnails/%s%s", video.ID, path.Ext(thumbHeader.Filename))
		url, saveErr := h.Storage.Save(ctx, key, thumb)
		thumb.Close()
		if saveErr != nil {
			logger.Error("thumbnail upload failed", "videoId", video.ID, "error", saveErr)
			respondError(ctx, w, saveErr)
			return
		}
		video.ThumbnailURL = url
	}

	if err := h.Videos.CreateVideo(ctx, video); err != nil {
		logger.Error("create video failed", "videoId", video.ID, "error", err)
		respondError(ctx, w, err)
		return
	}

	if err := h.Ingestor.Enqueue(ctx, video.ID, header.Filename, payload); err != nil {
		logger.Error("enqueue video asset failed", "videoId", video.ID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusAccepted, video)
}

// Get handles GET /api/v1/videos/{id}. Fetching a video counts a view.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)
	videoID := r.PathValue("id")

	video, err := h.Videos.FindVideo(ctx, videoID)
	if err != nil {
		logger.Warn("video lookup failed", "videoId", videoID, "error", err)
		respondError(ctx, w, err)
		return
	}

	if err := h.Videos.AddView(ctx, videoID); err != nil {
		// A lost view increment never fails the read.
		logger.Warn("view increment failed", "videoId", videoID, "error", err)
	} else {
		video.Views++
	}

	respondJSON(ctx, w, http.StatusOK, video)
}

// List handles GET /api/v1/videos. An ownerId query parameter lists another
// channel's videos; without it the caller's own videos are listed.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
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

	videos, err := h.Videos.ListVideosByOwner(ctx, ownerID)
	if err != nil {
		logging.FromContext(ctx).Error("list videos failed", "ownerId", ownerID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"videos": videos})
}

// Delete handles DELETE /api/v1/videos/{id}. Only the owner may delete.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	videoID := r.PathValue("id")
	if err := requireOwner(ctx, h.Videos, account.ID, videoID, relationship.KindVideo); err != nil {
		logger.Warn("video delete rejected", "videoId", videoID, "accountId", account.ID, "error", err)
		respondError(ctx, w, err)
		return
	}

	if err := h.Videos.DeleteVideo(ctx, videoID); err != nil {
		logger.Error("video delete failed", "videoId", videoID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
