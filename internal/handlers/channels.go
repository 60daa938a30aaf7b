package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/repositories"
)

const maxImageUploadBytes = 10 << 20

// ChannelHandler serves public channel profiles, the owner dashboard, and
// channel branding uploads.
type ChannelHandler struct {
	Accounts AccountStore
	Stats    StatsProvider
	Storage  ImageStorage
}

// Profile handles GET /api/v1/channels/{username}. Works for anonymous
// viewers; when a session is present the response includes whether the viewer
// subscribes to the channel.
func (h ChannelHandler) Profile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	username := strings.TrimSpace(strings.ToLower(r.PathValue("username")))
	if username == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "username is required"})
		return
	}

	account, err := h.Accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "channel not found"})
			return
		}
		logger.Error("channel lookup failed", "username", username, "error", err)
		respondError(ctx, w, err)
		return
	}

	viewerID := ""
	if viewer, ok := middleware.AccountFrom(ctx); ok {
		viewerID = viewer.ID
	}

	profile, err := h.Stats.ChannelProfile(ctx, account, viewerID)
	if err != nil {
		logger.Error("channel profile failed", "username", username, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, profile)
}

// Dashboard handles GET /api/v1/channels/dashboard, returning the caller's
// aggregate channel counters.
func (h ChannelHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
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

	stats, err := h.Stats.ChannelStats(ctx, account.ID)
	if err != nil {
		logging.FromContext(ctx).Error("channel stats failed", "accountId", account.ID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, stats)
}

// UpdateAvatar handles PATCH /api/v1/channels/avatar with a multipart form
// carrying an "avatar" file.
func (h ChannelHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.Accounts.UpdateAvatar)
}

// UpdateCoverImage handles PATCH /api/v1/channels/cover with a multipart form
// carrying a "cover" file.
func (h ChannelHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "cover", h.Accounts.UpdateCoverImage)
}

func (h ChannelHandler) updateImage(w http.ResponseWriter, r *http.Request, field string, update func(ctx context.Context, id, url string) error) {
	if r.Method != http.MethodPatch {
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

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		logger.Warn("invalid image upload", "field", field, "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("%s file is required", field)})
		return
	}
	defer file.Close()

	key := fmt.Sprintf("%ss/%s%s", field, account.ID, path.Ext(header.Filename))
	url, err := h.Storage.Save(ctx, key, file)
	if err != nil {
		logger.Error("image upload failed", "field", field, "accountId", account.ID, "error", err)
		respondError(ctx, w, err)
		return
	}

	if err := update(ctx, account.ID, url); err != nil {
		logger.Error("image url update failed", "field", field, "accountId", account.ID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"url": url})
}
