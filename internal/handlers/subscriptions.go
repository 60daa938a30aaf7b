package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/relationship"
)

// SubscriptionHandler flips subscription edges and lists both sides of the
// subscription graph.
type SubscriptionHandler struct {
	Toggles Toggler
	Stats   StatsProvider
}

// Toggle handles POST /api/v1/subscriptions/{channelId}.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
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

	channelID := r.PathValue("channelId")
	if channelID == account.ID {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "cannot subscribe to your own channel"})
		return
	}

	result, err := h.Toggles.Toggle(ctx, account.ID, channelID, relationship.KindChannel)
	if err != nil {
		logging.FromContext(ctx).Warn("toggle subscription failed", "channelId", channelID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, subscriptionResponse{Subscribed: result.State == relationship.StateCreated})
}

// Subscribers handles GET /api/v1/subscriptions/{channelId}/subscribers.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	channelID := r.PathValue("channelId")

	subscribers, err := h.Stats.Subscribers(ctx, channelID)
	if err != nil {
		logging.FromContext(ctx).Error("list subscribers failed", "channelId", channelID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"subscribers": subscribers})
}

// Subscribed handles GET /api/v1/subscriptions, listing channels the caller
// subscribes to.
func (h SubscriptionHandler) Subscribed(w http.ResponseWriter, r *http.Request) {
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

	channels, err := h.Stats.SubscribedChannels(ctx, account.ID)
	if err != nil {
		logging.FromContext(ctx).Error("list subscriptions failed", "accountId", account.ID, "error", err)
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{"channels": channels})
}

type subscriptionResponse struct {
	Subscribed bool `json:"subscribed"`
}
