package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dukerupert/streek/internal/catalog"
	"github.com/dukerupert/streek/internal/model"
	"github.com/dukerupert/streek/internal/rewards"
	"github.com/dukerupert/streek/internal/websocket"
)

type RewardHandler struct {
	ledger  *rewards.Ledger
	points  rewards.PointsProvider
	catalog catalog.Provider
	broadcaster
	logger *slog.Logger
}

func NewRewardHandler(l *rewards.Ledger, p rewards.PointsProvider, c catalog.Provider, hub *websocket.Hub, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{ledger: l, points: p, catalog: c, broadcaster: broadcaster{hub}, logger: logger}
}

// List handles GET /api/rewards
func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.ledger.List(r.Context())
	if err != nil {
		h.logger.Error("list rewards", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list rewards")
		return
	}
	if list == nil {
		list = []model.Reward{}
	}
	writeJSON(w, http.StatusOK, list)
}

// Points handles GET /api/points?range=<label>
func (h *RewardHandler) Points(w http.ResponseWriter, r *http.Request) {
	label := r.URL.Query().Get("range")
	if label == "" {
		label = h.catalog.DefaultRange().Label
	}

	points, err := h.points.PointsForRange(r.Context(), label)
	if errors.Is(err, catalog.ErrUnknownRange) {
		writeError(w, http.StatusBadRequest, "unknown date range")
		return
	}
	if err != nil {
		h.logger.Error("points for range", "range", label, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute points")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"range": label, "points": points})
}

type claimRequest struct {
	Balance *int `json:"balance"`
}

// Claim handles POST /api/rewards/{id}/claim. An unaffordable or already
// claimed reward returns 200 with applied=false.
func (h *RewardHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Balance == nil || *req.Balance < 0 {
		writeError(w, http.StatusBadRequest, "balance must be a non-negative number")
		return
	}

	id := chi.URLParam(r, "id")
	result, err := h.ledger.ClaimReward(r.Context(), id, *req.Balance)
	if errors.Is(err, rewards.ErrNotFound) {
		writeError(w, http.StatusNotFound, "reward not found")
		return
	}
	if err != nil {
		h.logger.Error("claim reward", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to claim reward")
		return
	}

	if result.Applied {
		h.notify("reward", "claimed", id, nil)
	}
	writeJSON(w, http.StatusOK, result)
}
