package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dukerupert/streek/internal/model"
	"github.com/dukerupert/streek/internal/profile"
	"github.com/dukerupert/streek/internal/websocket"
)

type ProfileHandler struct {
	profiles *profile.Service
	broadcaster
	logger *slog.Logger
}

func NewProfileHandler(svc *profile.Service, hub *websocket.Hub, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: svc, broadcaster: broadcaster{hub}, logger: logger}
}

// Get handles GET /api/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context())
	if err != nil {
		h.writeProfileError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Update handles PUT /api/profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var draft model.Profile
	if !decodeJSON(w, r, &draft) {
		return
	}

	p, err := h.profiles.UpdateProfile(r.Context(), draft)
	if err != nil {
		h.writeProfileError(w, err)
		return
	}

	h.notify("profile", "updated", "", nil)
	writeJSON(w, http.StatusOK, p)
}

// ToggleSetting handles POST /api/profile/settings/{name}/toggle
func (h *ProfileHandler) ToggleSetting(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, err := h.profiles.ToggleSetting(r.Context(), name)
	if err != nil {
		h.writeProfileError(w, err)
		return
	}

	h.notify("profile", "updated", "", map[string]any{"setting": name})
	writeJSON(w, http.StatusOK, p)
}

// Achievements handles GET /api/achievements
func (h *ProfileHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	list, err := h.profiles.Achievements(r.Context())
	if err != nil {
		h.logger.Error("list achievements", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list achievements")
		return
	}
	if list == nil {
		list = []model.Achievement{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"achievements": list,
		"progress":     profile.AchievementProgress(list),
	})
}

// Share handles GET /api/profile/share
func (h *ProfileHandler) Share(w http.ResponseWriter, r *http.Request) {
	share, err := h.profiles.ShareMessage(r.Context())
	if err != nil {
		h.writeProfileError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, share)
}

func (h *ProfileHandler) writeProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profile.ErrValidation):
		writeError(w, http.StatusBadRequest, userMessage(err, profile.ErrValidation))
	case errors.Is(err, profile.ErrUnknownSetting):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, profile.ErrNotFound):
		writeError(w, http.StatusNotFound, "profile not found")
	case errors.Is(err, profile.ErrSharingDisabled):
		writeError(w, http.StatusForbidden, "Please enable social sharing in settings to share your achievements.")
	default:
		h.logger.Error("profile request", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
	}
}
