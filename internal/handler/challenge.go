package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dukerupert/streek/internal/challenge"
	"github.com/dukerupert/streek/internal/model"
	"github.com/dukerupert/streek/internal/websocket"
)

type ChallengeHandler struct {
	tracker *challenge.Tracker
	broadcaster
	logger *slog.Logger
}

func NewChallengeHandler(t *challenge.Tracker, hub *websocket.Hub, logger *slog.Logger) *ChallengeHandler {
	return &ChallengeHandler{tracker: t, broadcaster: broadcaster{hub}, logger: logger}
}

// List handles GET /api/challenges
func (h *ChallengeHandler) List(w http.ResponseWriter, r *http.Request) {
	challenges, err := h.tracker.List(r.Context())
	if err != nil {
		h.logger.Error("list challenges", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list challenges")
		return
	}
	if challenges == nil {
		challenges = []model.Challenge{}
	}
	writeJSON(w, http.StatusOK, challenges)
}

// Today handles GET /api/challenges/today
func (h *ChallengeHandler) Today(w http.ResponseWriter, r *http.Request) {
	list, err := h.tracker.Today(r.Context())
	if err != nil {
		h.logger.Error("challenge status", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load today's challenges")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Create handles POST /api/challenges
func (h *ChallengeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in challenge.AddInput
	if !decodeJSON(w, r, &in) {
		return
	}

	c, err := h.tracker.AddChallenge(r.Context(), in)
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}

	h.notify("challenge", "created", c.ID, nil)
	writeJSON(w, http.StatusCreated, c)
}

type completeRequest struct {
	ProofURI  string `json:"proof_uri"`
	Satisfied *bool  `json:"satisfied"`
}

// Complete handles POST /api/challenges/{id}/complete. An omitted
// satisfied field counts as confirmed.
func (h *ChallengeHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	satisfied := req.Satisfied == nil || *req.Satisfied

	result, err := h.tracker.MarkComplete(r.Context(), chi.URLParam(r, "id"), req.ProofURI, satisfied)
	if err != nil {
		h.writeTrackerError(w, err)
		return
	}

	if result.Applied {
		h.notify("challenge", "completed", result.Challenge.ID, map[string]any{"streak": result.Challenge.Streak})
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ChallengeHandler) writeTrackerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, challenge.ErrValidation):
		writeError(w, http.StatusBadRequest, userMessage(err, challenge.ErrValidation))
	case errors.Is(err, challenge.ErrNotFound):
		writeError(w, http.StatusNotFound, "challenge not found")
	case errors.Is(err, challenge.ErrAlreadyCompleted):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("challenge request", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update challenge")
	}
}
