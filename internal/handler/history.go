package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/streek/internal/catalog"
	"github.com/dukerupert/streek/internal/history"
	"github.com/dukerupert/streek/internal/model"
	"github.com/dukerupert/streek/internal/store"
	"github.com/dukerupert/streek/internal/websocket"
)

type ActivityStore interface {
	Create(r model.ActivityRecord) (*model.ActivityRecord, error)
	List() ([]model.ActivityRecord, error)
}

type HistoryHandler struct {
	records ActivityStore
	catalog catalog.Provider
	broadcaster
	now    func() time.Time
	logger *slog.Logger
}

func NewHistoryHandler(records ActivityStore, c catalog.Provider, hub *websocket.Hub, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{
		records:     records,
		catalog:     c,
		broadcaster: broadcaster{hub},
		now:         time.Now,
		logger:      logger,
	}
}

type historyResponse struct {
	Range         string                 `json:"range"`
	Activity      *string                `json:"activity"`
	Records       []model.ActivityRecord `json:"records"`
	Stats         history.Stats          `json:"stats"`
	Points        int                    `json:"points"`
	Weekly        [7]history.Day         `json:"weekly"`
	LongestStreak int                    `json:"longest_streak"`
	Activities    []string               `json:"activities"`
}

// List handles GET /api/history?range=<label>&activity=<name>
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	rng := h.catalog.DefaultRange()
	if label := r.URL.Query().Get("range"); label != "" {
		var ok bool
		if rng, ok = h.catalog.LookupRange(label); !ok {
			writeError(w, http.StatusBadRequest, "unknown date range")
			return
		}
	}

	var activity *string
	if name := strings.TrimSpace(r.URL.Query().Get("activity")); name != "" {
		activity = &name
	}

	all, err := h.records.List()
	if err != nil {
		h.logger.Error("list activity records", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	now := h.now()
	filtered := history.FilterByActivity(history.FilterByRange(all, rng.Days, now), activity)
	if filtered == nil {
		filtered = []model.ActivityRecord{}
	}
	activities := history.UniqueActivityNames(all)
	if activities == nil {
		activities = []string{}
	}

	writeJSON(w, http.StatusOK, historyResponse{
		Range:         rng.Label,
		Activity:      activity,
		Records:       filtered,
		Stats:         history.ComputeStats(filtered),
		Points:        history.SumPoints(filtered),
		Weekly:        history.WeeklyCalendar(all, now),
		LongestStreak: history.LongestStreak(all),
		Activities:    activities,
	})
}

// Create handles POST /api/history. Points default to the catalog value for
// the activity and are zeroed for incomplete records.
func (h *HistoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var rec model.ActivityRecord
	if !decodeJSON(w, r, &rec) {
		return
	}

	rec.Name = strings.TrimSpace(rec.Name)
	if rec.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if rec.Points < 0 {
		writeError(w, http.StatusBadRequest, "points must be >= 0")
		return
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Completed && rec.Points == 0 {
		rec.Points = h.catalog.PointsFor(rec.Name)
	}

	created, err := h.records.Create(rec)
	if errors.Is(err, store.ErrConflict) {
		writeError(w, http.StatusConflict, "a record with this id already exists")
		return
	}
	if err != nil {
		h.logger.Error("create activity record", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save record")
		return
	}

	h.notify("history", "created", created.ID, nil)
	writeJSON(w, http.StatusCreated, created)
}
