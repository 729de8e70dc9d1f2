package handler

import (
	"net/http"

	"github.com/dukerupert/streek/internal/catalog"
	"github.com/dukerupert/streek/internal/model"
)

type CatalogHandler struct {
	catalog catalog.Provider
}

func NewCatalogHandler(c catalog.Provider) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

type catalogResponse struct {
	ActivityTypes  []model.ActivityType   `json:"activity_types"`
	Frequencies    []string               `json:"frequencies"`
	ActivityPoints []model.ActivityPoints `json:"activity_points"`
	DateRanges     []model.DateRange      `json:"date_ranges"`
	DefaultRange   string                 `json:"default_range"`
}

// Get handles GET /api/catalog
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		ActivityTypes:  h.catalog.ActivityTypes(),
		Frequencies:    h.catalog.Frequencies(),
		ActivityPoints: h.catalog.ActivityPoints(),
		DateRanges:     h.catalog.DateRanges(),
		DefaultRange:   h.catalog.DefaultRange().Label,
	})
}
