package handler

import (
	"net/http"

	"github.com/dukerupert/streek/internal/theme"
)

// ThemeHandler exposes the shared theme store. Change broadcasts come from
// the store subscription, not from here.
type ThemeHandler struct {
	theme *theme.Store
}

func NewThemeHandler(t *theme.Store) *ThemeHandler {
	return &ThemeHandler{theme: t}
}

// Get handles GET /api/theme
func (h *ThemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.theme.State())
}

// Toggle handles POST /api/theme/toggle
func (h *ThemeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.theme.Toggle()
	writeJSON(w, http.StatusOK, h.theme.State())
}
