package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tomorrow-architect/planner-api/internal/clock"
)

// WindowHandler resolves the current virtual day window
type WindowHandler struct {
	offsetMinutes int
	cutoffHour    int
	now           func() time.Time
}

// NewWindowHandler creates a new window handler
func NewWindowHandler(offsetMinutes, cutoffHour int) *WindowHandler {
	return &WindowHandler{
		offsetMinutes: offsetMinutes,
		cutoffHour:    cutoffHour,
		now:           time.Now,
	}
}

// RegisterRoutes registers window routes on the given router
func (h *WindowHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetWindow).Methods("GET")
}

// WindowResponse represents the current day window
type WindowResponse struct {
	TodayKey        string `json:"todayKey"`
	TomorrowKey     string `json:"tomorrowKey"`
	TodayDisplay    string `json:"todayDisplay"`
	TomorrowDisplay string `json:"tomorrowDisplay"`
}

// GetWindow handles GET /window
func (h *WindowHandler) GetWindow(w http.ResponseWriter, r *http.Request) {
	window := clock.ResolveDayWindow(h.now(), h.offsetMinutes, h.cutoffHour)

	respondJSON(w, http.StatusOK, WindowResponse{
		TodayKey:        window.TodayKey,
		TomorrowKey:     window.TomorrowKey,
		TodayDisplay:    window.TodayDisplay,
		TomorrowDisplay: window.TomorrowDisplay,
	})
}
