package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tomorrow-architect/planner-api/internal/clock"
	"github.com/tomorrow-architect/planner-api/internal/models"
	"github.com/tomorrow-architect/planner-api/internal/planstore"
	"github.com/tomorrow-architect/planner-api/internal/schedule"
	"github.com/tomorrow-architect/planner-api/internal/validation"
)

const (
	// MaxPlanContentLength is the maximum length for plan content
	MaxPlanContentLength = 500
	// MaxEstimatedDuration caps a single plan at a full day
	MaxEstimatedDuration = 1440
)

// PlanHandler handles plan-related requests
type PlanHandler struct {
	store         *planstore.Store
	offsetMinutes int
	cutoffHour    int
	now           func() time.Time
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(store *planstore.Store, offsetMinutes, cutoffHour int) *PlanHandler {
	return &PlanHandler{
		store:         store,
		offsetMinutes: offsetMinutes,
		cutoffHour:    cutoffHour,
		now:           time.Now,
	}
}

// RegisterRoutes registers plan routes on the given router
// The router should already have the /plans prefix
func (h *PlanHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListPlans).Methods("GET")
	r.HandleFunc("", h.CreatePlan).Methods("POST")
	r.HandleFunc("/move", h.MovePlans).Methods("POST")
	r.HandleFunc("/rollover", h.Rollover).Methods("POST")
	r.HandleFunc("/{id}/toggle", h.TogglePlan).Methods("POST")
	r.HandleFunc("/{id}", h.DeletePlan).Methods("DELETE")
}

// CreatePlanRequest represents a create plan request
type CreatePlanRequest struct {
	Content           string `json:"content" validate:"required,min=1,max=500"`
	Priority          string `json:"priority" validate:"omitempty,priority"`
	Category          string `json:"category" validate:"omitempty,category"`
	TargetDate        string `json:"targetDate" validate:"omitempty,day_key"`
	EstimatedDuration int    `json:"estimatedDuration" validate:"omitempty,min=1,max=1440"`
}

// MovePlansRequest represents a move request
type MovePlansRequest struct {
	IDs        []string `json:"ids" validate:"required,min=1"`
	TargetDate string   `json:"targetDate" validate:"required,day_key"`
}

// PlanStats summarizes completion for one day's list
type PlanStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Percent   int `json:"percent"`
}

// ListPlansResponse represents the response for listing one day's plans
type ListPlansResponse struct {
	Date  string         `json:"date"`
	Plans []*models.Plan `json:"plans"`
	Stats PlanStats      `json:"stats"`
}

// ListPlans lists the plans for a single day, sorted for display. Today's
// list floats unfinished work to the top; tomorrow's keeps pure time order.
func (h *PlanHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	window := clock.ResolveDayWindow(h.now(), h.offsetMinutes, h.cutoffHour)

	date := r.URL.Query().Get("date")
	if date == "" {
		date = window.TodayKey
	}
	if err := validation.ValidateDayKey(date); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	plans := h.store.FilterByDay(date)
	if date == window.TodayKey {
		schedule.SortForToday(plans)
	} else {
		schedule.SortForTomorrow(plans)
	}

	stats := PlanStats{Total: len(plans)}
	for _, p := range plans {
		if p.IsCompleted {
			stats.Completed++
		}
	}
	if stats.Total > 0 {
		stats.Percent = stats.Completed * 100 / stats.Total
	}

	respondJSON(w, http.StatusOK, ListPlansResponse{
		Date:  date,
		Plans: plans,
		Stats: stats,
	})
}

// CreatePlan creates a new plan. Missing fields default to a medium-priority
// personal task targeted at tomorrow.
func (h *PlanHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	req.Content = validation.SanitizeText(req.Content)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed: "+err.Error())
		return
	}

	priority := models.DefaultPriority
	if req.Priority != "" {
		priority = models.Priority(req.Priority)
	}
	category := models.DefaultCategory
	if req.Category != "" {
		category = models.Category(req.Category)
	}
	targetDate := req.TargetDate
	if targetDate == "" {
		window := clock.ResolveDayWindow(h.now(), h.offsetMinutes, h.cutoffHour)
		targetDate = window.TomorrowKey
	}

	plan, err := h.store.Add(r.Context(), req.Content, priority, category, targetDate, req.EstimatedDuration)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, plan)
}

// TogglePlan flips a plan's completion state
func (h *PlanHandler) TogglePlan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	plan, ok := h.store.Toggle(r.Context(), id)
	if !ok {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Plan not found")
		return
	}

	respondJSON(w, http.StatusOK, plan)
}

// DeletePlan removes a plan
func (h *PlanHandler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if !h.store.Delete(r.Context(), id) {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Plan not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// MovePlans retargets the given plans to another day. Suggested times are
// cleared because they belong to the day they were computed for.
func (h *PlanHandler) MovePlans(w http.ResponseWriter, r *http.Request) {
	var req MovePlansRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}

	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed: "+err.Error())
		return
	}

	moved := h.store.MoveToDay(r.Context(), req.IDs, req.TargetDate)

	respondJSON(w, http.StatusOK, map[string]any{"moved": moved})
}

// Rollover moves today's unfinished plans to tomorrow
func (h *PlanHandler) Rollover(w http.ResponseWriter, r *http.Request) {
	window := clock.ResolveDayWindow(h.now(), h.offsetMinutes, h.cutoffHour)

	var ids []string
	for _, p := range h.store.FilterByDay(window.TodayKey) {
		if !p.IsCompleted {
			ids = append(ids, p.ID)
		}
	}

	moved := 0
	if len(ids) > 0 {
		moved = h.store.MoveToDay(r.Context(), ids, window.TomorrowKey)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"moved":      moved,
		"targetDate": window.TomorrowKey,
	})
}
