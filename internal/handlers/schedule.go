package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/tomorrow-architect/planner-api/internal/clock"
	"github.com/tomorrow-architect/planner-api/internal/models"
	"github.com/tomorrow-architect/planner-api/internal/schedule"
	"github.com/tomorrow-architect/planner-api/internal/services/ai"
)

// ReviewUnavailableMessage is returned when the advisor cannot be reached.
// Review is advisory, so a provider outage degrades to encouragement rather
// than an error.
const ReviewUnavailableMessage = "I'm having trouble connecting to the productivity cloud right now, but your plan looks solid!"

// ScheduleStore is the slice of the plan store the schedule handler needs
type ScheduleStore interface {
	FilterByDay(dayKey string) []*models.Plan
	MergeSuggestedTimes(ctx context.Context, suggestions map[string]string) int
}

// ScheduleHandler handles AI review and schedule requests
type ScheduleHandler struct {
	store         ScheduleStore
	advisor       ai.Advisor
	offsetMinutes int
	cutoffHour    int
	logger        *zap.Logger
	now           func() time.Time
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(store ScheduleStore, advisor ai.Advisor, offsetMinutes, cutoffHour int, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		store:         store,
		advisor:       advisor,
		offsetMinutes: offsetMinutes,
		cutoffHour:    cutoffHour,
		logger:        logger,
		now:           time.Now,
	}
}

// RegisterRoutes registers AI routes on the given router
// The router should already have the /ai prefix
func (h *ScheduleHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/review", h.ReviewPlans).Methods("POST")
	r.HandleFunc("/schedule", h.OptimizeSchedule).Methods("POST")
}

// OptimizeScheduleRequest selects which day to schedule
type OptimizeScheduleRequest struct {
	Scope string `json:"scope" validate:"omitempty,oneof=today tomorrow"`
}

// ReviewPlans asks the advisor for a short critique of tomorrow's plans
func (h *ScheduleHandler) ReviewPlans(w http.ResponseWriter, r *http.Request) {
	window := clock.ResolveDayWindow(h.now(), h.offsetMinutes, h.cutoffHour)
	plans := h.store.FilterByDay(window.TomorrowKey)

	review, err := h.advisor.Review(r.Context(), plans)
	if err != nil {
		h.logger.Warn("ai_review_failed", zap.Error(err))
		review = ReviewUnavailableMessage
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"review": review,
		"date":   window.TomorrowKey,
	})
}

// OptimizeSchedule asks the advisor for start times and merges the validated
// proposal into the store. Scope "tomorrow" (the default) schedules
// tomorrow's full list from the start of working hours; scope "today"
// schedules today's unfinished plans from the next free quarter-hour.
func (h *ScheduleHandler) OptimizeSchedule(w http.ResponseWriter, r *http.Request) {
	var req OptimizeScheduleRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
			return
		}
	}
	if req.Scope == "" {
		req.Scope = "tomorrow"
	}
	if req.Scope != "today" && req.Scope != "tomorrow" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "scope must be 'today' or 'tomorrow'")
		return
	}

	window := clock.ResolveDayWindow(h.now(), h.offsetMinutes, h.cutoffHour)

	var plans []*models.Plan
	var startLabel string
	if req.Scope == "today" {
		for _, p := range h.store.FilterByDay(window.TodayKey) {
			if !p.IsCompleted {
				plans = append(plans, p)
			}
		}
		startLabel = schedule.StartLabel(clock.At(h.now(), h.offsetMinutes))
	} else {
		plans = h.store.FilterByDay(window.TomorrowKey)
		startLabel = schedule.FormatMinuteOfDay(schedule.WorkStartMinute)
	}

	if len(plans) == 0 {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "No plans to schedule")
		return
	}

	proposal, err := h.advisor.Schedule(r.Context(), plans, startLabel)
	if err != nil {
		switch {
		case ai.IsRateLimitError(err):
			h.logger.Warn("ai_schedule_rate_limited", zap.Error(err))
			respondJSONError(w, http.StatusTooManyRequests, "Too Many Requests", "AI provider is rate limiting requests, try again shortly")
		case ai.IsQuotaError(err):
			h.logger.Error("ai_schedule_quota_exhausted", zap.Error(err))
			respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "AI provider quota exhausted")
		default:
			h.logger.Warn("ai_schedule_failed", zap.Error(err))
			respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Could not generate schedule")
		}
		return
	}

	accepted, err := schedule.ValidateProposal(plans, proposal)
	if err != nil {
		h.logger.Warn("ai_schedule_rejected", zap.Error(err), zap.Int("proposal_size", len(proposal)))
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Could not generate schedule")
		return
	}

	updated := h.store.MergeSuggestedTimes(r.Context(), accepted)

	respondJSON(w, http.StatusOK, map[string]any{
		"scope":     req.Scope,
		"startTime": startLabel,
		"updated":   updated,
	})
}
