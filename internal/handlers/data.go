package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/tomorrow-architect/planner-api/internal/clock"
	"github.com/tomorrow-architect/planner-api/internal/models"
	"github.com/tomorrow-architect/planner-api/internal/planstore"
)

// DataHandler handles backup, restore, and reset requests
type DataHandler struct {
	store         *planstore.Store
	offsetMinutes int
	cutoffHour    int
	logger        *zap.Logger
	now           func() time.Time
}

// NewDataHandler creates a new data handler
func NewDataHandler(store *planstore.Store, offsetMinutes, cutoffHour int, logger *zap.Logger) *DataHandler {
	return &DataHandler{
		store:         store,
		offsetMinutes: offsetMinutes,
		cutoffHour:    cutoffHour,
		logger:        logger,
		now:           time.Now,
	}
}

// RegisterRoutes registers data routes on the given router
// The router should already have the /data prefix
func (h *DataHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/export", h.Export).Methods("GET")
	r.HandleFunc("/export/seed", h.ExportSeed).Methods("GET")
	r.HandleFunc("/import", h.Import).Methods("POST")
	r.HandleFunc("/reset", h.Reset).Methods("POST")
}

// ImportRequest represents an import request. Confirm must be true for the
// import to be applied; otherwise only a preview is returned.
type ImportRequest struct {
	Payload string `json:"payload"`
	Confirm bool   `json:"confirm"`
}

// ResetRequest represents a reset request
type ResetRequest struct {
	Confirm bool `json:"confirm"`
}

// Export serves the full snapshot as a pretty-printed JSON download
func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	snap := models.Snapshot{
		SchemaVersion: models.SchemaVersionCurrent,
		Plans:         h.store.All(),
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to encode backup")
		return
	}

	filename := fmt.Sprintf("tomorrows-architect-backup-%s.json", h.now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("export_write_failed", zap.Error(err))
	}
}

// ExportSeed renders the current collection in the seed-file shape: a bare
// pretty-printed plan array that can replace internal/models/seed.json
// verbatim, redeploying the user's plans as the new seed dataset.
func (h *DataHandler) ExportSeed(w http.ResponseWriter, r *http.Request) {
	data, err := json.MarshalIndent(h.store.All(), "", "  ")
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to encode seed")
		return
	}
	data = append(data, '\n')

	filename := fmt.Sprintf("seed-%s.json", h.now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("seed_export_write_failed", zap.Error(err))
	}
}

// Import replaces the whole collection with the plans decoded from the
// payload. The payload may be a snapshot envelope, a bare plan array, or a
// pasted script file whose first bracketed array literal is extracted.
// Without confirm the decoded collection is previewed but not applied.
func (h *DataHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Payload) == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "payload is required")
		return
	}

	plans, err := models.DecodePlansPayload(req.Payload)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Failed to parse data: "+err.Error())
		return
	}

	snap := models.Migrate(plans)

	if !req.Confirm {
		respondJSONError(w, http.StatusConflict, "Confirmation Required",
			fmt.Sprintf("Import would replace all current tasks with %d plans. Repeat with confirm=true.", len(snap.Plans)))
		return
	}

	h.store.ReplaceAll(r.Context(), snap.Plans)
	h.logger.Info("data_imported", zap.Int("plan_count", len(snap.Plans)))

	respondJSON(w, http.StatusOK, map[string]any{"imported": len(snap.Plans)})
}

// Reset discards all plans and reloads the embedded seed dataset
func (h *DataHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid JSON body")
			return
		}
	}
	if !req.Confirm {
		respondJSONError(w, http.StatusConflict, "Confirmation Required",
			"Reset would replace all current tasks with the seed dataset. Repeat with confirm=true.")
		return
	}

	seed := models.SeedSnapshot()
	h.store.ReplaceAll(r.Context(), seed.Plans)

	window := clock.ResolveDayWindow(h.now(), h.offsetMinutes, h.cutoffHour)
	h.store.RetargetWelcomeTask(r.Context(), window.TomorrowKey)

	h.logger.Info("data_reset", zap.Int("plan_count", len(seed.Plans)))

	respondJSON(w, http.StatusOK, map[string]any{"plans": len(seed.Plans)})
}
