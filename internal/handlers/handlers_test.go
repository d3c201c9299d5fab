package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/tomorrow-architect/planner-api/internal/models"
	"github.com/tomorrow-architect/planner-api/internal/planstore"
	"github.com/tomorrow-architect/planner-api/internal/schedule"
	"github.com/tomorrow-architect/planner-api/internal/services/ai"
)

// fixedNow is 2024-03-15 06:00 UTC = 14:00 UTC+8, safely past the night-owl
// cutoff, so today is 2024-03-15 and tomorrow 2024-03-16 in the reference
// offset.
var fixedNow = time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC)

const (
	testToday    = "2024-03-15"
	testTomorrow = "2024-03-16"
)

type nopSaver struct{}

func (nopSaver) Save(ctx context.Context, plans []*models.Plan) error { return nil }

func newTestStore(plans ...*models.Plan) *planstore.Store {
	snap := &models.Snapshot{SchemaVersion: models.SchemaVersionCurrent, Plans: plans}
	return planstore.New(snap, nopSaver{}, zap.NewNop())
}

func newPlanHandler(store *planstore.Store) *PlanHandler {
	h := NewPlanHandler(store, 480, 4)
	h.now = func() time.Time { return fixedNow }
	return h
}

func planRouter(h *PlanHandler) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/plans").Subrouter())
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("Failed to decode response envelope: %v", err)
	}
	return env
}

func TestGetWindow(t *testing.T) {
	t.Parallel()

	h := NewWindowHandler(480, 4)
	h.now = func() time.Time { return fixedNow }

	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/window").Subrouter())

	req := httptest.NewRequest("GET", "/window", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	env := decodeEnvelope(t, w)
	var resp WindowResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("Failed to decode window: %v", err)
	}

	if resp.TodayKey != testToday {
		t.Errorf("Expected todayKey %s, got %s", testToday, resp.TodayKey)
	}
	if resp.TomorrowKey != testTomorrow {
		t.Errorf("Expected tomorrowKey %s, got %s", testTomorrow, resp.TomorrowKey)
	}
	if resp.TodayDisplay == "" || resp.TomorrowDisplay == "" {
		t.Error("Expected display strings to be populated")
	}
}

func TestListPlans_TodaySortAndStats(t *testing.T) {
	t.Parallel()

	done := &models.Plan{ID: "done", Content: "done", Priority: models.PriorityHigh, Category: models.CategoryWork, TargetDate: testToday, IsCompleted: true, SuggestedTime: "09:30"}
	late := &models.Plan{ID: "late", Content: "late", Priority: models.PriorityLow, Category: models.CategoryWork, TargetDate: testToday, SuggestedTime: "16:00"}
	early := &models.Plan{ID: "early", Content: "early", Priority: models.PriorityLow, Category: models.CategoryWork, TargetDate: testToday, SuggestedTime: "10:00"}
	otherDay := &models.Plan{ID: "other", Content: "other", Priority: models.PriorityLow, Category: models.CategoryWork, TargetDate: testTomorrow}

	h := newPlanHandler(newTestStore(done, late, early, otherDay))
	router := planRouter(h)

	req := httptest.NewRequest("GET", "/plans?date="+testToday, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp ListPlansResponse
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &resp); err != nil {
		t.Fatalf("Failed to decode list: %v", err)
	}

	if len(resp.Plans) != 3 {
		t.Fatalf("Expected 3 plans for today, got %d", len(resp.Plans))
	}
	// Unfinished first in time order, completed last
	gotOrder := []string{resp.Plans[0].ID, resp.Plans[1].ID, resp.Plans[2].ID}
	wantOrder := []string{"early", "late", "done"}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Errorf("Position %d: expected %s, got %s (full order %v)", i, wantOrder[i], gotOrder[i], gotOrder)
		}
	}

	if resp.Stats.Total != 3 || resp.Stats.Completed != 1 || resp.Stats.Percent != 33 {
		t.Errorf("Expected stats {3 1 33}, got %+v", resp.Stats)
	}
}

func TestListPlans_InvalidDate(t *testing.T) {
	t.Parallel()

	h := newPlanHandler(newTestStore())
	router := planRouter(h)

	req := httptest.NewRequest("GET", "/plans?date=yesterday", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestCreatePlan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"defaults applied", `{"content":"write tests"}`, http.StatusCreated},
		{"explicit fields", `{"content":"gym","priority":"high","category":"personal","targetDate":"2024-03-20","estimatedDuration":45}`, http.StatusCreated},
		{"empty content", `{"content":"   "}`, http.StatusBadRequest},
		{"bad priority", `{"content":"x","priority":"urgent"}`, http.StatusBadRequest},
		{"bad date", `{"content":"x","targetDate":"03/20/2024"}`, http.StatusBadRequest},
		{"malformed body", `{"content":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newPlanHandler(newTestStore())
			router := planRouter(h)

			req := httptest.NewRequest("POST", "/plans", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}

			if tt.wantStatus == http.StatusCreated && tt.name == "defaults applied" {
				var plan models.Plan
				if err := json.Unmarshal(decodeEnvelope(t, w).Data, &plan); err != nil {
					t.Fatalf("Failed to decode plan: %v", err)
				}
				if plan.Priority != models.PriorityMedium {
					t.Errorf("Expected default priority medium, got %s", plan.Priority)
				}
				if plan.Category != models.CategoryPersonal {
					t.Errorf("Expected default category personal, got %s", plan.Category)
				}
				if plan.TargetDate != testTomorrow {
					t.Errorf("Expected default targetDate %s, got %s", testTomorrow, plan.TargetDate)
				}
				if plan.ID == "" {
					t.Error("Expected a generated id")
				}
			}
		})
	}
}

func TestTogglePlan(t *testing.T) {
	t.Parallel()

	plan := &models.Plan{ID: "p1", Content: "x", Priority: models.PriorityLow, Category: models.CategoryWork, TargetDate: testToday}
	h := newPlanHandler(newTestStore(plan))
	router := planRouter(h)

	req := httptest.NewRequest("POST", "/plans/p1/toggle", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var got models.Plan
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &got); err != nil {
		t.Fatalf("Failed to decode plan: %v", err)
	}
	if !got.IsCompleted {
		t.Error("Expected plan to be completed after toggle")
	}

	req = httptest.NewRequest("POST", "/plans/missing/toggle", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown id, got %d", w.Code)
	}
}

func TestDeletePlan(t *testing.T) {
	t.Parallel()

	plan := &models.Plan{ID: "p1", Content: "x", Priority: models.PriorityLow, Category: models.CategoryWork, TargetDate: testToday}
	store := newTestStore(plan)
	h := newPlanHandler(store)
	router := planRouter(h)

	req := httptest.NewRequest("DELETE", "/plans/p1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if len(store.All()) != 0 {
		t.Error("Expected plan removed from store")
	}

	req = httptest.NewRequest("DELETE", "/plans/p1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for repeated delete, got %d", w.Code)
	}
}

func TestRollover_MovesOnlyUnfinishedToday(t *testing.T) {
	t.Parallel()

	unfinished := &models.Plan{ID: "u", Content: "u", Priority: models.PriorityLow, Category: models.CategoryWork, TargetDate: testToday, SuggestedTime: "10:00"}
	finished := &models.Plan{ID: "f", Content: "f", Priority: models.PriorityLow, Category: models.CategoryWork, TargetDate: testToday, IsCompleted: true}
	store := newTestStore(unfinished, finished)
	h := newPlanHandler(store)
	router := planRouter(h)

	req := httptest.NewRequest("POST", "/plans/rollover", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Moved      int    `json:"moved"`
		TargetDate string `json:"targetDate"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Moved != 1 || resp.TargetDate != testTomorrow {
		t.Errorf("Expected 1 plan moved to %s, got %+v", testTomorrow, resp)
	}

	for _, p := range store.All() {
		switch p.ID {
		case "u":
			if p.TargetDate != testTomorrow {
				t.Errorf("Expected unfinished plan moved to %s, got %s", testTomorrow, p.TargetDate)
			}
			if p.SuggestedTime != "" {
				t.Error("Expected suggested time cleared on move")
			}
		case "f":
			if p.TargetDate != testToday {
				t.Errorf("Expected finished plan to stay on %s, got %s", testToday, p.TargetDate)
			}
		}
	}
}

func TestMovePlans(t *testing.T) {
	t.Parallel()

	plan := &models.Plan{ID: "p1", Content: "x", Priority: models.PriorityLow, Category: models.CategoryWork, TargetDate: testToday}
	store := newTestStore(plan)
	h := newPlanHandler(store)
	router := planRouter(h)

	body := `{"ids":["p1","ghost"],"targetDate":"2024-03-18"}`
	req := httptest.NewRequest("POST", "/plans/move", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Moved int `json:"moved"`
	}
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Moved != 1 {
		t.Errorf("Expected 1 plan moved (unknown ids skipped), got %d", resp.Moved)
	}
}

type fakeAdvisor struct {
	review      string
	reviewErr   error
	proposal    []schedule.TimeSuggestion
	scheduleErr error
	gotStart    string
	gotPlans    int
}

func (f *fakeAdvisor) Review(ctx context.Context, plans []*models.Plan) (string, error) {
	return f.review, f.reviewErr
}

func (f *fakeAdvisor) Schedule(ctx context.Context, plans []*models.Plan, startLabel string) ([]schedule.TimeSuggestion, error) {
	f.gotStart = startLabel
	f.gotPlans = len(plans)
	return f.proposal, f.scheduleErr
}

func scheduleRouter(store *planstore.Store, advisor *fakeAdvisor) *mux.Router {
	h := NewScheduleHandler(store, advisor, 480, 4, zap.NewNop())
	h.now = func() time.Time { return fixedNow }
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/ai").Subrouter())
	return r
}

func TestReviewPlans(t *testing.T) {
	t.Parallel()

	t.Run("returns advisor text", func(t *testing.T) {
		t.Parallel()

		plan := &models.Plan{ID: "p1", Content: "x", Priority: models.PriorityHigh, Category: models.CategoryWork, TargetDate: testTomorrow}
		router := scheduleRouter(newTestStore(plan), &fakeAdvisor{review: "Looks balanced."})

		req := httptest.NewRequest("POST", "/ai/review", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if !bytes.Contains(w.Body.Bytes(), []byte("Looks balanced.")) {
			t.Errorf("Expected advisor review in body, got %s", w.Body.String())
		}
	})

	t.Run("degrades to canned message on error", func(t *testing.T) {
		t.Parallel()

		router := scheduleRouter(newTestStore(), &fakeAdvisor{reviewErr: errors.New("boom")})

		req := httptest.NewRequest("POST", "/ai/review", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if !bytes.Contains(w.Body.Bytes(), []byte(ReviewUnavailableMessage)) {
			t.Errorf("Expected fallback message, got %s", w.Body.String())
		}
	})
}

func TestOptimizeSchedule(t *testing.T) {
	t.Parallel()

	t.Run("tomorrow scope merges validated proposal", func(t *testing.T) {
		t.Parallel()

		plan := &models.Plan{ID: "p1", Content: "x", Priority: models.PriorityHigh, Category: models.CategoryWork, TargetDate: testTomorrow}
		store := newTestStore(plan)
		advisor := &fakeAdvisor{proposal: []schedule.TimeSuggestion{{ID: "p1", SuggestedTime: "10:00"}}}
		router := scheduleRouter(store, advisor)

		req := httptest.NewRequest("POST", "/ai/schedule", strings.NewReader(`{"scope":"tomorrow"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if advisor.gotStart != "09:30" {
			t.Errorf("Expected tomorrow scope to start at 09:30, got %s", advisor.gotStart)
		}

		got := store.All()[0]
		if got.SuggestedTime != "10:00" {
			t.Errorf("Expected suggested time merged, got %q", got.SuggestedTime)
		}
	})

	t.Run("today scope skips completed and uses rounded start", func(t *testing.T) {
		t.Parallel()

		open := &models.Plan{ID: "open", Content: "x", Priority: models.PriorityLow, Category: models.CategoryWork, TargetDate: testToday}
		done := &models.Plan{ID: "done", Content: "y", Priority: models.PriorityLow, Category: models.CategoryWork, TargetDate: testToday, IsCompleted: true}
		advisor := &fakeAdvisor{proposal: []schedule.TimeSuggestion{{ID: "open", SuggestedTime: "14:15"}}}
		router := scheduleRouter(newTestStore(open, done), advisor)

		req := httptest.NewRequest("POST", "/ai/schedule", strings.NewReader(`{"scope":"today"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if advisor.gotPlans != 1 {
			t.Errorf("Expected only the unfinished plan to be sent, got %d", advisor.gotPlans)
		}
		// 14:00 local rounds strictly up to the next quarter hour
		if advisor.gotStart != "14:15" {
			t.Errorf("Expected start 14:15, got %s", advisor.gotStart)
		}
	})

	t.Run("no plans", func(t *testing.T) {
		t.Parallel()

		router := scheduleRouter(newTestStore(), &fakeAdvisor{})

		req := httptest.NewRequest("POST", "/ai/schedule", strings.NewReader(`{"scope":"tomorrow"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("advisor failure", func(t *testing.T) {
		t.Parallel()

		plan := &models.Plan{ID: "p1", Content: "x", Priority: models.PriorityLow, Category: models.CategoryWork, TargetDate: testTomorrow}
		router := scheduleRouter(newTestStore(plan), &fakeAdvisor{scheduleErr: errors.New("boom")})

		req := httptest.NewRequest("POST", "/ai/schedule", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadGateway {
			t.Errorf("Expected status 502, got %d", w.Code)
		}
	})

	t.Run("rate limited advisor maps to 429", func(t *testing.T) {
		t.Parallel()

		plan := &models.Plan{ID: "p1", Content: "x", Priority: models.PriorityLow, Category: models.CategoryWork, TargetDate: testTomorrow}
		limitErr := fmt.Errorf("failed to generate schedule: %w", &ai.APIError{StatusCode: 429, Type: "rate_limit_error", Message: "slow down"})
		router := scheduleRouter(newTestStore(plan), &fakeAdvisor{scheduleErr: limitErr})

		req := httptest.NewRequest("POST", "/ai/schedule", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusTooManyRequests {
			t.Errorf("Expected status 429, got %d", w.Code)
		}
	})

	t.Run("exhausted quota maps to 503", func(t *testing.T) {
		t.Parallel()

		plan := &models.Plan{ID: "p1", Content: "x", Priority: models.PriorityLow, Category: models.CategoryWork, TargetDate: testTomorrow}
		quotaErr := fmt.Errorf("failed to generate schedule: %w", &ai.APIError{StatusCode: 429, Code: "insufficient_quota", IsPermanent: true})
		router := scheduleRouter(newTestStore(plan), &fakeAdvisor{scheduleErr: quotaErr})

		req := httptest.NewRequest("POST", "/ai/schedule", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})

	t.Run("unusable proposal leaves store untouched", func(t *testing.T) {
		t.Parallel()

		plan := &models.Plan{ID: "p1", Content: "x", Priority: models.PriorityLow, Category: models.CategoryWork, TargetDate: testTomorrow}
		store := newTestStore(plan)
		advisor := &fakeAdvisor{proposal: []schedule.TimeSuggestion{{ID: "ghost", SuggestedTime: "10:00"}}}
		router := scheduleRouter(store, advisor)

		req := httptest.NewRequest("POST", "/ai/schedule", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadGateway {
			t.Fatalf("Expected status 502, got %d", w.Code)
		}
		if store.All()[0].SuggestedTime != "" {
			t.Error("Expected no suggestion merged from a rejected proposal")
		}
	})
}

func dataRouter(store *planstore.Store) *mux.Router {
	h := NewDataHandler(store, 480, 4, zap.NewNop())
	h.now = func() time.Time { return fixedNow }
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/data").Subrouter())
	return r
}

func TestExport(t *testing.T) {
	t.Parallel()

	plan := &models.Plan{ID: "p1", Content: "x", Priority: models.PriorityLow, Category: models.CategoryWork, TargetDate: testToday}
	router := dataRouter(newTestStore(plan))

	req := httptest.NewRequest("GET", "/data/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "tomorrows-architect-backup-2024-03-15.json") {
		t.Errorf("Expected dated attachment filename, got %q", cd)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("Failed to decode export: %v", err)
	}
	if snap.SchemaVersion != models.SchemaVersionCurrent {
		t.Errorf("Expected schema version %d, got %d", models.SchemaVersionCurrent, snap.SchemaVersion)
	}
	if len(snap.Plans) != 1 || snap.Plans[0].ID != "p1" {
		t.Errorf("Expected exported plan p1, got %+v", snap.Plans)
	}
}

func TestExportSeed(t *testing.T) {
	t.Parallel()

	current := &models.Plan{ID: "current-1", Content: "current work", Priority: models.PriorityHigh, Category: models.CategoryWork, TargetDate: testToday}
	router := dataRouter(newTestStore(current))

	req := httptest.NewRequest("GET", "/data/export/seed", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "seed-2024-03-15.json") {
		t.Errorf("Expected dated seed filename, got %q", got)
	}
	var plans []*models.Plan
	if err := json.Unmarshal(w.Body.Bytes(), &plans); err != nil {
		t.Fatalf("Expected seed export to be a plan array: %v", err)
	}
	if len(plans) != 1 || plans[0].ID != "current-1" {
		t.Fatalf("Expected seed export to hold the current collection, got %+v", plans)
	}
	for _, p := range plans {
		if p.ID == models.WelcomeTaskID {
			t.Error("Expected seed export to reflect the store, not the embedded seed")
		}
	}
}

func TestImport(t *testing.T) {
	t.Parallel()

	bareArray := `[{"id":"a","content":"restored","isCompleted":false,"targetDate":"2024-03-16","priority":"high","createdAt":1}]`

	t.Run("preview without confirm", func(t *testing.T) {
		t.Parallel()

		existing := &models.Plan{ID: "keep", Content: "keep", Priority: models.PriorityLow, Category: models.CategoryWork, TargetDate: testToday}
		store := newTestStore(existing)
		router := dataRouter(store)

		body, _ := json.Marshal(ImportRequest{Payload: bareArray})
		req := httptest.NewRequest("POST", "/data/import", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Fatalf("Expected status 409, got %d", w.Code)
		}
		if len(store.All()) != 1 || store.All()[0].ID != "keep" {
			t.Error("Expected store untouched by preview")
		}
	})

	t.Run("confirmed import replaces and migrates", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(&models.Plan{ID: "old", Content: "old", Priority: models.PriorityLow, Category: models.CategoryWork, TargetDate: testToday})
		router := dataRouter(store)

		body, _ := json.Marshal(ImportRequest{Payload: bareArray, Confirm: true})
		req := httptest.NewRequest("POST", "/data/import", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		all := store.All()
		if len(all) != 1 || all[0].ID != "a" {
			t.Fatalf("Expected collection replaced by import, got %+v", all)
		}
		// Missing category defaults during migration
		if all[0].Category != models.CategoryPersonal {
			t.Errorf("Expected migrated category personal, got %s", all[0].Category)
		}
	})

	t.Run("pasted script file", func(t *testing.T) {
		t.Parallel()

		store := newTestStore()
		router := dataRouter(store)

		script := "export const initialData: Plan[] = " + bareArray + ";"
		body, _ := json.Marshal(ImportRequest{Payload: script, Confirm: true})
		req := httptest.NewRequest("POST", "/data/import", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if len(store.All()) != 1 {
			t.Errorf("Expected 1 imported plan, got %d", len(store.All()))
		}
	})

	t.Run("snapshot envelope", func(t *testing.T) {
		t.Parallel()

		store := newTestStore()
		router := dataRouter(store)

		envelopePayload := `{"schemaVersion":2,"plans":` + bareArray + `}`
		body, _ := json.Marshal(ImportRequest{Payload: envelopePayload, Confirm: true})
		req := httptest.NewRequest("POST", "/data/import", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("garbage payload", func(t *testing.T) {
		t.Parallel()

		router := dataRouter(newTestStore())

		body, _ := json.Marshal(ImportRequest{Payload: "hello world", Confirm: true})
		req := httptest.NewRequest("POST", "/data/import", bytes.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestReset(t *testing.T) {
	t.Parallel()

	t.Run("requires confirm", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(&models.Plan{ID: "keep", Content: "keep", Priority: models.PriorityLow, Category: models.CategoryWork, TargetDate: testToday})
		router := dataRouter(store)

		req := httptest.NewRequest("POST", "/data/reset", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Fatalf("Expected status 409, got %d", w.Code)
		}
		if len(store.All()) != 1 {
			t.Error("Expected store untouched without confirm")
		}
	})

	t.Run("reseeds and retargets welcome task", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(&models.Plan{ID: "old", Content: "old", Priority: models.PriorityLow, Category: models.CategoryWork, TargetDate: testToday})
		router := dataRouter(store)

		req := httptest.NewRequest("POST", "/data/reset", strings.NewReader(`{"confirm":true}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var welcomeFound bool
		for _, p := range store.All() {
			if p.ID == "old" {
				t.Error("Expected old plan discarded by reset")
			}
			if p.ID == models.WelcomeTaskID {
				welcomeFound = true
				if p.TargetDate != testTomorrow {
					t.Errorf("Expected welcome task retargeted to %s, got %s", testTomorrow, p.TargetDate)
				}
			}
		}
		if !welcomeFound {
			t.Error("Expected welcome task in seed dataset")
		}
	})
}
