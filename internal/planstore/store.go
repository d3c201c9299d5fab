// Package planstore owns the in-memory plan collection. All mutations are
// serialized and every successful mutation persists the whole collection
// through the persistence adapter; a failed save is logged and never corrupts
// the in-memory state.
package planstore

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/tomorrow-architect/planner-api/internal/models"
)

// ErrEmptyContent is returned when an add request has no content left after
// sanitization.
var ErrEmptyContent = errors.New("plan content must not be empty")

// Saver persists the full plan collection snapshot
type Saver interface {
	Save(ctx context.Context, plans []*models.Plan) error
}

// Store is the single owner of the plan collection
type Store struct {
	mu     sync.Mutex
	plans  []*models.Plan
	saver  Saver
	logger *zap.Logger
}

// New creates a store over an initial snapshot. The snapshot is expected to
// be migrated already (the repository's Load guarantees that).
func New(snap *models.Snapshot, saver Saver, logger *zap.Logger) *Store {
	plans := make([]*models.Plan, 0, len(snap.Plans))
	for _, p := range snap.Plans {
		plans = append(plans, p.Clone())
	}
	return &Store{
		plans:  plans,
		saver:  saver,
		logger: logger,
	}
}

// RetargetWelcomeTask points the seed welcome task at the given day key so a
// fresh install shows it in the tomorrow view immediately.
func (s *Store) RetargetWelcomeTask(ctx context.Context, tomorrowKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.plans {
		if p.ID == models.WelcomeTaskID && p.TargetDate != tomorrowKey {
			p.TargetDate = tomorrowKey
			s.persist(ctx)
			return
		}
	}
}

// Add creates a plan and appends it to the collection. Content must be
// non-empty; sanitization is the caller's responsibility.
func (s *Store) Add(ctx context.Context, content string, priority models.Priority, category models.Category, targetDate string, estimatedDuration int) (*models.Plan, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	plan := models.NewPlan(content, priority, category, targetDate, estimatedDuration)
	s.plans = append(s.plans, plan)
	s.persist(ctx)
	return plan.Clone(), nil
}

// Toggle flips a plan's completion state. Absent ids are a no-op; the return
// value reports whether anything changed.
func (s *Store) Toggle(ctx context.Context, id string) (*models.Plan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.plans {
		if p.ID == id {
			p.IsCompleted = !p.IsCompleted
			s.persist(ctx)
			return p.Clone(), true
		}
	}
	return nil, false
}

// Delete removes a plan. Absent ids are a no-op.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.plans {
		if p.ID == id {
			s.plans = append(s.plans[:i], s.plans[i+1:]...)
			s.persist(ctx)
			return true
		}
	}
	return false
}

// MoveToDay retargets every matching plan to the new day key and clears its
// suggested time (a suggestion belongs to the day it was computed for).
// Returns the number of plans moved.
func (s *Store) MoveToDay(ctx context.Context, ids []string, newDayKey string) int {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	moved := 0
	for _, p := range s.plans {
		if wanted[p.ID] {
			p.TargetDate = newDayKey
			p.SuggestedTime = ""
			moved++
		}
	}
	if moved > 0 {
		s.persist(ctx)
	}
	return moved
}

// MergeSuggestedTimes applies a validated schedule proposal: only plans whose
// id appears in the map are touched. The merge is all-or-nothing per
// response; callers must only pass maps that already passed validation.
func (s *Store) MergeSuggestedTimes(ctx context.Context, suggestions map[string]string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := 0
	for _, p := range s.plans {
		if label, ok := suggestions[p.ID]; ok {
			p.SuggestedTime = label
			merged++
		}
	}
	if merged > 0 {
		s.persist(ctx)
	}
	return merged
}

// ReplaceAll swaps the whole collection, running migration normalization on
// the way in. Used by import and reset.
func (s *Store) ReplaceAll(ctx context.Context, plans []*models.Plan) {
	snap := models.Migrate(plans)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.plans = snap.Plans
	s.persist(ctx)
}

// FilterByDay returns copies of the plans targeted at the given day key, in
// insertion order. Sorting for display is the schedule package's concern.
func (s *Store) FilterByDay(dayKey string) []*models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Plan, 0)
	for _, p := range s.plans {
		if p.TargetDate == dayKey {
			out = append(out, p.Clone())
		}
	}
	return out
}

// All returns a copy of the whole collection in insertion order
func (s *Store) All() []*models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		out = append(out, p.Clone())
	}
	return out
}

// persist writes the current collection through the saver. Callers hold the
// lock. Save failures are surfaced in logs only: the in-memory collection
// stays authoritative and the next mutation retries the write.
func (s *Store) persist(ctx context.Context) {
	if s.saver == nil {
		return
	}
	snapshot := make([]*models.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		snapshot = append(snapshot, p.Clone())
	}
	if err := s.saver.Save(ctx, snapshot); err != nil && s.logger != nil {
		s.logger.Warn("snapshot_save_failed", zap.Error(err))
	}
}
