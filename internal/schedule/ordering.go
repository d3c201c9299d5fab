package schedule

import (
	"sort"

	"github.com/tomorrow-architect/planner-api/internal/models"
)

// SortForToday orders a day's plans for display in the today view: incomplete
// before completed, then by parsed suggested time (a plan with a time before
// one without), then high priority before the rest. The sort is stable, so
// plans the rules do not distinguish keep their insertion order.
func SortForToday(plans []*models.Plan) {
	sort.SliceStable(plans, func(i, j int) bool {
		a, b := plans[i], plans[j]
		if a.IsCompleted != b.IsCompleted {
			return !a.IsCompleted
		}
		return lessByTimeThenPriority(a, b)
	})
}

// SortForTomorrow orders the tomorrow view. It intentionally has no
// completed-last rule; the two views have always diverged here and the
// asymmetry is preserved pending product clarification.
func SortForTomorrow(plans []*models.Plan) {
	sort.SliceStable(plans, func(i, j int) bool {
		return lessByTimeThenPriority(plans[i], plans[j])
	})
}

func lessByTimeThenPriority(a, b *models.Plan) bool {
	aHas := a.SuggestedTime != ""
	bHas := b.SuggestedTime != ""
	if aHas && bHas {
		at, bt := ParseTimeLabel(a.SuggestedTime), ParseTimeLabel(b.SuggestedTime)
		if at != bt {
			return at < bt
		}
		return lessByPriority(a, b)
	}
	if aHas != bHas {
		return aHas
	}
	return lessByPriority(a, b)
}

// lessByPriority only distinguishes high from non-high; low and medium are
// left to stable order.
func lessByPriority(a, b *models.Plan) bool {
	return a.Priority == models.PriorityHigh && b.Priority != models.PriorityHigh
}
