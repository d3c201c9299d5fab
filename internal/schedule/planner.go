package schedule

import (
	"errors"

	"github.com/tomorrow-architect/planner-api/internal/clock"
	"github.com/tomorrow-architect/planner-api/internal/models"
)

// Day structure constants, in minutes since local midnight. The working
// window runs to midnight; everything before WorkStart is rest time.
const (
	WorkStartMinute   = 9*60 + 30  // 09:30
	LunchStartMinute  = 12 * 60    // 12:00
	LunchEndMinute    = 13*60 + 30 // 13:30
	DinnerStartMinute = 18 * 60    // 18:00
	DinnerEndMinute   = 18*60 + 30 // 18:30
	DayEndMinute      = 24 * 60    // midnight

	// DefaultDurationMinutes is assumed when a plan has no estimate
	DefaultDurationMinutes = 30

	// startRoundingMinutes is the grid the "plan remaining today" start time
	// snaps forward to
	startRoundingMinutes = 15
)

// ErrNoUsableSuggestions is returned when a schedule proposal contains
// nothing that survives structural validation.
var ErrNoUsableSuggestions = errors.New("schedule proposal contained no usable suggestions")

// TimeSuggestion pairs a plan id with a proposed start label
type TimeSuggestion struct {
	ID            string `json:"id"`
	SuggestedTime string `json:"suggestedTime"`
}

// StartLabel derives the start-time label for an "optimize remaining today"
// request from the current wall clock. Before the working window it is forced
// to 09:30; afterwards it rounds strictly up to the next quarter hour, so a
// reading exactly on a boundary still advances by a full step (the behavior
// users have relied on: the schedule never starts "right now").
func StartLabel(wc clock.WallClock) string {
	now := wc.MinuteOfDay()
	if now < WorkStartMinute {
		return FormatMinuteOfDay(WorkStartMinute)
	}
	remainder := startRoundingMinutes - wc.Minute%startRoundingMinutes
	return FormatMinuteOfDay(now + remainder)
}

// InsideBreak reports whether a minute-of-day is an invalid start: within a
// meal break, including its opening minute but not its closing one.
func InsideBreak(min int) bool {
	return (min >= LunchStartMinute && min < LunchEndMinute) ||
		(min >= DinnerStartMinute && min < DinnerEndMinute)
}

// ClampStart defers a start time that falls inside a break to the break's
// end: lunch violations move to 13:30, dinner violations to 18:30. A start on
// a break's opening minute counts as inside it (work cannot begin as the
// break begins).
func ClampStart(min int) int {
	if min >= LunchStartMinute && min < LunchEndMinute {
		return LunchEndMinute
	}
	if min >= DinnerStartMinute && min < DinnerEndMinute {
		return DinnerEndMinute
	}
	return min
}

// OccupiedUntil returns the earliest minute the next task may begin after a
// task starting at start with the given nominal duration. Tasks are allowed
// to span breaks; each break the span crosses adds its own length to the
// occupied wall-clock window, so a long task pushes its successor past the
// breaks it swallowed. A zero or negative duration falls back to the default.
func OccupiedUntil(start, duration int) int {
	if duration <= 0 {
		duration = DefaultDurationMinutes
	}
	end := start + duration
	if start < LunchStartMinute && end > LunchStartMinute {
		end += LunchEndMinute - LunchStartMinute
	}
	if start < DinnerStartMinute && end > DinnerStartMinute {
		end += DinnerEndMinute - DinnerStartMinute
	}
	return end
}

// ValidateProposal structurally validates a schedule proposal against the set
// of plans that were submitted, per the planner contract:
//
//   - entries whose id was not part of the request are ignored;
//   - entries with an unparseable time label are dropped;
//   - a start time inside a break window is clamped to the break's end
//     rather than rejecting the whole response;
//   - requested plans absent from the proposal are simply left unscheduled.
//
// The result maps plan id to a normalized 24-hour label, ready for an
// all-or-nothing merge. If nothing usable remains, ErrNoUsableSuggestions is
// returned and the caller must not mutate any plan state.
func ValidateProposal(requested []*models.Plan, proposal []TimeSuggestion) (map[string]string, error) {
	known := make(map[string]bool, len(requested))
	for _, p := range requested {
		known[p.ID] = true
	}

	accepted := make(map[string]string, len(proposal))
	for _, s := range proposal {
		if !known[s.ID] {
			continue
		}
		min := ParseTimeLabel(s.SuggestedTime)
		if min == SentinelUnparseable {
			continue
		}
		accepted[s.ID] = FormatMinuteOfDay(ClampStart(min))
	}

	if len(accepted) == 0 {
		return nil, ErrNoUsableSuggestions
	}
	return accepted, nil
}
