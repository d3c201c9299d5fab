// Package clock derives the virtual "today"/"tomorrow" day keys the planner
// works with. All arithmetic is done on a pure wall-clock value shifted into
// a fixed reference offset; nothing here reads ambient time.
package clock

import (
	"time"
)

const (
	// DefaultReferenceOffsetMinutes is the fixed reference timezone offset
	// (UTC+8) the planner attributes days in.
	DefaultReferenceOffsetMinutes = 480
	// DefaultNightOwlCutoffHour is the local hour before which time still
	// counts toward the previous calendar day, so late-night entries stay
	// attributed to the day just ending.
	DefaultNightOwlCutoffHour = 4

	// DayKeyFormat is the canonical day key layout
	DayKeyFormat = "2006-01-02"
	// DisplayFormat is the human-facing date layout
	DisplayFormat = "Monday, January 2"
)

// WallClock is a wall-clock reading in the reference offset
type WallClock struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
}

// MinuteOfDay returns the clock position as minutes since local midnight
func (wc WallClock) MinuteOfDay() int {
	return wc.Hour*60 + wc.Minute
}

// At converts an instant to a wall-clock reading in the given UTC offset
func At(now time.Time, offsetMinutes int) WallClock {
	local := now.UTC().Add(time.Duration(offsetMinutes) * time.Minute)
	return WallClock{
		Year:   local.Year(),
		Month:  local.Month(),
		Day:    local.Day(),
		Hour:   local.Hour(),
		Minute: local.Minute(),
	}
}

// DayWindow holds the two currently-valid day keys and their display forms
type DayWindow struct {
	TodayKey        string
	TomorrowKey     string
	TodayDisplay    string
	TomorrowDisplay string
}

// ResolveDayWindow computes the virtual day window for an instant. The
// instant is shifted into the reference offset; if the local hour is before
// the night-owl cutoff the date rolls back one calendar day before the keys
// are derived. TomorrowKey is always exactly one day after TodayKey.
func ResolveDayWindow(now time.Time, offsetMinutes, cutoffHour int) DayWindow {
	local := now.UTC().Add(time.Duration(offsetMinutes) * time.Minute)
	if local.Hour() < cutoffHour {
		local = local.AddDate(0, 0, -1)
	}
	tomorrow := local.AddDate(0, 0, 1)
	return DayWindow{
		TodayKey:        local.Format(DayKeyFormat),
		TomorrowKey:     tomorrow.Format(DayKeyFormat),
		TodayDisplay:    local.Format(DisplayFormat),
		TomorrowDisplay: tomorrow.Format(DisplayFormat),
	}
}
