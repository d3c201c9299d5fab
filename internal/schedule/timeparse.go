// Package schedule holds the planner core: time-label parsing, the per-day
// ordering rules, and the constraint contract any proposed schedule must
// satisfy.
package schedule

import (
	"regexp"
	"strconv"
	"strings"
)

// SentinelUnparseable is returned for time labels that cannot be parsed. It
// is far beyond any minute-of-day so unparseable labels sort last instead of
// raising an error.
const SentinelUnparseable = 99999

var meridiemRe = regexp.MustCompile(`(?i)AM|PM`)

// ParseTimeLabel normalizes a human or model supplied time label into minutes
// since midnight. Both 24-hour "14:30" and legacy 12-hour "02:30 PM" forms
// are accepted.
//
// Out-of-range components ("25:99") are deliberately not rejected: historical
// data contains such labels and they must keep sorting arithmetically rather
// than becoming errors. Tests pin this looseness down.
func ParseTimeLabel(s string) int {
	if s == "" {
		return SentinelUnparseable
	}

	if meridiemRe.MatchString(s) {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return SentinelUnparseable
		}
		hour, minute, ok := splitClock(parts[0])
		if !ok {
			return SentinelUnparseable
		}
		modifier := strings.ToUpper(strings.TrimSpace(parts[1]))
		if hour == 12 && modifier == "AM" {
			hour = 0
		}
		if hour != 12 && modifier == "PM" {
			hour += 12
		}
		return hour*60 + minute
	}

	hour, minute, ok := splitClock(s)
	if !ok {
		return SentinelUnparseable
	}
	return hour*60 + minute
}

// splitClock splits "HH:MM" into its integer components. Trailing components
// ("14:30:00") are ignored, matching the lenient historical behavior.
func splitClock(s string) (hour, minute int, ok bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return hour, minute, true
}

// FormatMinuteOfDay renders a minute-of-day back to a zero-padded 24-hour
// label. Values are reduced modulo 24 hours so break deferrals near midnight
// stay representable.
func FormatMinuteOfDay(min int) string {
	min %= 24 * 60
	if min < 0 {
		min += 24 * 60
	}
	h := min / 60
	m := min % 60
	return pad2(h) + ":" + pad2(m)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
