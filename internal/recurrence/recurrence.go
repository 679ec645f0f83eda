// Package recurrence computes the next due instant for repeating tasks.
package recurrence

import (
	"errors"
	"regexp"
	"strconv"
	"time"
)

// Kind selects the repeat policy of a task.
type Kind string

const (
	KindNone   Kind = "none"
	KindDaily  Kind = "daily"
	KindWeekly Kind = "weekly"
)

// Fallback time-of-day used when TimeHHMM is malformed.
const (
	fallbackHour   = 16
	fallbackMinute = 0
)

// scanWindowDays bounds the weekly forward scan. Two weeks always covers
// at least one full week, so the fallback below should be unreachable.
const scanWindowDays = 14

var (
	ErrNotRepeating     = errors.New("recurrence: rule does not repeat")
	ErrInvalidKind      = errors.New("recurrence: unknown repeat kind")
	ErrWeeklyNeedsDays  = errors.New("recurrence: weekly rule requires at least one day of week")
	ErrInvalidDayOfWeek = errors.New("recurrence: day of week must be in 0..6")
)

// Rule describes when a repeating task comes due again. DaysOfWeek uses
// 0=Sunday..6=Saturday. AlertOffsetsMin holds negative minute offsets for
// pre-due alerts.
type Rule struct {
	Kind            Kind   `json:"kind"`
	DaysOfWeek      []int  `json:"daysOfWeek,omitempty"`
	TimeHHMM        string `json:"timeHHMM,omitempty"`
	AlertOffsetsMin []int  `json:"alertOffsetsMin,omitempty"`
}

// Validate rejects rules that must not reach NextOccurrence. An empty
// weekly day set is a caller error, never silently defaulted.
func (r Rule) Validate() error {
	switch r.Kind {
	case KindNone, KindDaily:
		return nil
	case KindWeekly:
		if len(r.DaysOfWeek) == 0 {
			return ErrWeeklyNeedsDays
		}
		for _, d := range r.DaysOfWeek {
			if d < 0 || d > 6 {
				return ErrInvalidDayOfWeek
			}
		}
		return nil
	default:
		return ErrInvalidKind
	}
}

var hhmmRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseTimeHHMM parses "HH:MM" clamped to valid ranges. Malformed input
// falls back to 16:00, matching the admin form default.
func ParseTimeHHMM(s string) (hour, minute int) {
	hour, minute = fallbackHour, fallbackMinute
	m := hhmmRe.FindStringSubmatch(s)
	if m == nil {
		return hour, minute
	}
	if h, err := strconv.Atoi(m[1]); err == nil {
		hour = clamp(h, 0, 23)
	}
	if mm, err := strconv.Atoi(m[2]); err == nil {
		minute = clamp(mm, 0, 59)
	}
	return hour, minute
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NextOccurrence returns the next due instant strictly after now for a
// daily or weekly rule. KindNone rules carry a caller-supplied absolute
// due and must not be passed here.
func NextOccurrence(r Rule, now time.Time) (time.Time, error) {
	if err := r.Validate(); err != nil {
		return time.Time{}, err
	}
	if r.Kind == KindNone {
		return time.Time{}, ErrNotRepeating
	}

	h, m := ParseTimeHHMM(r.TimeHHMM)

	if r.Kind == KindDaily {
		cand := atTime(now, h, m)
		if !cand.After(now) {
			cand = cand.AddDate(0, 0, 1)
		}
		return cand, nil
	}

	// Weekly: first day within the scan window whose weekday matches and
	// whose time-of-day candidate is still ahead of now.
	for i := 0; i < scanWindowDays; i++ {
		day := now.AddDate(0, 0, i)
		if !containsDay(r.DaysOfWeek, int(day.Weekday())) {
			continue
		}
		cand := atTime(day, h, m)
		if cand.After(now) {
			return cand, nil
		}
	}
	return atTime(now.AddDate(0, 0, 7), h, m), nil
}

// AlertTimes expands a due instant into pre-due alert instants using the
// rule's negative minute offsets. Non-negative offsets are ignored.
func AlertTimes(due time.Time, offsetsMin []int) []time.Time {
	var out []time.Time
	for _, off := range offsetsMin {
		if off >= 0 {
			continue
		}
		out = append(out, due.Add(time.Duration(off)*time.Minute))
	}
	return out
}

func atTime(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

func containsDay(days []int, d int) bool {
	for _, v := range days {
		if v == d {
			return true
		}
	}
	return false
}
