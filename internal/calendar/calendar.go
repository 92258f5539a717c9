// Package calendar implements the working-time calendar: the predicate that
// decides whether a given date is a working day, and the working-day
// arithmetic (add/subtract N working days, count working days in a range)
// that the CPM solver and resource leveler build on.
//
// Exceptions override the weekly pattern; when more than one exception
// covers a date, the earliest-inserted one wins. A calendar with zero
// working days is degenerate: arithmetic on it would never terminate by
// skipping, so it is treated as the identity transform instead, and the
// validator (internal/validate) is expected to flag it as a warning.
package calendar

import (
	"time"

	"project-scheduler/internal/core"
)

// IsWorking reports whether d is a working day under cal.
func IsWorking(d time.Time, cal *core.Calendar) bool {
	d = TruncateToDay(d)

	for _, exc := range cal.Exceptions {
		from := TruncateToDay(exc.From)
		to := TruncateToDay(exc.To)
		if !d.Before(from) && !d.After(to) {
			return exc.Working
		}
	}

	return cal.WorkingDays[d.Weekday()]
}

// IsDegenerate reports whether cal has no working day of the week and no
// exception could ever make a date working (i.e. it would skip forever).
func IsDegenerate(cal *core.Calendar) bool {
	for _, working := range cal.WorkingDays {
		if working {
			return false
		}
	}
	for _, exc := range cal.Exceptions {
		if exc.Working {
			return false
		}
	}
	return true
}

// AddWorkingDays returns the date reached from d after skipping |n| working
// days in the sign direction of n. n == 0 returns d unchanged (this is what
// makes zero-duration milestones work). On a degenerate calendar (no
// working day can ever be reached) it returns d unchanged rather than
// looping forever.
func AddWorkingDays(d time.Time, n int, cal *core.Calendar) time.Time {
	d = TruncateToDay(d)
	if n == 0 {
		return d
	}
	if IsDegenerate(cal) {
		return d
	}

	step := 1
	if n < 0 {
		step = -1
		n = -n
	}

	cur := d
	for n > 0 {
		cur = cur.AddDate(0, 0, step)
		if IsWorking(cur, cal) {
			n--
		}
	}
	return cur
}

// WorkingDaysBetween returns the count of working days in the inclusive
// interval [from, to] under cal. If from is after to, the interval is
// treated as empty and 0 is returned.
func WorkingDaysBetween(from, to time.Time, cal *core.Calendar) int {
	from = TruncateToDay(from)
	to = TruncateToDay(to)
	if from.After(to) {
		return 0
	}

	count := 0
	for cur := from; !cur.After(to); cur = cur.AddDate(0, 0, 1) {
		if IsWorking(cur, cal) {
			count++
		}
	}
	return count
}

// EndFromStart returns the finish date of an activity of the given
// working-day duration starting at start, under cal. Duration 0 or 1 both
// occupy just the start date (0 for milestones, 1 for a single working
// day); larger durations step dur-1 additional working days forward.
func EndFromStart(start time.Time, dur int, cal *core.Calendar) time.Time {
	if dur <= 1 {
		return TruncateToDay(start)
	}
	return AddWorkingDays(start, dur-1, cal)
}

// StartFromEnd returns the start date of an activity of the given
// working-day duration finishing at finish, under cal.
func StartFromEnd(finish time.Time, dur int, cal *core.Calendar) time.Time {
	if dur <= 1 {
		return TruncateToDay(finish)
	}
	return AddWorkingDays(finish, -(dur - 1), cal)
}

// TruncateToDay drops the time-of-day component, keeping the calendar's
// arithmetic at whole-day granularity as the engine requires.
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DefaultWorkingDays is the Mon-Fri set used by NewStandardCalendar.
func DefaultWorkingDays() map[time.Weekday]bool {
	return map[time.Weekday]bool{
		time.Monday:    true,
		time.Tuesday:   true,
		time.Wednesday: true,
		time.Thursday:  true,
		time.Friday:    true,
		time.Saturday:  false,
		time.Sunday:    false,
	}
}

// NewStandardCalendar returns a Mon-Fri, 8-hours-a-day calendar with the
// given id/name and no exceptions, marked default.
func NewStandardCalendar(id, name string) *core.Calendar {
	return &core.Calendar{
		ID:          id,
		Name:        name,
		WorkingDays: DefaultWorkingDays(),
		HoursPerDay: 8,
		Default:     true,
	}
}
