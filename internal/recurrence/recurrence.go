// Package recurrence expands a recurring-activity template into ordinary,
// non-recurring activities (C10). It is a pure function with no dependency
// on project state; the caller feeds its output into the facade's
// AddActivity like any other activity.
package recurrence

import (
	"fmt"
	"time"

	"project-scheduler/internal/core"
)

// Expand produces the concrete occurrences of template within [from, to],
// ending at the earlier of Until and to, or after Count occurrences when
// Count is positive. template.Recurrence must be non-nil; the
// returned activities carry no Recurrence of their own.
func Expand(template core.Activity, from, to time.Time) ([]core.Activity, error) {
	rule := template.Recurrence
	if rule == nil {
		return nil, fmt.Errorf("activity %q has no recurrence rule to expand", template.ID)
	}

	interval := rule.Interval
	if interval <= 0 {
		interval = 1
	}

	until := to
	if rule.Until != nil && rule.Until.Before(until) {
		until = *rule.Until
	}

	span := template.Finish.Sub(template.Start)

	var out []core.Activity
	occurrence := 0
	cursor := template.Start
	if cursor.Before(from) {
		cursor = advanceToWindow(cursor, from, rule.Freq, interval)
	}

	for {
		if cursor.After(until) {
			break
		}
		if rule.Count > 0 && occurrence >= rule.Count {
			break
		}

		a := template
		a.ID = fmt.Sprintf("%s#%04d", template.ID, occurrence+1)
		a.Start = cursor
		a.Finish = cursor.Add(span)
		a.Recurrence = nil
		out = append(out, a)

		occurrence++
		cursor = step(cursor, rule.Freq, interval)
	}

	return out, nil
}

// advanceToWindow skips occurrences before from without materializing them,
// used when the template's own start predates the requested window.
func advanceToWindow(cursor, from time.Time, freq core.RecurrenceFreq, interval int) time.Time {
	for cursor.Before(from) {
		cursor = step(cursor, freq, interval)
	}
	return cursor
}

func step(t time.Time, freq core.RecurrenceFreq, interval int) time.Time {
	switch freq {
	case core.RecurDaily:
		return t.AddDate(0, 0, interval)
	case core.RecurWeekly:
		return t.AddDate(0, 0, 7*interval)
	case core.RecurMonthly:
		return t.AddDate(0, interval, 0)
	default:
		return t.AddDate(0, 0, interval)
	}
}
