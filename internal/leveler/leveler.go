// Package leveler implements the priority-ordered resource leveler (C5): it
// rewrites the start/finish of unfrozen activities so that no resource is
// ever assigned above 100% on any working day, while leaving completed or
// explicitly frozen activities untouched.
package leveler

import (
	"sort"
	"time"

	"project-scheduler/internal/calendar"
	"project-scheduler/internal/core"
)

// Change records one activity's leveling outcome, mirroring the change log
// shape from the leveling contract.
type Change struct {
	ActivityID    string
	OriginalStart time.Time
	OriginalEnd   time.Time
	NewStart      time.Time
	NewEnd        time.Time
	Reason        string
}

// Input bundles the activities to level against their calendars. Activities
// are leveled in place; Result.Changes lists only those that moved.
type Input struct {
	Activities        []*core.Activity
	Calendars         map[string]*core.Calendar
	DefaultCalendarID string
	// HorizonDays bounds how far past an activity's original start the
	// search for a feasible slot may look before giving up. Zero or negative
	// falls back to 730 days, the same figure as the envDefault of
	// core.EngineConfig.LevelingHorizonDays.
	HorizonDays int
}

// Result is the outcome of one leveling run.
type Result struct {
	Changes []Change
	Report  core.OperationReport
}

const defaultHorizonDays = 730

// Run levels all non-summary, non-frozen activities by priority (critical
// first), breaking ties by current start ascending, and returns the set of
// activities that moved. Frozen and completed activities are placed first at
// their current dates, so the others are fitted around them.
func Run(in Input) *Result {
	horizon := in.HorizonDays
	if horizon <= 0 {
		horizon = defaultHorizonDays
	}

	result := &Result{}

	candidates := make([]*core.Activity, 0, len(in.Activities))
	for _, a := range in.Activities {
		if a.Kind == core.KindSummary {
			continue
		}
		candidates = append(candidates, a)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		fi := candidates[i].Frozen || candidates[i].Status == core.StatusCompleted
		fj := candidates[j].Frozen || candidates[j].Status == core.StatusCompleted
		if fi != fj {
			return fi
		}
		pi, pj := candidates[i].Priority.Rank(), candidates[j].Priority.Rank()
		if pi != pj {
			return pi < pj
		}
		return candidates[i].Start.Before(candidates[j].Start)
	})

	placed := make([]*core.Activity, 0, len(candidates))

	for _, a := range candidates {
		originalStart, originalEnd := a.Start, a.Finish

		if a.Frozen || a.Status == core.StatusCompleted {
			placed = append(placed, a)
			continue
		}

		cal := resolveCalendar(a, in.Calendars, in.DefaultCalendarID)
		dur := activityDuration(a, cal)

		newStart, found := findFeasibleStart(a, dur, cal, placed, horizon)
		if !found {
			result.Report.Add(a.ID, "leveler exceeded search horizon; activity left at its original start")
			placed = append(placed, a)
			continue
		}

		newEnd := calendar.EndFromStart(newStart, dur, cal)
		a.Start = newStart
		a.Finish = newEnd

		if !newStart.Equal(originalStart) || !newEnd.Equal(originalEnd) {
			result.Changes = append(result.Changes, Change{
				ActivityID:    a.ID,
				OriginalStart: originalStart,
				OriginalEnd:   originalEnd,
				NewStart:      newStart,
				NewEnd:        newEnd,
				Reason:        "resolved resource over-allocation",
			})
		}

		placed = append(placed, a)
	}

	return result
}

// findFeasibleStart scans forward from the candidate's current start for
// the earliest working day at which none of its resource assignments would
// exceed 100% allocation against the already-placed set, for every day of
// its duration. It gives up after horizonDays.
func findFeasibleStart(a *core.Activity, dur int, cal *core.Calendar, placed []*core.Activity, horizonDays int) (time.Time, bool) {
	start := calendar.TruncateToDay(a.Start)

	for offset := 0; offset <= horizonDays; offset++ {
		candidate := start.AddDate(0, 0, offset)
		if !calendar.IsWorking(candidate, cal) {
			continue
		}
		end := calendar.EndFromStart(candidate, dur, cal)
		if fits(a, candidate, end, cal, placed) {
			return candidate, true
		}
	}
	return start, false
}

// fits reports whether placing a from candidateStart to candidateEnd keeps
// every resource's daily total allocation at or below 100 against placed.
func fits(a *core.Activity, candidateStart, candidateEnd time.Time, cal *core.Calendar, placed []*core.Activity) bool {
	if len(a.Assignments) == 0 {
		return true
	}
	for cur := candidateStart; !cur.After(candidateEnd); cur = cur.AddDate(0, 0, 1) {
		if !calendar.IsWorking(cur, cal) {
			continue
		}
		for _, asn := range a.Assignments {
			total := asn.Allocation
			for _, other := range placed {
				total += allocationOn(other, asn.ResourceID, cur)
			}
			if total > 100 {
				return false
			}
		}
	}
	return true
}

// allocationOn returns the allocation other assigns to resourceID on day,
// or 0 if other has no presence on that day or no such assignment.
func allocationOn(other *core.Activity, resourceID string, day time.Time) float64 {
	if day.Before(calendar.TruncateToDay(other.Start)) || day.After(calendar.TruncateToDay(other.Finish)) {
		return 0
	}
	var total float64
	for _, asn := range other.Assignments {
		if asn.ResourceID == resourceID {
			total += asn.Allocation
		}
	}
	return total
}

func resolveCalendar(a *core.Activity, calendars map[string]*core.Calendar, defaultID string) *core.Calendar {
	if a.CalendarID != "" {
		if cal, ok := calendars[a.CalendarID]; ok {
			return cal
		}
	}
	if cal, ok := calendars[defaultID]; ok {
		return cal
	}
	return calendar.NewStandardCalendar("", "fallback")
}

func activityDuration(a *core.Activity, cal *core.Calendar) int {
	if a.Duration != nil {
		return *a.Duration
	}
	if a.Kind == core.KindMilestone {
		return 0
	}
	return calendar.WorkingDaysBetween(a.Start, a.Finish, cal)
}
