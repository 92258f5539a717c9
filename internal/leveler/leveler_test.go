package leveler

import (
	"testing"
	"time"

	"project-scheduler/internal/calendar"
	"project-scheduler/internal/core"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func stdCalendars() map[string]*core.Calendar {
	return map[string]*core.Calendar{"std": calendar.NewStandardCalendar("std", "Standard")}
}

func dur(n int) *int { return &n }

func TestLeveler_ResolvesOverAllocation(t *testing.T) {
	// Both activities want the same resource at 100% on the same days;
	// the lower-priority one must be pushed out.
	hi := &core.Activity{
		ID: "hi", Kind: core.KindLeafTask, Priority: core.PriorityHigh, CalendarID: "std",
		Start: d(2024, 1, 1), Finish: d(2024, 1, 2), Duration: dur(2),
		Assignments: []core.Assignment{{ResourceID: "r1", Allocation: 100}},
	}
	lo := &core.Activity{
		ID: "lo", Kind: core.KindLeafTask, Priority: core.PriorityLow, CalendarID: "std",
		Start: d(2024, 1, 1), Finish: d(2024, 1, 2), Duration: dur(2),
		Assignments: []core.Assignment{{ResourceID: "r1", Allocation: 100}},
	}

	res := Run(Input{Activities: []*core.Activity{lo, hi}, Calendars: stdCalendars(), DefaultCalendarID: "std"})

	if hi.Start.After(d(2024, 1, 1)) {
		t.Fatalf("expected higher-priority activity to keep its original start, got %v", hi.Start)
	}
	if !lo.Start.After(d(2024, 1, 1)) {
		t.Fatalf("expected lower-priority activity to move, got %v", lo.Start)
	}
	if len(res.Changes) != 1 || res.Changes[0].ActivityID != "lo" {
		t.Fatalf("expected exactly one change record for lo, got %+v", res.Changes)
	}
}

func TestLeveler_NoChangeWhenWithinCapacity(t *testing.T) {
	a := &core.Activity{
		ID: "a", Kind: core.KindLeafTask, Priority: core.PriorityMedium, CalendarID: "std",
		Start: d(2024, 1, 1), Finish: d(2024, 1, 2), Duration: dur(2),
		Assignments: []core.Assignment{{ResourceID: "r1", Allocation: 40}},
	}
	b := &core.Activity{
		ID: "b", Kind: core.KindLeafTask, Priority: core.PriorityMedium, CalendarID: "std",
		Start: d(2024, 1, 1), Finish: d(2024, 1, 2), Duration: dur(2),
		Assignments: []core.Assignment{{ResourceID: "r1", Allocation: 40}},
	}

	res := Run(Input{Activities: []*core.Activity{a, b}, Calendars: stdCalendars(), DefaultCalendarID: "std"})

	if len(res.Changes) != 0 {
		t.Fatalf("expected no changes, got %+v", res.Changes)
	}
	if !a.Start.Equal(d(2024, 1, 1)) || !b.Start.Equal(d(2024, 1, 1)) {
		t.Fatalf("expected both activities to keep their original start")
	}
}

func TestLeveler_FrozenActivityNeverMoves(t *testing.T) {
	frozen := &core.Activity{
		ID: "frozen", Kind: core.KindLeafTask, Priority: core.PriorityLow, CalendarID: "std",
		Start: d(2024, 1, 1), Finish: d(2024, 1, 2), Duration: dur(2), Frozen: true,
		Assignments: []core.Assignment{{ResourceID: "r1", Allocation: 100}},
	}
	mover := &core.Activity{
		ID: "mover", Kind: core.KindLeafTask, Priority: core.PriorityCritical, CalendarID: "std",
		Start: d(2024, 1, 1), Finish: d(2024, 1, 2), Duration: dur(2),
		Assignments: []core.Assignment{{ResourceID: "r1", Allocation: 100}},
	}

	Run(Input{Activities: []*core.Activity{frozen, mover}, Calendars: stdCalendars(), DefaultCalendarID: "std"})

	if !frozen.Start.Equal(d(2024, 1, 1)) {
		t.Fatalf("expected frozen activity to stay put, got %v", frozen.Start)
	}
}

func TestLeveler_CompletedActivityTreatedAsFrozen(t *testing.T) {
	completed := &core.Activity{
		ID: "done", Kind: core.KindLeafTask, Priority: core.PriorityLow, CalendarID: "std",
		Start: d(2024, 1, 1), Finish: d(2024, 1, 2), Duration: dur(2), Status: core.StatusCompleted,
		Assignments: []core.Assignment{{ResourceID: "r1", Allocation: 100}},
	}
	other := &core.Activity{
		ID: "other", Kind: core.KindLeafTask, Priority: core.PriorityCritical, CalendarID: "std",
		Start: d(2024, 1, 1), Finish: d(2024, 1, 2), Duration: dur(2),
		Assignments: []core.Assignment{{ResourceID: "r1", Allocation: 100}},
	}

	Run(Input{Activities: []*core.Activity{completed, other}, Calendars: stdCalendars(), DefaultCalendarID: "std"})

	if !completed.Start.Equal(d(2024, 1, 1)) {
		t.Fatalf("expected completed activity to stay put, got %v", completed.Start)
	}
}

func TestLeveler_SummaryActivitiesSkipped(t *testing.T) {
	summary := &core.Activity{ID: "sum", Kind: core.KindSummary, Start: d(2024, 1, 1), Finish: d(2024, 1, 5)}
	leaf := &core.Activity{
		ID: "leaf", Kind: core.KindLeafTask, Priority: core.PriorityMedium, CalendarID: "std",
		Start: d(2024, 1, 1), Finish: d(2024, 1, 1), Duration: dur(1),
	}
	res := Run(Input{Activities: []*core.Activity{summary, leaf}, Calendars: stdCalendars(), DefaultCalendarID: "std"})
	for _, c := range res.Changes {
		if c.ActivityID == "sum" {
			t.Fatalf("summary activity should never be leveled")
		}
	}
}
