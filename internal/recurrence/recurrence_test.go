package recurrence

import (
	"testing"
	"time"

	"project-scheduler/internal/core"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestExpand_WeeklyWithCount(t *testing.T) {
	template := core.Activity{
		ID: "standup", Name: "Standup", Kind: core.KindLeafTask,
		Start: d(2024, 1, 1), Finish: d(2024, 1, 1),
		Recurrence: &core.RecurrenceRule{Freq: core.RecurWeekly, Interval: 1, Count: 3},
	}

	out, err := Expand(template, d(2024, 1, 1), d(2024, 12, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(out))
	}
	wantStarts := []time.Time{d(2024, 1, 1), d(2024, 1, 8), d(2024, 1, 15)}
	for i, a := range out {
		if !a.Start.Equal(wantStarts[i]) {
			t.Fatalf("occurrence %d: start = %v, want %v", i, a.Start, wantStarts[i])
		}
		if a.Recurrence != nil {
			t.Fatalf("occurrence %d: expected no recurrence rule on expanded activity", i)
		}
	}
	if out[0].ID != "standup#0001" || out[1].ID != "standup#0002" {
		t.Fatalf("unexpected ids: %s, %s", out[0].ID, out[1].ID)
	}
}

func TestExpand_StopsAtUntil(t *testing.T) {
	until := d(2024, 1, 20)
	template := core.Activity{
		ID: "daily", Name: "Daily", Kind: core.KindLeafTask,
		Start: d(2024, 1, 1), Finish: d(2024, 1, 1),
		Recurrence: &core.RecurrenceRule{Freq: core.RecurDaily, Interval: 7, Until: &until},
	}

	out, err := Expand(template, d(2024, 1, 1), d(2024, 12, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, a := range out {
		if a.Start.After(until) {
			t.Fatalf("occurrence at %v exceeds Until %v", a.Start, until)
		}
	}
}

func TestExpand_PreservesDuration(t *testing.T) {
	template := core.Activity{
		ID: "sprint", Name: "Sprint", Kind: core.KindLeafTask,
		Start: d(2024, 1, 1), Finish: d(2024, 1, 15),
		Recurrence: &core.RecurrenceRule{Freq: core.RecurMonthly, Interval: 1, Count: 2},
	}
	out, err := Expand(template, d(2024, 1, 1), d(2024, 12, 31))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, a := range out {
		if a.Finish.Sub(a.Start) != 14*24*time.Hour {
			t.Fatalf("expected 14-day span preserved, got %v", a.Finish.Sub(a.Start))
		}
	}
}

func TestExpand_RequiresRecurrenceRule(t *testing.T) {
	template := core.Activity{ID: "plain", Start: d(2024, 1, 1), Finish: d(2024, 1, 1)}
	if _, err := Expand(template, d(2024, 1, 1), d(2024, 12, 31)); err == nil {
		t.Fatalf("expected error for activity with no recurrence rule")
	}
}
