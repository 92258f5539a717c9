package calendar

import (
	"testing"
	"time"

	"project-scheduler/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsWorking_WeeklyPattern(t *testing.T) {
	cal := NewStandardCalendar("cal-1", "Standard")

	fri := date(2024, time.January, 5) // Friday
	sat := date(2024, time.January, 6)
	sun := date(2024, time.January, 7)
	mon := date(2024, time.January, 8)

	if !IsWorking(fri, cal) {
		t.Fatalf("expected Friday to be working")
	}
	if IsWorking(sat, cal) || IsWorking(sun, cal) {
		t.Fatalf("expected weekend to be non-working")
	}
	if !IsWorking(mon, cal) {
		t.Fatalf("expected Monday to be working")
	}
}

func TestIsWorking_ExceptionOverridesWeekly(t *testing.T) {
	cal := NewStandardCalendar("cal-1", "Standard")
	// A holiday on a weekday, and a makeup working Saturday.
	cal.Exceptions = []core.CalendarException{
		{Name: "holiday", From: date(2024, 1, 8), To: date(2024, 1, 8), Working: false},
		{Name: "makeup", From: date(2024, 1, 6), To: date(2024, 1, 6), Working: true},
	}

	if IsWorking(date(2024, 1, 8), cal) {
		t.Fatalf("expected holiday exception to make Monday non-working")
	}
	if !IsWorking(date(2024, 1, 6), cal) {
		t.Fatalf("expected makeup exception to make Saturday working")
	}
}

func TestIsWorking_OverlappingExceptions_EarliestWins(t *testing.T) {
	cal := NewStandardCalendar("cal-1", "Standard")
	cal.Exceptions = []core.CalendarException{
		{Name: "first", From: date(2024, 1, 8), To: date(2024, 1, 10), Working: false},
		{Name: "second", From: date(2024, 1, 9), To: date(2024, 1, 9), Working: true},
	}

	if IsWorking(date(2024, 1, 9), cal) {
		t.Fatalf("expected earliest-inserted exception to win, keeping day 9 non-working")
	}
}

func TestAddWorkingDays_WeekendSkip(t *testing.T) {
	cal := NewStandardCalendar("cal-1", "Standard")
	// End-to-end scenario 1: Friday + duration 2 -> Monday.
	start := date(2024, 1, 5)
	end := EndFromStart(start, 2, cal)
	want := date(2024, 1, 8)
	if !end.Equal(want) {
		t.Fatalf("end = %v, want %v", end, want)
	}
}

func TestAddWorkingDays_ZeroDuration(t *testing.T) {
	cal := NewStandardCalendar("cal-1", "Standard")
	d := date(2024, 1, 8)
	if got := AddWorkingDays(d, 0, cal); !got.Equal(d) {
		t.Fatalf("AddWorkingDays(d, 0) = %v, want %v", got, d)
	}
}

func TestDegenerateCalendar_IsIdentity(t *testing.T) {
	cal := &core.Calendar{WorkingDays: map[time.Weekday]bool{}}
	if !IsDegenerate(cal) {
		t.Fatalf("expected calendar with no working days to be degenerate")
	}
	d := date(2024, 1, 8)
	if got := AddWorkingDays(d, 5, cal); !got.Equal(d) {
		t.Fatalf("degenerate calendar should not advance the date, got %v", got)
	}
}

func TestProperty_AddThenIsWorking(t *testing.T) {
	cal := NewStandardCalendar("cal-1", "Standard")
	start := date(2024, 1, 1)
	for n := 0; n <= 30; n++ {
		got := AddWorkingDays(start, n, cal)
		if !IsWorking(got, cal) && n > 0 {
			t.Fatalf("AddWorkingDays(start, %d) landed on non-working day %v", n, got)
		}
	}
}

func TestProperty_AddThenSubtractReturnsOriginal(t *testing.T) {
	cal := NewStandardCalendar("cal-1", "Standard")
	start := date(2024, 1, 1)
	for n := 1; n <= 20; n++ {
		forward := AddWorkingDays(start, n, cal)
		back := AddWorkingDays(forward, -n, cal)
		if !back.Equal(start) {
			t.Fatalf("n=%d: AddWorkingDays(AddWorkingDays(start,n),-n) = %v, want %v", n, back, start)
		}
	}
}

func TestProperty_WorkingDaysBetweenMatchesAdd(t *testing.T) {
	cal := NewStandardCalendar("cal-1", "Standard")
	start := date(2024, 1, 1)
	for n := 1; n <= 15; n++ {
		last := AddWorkingDays(start, n-1, cal)
		got := WorkingDaysBetween(start, last, cal)
		if got != n {
			t.Fatalf("n=%d: WorkingDaysBetween(start, start+%d working days) = %d, want %d", n, n-1, got, n)
		}
	}
}

func TestEndFromStart_FSChainScenario(t *testing.T) {
	cal := NewStandardCalendar("cal-1", "Standard")
	// End-to-end scenario 2: A (Mon 01-01, dur 2).
	aStart := date(2024, 1, 1)
	aEnd := EndFromStart(aStart, 2, cal)
	if want := date(2024, 1, 2); !aEnd.Equal(want) {
		t.Fatalf("A.EF = %v, want %v", aEnd, want)
	}
}

func TestStartFromEnd_RoundTrip(t *testing.T) {
	cal := NewStandardCalendar("cal-1", "Standard")
	finish := date(2024, 1, 10)
	for dur := 1; dur <= 10; dur++ {
		start := StartFromEnd(finish, dur, cal)
		got := EndFromStart(start, dur, cal)
		if !got.Equal(finish) {
			t.Fatalf("dur=%d: EndFromStart(StartFromEnd(finish,dur),dur) = %v, want %v", dur, got, finish)
		}
	}
}
