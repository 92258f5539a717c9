package scenario

import (
	"testing"
	"time"

	"project-scheduler/internal/core"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func liveWith(startX time.Time) LiveData {
	return LiveData{
		Activities: []core.Activity{
			{ID: "X", Name: "X", Start: startX, Finish: startX},
		},
		ProjectStart:  d(2024, 1, 1),
		ProjectFinish: d(2024, 12, 31),
	}
}

func TestCreate_DoesNotActivate(t *testing.T) {
	m := NewManager()
	m.Create("s1", "Scenario 1", "", liveWith(d(2024, 1, 1)), d(2024, 1, 1))
	if m.ActiveID() != "" {
		t.Fatalf("expected no active scenario after create")
	}
}

func TestActivateDeactivate_RoundTrip(t *testing.T) {
	m := NewManager()
	live := liveWith(d(2024, 1, 1))
	m.Create("s1", "Scenario 1", "", live, d(2024, 1, 1))

	working, err := m.Activate("s1", live)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ActiveID() != "s1" {
		t.Fatalf("expected s1 active")
	}

	// Edit the working copy while the scenario is active.
	working.Activities[0].Start = d(2024, 6, 1)

	restored, err := m.Deactivate(working)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ActiveID() != "" {
		t.Fatalf("expected no active scenario after deactivate")
	}
	if !restored.Activities[0].Start.Equal(d(2024, 1, 1)) {
		t.Fatalf("expected live state restored to pre-activation value, got %v", restored.Activities[0].Start)
	}

	s1 := m.Get("s1")
	if !s1.Activities[0].Start.Equal(d(2024, 6, 1)) {
		t.Fatalf("expected scenario to record the edit made while active, got %v", s1.Activities[0].Start)
	}
}

func TestActivate_FailsWhenAlreadyActive(t *testing.T) {
	m := NewManager()
	live := liveWith(d(2024, 1, 1))
	m.Create("s1", "S1", "", live, d(2024, 1, 1))
	m.Create("s2", "S2", "", live, d(2024, 1, 1))

	if _, err := m.Activate("s1", live); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Activate("s2", live); err == nil {
		t.Fatalf("expected error activating a second scenario")
	}
}

func TestDelete_ForbiddenWhileActive(t *testing.T) {
	m := NewManager()
	live := liveWith(d(2024, 1, 1))
	m.Create("s1", "S1", "", live, d(2024, 1, 1))
	if _, err := m.Activate("s1", live); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Delete("s1"); err == nil {
		t.Fatalf("expected error deleting active scenario")
	}
}

func TestDelete_SucceedsWhenInactive(t *testing.T) {
	m := NewManager()
	live := liveWith(d(2024, 1, 1))
	m.Create("s1", "S1", "", live, d(2024, 1, 1))
	if err := m.Delete("s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Get("s1") != nil {
		t.Fatalf("expected scenario removed")
	}
}

func TestCreate_DeepCopiesActivities(t *testing.T) {
	m := NewManager()
	live := liveWith(d(2024, 1, 1))
	s := m.Create("s1", "S1", "", live, d(2024, 1, 1))

	live.Activities[0].Start = d(2099, 1, 1)

	if s.Activities[0].Start.Equal(d(2099, 1, 1)) {
		t.Fatalf("expected scenario snapshot to be independent of later live-data mutation")
	}
}
