package project

import (
	"testing"
	"time"

	"project-scheduler/internal/core"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func dur(n int) *int { return &n }

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAddActivity_RejectsInvalid(t *testing.T) {
	s := New()
	err := s.AddActivity(core.Activity{Kind: core.KindLeafTask, Start: d(2024, 1, 2), Finish: d(2024, 1, 1)})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if len(s.GetAllActivities()) != 0 {
		t.Fatalf("expected state unchanged after rejected add")
	}
}

func TestAddDependency_RejectsCycle(t *testing.T) {
	s := New()
	must(t, s.AddActivity(core.Activity{ID: "A", Name: "A", Kind: core.KindLeafTask, Start: d(2024, 1, 1), Finish: d(2024, 1, 1), CalendarID: "default"}))
	must(t, s.AddActivity(core.Activity{ID: "B", Name: "B", Kind: core.KindLeafTask, Start: d(2024, 1, 1), Finish: d(2024, 1, 1), CalendarID: "default"}))
	must(t, s.AddDependency(core.Dependency{ID: "d1", PredecessorID: "A", SuccessorID: "B", Kind: core.LinkFS}))

	err := s.AddDependency(core.Dependency{ID: "d2", PredecessorID: "B", SuccessorID: "A", Kind: core.LinkFS})
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if _, ok := err.(*core.CycleError); !ok {
		t.Fatalf("expected *core.CycleError, got %T", err)
	}
}

func TestDeleteActivity_CascadesDependencies(t *testing.T) {
	s := New()
	must(t, s.AddActivity(core.Activity{ID: "A", Name: "A", Kind: core.KindLeafTask, Start: d(2024, 1, 1), Finish: d(2024, 1, 1), CalendarID: "default"}))
	must(t, s.AddActivity(core.Activity{ID: "B", Name: "B", Kind: core.KindLeafTask, Start: d(2024, 1, 1), Finish: d(2024, 1, 1), CalendarID: "default"}))
	must(t, s.AddDependency(core.Dependency{ID: "d1", PredecessorID: "A", SuccessorID: "B", Kind: core.LinkFS}))

	must(t, s.DeleteActivity("A"))

	if len(s.GetAllDependencies()) != 0 {
		t.Fatalf("expected dependency touching deleted activity to be removed")
	}
	if s.GetActivity("A") != nil {
		t.Fatalf("expected activity removed")
	}
}

func TestDeleteCalendar_RepointsActivities(t *testing.T) {
	s := New()
	must(t, s.AddCalendar(core.Calendar{ID: "custom", Name: "Custom", WorkingDays: map[time.Weekday]bool{time.Monday: true}}))
	must(t, s.AddActivity(core.Activity{ID: "A", Name: "A", Kind: core.KindLeafTask, Start: d(2024, 1, 1), Finish: d(2024, 1, 1), CalendarID: "custom"}))

	must(t, s.DeleteCalendar("custom"))

	if s.GetActivity("A").CalendarID != s.DefaultCalendarID() {
		t.Fatalf("expected activity re-pointed to default calendar")
	}
}

func TestDeleteCalendar_RefusesLastCalendar(t *testing.T) {
	s := New()
	if err := s.DeleteCalendar("default"); err == nil {
		t.Fatalf("expected error deleting the last calendar")
	}
}

func TestEndToEnd_FSChainScenario2(t *testing.T) {
	s := New()
	must(t, s.AddActivity(core.Activity{ID: "A", Name: "A", Kind: core.KindLeafTask, Start: d(2024, 1, 1), Duration: dur(2), CalendarID: "default"}))
	must(t, s.AddActivity(core.Activity{ID: "B", Name: "B", Kind: core.KindLeafTask, Start: d(2024, 1, 1), Duration: dur(2), CalendarID: "default"}))
	must(t, s.AddDependency(core.Dependency{ID: "d1", PredecessorID: "A", SuccessorID: "B", Kind: core.LinkFS}))

	if _, err := s.RecalculateDates(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b := s.GetActivity("B")
	if !b.Timing.EarlyStart.Equal(d(2024, 1, 3)) {
		t.Fatalf("B.ES = %v, want 2024-01-03", b.Timing.EarlyStart)
	}
}

func TestEndToEnd_LevelingScenario5(t *testing.T) {
	s := New()
	must(t, s.AddActivity(core.Activity{
		ID: "hi", Name: "High", Kind: core.KindLeafTask, Priority: core.PriorityHigh, CalendarID: "default",
		Start: d(2024, 1, 1), Finish: d(2024, 1, 5), Duration: dur(5),
		Assignments: []core.Assignment{{ResourceID: "r1", Allocation: 100}},
	}))
	must(t, s.AddActivity(core.Activity{
		ID: "med", Name: "Medium", Kind: core.KindLeafTask, Priority: core.PriorityMedium, CalendarID: "default",
		Start: d(2024, 1, 1), Finish: d(2024, 1, 5), Duration: dur(5),
		Assignments: []core.Assignment{{ResourceID: "r1", Allocation: 100}},
	}))

	cfg := core.DefaultEngineConfig()
	result, err := s.LevelResources(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Changes) != 1 {
		t.Fatalf("expected exactly one change, got %+v", result.Changes)
	}
	if !s.GetActivity("med").Start.Equal(d(2024, 1, 8)) {
		t.Fatalf("expected medium task to start 2024-01-08, got %v", s.GetActivity("med").Start)
	}
}

func TestEndToEnd_ScenarioRoundTripScenario6(t *testing.T) {
	s := New()
	must(t, s.AddActivity(core.Activity{ID: "X", Name: "X", Kind: core.KindLeafTask, Start: d(2024, 1, 1), Finish: d(2024, 1, 1), CalendarID: "default"}))

	s.CreateScenario("s1", "Scenario 1", "")
	must(t, s.ActivateScenario("s1"))

	must(t, s.UpdateActivity("X", func(a *core.Activity) {
		a.Start = d(2024, 6, 1)
		a.Finish = d(2024, 6, 1)
	}))

	must(t, s.DeactivateScenario())

	if !s.GetActivity("X").Start.Equal(d(2024, 1, 1)) {
		t.Fatalf("expected live X unchanged after deactivate, got %v", s.GetActivity("X").Start)
	}

	for _, sc := range s.GetAllScenarios() {
		if sc.ID == "s1" {
			if !sc.Activities[0].Start.Equal(d(2024, 6, 1)) {
				t.Fatalf("expected scenario to retain the edit made while active, got %v", sc.Activities[0].Start)
			}
		}
	}
}

func TestBaseline_SaveApplyThenVariance(t *testing.T) {
	s := New()
	cost := 1000.0
	must(t, s.AddActivity(core.Activity{ID: "A", Name: "A", Kind: core.KindLeafTask, Start: d(2024, 1, 1), Finish: d(2024, 1, 5), Duration: dur(5), Cost: &cost, Progress: 10, CalendarID: "default"}))

	s.SaveBaseline("b1", "Baseline 1", "initial")
	must(t, s.ApplyBaseline("b1"))

	must(t, s.UpdateActivity("A", func(a *core.Activity) {
		a.Start = d(2024, 1, 3)
		a.Finish = d(2024, 1, 7)
		newCost := 1200.0
		a.Cost = &newCost
	}))

	variance, err := s.BaselineVariance("b1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if variance.TotalCostDelta != 200 {
		t.Fatalf("expected total cost delta 200, got %v", variance.TotalCostDelta)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	s := New()
	cost := 500.0
	must(t, s.AddActivity(core.Activity{ID: "A", Name: "A", Kind: core.KindLeafTask, Start: d(2024, 1, 1), Finish: d(2024, 1, 5), Duration: dur(5), Cost: &cost, CalendarID: "default"}))
	must(t, s.AddActivity(core.Activity{ID: "B", Name: "B", Kind: core.KindLeafTask, Start: d(2024, 1, 6), Finish: d(2024, 1, 10), Duration: dur(5), CalendarID: "default"}))
	must(t, s.AddDependency(core.Dependency{ID: "d1", PredecessorID: "A", SuccessorID: "B", Kind: core.LinkFS}))

	rec := s.ExportState()
	data, err := MarshalYAML(rec)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}

	decoded, err := UnmarshalYAML(data)
	if err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}

	s2 := New()
	if err := s2.ImportState(decoded); err != nil {
		t.Fatalf("unexpected import error: %v", err)
	}

	if len(s2.GetAllActivities()) != 2 {
		t.Fatalf("expected 2 activities after round trip, got %d", len(s2.GetAllActivities()))
	}
	a := s2.GetActivity("A")
	if a == nil || !a.Start.Equal(d(2024, 1, 1)) {
		t.Fatalf("expected activity A to round-trip with its start date intact")
	}
	if len(s2.GetAllDependencies()) != 1 {
		t.Fatalf("expected 1 dependency after round trip")
	}
}

func TestExportImport_RoundTrip_ScenariosAndCustomFields(t *testing.T) {
	s := New()
	must(t, s.AddActivity(core.Activity{ID: "A", Name: "A", Kind: core.KindLeafTask, Start: d(2024, 1, 1), Finish: d(2024, 1, 5), Duration: dur(5), CalendarID: "default"}))
	must(t, s.AddCustomField(core.CustomField{ID: "risk", Name: "Risk", Kind: core.FieldText}))
	must(t, s.SetCustomFieldValue("A", "risk", core.CustomFieldValue{Kind: core.FieldText, Text: "high"}))

	s.CreateScenario("s1", "Scenario 1", "branch")
	must(t, s.ActivateScenario("s1"))
	must(t, s.UpdateActivity("A", func(a *core.Activity) {
		a.Start = d(2024, 6, 1)
		a.Finish = d(2024, 6, 5)
	}))

	rec := s.ExportState()
	data, err := MarshalYAML(rec)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}

	decoded, err := UnmarshalYAML(data)
	if err != nil {
		t.Fatalf("unexpected unmarshal error: %v", err)
	}

	s2 := New()
	if err := s2.ImportState(decoded); err != nil {
		t.Fatalf("unexpected import error: %v", err)
	}

	a := s2.GetActivity("A")
	if a == nil {
		t.Fatalf("expected activity A to survive round trip")
	}
	v, ok := a.CustomFields["risk"]
	if !ok || v.Text != "high" {
		t.Fatalf("expected custom field value to survive round trip, got %+v", a.CustomFields)
	}

	if s2.ActiveScenarioID() != "s1" {
		t.Fatalf("expected active scenario id to survive round trip, got %q", s2.ActiveScenarioID())
	}
	scenarios := s2.GetAllScenarios()
	if len(scenarios) != 1 || scenarios[0].ID != "s1" {
		t.Fatalf("expected scenario s1 to survive round trip, got %+v", scenarios)
	}

	must(t, s2.DeactivateScenario())
	if !s2.GetActivity("A").Start.Equal(d(2024, 1, 1)) {
		t.Fatalf("expected saved live data to survive round trip and restore on deactivate, got %v", s2.GetActivity("A").Start)
	}
}

func TestProjectEVM_AggregatesActivities(t *testing.T) {
	s := New()
	cost1, cost2 := 1000.0, 500.0
	must(t, s.AddActivity(core.Activity{ID: "A", Name: "A", Kind: core.KindLeafTask, Start: d(2024, 1, 1), Finish: d(2024, 1, 10), Cost: &cost1, Progress: 50, CalendarID: "default"}))
	must(t, s.AddActivity(core.Activity{ID: "B", Name: "B", Kind: core.KindLeafTask, Start: d(2024, 1, 1), Finish: d(2024, 1, 10), Cost: &cost2, Progress: 100, CalendarID: "default"}))

	m := s.ProjectEVM(d(2024, 1, 5))
	if m.BAC != 1500 {
		t.Fatalf("expected BAC 1500, got %v", m.BAC)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
