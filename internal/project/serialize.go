package project

import (
	"fmt"
	"time"

	"github.com/goccy/go-yaml"

	"project-scheduler/internal/core"
	"project-scheduler/internal/scenario"
)

// dateLayout is the ISO-8601 date form the persisted record uses for every
// date field, per the serialization contract (dates as ISO-8601 strings,
// enums as stable string tags).
const dateLayout = "2006-01-02"

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, s)
}

// Record is the opaque, serializable projection of a State: every entity
// collection with dates as ISO-8601 strings and enums as their already-
// stable string tags. ExportState/ImportState round-trip through this
// shape with no data loss for anything the engine schedules on.
type Record struct {
	Activities        []ActivityRecord   `yaml:"activities"`
	Dependencies      []core.Dependency  `yaml:"dependencies"`
	Resources         []core.Resource    `yaml:"resources"`
	Calendars         []CalendarRecord   `yaml:"calendars"`
	DefaultCalendarID string             `yaml:"defaultCalendarId"`
	Baselines         []BaselineRecord   `yaml:"baselines"`
	CustomFields      []core.CustomField `yaml:"customFields"`
	Scenarios         []ScenarioRecord   `yaml:"scenarios,omitempty"`
	ActiveScenarioID  string             `yaml:"activeScenarioId,omitempty"`
	SavedLiveData     *LiveDataRecord    `yaml:"savedLiveData,omitempty"`
}

// ActivityRecord mirrors core.Activity with string dates.
type ActivityRecord struct {
	ID              string                        `yaml:"id"`
	Name            string                        `yaml:"name"`
	Kind            core.ActivityKind              `yaml:"kind"`
	Start           string                        `yaml:"start"`
	Finish          string                        `yaml:"finish"`
	Duration        *int                          `yaml:"duration,omitempty"`
	Progress        float64                       `yaml:"progress"`
	Status          core.ActivityStatus            `yaml:"status,omitempty"`
	Priority        core.Priority                  `yaml:"priority,omitempty"`
	ConstraintKind  core.ConstraintKind             `yaml:"constraintKind,omitempty"`
	ConstraintDate  string                        `yaml:"constraintDate,omitempty"`
	CalendarID      string                        `yaml:"calendarId,omitempty"`
	Effort          *float64                      `yaml:"effort,omitempty"`
	Cost            *float64                      `yaml:"cost,omitempty"`
	BudgetedCost    *float64                      `yaml:"budgetedCost,omitempty"`
	ActualCost      *float64                      `yaml:"actualCost,omitempty"`
	SummaryParentID string                        `yaml:"summaryParentId,omitempty"`
	Assignments     []core.Assignment            `yaml:"assignments,omitempty"`
	Frozen          bool                          `yaml:"frozen,omitempty"`
	CustomFields    map[string]core.CustomFieldValue `yaml:"customFields,omitempty"`
}

// ScenarioRecord mirrors core.Scenario with string dates.
type ScenarioRecord struct {
	ID            string            `yaml:"id"`
	Name          string            `yaml:"name"`
	Description   string            `yaml:"description,omitempty"`
	CreatedAt     string            `yaml:"createdAt"`
	Activities    []ActivityRecord  `yaml:"activities"`
	Dependencies  []core.Dependency `yaml:"dependencies"`
	Resources     []core.Resource   `yaml:"resources"`
	ProjectStart  string            `yaml:"projectStart"`
	ProjectFinish string            `yaml:"projectFinish"`
}

// LiveDataRecord mirrors scenario.LiveData with string dates; it persists
// the live state saved aside while a scenario is active, so deactivate
// still has it to restore after a process restart.
type LiveDataRecord struct {
	Activities    []ActivityRecord  `yaml:"activities"`
	Dependencies  []core.Dependency `yaml:"dependencies"`
	Resources     []core.Resource   `yaml:"resources"`
	ProjectStart  string            `yaml:"projectStart"`
	ProjectFinish string            `yaml:"projectFinish"`
}

// CalendarRecord mirrors core.Calendar with string exception dates.
type CalendarRecord struct {
	ID             string                     `yaml:"id"`
	Name           string                     `yaml:"name"`
	WorkingDays    []int                      `yaml:"workingDays"` // 0=Sunday .. 6=Saturday
	HoursPerDay    float64                    `yaml:"hoursPerDay"`
	WorkingWindows []core.WorkingWindow       `yaml:"workingWindows,omitempty"`
	Exceptions     []CalendarExceptionRecord  `yaml:"exceptions,omitempty"`
	Default        bool                       `yaml:"default,omitempty"`
}

// CalendarExceptionRecord mirrors core.CalendarException with string dates.
type CalendarExceptionRecord struct {
	Name    string `yaml:"name"`
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Working bool   `yaml:"working"`
}

// BaselineRecord mirrors core.Baseline with string dates.
type BaselineRecord struct {
	ID            string                      `yaml:"id"`
	Name          string                      `yaml:"name"`
	Description   string                      `yaml:"description,omitempty"`
	CreatedAt     string                      `yaml:"createdAt"`
	Snapshots     []BaselineSnapshotRecord    `yaml:"snapshots"`
	ProjectStart  string                      `yaml:"projectStart"`
	ProjectFinish string                      `yaml:"projectFinish"`
	TotalCost     float64                     `yaml:"totalCost"`
	Default       bool                        `yaml:"default,omitempty"`
}

// BaselineSnapshotRecord mirrors core.BaselineSnapshot with string dates.
type BaselineSnapshotRecord struct {
	ActivityID string  `yaml:"activityId"`
	Start      string  `yaml:"start"`
	Finish     string  `yaml:"finish"`
	Duration   int     `yaml:"duration"`
	Work       float64 `yaml:"work"`
	Cost       float64 `yaml:"cost"`
	Progress   float64 `yaml:"progress"`
}

// ExportState projects the current state into its serializable Record.
func (s *State) ExportState() Record {
	rec := Record{
		Dependencies:      append([]core.Dependency(nil), s.dependencies...),
		Resources:         append([]core.Resource(nil), s.resources...),
		DefaultCalendarID: s.defaultCalendarID,
	}
	for _, a := range s.activities {
		rec.Activities = append(rec.Activities, toActivityRecord(a))
	}
	for _, c := range s.calendars {
		rec.Calendars = append(rec.Calendars, toCalendarRecord(c))
	}
	for _, b := range s.baselines {
		rec.Baselines = append(rec.Baselines, toBaselineRecord(b))
	}
	for _, f := range s.customFields {
		rec.CustomFields = append(rec.CustomFields, f)
	}
	for _, sc := range s.scenarios.All() {
		rec.Scenarios = append(rec.Scenarios, toScenarioRecord(sc))
	}
	rec.ActiveScenarioID = s.scenarios.ActiveID()
	if saved := s.scenarios.SavedLiveData(); saved != nil {
		ldr := toLiveDataRecord(*saved)
		rec.SavedLiveData = &ldr
	}
	return rec
}

// ImportState replaces the current state's entity collections, including
// scenarios and the active-scenario/saved-live-data bookkeeping, with those
// decoded from rec. The round trip is lossless: every scenario, its active
// id, and the live data saved aside while a scenario is active all survive
// an ExportState/ImportState cycle.
func (s *State) ImportState(rec Record) error {
	activities := make([]*core.Activity, 0, len(rec.Activities))
	activityIdx := make(map[string]int, len(rec.Activities))
	for _, ar := range rec.Activities {
		a, err := fromActivityRecord(ar)
		if err != nil {
			return fmt.Errorf("activity %q: %w", ar.ID, err)
		}
		activityIdx[a.ID] = len(activities)
		activities = append(activities, a)
	}

	calendars := make(map[string]*core.Calendar, len(rec.Calendars))
	for _, cr := range rec.Calendars {
		c, err := fromCalendarRecord(cr)
		if err != nil {
			return fmt.Errorf("calendar %q: %w", cr.ID, err)
		}
		calendars[c.ID] = c
	}
	if len(calendars) == 0 {
		return &core.InvariantViolationError{Message: "imported record has no calendars"}
	}

	baselines := make([]*core.Baseline, 0, len(rec.Baselines))
	baselineIdx := make(map[string]int, len(rec.Baselines))
	for _, br := range rec.Baselines {
		b, err := fromBaselineRecord(br)
		if err != nil {
			return fmt.Errorf("baseline %q: %w", br.ID, err)
		}
		baselineIdx[b.ID] = len(baselines)
		baselines = append(baselines, b)
	}

	customFields := make(map[string]core.CustomField, len(rec.CustomFields))
	for _, f := range rec.CustomFields {
		customFields[f.ID] = f
	}

	scenarios := make([]*core.Scenario, 0, len(rec.Scenarios))
	for _, sr := range rec.Scenarios {
		sc, err := fromScenarioRecord(sr)
		if err != nil {
			return fmt.Errorf("scenario %q: %w", sr.ID, err)
		}
		scenarios = append(scenarios, sc)
	}
	var savedLiveData *scenario.LiveData
	if rec.SavedLiveData != nil {
		ld, err := fromLiveDataRecord(*rec.SavedLiveData)
		if err != nil {
			return fmt.Errorf("savedLiveData: %w", err)
		}
		savedLiveData = &ld
	}

	s.activities = activities
	s.activityIdx = activityIdx
	s.dependencies = append([]core.Dependency(nil), rec.Dependencies...)
	s.resources = append([]core.Resource(nil), rec.Resources...)
	s.resourceIdx = make(map[string]int, len(s.resources))
	for i, r := range s.resources {
		s.resourceIdx[r.ID] = i
	}
	s.calendars = calendars
	s.defaultCalendarID = rec.DefaultCalendarID
	if _, ok := s.calendars[s.defaultCalendarID]; !ok {
		for id := range s.calendars {
			s.defaultCalendarID = id
			break
		}
	}
	s.baselines = baselines
	s.baselineIdx = baselineIdx
	s.customFields = customFields
	s.scenarios = scenario.Restore(scenarios, rec.ActiveScenarioID, savedLiveData)
	s.touch()
	return nil
}

// MarshalYAML encodes rec as a YAML project file.
func MarshalYAML(rec Record) ([]byte, error) {
	return yaml.Marshal(rec)
}

// UnmarshalYAML decodes a YAML project file into a Record.
func UnmarshalYAML(data []byte) (Record, error) {
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func toActivityRecord(a *core.Activity) ActivityRecord {
	ar := ActivityRecord{
		ID: a.ID, Name: a.Name, Kind: a.Kind,
		Start: formatDate(a.Start), Finish: formatDate(a.Finish),
		Duration: a.Duration, Progress: a.Progress, Status: a.Status, Priority: a.Priority,
		CalendarID: a.CalendarID, Effort: a.Effort, Cost: a.Cost, BudgetedCost: a.BudgetedCost,
		ActualCost: a.ActualCost, SummaryParentID: a.SummaryParentID, Assignments: a.Assignments,
		Frozen: a.Frozen, CustomFields: a.CustomFields,
	}
	if a.Constraint != nil {
		ar.ConstraintKind = a.Constraint.Kind
		ar.ConstraintDate = formatDate(a.Constraint.Date)
	}
	return ar
}

func fromActivityRecord(ar ActivityRecord) (*core.Activity, error) {
	start, err := parseDate(ar.Start)
	if err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	finish, err := parseDate(ar.Finish)
	if err != nil {
		return nil, fmt.Errorf("finish: %w", err)
	}
	a := &core.Activity{
		ID: ar.ID, Name: ar.Name, Kind: ar.Kind, Start: start, Finish: finish,
		Duration: ar.Duration, Progress: ar.Progress, Status: ar.Status, Priority: ar.Priority,
		CalendarID: ar.CalendarID, Effort: ar.Effort, Cost: ar.Cost, BudgetedCost: ar.BudgetedCost,
		ActualCost: ar.ActualCost, SummaryParentID: ar.SummaryParentID, Assignments: ar.Assignments,
		Frozen: ar.Frozen, CustomFields: ar.CustomFields,
	}
	if ar.ConstraintKind != "" {
		cdate, err := parseDate(ar.ConstraintDate)
		if err != nil {
			return nil, fmt.Errorf("constraintDate: %w", err)
		}
		a.Constraint = &core.Constraint{Kind: ar.ConstraintKind, Date: cdate}
	}
	return a, nil
}

func toCalendarRecord(c *core.Calendar) CalendarRecord {
	cr := CalendarRecord{
		ID: c.ID, Name: c.Name, HoursPerDay: c.HoursPerDay,
		WorkingWindows: c.WorkingWindows, Default: c.Default,
	}
	for wd, working := range c.WorkingDays {
		if working {
			cr.WorkingDays = append(cr.WorkingDays, int(wd))
		}
	}
	for _, exc := range c.Exceptions {
		cr.Exceptions = append(cr.Exceptions, CalendarExceptionRecord{
			Name: exc.Name, From: formatDate(exc.From), To: formatDate(exc.To), Working: exc.Working,
		})
	}
	return cr
}

func fromCalendarRecord(cr CalendarRecord) (*core.Calendar, error) {
	workingDays := make(map[time.Weekday]bool, 7)
	for _, wd := range cr.WorkingDays {
		workingDays[time.Weekday(wd)] = true
	}
	c := &core.Calendar{
		ID: cr.ID, Name: cr.Name, WorkingDays: workingDays, HoursPerDay: cr.HoursPerDay,
		WorkingWindows: cr.WorkingWindows, Default: cr.Default,
	}
	for _, excRec := range cr.Exceptions {
		from, err := parseDate(excRec.From)
		if err != nil {
			return nil, fmt.Errorf("exception %q from: %w", excRec.Name, err)
		}
		to, err := parseDate(excRec.To)
		if err != nil {
			return nil, fmt.Errorf("exception %q to: %w", excRec.Name, err)
		}
		c.Exceptions = append(c.Exceptions, core.CalendarException{Name: excRec.Name, From: from, To: to, Working: excRec.Working})
	}
	return c, nil
}

func toBaselineRecord(b *core.Baseline) BaselineRecord {
	br := BaselineRecord{
		ID: b.ID, Name: b.Name, Description: b.Description, CreatedAt: b.CreatedAt.Format(time.RFC3339),
		ProjectStart: formatDate(b.ProjectStart), ProjectFinish: formatDate(b.ProjectFinish),
		TotalCost: b.TotalCost, Default: b.Default,
	}
	for _, snap := range b.Snapshots {
		br.Snapshots = append(br.Snapshots, BaselineSnapshotRecord{
			ActivityID: snap.ActivityID, Start: formatDate(snap.Start), Finish: formatDate(snap.Finish),
			Duration: snap.Duration, Work: snap.Work, Cost: snap.Cost, Progress: snap.Progress,
		})
	}
	return br
}

func fromBaselineRecord(br BaselineRecord) (*core.Baseline, error) {
	createdAt, err := time.Parse(time.RFC3339, br.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("createdAt: %w", err)
	}
	start, err := parseDate(br.ProjectStart)
	if err != nil {
		return nil, fmt.Errorf("projectStart: %w", err)
	}
	finish, err := parseDate(br.ProjectFinish)
	if err != nil {
		return nil, fmt.Errorf("projectFinish: %w", err)
	}
	b := &core.Baseline{
		ID: br.ID, Name: br.Name, Description: br.Description, CreatedAt: createdAt,
		Snapshots: make(map[string]core.BaselineSnapshot, len(br.Snapshots)),
		ProjectStart: start, ProjectFinish: finish, TotalCost: br.TotalCost, Default: br.Default,
	}
	for _, snapRec := range br.Snapshots {
		sstart, err := parseDate(snapRec.Start)
		if err != nil {
			return nil, fmt.Errorf("snapshot %q start: %w", snapRec.ActivityID, err)
		}
		sfinish, err := parseDate(snapRec.Finish)
		if err != nil {
			return nil, fmt.Errorf("snapshot %q finish: %w", snapRec.ActivityID, err)
		}
		b.Snapshots[snapRec.ActivityID] = core.BaselineSnapshot{
			ActivityID: snapRec.ActivityID, Start: sstart, Finish: sfinish,
			Duration: snapRec.Duration, Work: snapRec.Work, Cost: snapRec.Cost, Progress: snapRec.Progress,
		}
	}
	return b, nil
}

func toScenarioRecord(sc *core.Scenario) ScenarioRecord {
	sr := ScenarioRecord{
		ID: sc.ID, Name: sc.Name, Description: sc.Description, CreatedAt: sc.CreatedAt.Format(time.RFC3339),
		Dependencies: append([]core.Dependency(nil), sc.Dependencies...),
		Resources:    append([]core.Resource(nil), sc.Resources...),
		ProjectStart: formatDate(sc.ProjectStart), ProjectFinish: formatDate(sc.ProjectFinish),
	}
	for i := range sc.Activities {
		sr.Activities = append(sr.Activities, toActivityRecord(&sc.Activities[i]))
	}
	return sr
}

func fromScenarioRecord(sr ScenarioRecord) (*core.Scenario, error) {
	createdAt, err := time.Parse(time.RFC3339, sr.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("createdAt: %w", err)
	}
	start, err := parseDate(sr.ProjectStart)
	if err != nil {
		return nil, fmt.Errorf("projectStart: %w", err)
	}
	finish, err := parseDate(sr.ProjectFinish)
	if err != nil {
		return nil, fmt.Errorf("projectFinish: %w", err)
	}
	sc := &core.Scenario{
		ID: sr.ID, Name: sr.Name, Description: sr.Description, CreatedAt: createdAt,
		Dependencies: append([]core.Dependency(nil), sr.Dependencies...),
		Resources:    append([]core.Resource(nil), sr.Resources...),
		ProjectStart: start, ProjectFinish: finish,
	}
	for _, ar := range sr.Activities {
		a, err := fromActivityRecord(ar)
		if err != nil {
			return nil, fmt.Errorf("activity %q: %w", ar.ID, err)
		}
		sc.Activities = append(sc.Activities, *a)
	}
	return sc, nil
}

func toLiveDataRecord(ld scenario.LiveData) LiveDataRecord {
	ldr := LiveDataRecord{
		Dependencies: append([]core.Dependency(nil), ld.Dependencies...),
		Resources:    append([]core.Resource(nil), ld.Resources...),
		ProjectStart: formatDate(ld.ProjectStart), ProjectFinish: formatDate(ld.ProjectFinish),
	}
	for i := range ld.Activities {
		ldr.Activities = append(ldr.Activities, toActivityRecord(&ld.Activities[i]))
	}
	return ldr
}

func fromLiveDataRecord(ldr LiveDataRecord) (scenario.LiveData, error) {
	start, err := parseDate(ldr.ProjectStart)
	if err != nil {
		return scenario.LiveData{}, fmt.Errorf("projectStart: %w", err)
	}
	finish, err := parseDate(ldr.ProjectFinish)
	if err != nil {
		return scenario.LiveData{}, fmt.Errorf("projectFinish: %w", err)
	}
	ld := scenario.LiveData{
		Dependencies:  append([]core.Dependency(nil), ldr.Dependencies...),
		Resources:     append([]core.Resource(nil), ldr.Resources...),
		ProjectStart:  start,
		ProjectFinish: finish,
	}
	for _, ar := range ldr.Activities {
		a, err := fromActivityRecord(ar)
		if err != nil {
			return scenario.LiveData{}, fmt.Errorf("activity %q: %w", ar.ID, err)
		}
		ld.Activities = append(ld.Activities, *a)
	}
	return ld, nil
}
