// Package project implements the facade (C9): the single aggregate owning
// activities, dependencies, resources, calendars, baselines, scenarios, and
// custom fields, and the transactional operations that mutate them.
package project

import (
	"fmt"
	"time"

	"project-scheduler/internal/calendar"
	"project-scheduler/internal/core"
	"project-scheduler/internal/graph"
	"project-scheduler/internal/scenario"
	"project-scheduler/internal/validate"
)

// Now is overridable in tests; production code leaves it at time.Now.
var Now = time.Now

// State is the project aggregate. Zero value is not usable; use New.
type State struct {
	activities   []*core.Activity
	activityIdx  map[string]int // id -> index into activities

	dependencies []core.Dependency

	resources   []core.Resource
	resourceIdx map[string]int

	calendars         map[string]*core.Calendar
	defaultCalendarID string

	baselines   []*core.Baseline
	baselineIdx map[string]int

	customFields map[string]core.CustomField

	scenarios *scenario.Manager

	criticalPath []string

	logger *core.Logger

	updatedAt time.Time
}

// New returns an empty project state with one default Mon-Fri calendar.
func New() *State {
	std := calendar.NewStandardCalendar("default", "Standard")
	s := &State{
		activityIdx:       make(map[string]int),
		resourceIdx:       make(map[string]int),
		calendars:         map[string]*core.Calendar{std.ID: std},
		defaultCalendarID: std.ID,
		baselineIdx:       make(map[string]int),
		customFields:      make(map[string]core.CustomField),
		scenarios:         scenario.NewManager(),
		logger:            core.NewDefaultLogger().WithField("component", "project"),
	}
	s.touch()
	return s
}

func (s *State) touch() { s.updatedAt = Now() }

// UpdatedAt returns the timestamp of the last successful mutation.
func (s *State) UpdatedAt() time.Time { return s.updatedAt }

// ---- Activities ----------------------------------------------------------

// AddActivity validates and appends an activity. Rejected on any field
// error; the state is left unchanged.
func (s *State) AddActivity(a core.Activity) error {
	if _, exists := s.activityIdx[a.ID]; exists {
		return &core.InvariantViolationError{Message: fmt.Sprintf("activity %q already exists", a.ID)}
	}
	r := validate.Activity(&a)
	if !r.IsValid() {
		return validationErr(r)
	}
	s.activities = append(s.activities, &a)
	s.activityIdx[a.ID] = len(s.activities) - 1
	s.touch()
	return nil
}

// UpdateActivity applies mutate to a clone of the activity identified by
// id; if the clone fails validation, the live activity is left untouched
// and the validation error is returned.
func (s *State) UpdateActivity(id string, mutate func(*core.Activity)) error {
	idx, ok := s.activityIdx[id]
	if !ok {
		return &core.NotFoundError{Kind: "activity", ID: id}
	}
	clone := *s.activities[idx]
	mutate(&clone)
	clone.ID = id // id is immutable via Update

	r := validate.Activity(&clone)
	if !r.IsValid() {
		return validationErr(r)
	}
	*s.activities[idx] = clone
	s.touch()
	return nil
}

// DeleteActivity removes an activity and cascades: any dependency touching
// it, any resource assignment referencing it (assignments live on the
// activity itself so this is implicit), any custom-field value keyed by
// it, and any SummaryParentID reference (cleared).
func (s *State) DeleteActivity(id string) error {
	idx, ok := s.activityIdx[id]
	if !ok {
		return &core.NotFoundError{Kind: "activity", ID: id}
	}

	s.activities = append(s.activities[:idx], s.activities[idx+1:]...)
	s.reindexActivities()

	var remainingDeps []core.Dependency
	for _, dep := range s.dependencies {
		if dep.PredecessorID == id || dep.SuccessorID == id {
			continue
		}
		remainingDeps = append(remainingDeps, dep)
	}
	s.dependencies = remainingDeps

	for _, a := range s.activities {
		if a.SummaryParentID == id {
			a.SummaryParentID = ""
		}
		delete(a.CustomFields, id)
	}

	s.touch()
	return nil
}

func (s *State) reindexActivities() {
	s.activityIdx = make(map[string]int, len(s.activities))
	for i, a := range s.activities {
		s.activityIdx[a.ID] = i
	}
}

// GetAllActivities returns the activities in insertion order. The returned
// slice shares backing activities with the state; callers must not retain
// it across a mutating call.
func (s *State) GetAllActivities() []*core.Activity {
	return s.activities
}

// GetActivity returns the activity with id, or nil.
func (s *State) GetActivity(id string) *core.Activity {
	if idx, ok := s.activityIdx[id]; ok {
		return s.activities[idx]
	}
	return nil
}

func (s *State) activityIDs() []string {
	ids := make([]string, len(s.activities))
	for i, a := range s.activities {
		ids[i] = a.ID
	}
	return ids
}

func (s *State) knownActivityIDs() map[string]bool {
	known := make(map[string]bool, len(s.activities))
	for _, a := range s.activities {
		known[a.ID] = true
	}
	return known
}

// ---- Dependencies ---------------------------------------------------------

// AddDependency validates endpoints exist and differ, the kind is
// recognized, and that the new edge would not induce a cycle, before
// appending it.
func (s *State) AddDependency(dep core.Dependency) error {
	known := s.knownActivityIDs()
	r := validate.Dependency(&dep, known)
	if !r.IsValid() {
		return validationErr(r)
	}

	g := graph.Build(s.activityIDs(), s.edges())
	if would, path := g.WouldCreateCycle(graph.Edge{PredecessorID: dep.PredecessorID, SuccessorID: dep.SuccessorID}); would {
		return &core.CycleError{Path: path}
	}

	s.dependencies = append(s.dependencies, dep)
	s.touch()
	return nil
}

// RemoveDependency deletes the dependency with id.
func (s *State) RemoveDependency(id string) error {
	for i, dep := range s.dependencies {
		if dep.ID == id {
			s.dependencies = append(s.dependencies[:i], s.dependencies[i+1:]...)
			s.touch()
			return nil
		}
	}
	return &core.NotFoundError{Kind: "dependency", ID: id}
}

// GetAllDependencies returns every dependency in insertion order.
func (s *State) GetAllDependencies() []core.Dependency { return s.dependencies }

// GetDependenciesByActivity returns every dependency touching id, as
// either predecessor or successor.
func (s *State) GetDependenciesByActivity(id string) []core.Dependency {
	var out []core.Dependency
	for _, dep := range s.dependencies {
		if dep.PredecessorID == id || dep.SuccessorID == id {
			out = append(out, dep)
		}
	}
	return out
}

func (s *State) edges() []graph.Edge {
	edges := make([]graph.Edge, len(s.dependencies))
	for i, dep := range s.dependencies {
		edges[i] = graph.Edge{PredecessorID: dep.PredecessorID, SuccessorID: dep.SuccessorID}
	}
	return edges
}

// ---- Resources -------------------------------------------------------------

// AddResource appends a resource after checking it is not a duplicate id.
func (s *State) AddResource(r core.Resource) error {
	if _, exists := s.resourceIdx[r.ID]; exists {
		return &core.InvariantViolationError{Message: fmt.Sprintf("resource %q already exists", r.ID)}
	}
	s.resources = append(s.resources, r)
	s.resourceIdx[r.ID] = len(s.resources) - 1
	s.touch()
	return nil
}

// UpdateResource applies mutate to a copy of the resource and commits the
// copy; the id is restored afterwards if mutate changed it.
func (s *State) UpdateResource(id string, mutate func(*core.Resource)) error {
	idx, ok := s.resourceIdx[id]
	if !ok {
		return &core.NotFoundError{Kind: "resource", ID: id}
	}
	clone := s.resources[idx]
	mutate(&clone)
	clone.ID = id
	s.resources[idx] = clone
	s.touch()
	return nil
}

// DeleteResource removes a resource and cascades: strips any assignment
// referencing it from every activity.
func (s *State) DeleteResource(id string) error {
	idx, ok := s.resourceIdx[id]
	if !ok {
		return &core.NotFoundError{Kind: "resource", ID: id}
	}
	s.resources = append(s.resources[:idx], s.resources[idx+1:]...)
	s.resourceIdx = make(map[string]int, len(s.resources))
	for i, r := range s.resources {
		s.resourceIdx[r.ID] = i
	}

	for _, a := range s.activities {
		var kept []core.Assignment
		for _, asn := range a.Assignments {
			if asn.ResourceID != id {
				kept = append(kept, asn)
			}
		}
		a.Assignments = kept
	}

	s.touch()
	return nil
}

// GetAllResources returns every resource in insertion order.
func (s *State) GetAllResources() []core.Resource { return s.resources }

// ---- Calendars -------------------------------------------------------------

// AddCalendar appends a calendar. If marked default, any previously
// default calendar loses the flag (default-flag uniqueness).
func (s *State) AddCalendar(c core.Calendar) error {
	if _, exists := s.calendars[c.ID]; exists {
		return &core.InvariantViolationError{Message: fmt.Sprintf("calendar %q already exists", c.ID)}
	}
	cal := c
	s.calendars[cal.ID] = &cal
	if cal.Default {
		s.setDefaultCalendarLocked(cal.ID)
	}
	s.touch()
	return nil
}

// UpdateCalendar applies mutate to the calendar with id.
func (s *State) UpdateCalendar(id string, mutate func(*core.Calendar)) error {
	cal, ok := s.calendars[id]
	if !ok {
		return &core.NotFoundError{Kind: "calendar", ID: id}
	}
	mutate(cal)
	cal.ID = id
	if cal.Default {
		s.setDefaultCalendarLocked(id)
	}
	s.touch()
	return nil
}

// DeleteCalendar removes a calendar and re-points every activity that used
// it to the default calendar. Deleting the last remaining calendar is an
// invariant violation.
func (s *State) DeleteCalendar(id string) error {
	if _, ok := s.calendars[id]; !ok {
		return &core.NotFoundError{Kind: "calendar", ID: id}
	}
	if len(s.calendars) <= 1 {
		return &core.InvariantViolationError{Message: "cannot delete the last remaining calendar"}
	}
	delete(s.calendars, id)
	if s.defaultCalendarID == id {
		for otherID := range s.calendars {
			s.defaultCalendarID = otherID
			break
		}
	}
	for _, a := range s.activities {
		if a.CalendarID == id {
			a.CalendarID = s.defaultCalendarID
		}
	}
	s.touch()
	return nil
}

// GetAllCalendars returns every known calendar, unordered (calendars have
// no insertion-order display requirement in the spec).
func (s *State) GetAllCalendars() []*core.Calendar {
	out := make([]*core.Calendar, 0, len(s.calendars))
	for _, c := range s.calendars {
		out = append(out, c)
	}
	return out
}

// SetDefault marks id as the default calendar, clearing the flag on any
// previous default.
func (s *State) SetDefault(id string) error {
	if _, ok := s.calendars[id]; !ok {
		return &core.NotFoundError{Kind: "calendar", ID: id}
	}
	s.setDefaultCalendarLocked(id)
	s.touch()
	return nil
}

func (s *State) setDefaultCalendarLocked(id string) {
	for otherID, c := range s.calendars {
		c.Default = otherID == id
	}
	s.defaultCalendarID = id
}

// ReplaceAllCalendars swaps the entire calendar set. The first calendar in
// list marked default becomes the default (list[0] if none is marked), and
// every other calendar's default flag is cleared.
func (s *State) ReplaceAllCalendars(list []core.Calendar) error {
	if len(list) == 0 {
		return &core.InvariantViolationError{Message: "cannot replace calendars with an empty list"}
	}
	calendars := make(map[string]*core.Calendar, len(list))
	defaultID := ""
	for i := range list {
		c := list[i]
		calendars[c.ID] = &c
		if c.Default && defaultID == "" {
			defaultID = c.ID
		}
	}
	if defaultID == "" {
		defaultID = list[0].ID
	}
	for calID, c := range calendars {
		c.Default = calID == defaultID
	}
	s.calendars = calendars
	s.defaultCalendarID = defaultID
	s.touch()
	return nil
}

// DefaultCalendarID returns the id of the calendar currently marked
// default.
func (s *State) DefaultCalendarID() string { return s.defaultCalendarID }

// ---- Custom fields ---------------------------------------------------------

// AddCustomField registers a field definition.
func (s *State) AddCustomField(f core.CustomField) error {
	if _, exists := s.customFields[f.ID]; exists {
		return &core.InvariantViolationError{Message: fmt.Sprintf("custom field %q already exists", f.ID)}
	}
	s.customFields[f.ID] = f
	s.touch()
	return nil
}

// UpdateCustomField replaces the definition for an existing field id.
func (s *State) UpdateCustomField(id string, mutate func(*core.CustomField)) error {
	f, ok := s.customFields[id]
	if !ok {
		return &core.NotFoundError{Kind: "custom-field", ID: id}
	}
	mutate(&f)
	f.ID = id
	s.customFields[id] = f
	s.touch()
	return nil
}

// DeleteCustomField removes a field definition and cascades: strips its
// value off every activity.
func (s *State) DeleteCustomField(id string) error {
	if _, ok := s.customFields[id]; !ok {
		return &core.NotFoundError{Kind: "custom-field", ID: id}
	}
	delete(s.customFields, id)
	for _, a := range s.activities {
		delete(a.CustomFields, id)
	}
	s.touch()
	return nil
}

// SetCustomFieldValue attaches value for fieldID on activity taskID.
func (s *State) SetCustomFieldValue(taskID, fieldID string, value core.CustomFieldValue) error {
	a := s.GetActivity(taskID)
	if a == nil {
		return &core.NotFoundError{Kind: "activity", ID: taskID}
	}
	if _, ok := s.customFields[fieldID]; !ok {
		return &core.NotFoundError{Kind: "custom-field", ID: fieldID}
	}
	if a.CustomFields == nil {
		a.CustomFields = make(map[string]core.CustomFieldValue)
	}
	a.CustomFields[fieldID] = value
	s.touch()
	return nil
}

func validationErr(r validate.Result) error {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return core.NewValidationError(msgs...)
}
