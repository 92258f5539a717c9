// Package validate performs the pure, side-effect-free checks described by
// the engine's validation contract: per-activity field checks, dependency
// endpoint/kind checks, graph-level cycle detection, and resource
// over-allocation warnings. Validate never mutates its inputs and never
// itself runs the CPM solver; internal/project calls it before mutating
// operations and from State.Validate.
package validate

import (
	"fmt"
	"strings"

	"project-scheduler/internal/calendar"
	"project-scheduler/internal/core"
	"project-scheduler/internal/graph"
)

// Issue mirrors the teacher codebase's validation-issue shape: a type tag,
// the offending field/value when known, and a human message.
type Issue struct {
	Type    string
	Field   string
	Value   string
	Message string
}

func (i Issue) Error() string {
	var parts []string
	if i.Field != "" {
		parts = append(parts, fmt.Sprintf("field %q", i.Field))
	}
	if i.Value != "" {
		parts = append(parts, fmt.Sprintf("value %q", i.Value))
	}
	if len(parts) == 0 {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", strings.Join(parts, ", "), i.Message)
}

// Result is the outcome of validating one activity, one dependency, or an
// entire project: errors are hard failures the caller should not proceed
// past; warnings are informational (over-allocation, degenerate calendars).
type Result struct {
	Errors   []Issue
	Warnings []Issue
}

func (r *Result) IsValid() bool { return len(r.Errors) == 0 }

func (r *Result) addError(typ, field, value, msg string) {
	r.Errors = append(r.Errors, Issue{Type: typ, Field: field, Value: value, Message: msg})
}

func (r *Result) addWarning(typ, field, value, msg string) {
	r.Warnings = append(r.Warnings, Issue{Type: typ, Field: field, Value: value, Message: msg})
}

// Activity validates one activity's own fields: non-empty id/name, start <=
// finish when a finish is set, progress in [0,100], non-negative duration,
// and assignment allocations in [0,100].
func Activity(a *core.Activity) Result {
	var r Result

	if strings.TrimSpace(a.ID) == "" {
		r.addError("required_field", "id", "", "activity id is required")
	}
	if strings.TrimSpace(a.Name) == "" {
		r.addError("required_field", "name", a.ID, "activity name is required")
	}
	if !a.Kind.Valid() {
		r.addError("invalid_value", "kind", string(a.Kind), invalidEnumMessage("activity kind", string(a.Kind), kindOptions))
	}
	if a.Status != "" && !a.Status.Valid() {
		r.addError("invalid_value", "status", string(a.Status), invalidEnumMessage("activity status", string(a.Status), statusOptions))
	}
	if a.Priority != "" && !a.Priority.Valid() {
		r.addError("invalid_value", "priority", string(a.Priority), invalidEnumMessage("activity priority", string(a.Priority), priorityOptions))
	}

	if !a.Finish.IsZero() && a.Start.After(a.Finish) {
		r.addError("date_logic", "finish", a.ID, "finish must not be before start")
	}
	if a.Kind == core.KindMilestone && !a.Start.Equal(a.Finish) {
		r.addError("date_logic", "finish", a.ID, "milestone start and finish must be equal")
	}

	if a.Progress < 0 || a.Progress > 100 {
		r.addError("invalid_range", "progress", fmt.Sprintf("%v", a.Progress), "progress must be between 0 and 100")
	}

	if a.Duration != nil && *a.Duration < 0 {
		r.addError("invalid_range", "duration", fmt.Sprintf("%d", *a.Duration), "duration must not be negative")
	}

	if a.Constraint != nil && !a.Constraint.Kind.Valid() {
		r.addError("invalid_value", "constraint.kind", string(a.Constraint.Kind),
			invalidEnumMessage("constraint kind", string(a.Constraint.Kind), constraintOptions))
	}

	for _, asn := range a.Assignments {
		if asn.Allocation < 0 || asn.Allocation > 100 {
			r.addError("invalid_range", "assignment.allocation", fmt.Sprintf("%v", asn.Allocation),
				fmt.Sprintf("allocation for resource %q must be between 0 and 100", asn.ResourceID))
		}
	}

	return r
}

// Dependency validates one dependency: both endpoints exist and differ, and
// the kind is recognized. knownIDs is the set of known activity ids.
func Dependency(dep *core.Dependency, knownIDs map[string]bool) Result {
	var r Result

	if dep.PredecessorID == dep.SuccessorID {
		r.addError("invalid_reference", "successorId", dep.SuccessorID, "dependency cannot link an activity to itself")
	}
	if !knownIDs[dep.PredecessorID] {
		r.addError("not_found", "predecessorId", dep.PredecessorID, "predecessor activity does not exist")
	}
	if !knownIDs[dep.SuccessorID] {
		r.addError("not_found", "successorId", dep.SuccessorID, "successor activity does not exist")
	}
	if !dep.Kind.Valid() {
		r.addError("invalid_value", "kind", string(dep.Kind), invalidEnumMessage("dependency kind", string(dep.Kind), linkOptions))
	}

	return r
}

// Graph runs the DFS cycle detector over the full dependency graph and
// returns the offending path as an Issue in Result.Errors when a cycle
// exists, so callers receive it in the Result rather than as a Go error.
func Graph(activityIDs []string, deps []core.Dependency) Result {
	var r Result
	var edges []graph.Edge
	for _, dep := range deps {
		edges = append(edges, graph.Edge{PredecessorID: dep.PredecessorID, SuccessorID: dep.SuccessorID})
	}
	g := graph.Build(activityIDs, edges)
	if ok, path := g.DetectCycle(); ok {
		r.addError("dependency_cycle", "", strings.Join(path, " -> "), "circular dependency detected")
	}
	return r
}

// ResourceOverAllocation checks, for every resource and every day any
// activity assigns it, whether the sum of allocations on overlapping
// activities exceeds 100. Results are warnings, never errors, per the
// engine's error-handling design (§7: Infeasible conditions are surfaced as
// warnings, not aborts).
func ResourceOverAllocation(activities []*core.Activity, calendars map[string]*core.Calendar, defaultCalendarID string) Result {
	var r Result

	type dayKey struct {
		resourceID string
		day        string
	}
	totals := make(map[dayKey]float64)

	for _, a := range activities {
		if a.Kind == core.KindSummary {
			continue
		}
		cal := activityCalendar(a, calendars, defaultCalendarID)
		for cur := calendar.TruncateToDay(a.Start); !cur.After(a.Finish); cur = cur.AddDate(0, 0, 1) {
			if !calendar.IsWorking(cur, cal) {
				continue
			}
			for _, asn := range a.Assignments {
				key := dayKey{resourceID: asn.ResourceID, day: cur.Format("2006-01-02")}
				totals[key] += asn.Allocation
			}
		}
	}

	for key, total := range totals {
		if total > 100 {
			r.addWarning("over_allocation", "resourceId", key.resourceID,
				fmt.Sprintf("resource %q is allocated %.0f%% on %s", key.resourceID, total, key.day))
		}
	}

	return r
}

// DegenerateCalendars flags calendars with no working day at all.
func DegenerateCalendars(calendars map[string]*core.Calendar) Result {
	var r Result
	for id, cal := range calendars {
		if calendar.IsDegenerate(cal) {
			r.addWarning("degenerate_calendar", "calendarId", id, "calendar has no working day and arithmetic on it is a no-op")
		}
	}
	return r
}

var (
	kindOptions       = []string{string(core.KindLeafTask), string(core.KindSummary), string(core.KindMilestone)}
	statusOptions     = []string{string(core.StatusNotStarted), string(core.StatusInProgress), string(core.StatusCompleted), string(core.StatusCancelled)}
	priorityOptions   = []string{string(core.PriorityCritical), string(core.PriorityHigh), string(core.PriorityMedium), string(core.PriorityLow)}
	constraintOptions = []string{string(core.ConstraintMSO), string(core.ConstraintMFO), string(core.ConstraintSNET), string(core.ConstraintFNET), string(core.ConstraintSNLT), string(core.ConstraintFNLT)}
	linkOptions       = []string{string(core.LinkFS), string(core.LinkSS), string(core.LinkFF), string(core.LinkSF)}
)

// invalidEnumMessage appends a "did you mean" suggestion when the offending
// value is a close typo of a valid option.
func invalidEnumMessage(label, value string, options []string) string {
	msg := fmt.Sprintf("%s is not recognized", label)
	if suggestion := core.SuggestCorrection(value, options); suggestion != "" {
		msg = fmt.Sprintf("%s (did you mean %q?)", msg, suggestion)
	}
	return msg
}

func activityCalendar(a *core.Activity, calendars map[string]*core.Calendar, defaultID string) *core.Calendar {
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

// Merge combines multiple Results into one, used by callers validating a
// whole project in one pass.
func Merge(results ...Result) Result {
	var out Result
	for _, r := range results {
		out.Errors = append(out.Errors, r.Errors...)
		out.Warnings = append(out.Warnings, r.Warnings...)
	}
	return out
}
