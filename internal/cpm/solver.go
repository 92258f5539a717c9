// Package cpm implements the Critical Path Method solver: a forward pass
// computing early start/finish, a backward pass computing late start/
// finish, slack, and the critical-path set, all under the four dependency
// link types (FS/SS/FF/SF) and six date constraints (MSO/MFO/SNET/FNET/
// SNLT/FNLT) described by the scheduling engine's contract.
//
// The solver reads Activity.Start/Finish/Duration as inputs (the "current
// schedule") and the dependency graph, and writes only Activity.Timing; it
// never mutates Start/Finish. Resource leveling (internal/leveler) is the
// component that rewrites Start/Finish, using the solver's output as
// context.
package cpm

import (
	"time"

	"project-scheduler/internal/calendar"
	"project-scheduler/internal/core"
	"project-scheduler/internal/graph"
)

// Input bundles everything the solver needs for one run.
type Input struct {
	Activities        []*core.Activity
	Dependencies      []core.Dependency
	Calendars         map[string]*core.Calendar
	DefaultCalendarID string
	// ProjectEnd anchors the backward pass for activities with no
	// successors. If zero, it is computed as the latest early finish among
	// all schedulable activities.
	ProjectEnd time.Time
}

// Result is the solver's output: the set of critical activity ids in
// topological order, plus any non-fatal warnings (constraint conflicts).
type Result struct {
	CriticalPath []string
	Report       core.OperationReport
}

// Run executes the forward and backward passes over in.Activities,
// mutating each schedulable activity's Timing field, and returns the
// critical path. Summary activities are skipped and their Timing is left
// unchanged; neither Run nor internal/project rolls their dates up from
// their children. Run refuses with a *core.CycleError if the induced
// dependency graph is not acyclic.
func Run(in Input) (*Result, error) {
	byID := make(map[string]*core.Activity, len(in.Activities))
	var schedulableIDs []string
	for _, a := range in.Activities {
		byID[a.ID] = a
		if a.Kind != core.KindSummary {
			schedulableIDs = append(schedulableIDs, a.ID)
		}
	}
	schedulable := make(map[string]bool, len(schedulableIDs))
	for _, id := range schedulableIDs {
		schedulable[id] = true
	}

	var edges []graph.Edge
	bySuccessor := make(map[string][]core.Dependency)
	byPredecessor := make(map[string][]core.Dependency)
	for _, dep := range in.Dependencies {
		if !schedulable[dep.PredecessorID] || !schedulable[dep.SuccessorID] {
			continue
		}
		edges = append(edges, graph.Edge{PredecessorID: dep.PredecessorID, SuccessorID: dep.SuccessorID})
		bySuccessor[dep.SuccessorID] = append(bySuccessor[dep.SuccessorID], dep)
		byPredecessor[dep.PredecessorID] = append(byPredecessor[dep.PredecessorID], dep)
	}

	g := graph.Build(schedulableIDs, edges)
	topo, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	report := core.OperationReport{}

	calFor := func(a *core.Activity) *core.Calendar {
		return resolveCalendar(a, in.Calendars, in.DefaultCalendarID)
	}

	// Forward pass.
	for _, id := range topo {
		act := byID[id]
		cal := calFor(act)
		dur := activityDuration(act, cal)
		forwardPassOne(act, dur, cal, bySuccessor[id], byID, &report)
	}

	projectEnd := in.ProjectEnd
	if projectEnd.IsZero() {
		for _, id := range schedulableIDs {
			ef := byID[id].Timing.EarlyFinish
			if projectEnd.IsZero() || ef.After(projectEnd) {
				projectEnd = ef
			}
		}
	}

	reverseTopo, err := g.ReverseTopologicalOrder()
	if err != nil {
		return nil, err
	}

	// Backward pass.
	for _, id := range reverseTopo {
		act := byID[id]
		cal := calFor(act)
		dur := activityDuration(act, cal)
		backwardPassOne(act, dur, cal, byPredecessor[id], byID, projectEnd)
	}

	// Slack and critical flag.
	for _, id := range schedulableIDs {
		act := byID[id]
		cal := calFor(act)
		act.Timing.TotalSlack = signedWorkingDayGap(act.Timing.EarlyStart, act.Timing.LateStart, cal)
		act.Timing.IsCritical = act.Timing.TotalSlack <= 0
	}

	var criticalPath []string
	for _, id := range topo {
		if byID[id].Timing.IsCritical {
			criticalPath = append(criticalPath, id)
		}
	}

	return &Result{CriticalPath: criticalPath, Report: report}, nil
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
	// Last resort: a standard Mon-Fri calendar so the solver never panics
	// on a mis-wired project; the validator is responsible for surfacing
	// this as a data problem.
	return calendar.NewStandardCalendar("", "fallback")
}

func activityDuration(act *core.Activity, cal *core.Calendar) int {
	if act.Duration != nil {
		return *act.Duration
	}
	if act.Kind == core.KindMilestone {
		return 0
	}
	return calendar.WorkingDaysBetween(act.Start, act.Finish, cal)
}

func forwardPassOne(act *core.Activity, dur int, cal *core.Calendar, preds []core.Dependency, byID map[string]*core.Activity, report *core.OperationReport) {
	var tentativeES time.Time
	esSet := false
	var ffsfBound time.Time

	if len(preds) == 0 {
		tentativeES = calendar.TruncateToDay(act.Start)
		esSet = true
	} else {
		for _, dep := range preds {
			pred := byID[dep.PredecessorID]
			switch dep.Kind {
			case core.LinkFS:
				bound := calendar.AddWorkingDays(pred.Timing.EarlyFinish, dep.Lag+1, cal)
				if !esSet || bound.After(tentativeES) {
					tentativeES = bound
					esSet = true
				}
			case core.LinkSS:
				bound := calendar.AddWorkingDays(pred.Timing.EarlyStart, dep.Lag, cal)
				if !esSet || bound.After(tentativeES) {
					tentativeES = bound
					esSet = true
				}
			case core.LinkFF:
				bound := calendar.AddWorkingDays(pred.Timing.EarlyFinish, dep.Lag, cal)
				if ffsfBound.IsZero() || bound.After(ffsfBound) {
					ffsfBound = bound
				}
			case core.LinkSF:
				bound := calendar.AddWorkingDays(pred.Timing.EarlyStart, dep.Lag, cal)
				if ffsfBound.IsZero() || bound.After(ffsfBound) {
					ffsfBound = bound
				}
			}
		}
		if !esSet {
			// Only FF/SF predecessors: they bound finish, not start.
			tentativeES = calendar.TruncateToDay(act.Start)
		}
	}

	preConstraintES := tentativeES

	var tentativeEF time.Time
	efSet := false

	if act.Constraint != nil {
		switch act.Constraint.Kind {
		case core.ConstraintMSO:
			tentativeES = calendar.TruncateToDay(act.Constraint.Date)
			if tentativeES.Before(preConstraintES) {
				report.Add(act.ID, "MSO constraint pulls start earlier than predecessors allow")
			}
		case core.ConstraintMFO:
			tentativeEF = calendar.TruncateToDay(act.Constraint.Date)
			efSet = true
			tentativeES = calendar.StartFromEnd(tentativeEF, dur, cal)
			if tentativeES.Before(preConstraintES) {
				report.Add(act.ID, "MFO constraint pulls finish earlier than predecessors allow")
			}
		case core.ConstraintSNET:
			if act.Constraint.Date.After(tentativeES) {
				tentativeES = calendar.TruncateToDay(act.Constraint.Date)
			}
		case core.ConstraintFNET:
			tentativeTryEF := calendar.EndFromStart(tentativeES, dur, cal)
			if tentativeTryEF.Before(act.Constraint.Date) {
				tentativeEF = calendar.TruncateToDay(act.Constraint.Date)
				efSet = true
				tentativeES = calendar.StartFromEnd(tentativeEF, dur, cal)
			}
		case core.ConstraintSNLT, core.ConstraintFNLT:
			// No effect on the forward pass.
		}
	}

	if !efSet {
		tentativeEF = calendar.EndFromStart(tentativeES, dur, cal)
	}

	if !ffsfBound.IsZero() && ffsfBound.After(tentativeEF) {
		tentativeEF = ffsfBound
		tentativeES = calendar.StartFromEnd(tentativeEF, dur, cal)
	}

	act.Timing.EarlyStart = tentativeES
	act.Timing.EarlyFinish = tentativeEF
}

func backwardPassOne(act *core.Activity, dur int, cal *core.Calendar, succs []core.Dependency, byID map[string]*core.Activity, projectEnd time.Time) {
	var tentativeLS, tentativeLF time.Time

	if len(succs) == 0 {
		tentativeLF = laterOf(projectEnd, act.Timing.EarlyFinish)
		tentativeLS = calendar.StartFromEnd(tentativeLF, dur, cal)
	} else {
		var lsBounds []time.Time
		for _, dep := range succs {
			succ := byID[dep.SuccessorID]
			switch dep.Kind {
			case core.LinkFS:
				lfBound := calendar.AddWorkingDays(succ.Timing.LateStart, -(dep.Lag + 1), cal)
				lsBounds = append(lsBounds, calendar.StartFromEnd(lfBound, dur, cal))
			case core.LinkSS:
				lsBounds = append(lsBounds, calendar.AddWorkingDays(succ.Timing.LateStart, -dep.Lag, cal))
			case core.LinkFF:
				lfBound := calendar.AddWorkingDays(succ.Timing.LateFinish, -dep.Lag, cal)
				lsBounds = append(lsBounds, calendar.StartFromEnd(lfBound, dur, cal))
			case core.LinkSF:
				lfBound := calendar.AddWorkingDays(succ.Timing.LateFinish, -dep.Lag, cal)
				lsBounds = append(lsBounds, calendar.StartFromEnd(lfBound, dur, cal))
			}
		}
		tentativeLS = earliestOf(lsBounds)
		tentativeLF = calendar.EndFromStart(tentativeLS, dur, cal)
	}

	pinned := false
	if act.Constraint != nil {
		switch act.Constraint.Kind {
		case core.ConstraintMSO:
			tentativeLS = calendar.TruncateToDay(act.Constraint.Date)
			tentativeLF = calendar.EndFromStart(tentativeLS, dur, cal)
			pinned = true
		case core.ConstraintMFO:
			tentativeLF = calendar.TruncateToDay(act.Constraint.Date)
			tentativeLS = calendar.StartFromEnd(tentativeLF, dur, cal)
			pinned = true
		case core.ConstraintSNLT:
			if act.Constraint.Date.Before(tentativeLS) {
				tentativeLS = calendar.TruncateToDay(act.Constraint.Date)
				tentativeLF = calendar.EndFromStart(tentativeLS, dur, cal)
				pinned = true
			}
		case core.ConstraintFNLT:
			if act.Constraint.Date.Before(tentativeLF) {
				tentativeLF = calendar.TruncateToDay(act.Constraint.Date)
				tentativeLS = calendar.StartFromEnd(tentativeLF, dur, cal)
				pinned = true
			}
		}
	}
	_ = pinned

	act.Timing.LateStart = tentativeLS
	act.Timing.LateFinish = tentativeLF
}

func laterOf(a, b time.Time) time.Time {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	if a.After(b) {
		return a
	}
	return b
}

func earliestOf(times []time.Time) time.Time {
	var best time.Time
	for _, t := range times {
		if best.IsZero() || t.Before(best) {
			best = t
		}
	}
	return best
}

// signedWorkingDayGap returns the working-day gap between a and b, positive
// when b is after a, negative when b is before a, and zero when they are
// the same day. This is the working-day analogue of LS-ES used for slack:
// unlike calendar.WorkingDaysBetween (an inclusive day count used for
// duration, always >= 1 for a non-empty range), the gap is zero when the
// two dates coincide so that "slack <= 0" correctly identifies critical
// activities.
func signedWorkingDayGap(a, b time.Time, cal *core.Calendar) int {
	a = calendar.TruncateToDay(a)
	b = calendar.TruncateToDay(b)
	if a.Equal(b) {
		return 0
	}
	if b.After(a) {
		return calendar.WorkingDaysBetween(a, b, cal) - 1
	}
	return -(calendar.WorkingDaysBetween(b, a, cal) - 1)
}
