// Package baseline implements baseline capture, apply, and variance
// computation (C6): an immutable snapshot of the plan taken at a point in
// time, later compared against the live state to report schedule and cost
// drift.
package baseline

import (
	"time"

	"project-scheduler/internal/core"
)

// Save captures a baseline snapshot of every activity plus project-level
// totals, stamped with createdAt (supplied by the caller; this package
// never reads the clock itself so results are reproducible).
func Save(id, name, desc string, activities []*core.Activity, projectStart, projectFinish time.Time, createdAt time.Time) *core.Baseline {
	snapshots := make(map[string]core.BaselineSnapshot, len(activities))
	var totalCost float64

	for _, a := range activities {
		cost := activityCost(a)
		totalCost += cost
		snapshots[a.ID] = core.BaselineSnapshot{
			ActivityID: a.ID,
			Start:      a.Start,
			Finish:     a.Finish,
			Duration:   activityDuration(a),
			Work:       activityWork(a),
			Cost:       cost,
			Progress:   a.Progress,
		}
	}

	return &core.Baseline{
		ID:            id,
		Name:          name,
		Description:   desc,
		CreatedAt:     createdAt,
		Snapshots:     snapshots,
		ProjectStart:  projectStart,
		ProjectFinish: projectFinish,
		TotalCost:     totalCost,
	}
}

// Apply copies each activity's matching snapshot onto its baseline-*
// fields, leaving current fields untouched. Activities with no matching
// snapshot are left with their prior baseline fields (or none, if they
// never had one).
func Apply(baseline *core.Baseline, activities []*core.Activity) {
	for _, a := range activities {
		snap, ok := baseline.Snapshots[a.ID]
		if !ok {
			continue
		}
		a.Baseline = &core.BaselineFields{
			Start:    snap.Start,
			Finish:   snap.Finish,
			Duration: snap.Duration,
			Work:     snap.Work,
			Cost:     snap.Cost,
			Progress: snap.Progress,
		}
	}
}

// ActivityVariance holds the whole-day/cost/progress deltas between an
// activity's current state and its applied baseline.
type ActivityVariance struct {
	ActivityID     string
	StartDays      int // current.Start - baseline.Start, in whole days
	FinishDays     int
	DurationDays   int
	CostVariance   float64
	ProgressPoints float64
}

// Activity computes the variance for one activity against its applied
// baseline fields. Returns false if the activity has no baseline captured.
func Activity(a *core.Activity) (ActivityVariance, bool) {
	if a.Baseline == nil {
		return ActivityVariance{}, false
	}
	return ActivityVariance{
		ActivityID:     a.ID,
		StartDays:      wholeDays(a.Baseline.Start, a.Start),
		FinishDays:     wholeDays(a.Baseline.Finish, a.Finish),
		DurationDays:   activityDuration(a) - a.Baseline.Duration,
		CostVariance:   activityCost(a) - a.Baseline.Cost,
		ProgressPoints: a.Progress - a.Baseline.Progress,
	}, true
}

// ProjectVariance holds project-level schedule and cost drift against a
// baseline.
type ProjectVariance struct {
	StartDays       int
	FinishDays      int
	TotalCostDelta  float64
	ActivityResults []ActivityVariance
}

// Project computes variance for the whole project: every activity with a
// captured snapshot, plus project start/finish/cost deltas.
func Project(b *core.Baseline, activities []*core.Activity, currentStart, currentFinish time.Time) ProjectVariance {
	var out ProjectVariance
	out.StartDays = wholeDays(b.ProjectStart, currentStart)
	out.FinishDays = wholeDays(b.ProjectFinish, currentFinish)

	var currentTotal float64
	for _, a := range activities {
		currentTotal += activityCost(a)
		if v, ok := Activity(a); ok {
			out.ActivityResults = append(out.ActivityResults, v)
		}
	}
	out.TotalCostDelta = currentTotal - b.TotalCost
	return out
}

// wholeDays returns the whole-day difference (to - from), via
// floor-division on the duration in milliseconds, matching the variance
// contract's "whole-day differences via floor-division" rule.
func wholeDays(from, to time.Time) int {
	const msPerDay = 24 * 60 * 60 * 1000
	deltaMs := to.Sub(from).Milliseconds()
	if deltaMs >= 0 {
		return int(deltaMs / msPerDay)
	}
	// Floor toward negative infinity for negative deltas.
	return -int((-deltaMs + msPerDay - 1) / msPerDay)
}

func activityDuration(a *core.Activity) int {
	if a.Duration != nil {
		return *a.Duration
	}
	return 0
}

func activityWork(a *core.Activity) float64 {
	if a.Effort != nil {
		return *a.Effort
	}
	return 0
}

func activityCost(a *core.Activity) float64 {
	if a.Cost != nil {
		return *a.Cost
	}
	return 0
}
