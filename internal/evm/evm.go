// Package evm computes Earned Value Management metrics (C8): PV/EV/AC and
// the derived SV/CV/SPI/CPI/EAC/VAC ratios, per activity and aggregated
// across a project.
package evm

import (
	"time"

	"project-scheduler/internal/core"
)

// Metrics is one activity's (or the whole project's) EVM snapshot at a
// status date.
type Metrics struct {
	BAC float64
	PV  float64
	EV  float64
	AC  float64
	SV  float64
	CV  float64
	SPI float64
	CPI float64
	EAC float64
	VAC float64
}

func derive(bac, pv, ev, ac float64) Metrics {
	m := Metrics{BAC: bac, PV: pv, EV: ev, AC: ac}
	m.SV = ev - pv
	m.CV = ev - ac
	if pv == 0 {
		m.SPI = 1
	} else {
		m.SPI = ev / pv
	}
	if ac == 0 {
		m.CPI = 1
	} else {
		m.CPI = ev / ac
	}
	if m.CPI == 0 {
		m.EAC = bac
	} else {
		m.EAC = bac / m.CPI
	}
	m.VAC = bac - m.EAC
	return m
}

// Activity computes one activity's EVM metrics at statusDate, using the
// activity's baseline window when present (falling back to its current
// start/finish) to derive plannedPct.
func Activity(a *core.Activity, statusDate time.Time) Metrics {
	b := bac(a)

	start, end := plannedWindow(a)
	pct := plannedPct(statusDate, start, end)

	pv := b * pct
	ev := b * (a.Progress / 100)
	ac := actualCost(a)

	return derive(b, pv, ev, ac)
}

// Project aggregates PV/EV/AC/BAC across all non-summary activities and
// recomputes the ratios from the totals, per the project-level EVM
// contract (ratios are not a simple average of per-activity ratios).
func Project(activities []*core.Activity, statusDate time.Time) Metrics {
	var bacTotal, pvTotal, evTotal, acTotal float64
	for _, a := range activities {
		if a.Kind == core.KindSummary {
			continue
		}
		m := Activity(a, statusDate)
		bacTotal += m.BAC
		pvTotal += m.PV
		evTotal += m.EV
		acTotal += m.AC
	}
	return derive(bacTotal, pvTotal, evTotal, acTotal)
}

// bac returns budgetedCost || cost || 0.
func bac(a *core.Activity) float64 {
	if a.BudgetedCost != nil {
		return *a.BudgetedCost
	}
	if a.Cost != nil {
		return *a.Cost
	}
	return 0
}

// actualCost returns the true ActualCost when present, else the
// cost x progress/100 approximation documented as a fallback.
func actualCost(a *core.Activity) float64 {
	if a.ActualCost != nil {
		return *a.ActualCost
	}
	if a.Cost != nil {
		return *a.Cost * (a.Progress / 100)
	}
	return 0
}

// plannedWindow returns the start/finish used to derive plannedPct:
// baseline start/finish when a baseline has been applied, else the
// activity's current start/finish.
func plannedWindow(a *core.Activity) (time.Time, time.Time) {
	if a.Baseline != nil {
		return a.Baseline.Start, a.Baseline.Finish
	}
	return a.Start, a.Finish
}

// plannedPct implements: 0 before start, 1 after end, otherwise
// (daysElapsed + 1) / (totalDuration + 1) clamped to [0,1], using plain
// calendar-day differences (not working days).
func plannedPct(statusDate, start, end time.Time) float64 {
	if statusDate.Before(start) {
		return 0
	}
	if statusDate.After(end) {
		return 1
	}
	totalDuration := daysBetween(start, end)
	daysElapsed := daysBetween(start, statusDate)
	pct := float64(daysElapsed+1) / float64(totalDuration+1)
	if pct < 0 {
		return 0
	}
	if pct > 1 {
		return 1
	}
	return pct
}

func daysBetween(from, to time.Time) int {
	const hoursPerDay = 24
	return int(to.Sub(from).Hours() / hoursPerDay)
}
