package project

import (
	"time"

	"project-scheduler/internal/baseline"
	"project-scheduler/internal/core"
	"project-scheduler/internal/cpm"
	"project-scheduler/internal/evm"
	"project-scheduler/internal/leveler"
	"project-scheduler/internal/scenario"
	"project-scheduler/internal/validate"
)

// ProjectWindow returns the earliest activity start and latest activity
// finish currently in the project. Zero activities yields zero times.
func (s *State) ProjectWindow() (start, finish time.Time) {
	for i, a := range s.activities {
		if i == 0 || a.Start.Before(start) {
			start = a.Start
		}
		if i == 0 || a.Finish.After(finish) {
			finish = a.Finish
		}
	}
	return start, finish
}

// RecalculateDates runs the CPM solver over the current activities,
// dependencies, and calendars, writing ES/EF/LS/LF/slack/isCritical onto
// each activity and refreshing the stored critical path.
func (s *State) RecalculateDates() (*cpm.Result, error) {
	s.logger.WithFields(map[string]interface{}{
		"activities":   len(s.activities),
		"dependencies": len(s.dependencies),
	}).Debug("recalculateDates starting")

	result, err := cpm.Run(cpm.Input{
		Activities:        s.activities,
		Dependencies:      s.dependencies,
		Calendars:         s.calendars,
		DefaultCalendarID: s.defaultCalendarID,
	})
	if err != nil {
		s.logger.WithField("error", err).Debug("recalculateDates failed")
		return nil, err
	}

	s.criticalPath = result.CriticalPath
	s.touch()
	if result.Report.HasWarnings() {
		s.logger.WithField("count", len(result.Report.Warnings)).Warn("recalculateDates produced warnings")
	}
	return result, nil
}

// CriticalPath returns the activity ids on the critical path as of the
// last RecalculateDates call.
func (s *State) CriticalPath() []string { return s.criticalPath }

// LevelResources runs the resource leveler over unfrozen, non-completed
// activities and returns the change log. When EngineConfig.
// AutoRecalculateAfterLeveling is set, RecalculateDates is re-run
// afterward so slack/critical-path reflect the leveled dates.
func (s *State) LevelResources(cfg core.EngineConfig) (*leveler.Result, error) {
	result := leveler.Run(leveler.Input{
		Activities:        s.activities,
		Calendars:         s.calendars,
		DefaultCalendarID: s.defaultCalendarID,
		HorizonDays:       cfg.LevelingHorizonDays,
	})
	s.touch()
	if len(result.Changes) > 0 {
		s.logger.WithField("count", len(result.Changes)).Info("leveling moved tasks")
	}

	if cfg.AutoRecalculateAfterLeveling {
		if _, err := s.RecalculateDates(); err != nil {
			return result, err
		}
	}
	return result, nil
}

// Validate runs the full validation sweep (activities, dependencies,
// graph, resource over-allocation, degenerate calendars) and returns the
// merged result.
func (s *State) Validate() validate.Result {
	var results []validate.Result
	for _, a := range s.activities {
		results = append(results, validate.Activity(a))
	}
	known := s.knownActivityIDs()
	for i := range s.dependencies {
		results = append(results, validate.Dependency(&s.dependencies[i], known))
	}
	results = append(results, validate.Graph(s.activityIDs(), s.dependencies))
	results = append(results, validate.ResourceOverAllocation(s.activities, s.calendars, s.defaultCalendarID))
	results = append(results, validate.DegenerateCalendars(s.calendars))
	return validate.Merge(results...)
}

// Statistics summarizes the project for a dashboard-style overview.
type Statistics struct {
	ActivityCount   int
	CompletedCount  int
	CriticalCount   int
	AverageProgress float64
	ProjectStart    time.Time
	ProjectFinish   time.Time
}

// ProjectStatistics returns a snapshot summary of the current plan.
func (s *State) ProjectStatistics() Statistics {
	stats := Statistics{ActivityCount: len(s.activities)}
	var progressSum float64
	for _, a := range s.activities {
		if a.Status == core.StatusCompleted {
			stats.CompletedCount++
		}
		if a.Timing.IsCritical {
			stats.CriticalCount++
		}
		progressSum += a.Progress
	}
	if len(s.activities) > 0 {
		stats.AverageProgress = progressSum / float64(len(s.activities))
	}
	stats.ProjectStart, stats.ProjectFinish = s.ProjectWindow()
	return stats
}

// ProjectEVM aggregates PV/EV/AC/BAC across all non-summary activities at
// statusDate.
func (s *State) ProjectEVM(statusDate time.Time) evm.Metrics {
	return evm.Project(s.activities, statusDate)
}

// TaskEVM computes EVM metrics for a single activity at statusDate.
func (s *State) TaskEVM(id string, statusDate time.Time) (evm.Metrics, error) {
	a := s.GetActivity(id)
	if a == nil {
		return evm.Metrics{}, &core.NotFoundError{Kind: "activity", ID: id}
	}
	return evm.Activity(a, statusDate), nil
}

// ---- Baselines --------------------------------------------------------

// SaveBaseline captures the current state as a new baseline.
func (s *State) SaveBaseline(id, name, desc string) *core.Baseline {
	start, finish := s.ProjectWindow()
	b := baseline.Save(id, name, desc, s.activities, start, finish, Now())
	s.baselines = append(s.baselines, b)
	s.baselineIdx[id] = len(s.baselines) - 1
	s.touch()
	s.logger.WithFields(map[string]interface{}{"id": id, "activities": len(s.activities)}).Info("baseline saved")
	return b
}

// ApplyBaseline copies a baseline's captured fields onto each activity's
// baseline-* fields.
func (s *State) ApplyBaseline(id string) error {
	idx, ok := s.baselineIdx[id]
	if !ok {
		return &core.NotFoundError{Kind: "baseline", ID: id}
	}
	baseline.Apply(s.baselines[idx], s.activities)
	s.touch()
	return nil
}

// DeleteBaseline removes a baseline. Deleting the default-marked baseline
// is permitted and simply leaves no default.
func (s *State) DeleteBaseline(id string) error {
	idx, ok := s.baselineIdx[id]
	if !ok {
		return &core.NotFoundError{Kind: "baseline", ID: id}
	}
	s.baselines = append(s.baselines[:idx], s.baselines[idx+1:]...)
	s.baselineIdx = make(map[string]int, len(s.baselines))
	for i, b := range s.baselines {
		s.baselineIdx[b.ID] = i
	}
	s.touch()
	return nil
}

// GetAllBaselines returns every baseline in creation order.
func (s *State) GetAllBaselines() []*core.Baseline { return s.baselines }

// BaselineVariance computes project-level variance against baseline id.
func (s *State) BaselineVariance(id string) (baseline.ProjectVariance, error) {
	idx, ok := s.baselineIdx[id]
	if !ok {
		return baseline.ProjectVariance{}, &core.NotFoundError{Kind: "baseline", ID: id}
	}
	start, finish := s.ProjectWindow()
	return baseline.Project(s.baselines[idx], s.activities, start, finish), nil
}

// ---- Scenarios --------------------------------------------------------

// CreateScenario captures a deep snapshot of the current live state under
// a new scenario id without activating it.
func (s *State) CreateScenario(id, name, desc string) *core.Scenario {
	start, finish := s.ProjectWindow()
	live := s.liveData(start, finish)
	sc := s.scenarios.Create(id, name, desc, live, Now())
	s.touch()
	return sc
}

// ActivateScenario swaps the scenario's contents in as the working state,
// saving the current live data for later restoration.
func (s *State) ActivateScenario(id string) error {
	start, finish := s.ProjectWindow()
	live := s.liveData(start, finish)
	newLive, err := s.scenarios.Activate(id, live)
	if err != nil {
		return err
	}
	s.adoptLiveData(newLive)
	s.touch()
	return nil
}

// DeactivateScenario writes the current working state back into the
// active scenario and restores the saved live data.
func (s *State) DeactivateScenario() error {
	start, finish := s.ProjectWindow()
	working := s.liveData(start, finish)
	restored, err := s.scenarios.Deactivate(working)
	if err != nil {
		return err
	}
	s.adoptLiveData(restored)
	s.touch()
	return nil
}

// DeleteScenario removes a scenario; forbidden while active.
func (s *State) DeleteScenario(id string) error {
	if err := s.scenarios.Delete(id); err != nil {
		return err
	}
	s.touch()
	return nil
}

// GetAllScenarios returns every scenario in creation order.
func (s *State) GetAllScenarios() []*core.Scenario { return s.scenarios.All() }

// ActiveScenarioID returns the id of the currently active scenario, or ""
// (invariant: non-empty iff live data has been saved aside).
func (s *State) ActiveScenarioID() string { return s.scenarios.ActiveID() }

func (s *State) liveData(start, finish time.Time) scenario.LiveData {
	activities := make([]core.Activity, len(s.activities))
	for i, a := range s.activities {
		activities[i] = *a
	}
	return scenario.LiveData{
		Activities:    activities,
		Dependencies:  append([]core.Dependency(nil), s.dependencies...),
		Resources:     append([]core.Resource(nil), s.resources...),
		ProjectStart:  start,
		ProjectFinish: finish,
	}
}

func (s *State) adoptLiveData(live scenario.LiveData) {
	s.activities = make([]*core.Activity, len(live.Activities))
	for i := range live.Activities {
		a := live.Activities[i]
		s.activities[i] = &a
	}
	s.reindexActivities()
	s.dependencies = live.Dependencies
	s.resources = live.Resources
	s.resourceIdx = make(map[string]int, len(s.resources))
	for i, r := range s.resources {
		s.resourceIdx[r.ID] = i
	}
}
