// Package scenario implements branch/activate/deactivate/delete semantics
// for what-if plan variants (C7). A scenario is a named deep copy of the
// live tasks/dependencies/resources/project-window; activation swaps it in
// as the working state, deactivation writes edits back and restores the
// prior live data.
package scenario

import (
	"time"

	"project-scheduler/internal/core"
)

// LiveData is the subset of ProjectState a scenario swaps in for and
// restores from.
type LiveData struct {
	Activities    []core.Activity
	Dependencies  []core.Dependency
	Resources     []core.Resource
	ProjectStart  time.Time
	ProjectFinish time.Time
}

// Manager holds the scenario list and tracks which one (if any) is active,
// alongside the live data saved while it is. Manager never holds the
// working collections itself; the caller (internal/project) owns those and
// passes them in on each call.
type Manager struct {
	scenarios       map[string]*core.Scenario
	order           []string
	activeID        string
	savedLiveData   *LiveData
}

// NewManager returns an empty scenario manager.
func NewManager() *Manager {
	return &Manager{scenarios: make(map[string]*core.Scenario)}
}

// ActiveID returns the id of the currently active scenario, or "" if none.
func (m *Manager) ActiveID() string { return m.activeID }

// All returns the scenarios in creation order.
func (m *Manager) All() []*core.Scenario {
	out := make([]*core.Scenario, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.scenarios[id])
	}
	return out
}

// Get returns the scenario with id, or nil.
func (m *Manager) Get(id string) *core.Scenario {
	return m.scenarios[id]
}

// SavedLiveData returns the live data saved aside while a scenario is
// active, or nil when none is active. Exposed so a caller can persist it
// alongside the scenario list (serialization needs the full manager state,
// not just the scenarios themselves, to survive a process restart while a
// scenario is active).
func (m *Manager) SavedLiveData() *LiveData { return m.savedLiveData }

// Restore rebuilds a Manager from a previously exported scenario list (in
// creation order), the active scenario id, and any saved live data. It is
// the inverse of All/ActiveID/SavedLiveData, used to reload a Manager from
// a serialized record.
func Restore(scenarios []*core.Scenario, activeID string, saved *LiveData) *Manager {
	m := NewManager()
	for _, s := range scenarios {
		m.scenarios[s.ID] = s
		m.order = append(m.order, s.ID)
	}
	m.activeID = activeID
	m.savedLiveData = saved
	return m
}

// Create captures a deep snapshot of the live data under a new scenario id
// and stores it without activating it.
func (m *Manager) Create(id, name, desc string, live LiveData, createdAt time.Time) *core.Scenario {
	s := &core.Scenario{
		ID:            id,
		Name:          name,
		Description:   desc,
		CreatedAt:     createdAt,
		Activities:    cloneActivities(live.Activities),
		Dependencies:  cloneDependencies(live.Dependencies),
		Resources:     cloneResources(live.Resources),
		ProjectStart:  live.ProjectStart,
		ProjectFinish: live.ProjectFinish,
	}
	m.scenarios[id] = s
	m.order = append(m.order, id)
	return s
}

// Activate saves the current live data and returns the scenario's stored
// contents as the new working state. Precondition: no scenario is
// currently active.
func (m *Manager) Activate(id string, live LiveData) (LiveData, error) {
	if m.activeID != "" {
		return LiveData{}, &core.InvariantViolationError{Message: "a scenario is already active"}
	}
	s, ok := m.scenarios[id]
	if !ok {
		return LiveData{}, &core.NotFoundError{Kind: "scenario", ID: id}
	}

	saved := live
	m.savedLiveData = &saved
	m.activeID = id

	return LiveData{
		Activities:    cloneActivities(s.Activities),
		Dependencies:  cloneDependencies(s.Dependencies),
		Resources:     cloneResources(s.Resources),
		ProjectStart:  s.ProjectStart,
		ProjectFinish: s.ProjectFinish,
	}, nil
}

// Deactivate writes the current working state back into the active
// scenario (persisting edits) and returns the saved live data to restore
// as the working state. Precondition: a scenario is active.
func (m *Manager) Deactivate(working LiveData) (LiveData, error) {
	if m.activeID == "" || m.savedLiveData == nil {
		return LiveData{}, &core.InvariantViolationError{Message: "no scenario is active"}
	}
	s := m.scenarios[m.activeID]
	s.Activities = cloneActivities(working.Activities)
	s.Dependencies = cloneDependencies(working.Dependencies)
	s.Resources = cloneResources(working.Resources)
	s.ProjectStart = working.ProjectStart
	s.ProjectFinish = working.ProjectFinish

	restored := *m.savedLiveData
	m.activeID = ""
	m.savedLiveData = nil
	return restored, nil
}

// Delete removes a scenario. Forbidden while it is active.
func (m *Manager) Delete(id string) error {
	if id == m.activeID {
		return &core.InvariantViolationError{Message: "cannot delete the active scenario"}
	}
	if _, ok := m.scenarios[id]; !ok {
		return &core.NotFoundError{Kind: "scenario", ID: id}
	}
	delete(m.scenarios, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func cloneActivities(in []core.Activity) []core.Activity {
	out := make([]core.Activity, len(in))
	for i, a := range in {
		out[i] = cloneActivity(a)
	}
	return out
}

// cloneActivity is the dedicated deep-clone routine for one activity,
// covering every pointer/slice/map field so scenario snapshots never alias
// the live state.
func cloneActivity(a core.Activity) core.Activity {
	clone := a

	if a.Duration != nil {
		v := *a.Duration
		clone.Duration = &v
	}
	if a.Effort != nil {
		v := *a.Effort
		clone.Effort = &v
	}
	if a.Cost != nil {
		v := *a.Cost
		clone.Cost = &v
	}
	if a.BudgetedCost != nil {
		v := *a.BudgetedCost
		clone.BudgetedCost = &v
	}
	if a.ActualCost != nil {
		v := *a.ActualCost
		clone.ActualCost = &v
	}
	if a.Constraint != nil {
		c := *a.Constraint
		clone.Constraint = &c
	}
	if a.Baseline != nil {
		b := *a.Baseline
		clone.Baseline = &b
	}
	if a.Recurrence != nil {
		r := *a.Recurrence
		if a.Recurrence.Until != nil {
			u := *a.Recurrence.Until
			r.Until = &u
		}
		clone.Recurrence = &r
	}
	if a.Assignments != nil {
		clone.Assignments = append([]core.Assignment(nil), a.Assignments...)
	}
	if a.CustomFields != nil {
		clone.CustomFields = make(map[string]core.CustomFieldValue, len(a.CustomFields))
		for k, v := range a.CustomFields {
			clone.CustomFields[k] = v
		}
	}
	return clone
}

func cloneDependencies(in []core.Dependency) []core.Dependency {
	return append([]core.Dependency(nil), in...)
}

func cloneResources(in []core.Resource) []core.Resource {
	return append([]core.Resource(nil), in...)
}
