// Package core holds the domain types shared across the scheduling engine:
// activities, dependencies, resources, calendars, baselines, scenarios, and
// the custom-field value union. Algorithms live in the sibling packages
// (calendar, graph, cpm, leveler, baseline, scenario, evm, validate,
// project); this package only defines the shapes they operate on.
package core

import "time"

// ActivityKind distinguishes how an activity participates in scheduling.
type ActivityKind string

const (
	KindLeafTask ActivityKind = "leaf-task"
	KindSummary  ActivityKind = "summary"
	KindMilestone ActivityKind = "milestone"
)

func (k ActivityKind) Valid() bool {
	switch k {
	case KindLeafTask, KindSummary, KindMilestone:
		return true
	}
	return false
}

// ActivityStatus tracks real-world progress of an activity.
type ActivityStatus string

const (
	StatusNotStarted ActivityStatus = "not-started"
	StatusInProgress ActivityStatus = "in-progress"
	StatusCompleted  ActivityStatus = "completed"
	StatusCancelled  ActivityStatus = "cancelled"
)

func (s ActivityStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Priority drives resource-leveling order: lower-valued priorities are
// leveled first and are never delayed to make room for a higher-valued one.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank returns the leveling sort weight for the priority: lower sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// ConstraintKind enumerates the six supported date constraints.
type ConstraintKind string

const (
	ConstraintMSO  ConstraintKind = "MSO"  // Must-Start-On
	ConstraintMFO  ConstraintKind = "MFO"  // Must-Finish-On
	ConstraintSNET ConstraintKind = "SNET" // Start-No-Earlier-Than
	ConstraintFNET ConstraintKind = "FNET" // Finish-No-Earlier-Than
	ConstraintSNLT ConstraintKind = "SNLT" // Start-No-Later-Than
	ConstraintFNLT ConstraintKind = "FNLT" // Finish-No-Later-Than
)

func (c ConstraintKind) Valid() bool {
	switch c {
	case ConstraintMSO, ConstraintMFO, ConstraintSNET, ConstraintFNET, ConstraintSNLT, ConstraintFNLT:
		return true
	}
	return false
}

// Constraint pins or bounds an activity's forward/backward pass dates.
type Constraint struct {
	Kind ConstraintKind
	Date time.Time
}

// DependencyKind enumerates the four CPM link types.
type DependencyKind string

const (
	LinkFS DependencyKind = "FS" // Finish-to-Start
	LinkSS DependencyKind = "SS" // Start-to-Start
	LinkFF DependencyKind = "FF" // Finish-to-Finish
	LinkSF DependencyKind = "SF" // Start-to-Finish
)

func (k DependencyKind) Valid() bool {
	switch k {
	case LinkFS, LinkSS, LinkFF, LinkSF:
		return true
	}
	return false
}

// ResourceKind classifies a resource for reporting purposes; the leveler
// treats all kinds identically.
type ResourceKind string

const (
	ResourcePerson    ResourceKind = "person"
	ResourceEquipment ResourceKind = "equipment"
	ResourceMaterial  ResourceKind = "material"
)

func (k ResourceKind) Valid() bool {
	switch k {
	case ResourcePerson, ResourceEquipment, ResourceMaterial:
		return true
	}
	return false
}

// CustomFieldKind discriminates the CustomFieldValue tagged union.
type CustomFieldKind string

const (
	FieldText     CustomFieldKind = "text"
	FieldNumber   CustomFieldKind = "number"
	FieldDate     CustomFieldKind = "date"
	FieldFlag     CustomFieldKind = "flag"
	FieldDropdown CustomFieldKind = "dropdown"
	FieldDuration CustomFieldKind = "duration"
	FieldCost     CustomFieldKind = "cost"
)

func (k CustomFieldKind) Valid() bool {
	switch k {
	case FieldText, FieldNumber, FieldDate, FieldFlag, FieldDropdown, FieldDuration, FieldCost:
		return true
	}
	return false
}

// CustomFieldValue is a tagged union keyed by Kind; only the member matching
// Kind is meaningful.
type CustomFieldValue struct {
	Kind   CustomFieldKind
	Text   string
	Number float64
	Date   time.Time
	Flag   bool
}

// CustomField describes a user-defined attribute that can be attached to
// activities via CustomFieldValue entries keyed by Field.ID.
type CustomField struct {
	ID   string
	Name string
	Kind CustomFieldKind
}

// RecurrenceFreq enumerates recurrence cadences consumed only by the
// recurrence expander, never by the scheduling core.
type RecurrenceFreq string

const (
	RecurDaily   RecurrenceFreq = "daily"
	RecurWeekly  RecurrenceFreq = "weekly"
	RecurMonthly RecurrenceFreq = "monthly"
)

// RecurrenceRule describes how an activity template repeats.
type RecurrenceRule struct {
	Freq     RecurrenceFreq
	Interval int // every Interval units of Freq; 0 treated as 1
	Count    int // stop after Count occurrences; 0 means no count limit (Until or the expansion window ends it)
	Until    *time.Time
}

// Assignment is one resource assigned to an activity at a given allocation
// percentage (0-100).
type Assignment struct {
	ResourceID string
	Allocation float64
}

// Timing holds the fields computed by the CPM solver. They are entirely
// owned by the solver and overwritten on every run; callers must not hand-
// edit them.
type Timing struct {
	EarlyStart  time.Time
	EarlyFinish time.Time
	LateStart   time.Time
	LateFinish  time.Time
	TotalSlack  int // working days; <= 0 means critical
	IsCritical  bool
}

// BaselineFields mirrors the subset of an activity captured in a baseline
// snapshot (see Baseline below).
type BaselineFields struct {
	Start    time.Time
	Finish   time.Time
	Duration int
	Work     float64
	Cost     float64
	Progress float64
}

// Activity is the unit of schedulable work.
type Activity struct {
	ID   string
	Name string
	Kind ActivityKind

	Start  time.Time
	Finish time.Time

	// Duration is in working days. Zero and present means a milestone-style
	// zero-length task; nil means "derive from Start/Finish using the
	// activity's calendar".
	Duration *int

	Progress float64 // 0-100
	Status   ActivityStatus
	Priority Priority

	Constraint *Constraint

	CalendarID string // empty means "use the project's default calendar"

	Effort       *float64 // work-hours
	Cost         *float64 // direct cost
	BudgetedCost *float64
	ActualCost   *float64 // true actuals, overrides the EVM approximation when present

	SummaryParentID string

	Assignments []Assignment

	Timing Timing

	Baseline *BaselineFields

	CustomFields map[string]CustomFieldValue

	Recurrence *RecurrenceRule

	Frozen bool // completed/locked activities are never moved by the leveler
}

// Dependency is a precedence edge between two distinct activities.
type Dependency struct {
	ID            string
	PredecessorID string
	SuccessorID   string
	Kind          DependencyKind
	Lag           int // working days; negative is a lead
	Notes         string
}

// Resource is a person, piece of equipment, or material that can be
// assigned to activities.
type Resource struct {
	ID            string
	Name          string
	Kind          ResourceKind
	CostPerHour   float64
	Availability  float64 // 0-100
	Contact       string
	Notes         string
}

// WorkingWindow is a daily working time-of-day window; carried for callers
// that render sub-day schedules but never consulted by day-granularity
// arithmetic.
type WorkingWindow struct {
	Start string // "HH:MM"
	End   string // "HH:MM"
}

// CalendarException overrides the weekly working pattern for an inclusive
// date range.
type CalendarException struct {
	Name    string
	From    time.Time
	To      time.Time
	Working bool
}

// Calendar maps calendar dates to working/non-working days.
type Calendar struct {
	ID             string
	Name           string
	WorkingDays    map[time.Weekday]bool
	HoursPerDay    float64
	WorkingWindows []WorkingWindow
	Exceptions     []CalendarException
	Default        bool
}

// BaselineSnapshot is the captured state of one activity at baseline-save
// time.
type BaselineSnapshot struct {
	ActivityID string
	Start      time.Time
	Finish     time.Time
	Duration   int
	Work       float64
	Cost       float64
	Progress   float64
}

// Baseline is an immutable snapshot of the plan for variance tracking.
type Baseline struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	Snapshots   map[string]BaselineSnapshot // keyed by ActivityID
	ProjectStart  time.Time
	ProjectFinish time.Time
	TotalCost     float64
	Default       bool
}

// Scenario is a named branch of the plan used for what-if analysis.
type Scenario struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time

	Activities    []Activity
	Dependencies  []Dependency
	Resources     []Resource
	ProjectStart  time.Time
	ProjectFinish time.Time
}
