package models

// Eisen is the eisenhower priority tag of a task.
type Eisen string

const (
	EisenRegular            Eisen = "regular"
	EisenImportant          Eisen = "important"
	EisenUrgent             Eisen = "urgent"
	EisenImportantAndUrgent Eisen = "important-and-urgent"
)

// Valid reports whether the value is a known eisenhower priority.
func (e Eisen) Valid() bool {
	switch e {
	case EisenRegular, EisenImportant, EisenUrgent, EisenImportantAndUrgent:
		return true
	default:
		return false
	}
}

// Difficulty is the estimated difficulty of a task.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether the value is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// InboxTaskStatus is the lifecycle state of an inbox task.
type InboxTaskStatus string

const (
	InboxTaskStatusNotStarted InboxTaskStatus = "not-started"
	InboxTaskStatusAccepted   InboxTaskStatus = "accepted"
	InboxTaskStatusRecurring  InboxTaskStatus = "recurring"
	InboxTaskStatusInProgress InboxTaskStatus = "in-progress"
	InboxTaskStatusBlocked    InboxTaskStatus = "blocked"
	InboxTaskStatusNotDone    InboxTaskStatus = "not-done"
	InboxTaskStatusDone       InboxTaskStatus = "done"
)

// Valid reports whether the value is a known inbox task status.
func (s InboxTaskStatus) Valid() bool {
	switch s {
	case InboxTaskStatusNotStarted, InboxTaskStatusAccepted, InboxTaskStatusRecurring,
		InboxTaskStatusInProgress, InboxTaskStatusBlocked, InboxTaskStatusNotDone, InboxTaskStatusDone:
		return true
	default:
		return false
	}
}

// IsAccepted reports membership in the accepted group.
func (s InboxTaskStatus) IsAccepted() bool {
	return s == InboxTaskStatusAccepted || s == InboxTaskStatusRecurring
}

// IsWorking reports membership in the working group.
func (s InboxTaskStatus) IsWorking() bool {
	return s == InboxTaskStatusInProgress || s == InboxTaskStatusBlocked
}

// IsCompleted reports membership in the completed group.
func (s InboxTaskStatus) IsCompleted() bool {
	return s == InboxTaskStatusNotDone || s == InboxTaskStatusDone
}

// BigPlanStatus is the lifecycle state of a big plan.
type BigPlanStatus string

const (
	BigPlanStatusNotStarted BigPlanStatus = "not-started"
	BigPlanStatusAccepted   BigPlanStatus = "accepted"
	BigPlanStatusInProgress BigPlanStatus = "in-progress"
	BigPlanStatusBlocked    BigPlanStatus = "blocked"
	BigPlanStatusNotDone    BigPlanStatus = "not-done"
	BigPlanStatusDone       BigPlanStatus = "done"
)

// Valid reports whether the value is a known big plan status.
func (s BigPlanStatus) Valid() bool {
	switch s {
	case BigPlanStatusNotStarted, BigPlanStatusAccepted, BigPlanStatusInProgress,
		BigPlanStatusBlocked, BigPlanStatusNotDone, BigPlanStatusDone:
		return true
	default:
		return false
	}
}

// IsAccepted reports membership in the accepted group.
func (s BigPlanStatus) IsAccepted() bool {
	return s == BigPlanStatusAccepted
}

// IsWorking reports membership in the working group.
func (s BigPlanStatus) IsWorking() bool {
	return s == BigPlanStatusInProgress || s == BigPlanStatusBlocked
}

// IsCompleted reports membership in the completed group.
func (s BigPlanStatus) IsCompleted() bool {
	return s == BigPlanStatusNotDone || s == BigPlanStatusDone
}

// InboxTaskSource tags where an inbox task came from.
type InboxTaskSource string

const (
	InboxTaskSourceUser           InboxTaskSource = "user"
	InboxTaskSourceBigPlan        InboxTaskSource = "big-plan"
	InboxTaskSourceHabit          InboxTaskSource = "habit"
	InboxTaskSourceChore          InboxTaskSource = "chore"
	InboxTaskSourceMetric         InboxTaskSource = "metric"
	InboxTaskSourcePersonCatchUp  InboxTaskSource = "person-catch-up"
	InboxTaskSourcePersonBirthday InboxTaskSource = "person-birthday"
	InboxTaskSourceSlackTask      InboxTaskSource = "slack-task"
	InboxTaskSourceEmailTask      InboxTaskSource = "email-task"
)

// AllInboxTaskSources lists every source tag.
var AllInboxTaskSources = []InboxTaskSource{
	InboxTaskSourceUser,
	InboxTaskSourceBigPlan,
	InboxTaskSourceHabit,
	InboxTaskSourceChore,
	InboxTaskSourceMetric,
	InboxTaskSourcePersonCatchUp,
	InboxTaskSourcePersonBirthday,
	InboxTaskSourceSlackTask,
	InboxTaskSourceEmailTask,
}

// Valid reports whether the value is a known source.
func (s InboxTaskSource) Valid() bool {
	for _, known := range AllInboxTaskSources {
		if s == known {
			return true
		}
	}
	return false
}

// IsGenerated reports whether tasks from this source are owned by the
// generation engine. User and big-plan tasks are hand-made and stay
// fully user-editable.
func (s InboxTaskSource) IsGenerated() bool {
	switch s {
	case InboxTaskSourceUser, InboxTaskSourceBigPlan:
		return false
	default:
		return true
	}
}

// SyncTarget names a generation source kind a gen run may cover.
type SyncTarget string

const (
	SyncTargetHabits     SyncTarget = "habits"
	SyncTargetChores     SyncTarget = "chores"
	SyncTargetMetrics    SyncTarget = "metrics"
	SyncTargetPersons    SyncTarget = "persons"
	SyncTargetSlackTasks SyncTarget = "slack-tasks"
	SyncTargetEmailTasks SyncTarget = "email-tasks"
)

// AllSyncTargets lists targets in the order the generation engine
// processes them.
var AllSyncTargets = []SyncTarget{
	SyncTargetHabits,
	SyncTargetChores,
	SyncTargetMetrics,
	SyncTargetPersons,
	SyncTargetSlackTasks,
	SyncTargetEmailTasks,
}

// Valid reports whether the value is a known sync target.
func (s SyncTarget) Valid() bool {
	for _, known := range AllSyncTargets {
		if s == known {
			return true
		}
	}
	return false
}
