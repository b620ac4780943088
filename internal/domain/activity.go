package domain

import (
	"time"
)

// ActivityStatus represents the lifecycle state of an activity instance.
type ActivityStatus string

const (
	ActivityStatusPending    ActivityStatus = "pending"
	ActivityStatusInProgress ActivityStatus = "in_progress"
	ActivityStatusCompleted  ActivityStatus = "completed"
	ActivityStatusCancelled  ActivityStatus = "cancelled"
	ActivityStatusOverdue    ActivityStatus = "overdue"
)

var activityTransitions = map[ActivityStatus][]ActivityStatus{
	ActivityStatusPending:    {ActivityStatusInProgress, ActivityStatusCompleted, ActivityStatusCancelled, ActivityStatusOverdue},
	ActivityStatusInProgress: {ActivityStatusCompleted, ActivityStatusCancelled},
	ActivityStatusOverdue:    {ActivityStatusInProgress, ActivityStatusCompleted, ActivityStatusCancelled},
}

// CanTransition reports whether the status may move to next.
func (s ActivityStatus) CanTransition(next ActivityStatus) bool {
	for _, allowed := range activityTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether the status is one of the known lifecycle states.
func (s ActivityStatus) Valid() bool {
	switch s {
	case ActivityStatusPending, ActivityStatusInProgress, ActivityStatusCompleted, ActivityStatusCancelled, ActivityStatusOverdue:
		return true
	}
	return false
}

// ActivityInstance is one concrete scheduled or ad-hoc task within a stable.
// ScheduledTime is an HH:MM clock string; empty means the task has no explicit
// time of day. AssignedTo is empty when the task is unassigned.
type ActivityInstance struct {
	ID            string
	StableID      string
	ActivityType  string
	ActivityDate  time.Time
	ScheduledTime string
	DurationMin   int
	AssignedTo    string
	Status        ActivityStatus
	Horses        []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
