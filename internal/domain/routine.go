package domain

import "time"

// RoutineStatus represents the lifecycle state of a routine instance.
type RoutineStatus string

const (
	RoutineStatusScheduled  RoutineStatus = "scheduled"
	RoutineStatusStarted    RoutineStatus = "started"
	RoutineStatusInProgress RoutineStatus = "in_progress"
	RoutineStatusCompleted  RoutineStatus = "completed"
	RoutineStatusMissed     RoutineStatus = "missed"
	RoutineStatusCancelled  RoutineStatus = "cancelled"
)

var routineTransitions = map[RoutineStatus][]RoutineStatus{
	RoutineStatusScheduled:  {RoutineStatusStarted, RoutineStatusInProgress, RoutineStatusMissed, RoutineStatusCancelled},
	RoutineStatusStarted:    {RoutineStatusInProgress, RoutineStatusCompleted, RoutineStatusCancelled},
	RoutineStatusInProgress: {RoutineStatusCompleted, RoutineStatusCancelled},
}

// CanTransition reports whether the status may move to next.
func (s RoutineStatus) CanTransition(next RoutineStatus) bool {
	for _, allowed := range routineTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether the status is one of the known lifecycle states.
func (s RoutineStatus) Valid() bool {
	switch s {
	case RoutineStatusScheduled, RoutineStatusStarted, RoutineStatusInProgress, RoutineStatusCompleted, RoutineStatusMissed, RoutineStatusCancelled:
		return true
	}
	return false
}

// RoutineProgress tracks step completion for a routine instance.
// PercentComplete is denormalized and must always equal
// round(100 * StepsCompleted / StepsTotal) when StepsTotal > 0, else 0.
type RoutineProgress struct {
	StepsCompleted  int
	StepsTotal      int
	PercentComplete int
}

// Recalculate restores the percent invariant from the step counts.
func (p *RoutineProgress) Recalculate() {
	if p.StepsTotal <= 0 {
		p.PercentComplete = 0
		return
	}
	p.PercentComplete = (100*p.StepsCompleted + p.StepsTotal/2) / p.StepsTotal
}

// RoutineInstance is one scheduled occurrence of a routine template.
// ScheduledStartTime is an HH:MM clock string and is always present.
type RoutineInstance struct {
	ID                 string
	StableID           string
	RoutineName        string
	ScheduledDate      time.Time
	ScheduledStartTime string
	EstimatedDuration  int
	AssignedTo         string
	Status             RoutineStatus
	Progress           RoutineProgress
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
