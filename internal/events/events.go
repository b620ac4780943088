// Package events defines the payloads published through the outbox.
package events

import "time"

// ActivityCreated is emitted when a new activity instance is accepted.
type ActivityCreated struct {
	ActivityID    string    `json:"activity_id"`
	StableID      string    `json:"stable_id"`
	ActivityType  string    `json:"activity_type"`
	ActivityDate  time.Time `json:"activity_date"`
	ScheduledTime string    `json:"scheduled_time,omitempty"`
	DurationMin   int       `json:"duration_min,omitempty"`
	AssignedTo    string    `json:"assigned_to,omitempty"`
	Horses        []string  `json:"horses,omitempty"`
}

// ActivityStatusChanged tracks activity lifecycle transitions for optimistic UI flows.
type ActivityStatusChanged struct {
	ActivityID string    `json:"activity_id"`
	StableID   string    `json:"stable_id"`
	AssignedTo string    `json:"assigned_to,omitempty"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
	Reason     string    `json:"reason,omitempty"`
}

// RoutineStepRecorded is emitted each time a routine step is checked off.
// Consumers use it to keep the routine progress projection current.
type RoutineStepRecorded struct {
	RoutineID      string    `json:"routine_id"`
	StableID       string    `json:"stable_id"`
	RoutineName    string    `json:"routine_name"`
	StepsCompleted int       `json:"steps_completed"`
	StepsTotal     int       `json:"steps_total"`
	Percent        int       `json:"percent_complete"`
	Status         string    `json:"status"`
	OccurredAt     time.Time `json:"occurred_at"`
}
