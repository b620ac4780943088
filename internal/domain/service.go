// Package domain defines the business logic for the stableops service.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrActivityNotFound is returned when an activity cannot be located.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrRoutineNotFound is returned when a routine instance cannot be located.
	ErrRoutineNotFound = errors.New("routine instance not found")
	// ErrInvalidTransition indicates a disallowed status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ActivityRepository captures persistence operations for activity instances.
type ActivityRepository interface {
	FindByIdempotency(ctx context.Context, stableID, idempotencyKey string) (*ActivityInstance, error)
	Create(ctx context.Context, activity ActivityInstance, idempotencyKey string) error
	Get(ctx context.Context, stableID, activityID string) (*ActivityInstance, error)
	ListByWindow(ctx context.Context, stableID string, start, end time.Time) ([]ActivityInstance, error)
	ListByAssignee(ctx context.Context, stableID, userID string, cursor *Cursor, limit int) ([]ActivityInstance, *Cursor, error)
	UpdateStatus(ctx context.Context, activity ActivityInstance, reason string) error
}

// RoutineRepository captures persistence operations for routine instances.
type RoutineRepository interface {
	Create(ctx context.Context, routine RoutineInstance) error
	Get(ctx context.Context, stableID, routineID string) (*RoutineInstance, error)
	ListByDay(ctx context.Context, stableID string, day time.Time) ([]RoutineInstance, error)
	RecordStep(ctx context.Context, routine RoutineInstance) error
}

// Cursor models the pagination token for assignee listings.
type Cursor struct {
	Date time.Time
	ID   string
}

// Service orchestrates activity and routine workflows.
type Service struct {
	activities ActivityRepository
	routines   RoutineRepository
}

// NewService constructs a Service.
func NewService(activities ActivityRepository, routines RoutineRepository) *Service {
	return &Service{activities: activities, routines: routines}
}

// CreateActivityInput captures the payload from the API layer.
type CreateActivityInput struct {
	StableID       string
	ActivityType   string
	ActivityDate   time.Time
	ScheduledTime  string
	DurationMin    int
	AssignedTo     string
	Horses         []string
	IdempotencyKey string
}

// CreateActivity handles idempotent create semantics and outbox recording.
// The second return value reports an idempotent replay.
func (s *Service) CreateActivity(ctx context.Context, input CreateActivityInput) (*ActivityInstance, bool, error) {
	if input.ScheduledTime != "" && !IsClockTime(input.ScheduledTime) {
		return nil, false, fmt.Errorf("scheduled_time %q is not a valid HH:MM clock string", input.ScheduledTime)
	}

	if existing, err := s.activities.FindByIdempotency(ctx, input.StableID, input.IdempotencyKey); err == nil && existing != nil {
		return existing, true, nil
	}

	now := time.Now().UTC()
	activity := ActivityInstance{
		ID:            uuid.NewString(),
		StableID:      input.StableID,
		ActivityType:  input.ActivityType,
		ActivityDate:  midnight(input.ActivityDate),
		ScheduledTime: input.ScheduledTime,
		DurationMin:   input.DurationMin,
		AssignedTo:    input.AssignedTo,
		Status:        ActivityStatusPending,
		Horses:        input.Horses,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.activities.Create(ctx, activity, input.IdempotencyKey); err != nil {
		return nil, false, err
	}

	return &activity, false, nil
}

// GetActivity fetches an activity by ID.
func (s *Service) GetActivity(ctx context.Context, stableID, activityID string) (*ActivityInstance, error) {
	activity, err := s.activities.Get(ctx, stableID, activityID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}
	return activity, nil
}

// UpdateActivityStatus applies a validated status transition.
func (s *Service) UpdateActivityStatus(ctx context.Context, stableID, activityID string, next ActivityStatus, reason string) (*ActivityInstance, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	activity, err := s.GetActivity(ctx, stableID, activityID)
	if err != nil {
		return nil, err
	}
	if !activity.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, activity.Status, next)
	}

	activity.Status = next
	activity.UpdatedAt = time.Now().UTC()
	if err := s.activities.UpdateStatus(ctx, *activity, reason); err != nil {
		return nil, err
	}
	return activity, nil
}

// ListActivitiesByWindow returns activities scheduled inside the inclusive date window.
func (s *Service) ListActivitiesByWindow(ctx context.Context, stableID string, start, end time.Time) ([]ActivityInstance, error) {
	return s.activities.ListByWindow(ctx, stableID, midnight(start), midnight(end))
}

// ListActivitiesByAssignee fetches a user's activities with cursor pagination.
func (s *Service) ListActivitiesByAssignee(ctx context.Context, stableID, userID string, cursor *Cursor, limit int) ([]ActivityInstance, *Cursor, error) {
	return s.activities.ListByAssignee(ctx, stableID, userID, cursor, limit)
}

// ScheduleRoutineInput captures the payload for scheduling a routine occurrence.
type ScheduleRoutineInput struct {
	StableID           string
	RoutineName        string
	ScheduledDate      time.Time
	ScheduledStartTime string
	EstimatedDuration  int
	AssignedTo         string
	StepsTotal         int
}

// ScheduleRoutine creates a routine instance in the scheduled state.
func (s *Service) ScheduleRoutine(ctx context.Context, input ScheduleRoutineInput) (*RoutineInstance, error) {
	if strings.TrimSpace(input.RoutineName) == "" {
		return nil, errors.New("routine_name is required")
	}
	if !IsClockTime(input.ScheduledStartTime) {
		return nil, fmt.Errorf("scheduled_start_time %q is not a valid HH:MM clock string", input.ScheduledStartTime)
	}
	if input.StepsTotal < 0 {
		return nil, errors.New("steps_total must be >= 0")
	}

	now := time.Now().UTC()
	routine := RoutineInstance{
		ID:                 uuid.NewString(),
		StableID:           input.StableID,
		RoutineName:        input.RoutineName,
		ScheduledDate:      midnight(input.ScheduledDate),
		ScheduledStartTime: input.ScheduledStartTime,
		EstimatedDuration:  input.EstimatedDuration,
		AssignedTo:         input.AssignedTo,
		Status:             RoutineStatusScheduled,
		Progress:           RoutineProgress{StepsTotal: input.StepsTotal},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	routine.Progress.Recalculate()

	if err := s.routines.Create(ctx, routine); err != nil {
		return nil, err
	}
	return &routine, nil
}

// GetRoutine fetches a routine instance by ID.
func (s *Service) GetRoutine(ctx context.Context, stableID, routineID string) (*RoutineInstance, error) {
	routine, err := s.routines.Get(ctx, stableID, routineID)
	if err != nil {
		return nil, err
	}
	if routine == nil {
		return nil, ErrRoutineNotFound
	}
	return routine, nil
}

// RecordRoutineStep marks one more step of the routine complete, restores the
// percent invariant, and advances the status when the step count warrants it.
func (s *Service) RecordRoutineStep(ctx context.Context, stableID, routineID string) (*RoutineInstance, error) {
	routine, err := s.GetRoutine(ctx, stableID, routineID)
	if err != nil {
		return nil, err
	}

	switch routine.Status {
	case RoutineStatusCompleted, RoutineStatusMissed, RoutineStatusCancelled:
		return nil, fmt.Errorf("%w: routine is %s", ErrInvalidTransition, routine.Status)
	}

	if routine.Progress.StepsCompleted < routine.Progress.StepsTotal {
		routine.Progress.StepsCompleted++
	}
	routine.Progress.Recalculate()

	if routine.Progress.StepsTotal > 0 && routine.Progress.StepsCompleted == routine.Progress.StepsTotal {
		routine.Status = RoutineStatusCompleted
	} else if routine.Status == RoutineStatusScheduled || routine.Status == RoutineStatusStarted {
		routine.Status = RoutineStatusInProgress
	}
	routine.UpdatedAt = time.Now().UTC()

	if err := s.routines.RecordStep(ctx, *routine); err != nil {
		return nil, err
	}
	return routine, nil
}

// ListRoutinesByDay returns routine instances scheduled on the given calendar day.
func (s *Service) ListRoutinesByDay(ctx context.Context, stableID string, day time.Time) ([]RoutineInstance, error) {
	return s.routines.ListByDay(ctx, stableID, midnight(day))
}

func midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
