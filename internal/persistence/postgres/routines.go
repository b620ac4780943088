package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"example.com/stableops/internal/domain"
	"example.com/stableops/internal/events"
	"example.com/stableops/internal/observability"
)

const routineColumns = `routine_id, stable_id, routine_name, scheduled_date, scheduled_start_time,
        COALESCE(estimated_duration_min,0), COALESCE(assigned_to,''), status,
        steps_completed, steps_total, percent_complete, created_at, updated_at`

// CreateRoutine persists a routine instance.
func (r *Repository) CreateRoutine(ctx context.Context, routine domain.RoutineInstance) error {
	err := r.withStableTx(ctx, routine.StableID, func(tx pgx.Tx) error {
		const insert = `INSERT INTO routine_instances (routine_id, stable_id, routine_name, scheduled_date, scheduled_start_time, estimated_duration_min, assigned_to, status, steps_completed, steps_total, percent_complete, created_at, updated_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

		_, err := tx.Exec(ctx, insert,
			routine.ID,
			routine.StableID,
			routine.RoutineName,
			routine.ScheduledDate,
			routine.ScheduledStartTime,
			nullIfZero(routine.EstimatedDuration),
			nullIfEmpty(routine.AssignedTo),
			routine.Status,
			routine.Progress.StepsCompleted,
			routine.Progress.StepsTotal,
			routine.Progress.PercentComplete,
			routine.CreatedAt,
			routine.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return err
	}
	observability.RecordRoutinePersisted(routine.UpdatedAt)
	return nil
}

// GetRoutine retrieves a routine instance by ID.
func (r *Repository) GetRoutine(ctx context.Context, stableID, routineID string) (*domain.RoutineInstance, error) {
	query := `SELECT ` + routineColumns + ` FROM routine_instances WHERE stable_id=$1 AND routine_id=$2`

	var routine domain.RoutineInstance
	err := r.withStableTx(ctx, stableID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, query, stableID, routineID)
		return scanRoutine(row, &routine)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &routine, nil
}

// ListRoutinesByDay returns routine instances scheduled on the given day.
func (r *Repository) ListRoutinesByDay(ctx context.Context, stableID string, day time.Time) ([]domain.RoutineInstance, error) {
	query := `SELECT ` + routineColumns + ` FROM routine_instances
        WHERE stable_id=$1 AND scheduled_date=$2
        ORDER BY scheduled_start_time, routine_id`

	var results []domain.RoutineInstance
	err := r.withStableTx(ctx, stableID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, stableID, day)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var routine domain.RoutineInstance
			if err := scanRoutine(rows, &routine); err != nil {
				return err
			}
			results = append(results, routine)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// RecordRoutineStep persists updated progress and status alongside the outbox event.
func (r *Repository) RecordRoutineStep(ctx context.Context, routine domain.RoutineInstance) error {
	return r.withStableTx(ctx, routine.StableID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE routine_instances
               SET status=$1, steps_completed=$2, percent_complete=$3, updated_at=$4
             WHERE stable_id=$5 AND routine_id=$6`,
			routine.Status,
			routine.Progress.StepsCompleted,
			routine.Progress.PercentComplete,
			routine.UpdatedAt,
			routine.StableID,
			routine.ID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrRoutineNotFound
		}

		return insertOutbox(ctx, tx, routine.StableID, "routine", routine.ID, "routine.step_recorded",
			routine.StableID+":"+routine.ID,
			events.RoutineStepRecorded{
				RoutineID:      routine.ID,
				StableID:       routine.StableID,
				RoutineName:    routine.RoutineName,
				StepsCompleted: routine.Progress.StepsCompleted,
				StepsTotal:     routine.Progress.StepsTotal,
				Percent:        routine.Progress.PercentComplete,
				Status:         string(routine.Status),
				OccurredAt:     routine.UpdatedAt,
			})
	})
}

// RoutineRepository adapts Repository to domain.RoutineRepository; the
// activity interface already claims the bare method names on Repository.
type RoutineRepository struct {
	*Repository
}

// Create implements domain.RoutineRepository.
func (r RoutineRepository) Create(ctx context.Context, routine domain.RoutineInstance) error {
	return r.CreateRoutine(ctx, routine)
}

// Get implements domain.RoutineRepository.
func (r RoutineRepository) Get(ctx context.Context, stableID, routineID string) (*domain.RoutineInstance, error) {
	return r.GetRoutine(ctx, stableID, routineID)
}

// ListByDay implements domain.RoutineRepository.
func (r RoutineRepository) ListByDay(ctx context.Context, stableID string, day time.Time) ([]domain.RoutineInstance, error) {
	return r.ListRoutinesByDay(ctx, stableID, day)
}

// RecordStep implements domain.RoutineRepository.
func (r RoutineRepository) RecordStep(ctx context.Context, routine domain.RoutineInstance) error {
	return r.RecordRoutineStep(ctx, routine)
}

func scanRoutine(row pgx.Row, routine *domain.RoutineInstance) error {
	return row.Scan(
		&routine.ID,
		&routine.StableID,
		&routine.RoutineName,
		&routine.ScheduledDate,
		&routine.ScheduledStartTime,
		&routine.EstimatedDuration,
		&routine.AssignedTo,
		&routine.Status,
		&routine.Progress.StepsCompleted,
		&routine.Progress.StepsTotal,
		&routine.Progress.PercentComplete,
		&routine.CreatedAt,
		&routine.UpdatedAt,
	)
}
