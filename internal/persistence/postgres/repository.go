// Package postgres provides pgx-backed persistence for activities, routines,
// and outbox events.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/stableops/internal/domain"
	"example.com/stableops/internal/events"
	"example.com/stableops/internal/observability"
)

const activityColumns = `activity_id, stable_id, activity_type, activity_date,
        COALESCE(scheduled_time,''), COALESCE(duration_min,0), COALESCE(assigned_to,''),
        status, horses, created_at, updated_at`

// Repository provides Postgres-backed persistence scoped per stable. Every
// statement runs with app.stable_id set so row-level policies isolate
// facilities from each other.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByIdempotency checks if an activity already exists for the supplied idempotency key.
func (r *Repository) FindByIdempotency(ctx context.Context, stableID, idempotencyKey string) (*domain.ActivityInstance, error) {
	if idempotencyKey == "" {
		return nil, nil
	}

	query := `SELECT ` + activityColumns + ` FROM activities WHERE stable_id=$1 AND idempotency_key=$2`

	var activity domain.ActivityInstance
	err := r.withStableTx(ctx, stableID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, query, stableID, idempotencyKey)
		return scanActivity(row, &activity)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

// Create persists the activity and records outbox events inside a single transaction.
func (r *Repository) Create(ctx context.Context, activity domain.ActivityInstance, idempotencyKey string) error {
	err := r.withStableTx(ctx, activity.StableID, func(tx pgx.Tx) error {
		const insert = `INSERT INTO activities (activity_id, stable_id, activity_type, activity_date, scheduled_time, duration_min, assigned_to, status, horses, idempotency_key, created_at, updated_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

		if _, err := tx.Exec(ctx, insert,
			activity.ID,
			activity.StableID,
			activity.ActivityType,
			activity.ActivityDate,
			nullIfEmpty(activity.ScheduledTime),
			nullIfZero(activity.DurationMin),
			nullIfEmpty(activity.AssignedTo),
			activity.Status,
			activity.Horses,
			nullIfEmpty(idempotencyKey),
			activity.CreatedAt,
			activity.UpdatedAt,
		); err != nil {
			return err
		}

		if err := insertOutbox(ctx, tx, activity.StableID, "activity", activity.ID, "activity.created",
			activity.StableID+":"+activity.ID,
			events.ActivityCreated{
				ActivityID:    activity.ID,
				StableID:      activity.StableID,
				ActivityType:  activity.ActivityType,
				ActivityDate:  activity.ActivityDate,
				ScheduledTime: activity.ScheduledTime,
				DurationMin:   activity.DurationMin,
				AssignedTo:    activity.AssignedTo,
				Horses:        activity.Horses,
			}); err != nil {
			return err
		}

		return insertOutbox(ctx, tx, activity.StableID, "activity", activity.ID, "activity.status_changed",
			activity.ID,
			events.ActivityStatusChanged{
				ActivityID: activity.ID,
				StableID:   activity.StableID,
				AssignedTo: activity.AssignedTo,
				Status:     string(activity.Status),
				OccurredAt: activity.UpdatedAt,
			})
	})
	if err != nil {
		return err
	}
	observability.RecordActivityPersisted(activity.UpdatedAt)
	return nil
}

// Get retrieves an activity by ID.
func (r *Repository) Get(ctx context.Context, stableID, activityID string) (*domain.ActivityInstance, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE stable_id=$1 AND activity_id=$2`

	var activity domain.ActivityInstance
	err := r.withStableTx(ctx, stableID, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, query, stableID, activityID)
		return scanActivity(row, &activity)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

// ListByWindow returns activities whose date falls inside the inclusive window.
func (r *Repository) ListByWindow(ctx context.Context, stableID string, start, end time.Time) ([]domain.ActivityInstance, error) {
	query := `SELECT ` + activityColumns + ` FROM activities
        WHERE stable_id=$1 AND activity_date BETWEEN $2 AND $3
        ORDER BY activity_date, COALESCE(scheduled_time,'23:59'), activity_id`

	var results []domain.ActivityInstance
	err := r.withStableTx(ctx, stableID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, stableID, start, end)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var activity domain.ActivityInstance
			if err := scanActivity(rows, &activity); err != nil {
				return err
			}
			results = append(results, activity)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ListByAssignee returns a user's activities with cursor pagination, newest first.
func (r *Repository) ListByAssignee(ctx context.Context, stableID, userID string, cursor *domain.Cursor, limit int) ([]domain.ActivityInstance, *domain.Cursor, error) {
	args := []interface{}{stableID, userID, limit}
	query := `SELECT ` + activityColumns + ` FROM activities WHERE stable_id=$1 AND assigned_to=$2`

	if cursor != nil {
		query += ` AND (activity_date, activity_id) < ($4, $5)`
		args = append(args, cursor.Date, cursor.ID)
	}
	query += ` ORDER BY activity_date DESC, activity_id DESC LIMIT $3`

	results := make([]domain.ActivityInstance, 0, limit)
	err := r.withStableTx(ctx, stableID, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var activity domain.ActivityInstance
			if err := scanActivity(rows, &activity); err != nil {
				return err
			}
			results = append(results, activity)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, nil, err
	}

	var next *domain.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		next = &domain.Cursor{Date: last.ActivityDate, ID: last.ID}
	}
	return results, next, nil
}

// UpdateStatus persists a status transition and records the outbox event.
func (r *Repository) UpdateStatus(ctx context.Context, activity domain.ActivityInstance, reason string) error {
	return r.withStableTx(ctx, activity.StableID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE activities SET status=$1, updated_at=$2 WHERE stable_id=$3 AND activity_id=$4`,
			activity.Status, activity.UpdatedAt, activity.StableID, activity.ID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrActivityNotFound
		}

		return insertOutbox(ctx, tx, activity.StableID, "activity", activity.ID, "activity.status_changed",
			activity.ID,
			events.ActivityStatusChanged{
				ActivityID: activity.ID,
				StableID:   activity.StableID,
				AssignedTo: activity.AssignedTo,
				Status:     string(activity.Status),
				OccurredAt: activity.UpdatedAt,
				Reason:     reason,
			})
	})
}

// withStableTx runs fn inside a transaction with the per-stable session
// config applied, committing unless fn fails.
func (r *Repository) withStableTx(ctx context.Context, stableID string, fn func(tx pgx.Tx) error) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.stable_id', $1, true)", stableID); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanActivity(row pgx.Row, activity *domain.ActivityInstance) error {
	return row.Scan(
		&activity.ID,
		&activity.StableID,
		&activity.ActivityType,
		&activity.ActivityDate,
		&activity.ScheduledTime,
		&activity.DurationMin,
		&activity.AssignedTo,
		&activity.Status,
		&activity.Horses,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)
}

func insertOutbox(ctx context.Context, tx pgx.Tx, stableID, aggregateType, aggregateID, eventType, partitionKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta, ok := eventCatalog[eventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}
	dedupeKey := fmt.Sprintf("%s:%s:%d", aggregateID, eventType, time.Now().UnixNano())

	const stmt = `INSERT INTO outbox (stable_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err = tx.Exec(ctx, stmt,
		stableID,
		aggregateType,
		aggregateID,
		eventType,
		meta.Topic,
		meta.SchemaSubject,
		partitionKey,
		body,
		dedupeKey,
	)
	return err
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

func nullIfZero(value int) interface{} {
	if value == 0 {
		return nil
	}
	return value
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic         string
	SchemaSubject string
}

var eventCatalog = map[string]EventMetadata{
	"activity.created": {
		Topic:         "activity_events",
		SchemaSubject: "activity_events-value",
	},
	"activity.status_changed": {
		Topic:         "activity_status_changed",
		SchemaSubject: "activity_status_changed-value",
	},
	"routine.step_recorded": {
		Topic:         "routine_progress",
		SchemaSubject: "routine_progress-value",
	},
}
