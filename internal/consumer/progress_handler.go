package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/stableops/internal/events"
)

// ProgressHandler projects routine.step_recorded events into a per-routine
// read model so dashboards can query completion without hitting the
// routine_instances table directly.
type ProgressHandler struct {
	pool *pgxpool.Pool
}

// NewProgressHandler constructs a handler backed by the provided pool.
func NewProgressHandler(pool *pgxpool.Pool) *ProgressHandler {
	return &ProgressHandler{pool: pool}
}

// Handle upserts the latest progress for the routine referenced by the event.
// Events other than routine.step_recorded are ignored.
func (h *ProgressHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != "routine.step_recorded" {
		return nil
	}

	var event events.RoutineStepRecorded
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("unmarshal routine.step_recorded: %w", err)
	}

	// Last-write-wins is decided by when the step was recorded, not by the
	// record timestamp: a dead-lettered event is re-framed with a fresh
	// broker time on requeue and must not overwrite newer progress.
	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = msg.Timestamp
	}

	conn, err := h.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx,
		`INSERT INTO routine_progress_projection (routine_id, stable_id, steps_completed, steps_total, percent_complete, status, updated_at)
         VALUES ($1,$2,$3,$4,$5,$6,$7)
         ON CONFLICT (routine_id) DO UPDATE SET
             steps_completed = EXCLUDED.steps_completed,
             steps_total = EXCLUDED.steps_total,
             percent_complete = EXCLUDED.percent_complete,
             status = EXCLUDED.status,
             updated_at = EXCLUDED.updated_at
         WHERE routine_progress_projection.updated_at <= EXCLUDED.updated_at`,
		event.RoutineID,
		event.StableID,
		event.StepsCompleted,
		event.StepsTotal,
		event.Percent,
		event.Status,
		occurredAt,
	)
	return err
}
