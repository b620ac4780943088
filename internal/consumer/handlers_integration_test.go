//go:build integration

package consumer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/stableops/internal/events"
)

func TestEventLogHandlerRecordsConsumedEvents(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(t, ctx)
	handler := NewEventLogHandler(pool)

	stableID := uuid.NewString()
	msg := Message{
		Topic:         "activity_events",
		Partition:     2,
		Offset:        17,
		Timestamp:     time.Now().UTC(),
		EventType:     "activity.created",
		StableID:      stableID,
		SchemaSubject: "activity_events-value",
		SchemaID:      42,
		Payload:       json.RawMessage(`{"activity_id":"a-1"}`),
	}

	require.NoError(t, handler.Handle(ctx, msg))
	// Redelivery of the same offset appends a second row; the log is
	// append-only and dedup is left to readers.
	require.NoError(t, handler.Handle(ctx, msg))

	var count int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM stable_event_log WHERE stable_id = $1 AND record_offset = 17`,
		stableID).Scan(&count))
	require.Equal(t, 2, count)

	var schemaID int
	var topic string
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT schema_id, topic FROM stable_event_log WHERE stable_id = $1 LIMIT 1`,
		stableID).Scan(&schemaID, &topic))
	require.Equal(t, 42, schemaID)
	require.Equal(t, "activity_events", topic)
}

func TestProgressHandlerUpsertsLatestProgress(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(t, ctx)
	handler := NewProgressHandler(pool)

	stableID := uuid.NewString()
	routineID := uuid.NewString()
	base := time.Date(2026, time.March, 11, 8, 0, 0, 0, time.UTC)

	first := stepMessage(t, stableID, routineID, 1, 3, 33, "in_progress", base)
	require.NoError(t, handler.Handle(ctx, first))

	second := stepMessage(t, stableID, routineID, 3, 3, 100, "completed", base.Add(time.Minute))
	require.NoError(t, handler.Handle(ctx, second))

	var completed, percent int
	var status string
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT steps_completed, percent_complete, status FROM routine_progress_projection WHERE routine_id = $1`,
		routineID).Scan(&completed, &percent, &status))
	require.Equal(t, 3, completed)
	require.Equal(t, 100, percent)
	require.Equal(t, "completed", status)

	// A redelivered stale event must not roll the projection back.
	require.NoError(t, handler.Handle(ctx, first))

	require.NoError(t, pool.QueryRow(ctx,
		`SELECT steps_completed, percent_complete, status FROM routine_progress_projection WHERE routine_id = $1`,
		routineID).Scan(&completed, &percent, &status))
	require.Equal(t, 3, completed)
	require.Equal(t, 100, percent)
	require.Equal(t, "completed", status)
}

func TestProgressHandlerKeepsNewerProgressOnRequeuedStaleEvent(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(t, ctx)
	handler := NewProgressHandler(pool)

	stableID := uuid.NewString()
	routineID := uuid.NewString()
	base := time.Date(2026, time.March, 11, 8, 0, 0, 0, time.UTC)

	first := stepMessage(t, stableID, routineID, 1, 3, 33, "in_progress", base)
	second := stepMessage(t, stableID, routineID, 2, 3, 67, "in_progress", base.Add(time.Minute))
	require.NoError(t, handler.Handle(ctx, second))

	// A dead-lettered copy of the first step comes back through the
	// dispatcher, which frames it with a fresh record timestamp that is
	// later than the projection row. The occurrence time still decides.
	requeued := first
	requeued.Timestamp = base.Add(time.Hour)
	require.NoError(t, handler.Handle(ctx, requeued))

	var completed, percent int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT steps_completed, percent_complete FROM routine_progress_projection WHERE routine_id = $1`,
		routineID).Scan(&completed, &percent))
	require.Equal(t, 2, completed)
	require.Equal(t, 67, percent)
}

func TestProgressHandlerIgnoresOtherEventTypes(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(t, ctx)
	handler := NewProgressHandler(pool)

	msg := Message{
		Topic:     "activity_events",
		EventType: "activity.created",
		StableID:  uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Payload:   json.RawMessage(`{"activity_id":"a-1"}`),
	}
	require.NoError(t, handler.Handle(ctx, msg))

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM routine_progress_projection`).Scan(&count))
	require.Zero(t, count)
}

func stepMessage(t *testing.T, stableID, routineID string, completed, total, percent int, status string, at time.Time) Message {
	t.Helper()

	payload, err := json.Marshal(events.RoutineStepRecorded{
		RoutineID:      routineID,
		StableID:       stableID,
		RoutineName:    "Evening turnout",
		StepsCompleted: completed,
		StepsTotal:     total,
		Percent:        percent,
		Status:         status,
		OccurredAt:     at,
	})
	require.NoError(t, err)

	return Message{
		Topic:         "routine_progress",
		Timestamp:     at,
		EventType:     "routine.step_recorded",
		StableID:      stableID,
		SchemaSubject: "routine_progress-value",
		SchemaID:      7,
		Payload:       payload,
	}
}

func setupPool(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("stableops"),
		postgrescontainer.WithUsername("stableops"),
		postgrescontainer.WithPassword("stableops"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))

	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	t.Helper()

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	migrationsDir := resolvePath(t, "../../db/postgres/migrations")
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	sort.Strings(files)

	for _, file := range files {
		contents, readErr := os.ReadFile(file)
		require.NoErrorf(t, readErr, "read migration %s", file)

		_, execErr := pool.Exec(ctx, string(contents))
		require.NoErrorf(t, execErr, "execute migration %s", file)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
