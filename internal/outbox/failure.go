package outbox

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DLQWriter persists failed events for later replay. The DLQ table carries
// no row-level policy (the manager retries across stables), so writes run as
// single statements outside any per-stable transaction.
type DLQWriter struct {
	pool *pgxpool.Pool
}

// NewDLQWriter initialises a writer backed by the provided connection pool.
func NewDLQWriter(pool *pgxpool.Pool) *DLQWriter {
	return &DLQWriter{pool: pool}
}

// Write records a failed outbox message alongside the supplied reason. The
// entry becomes eligible for retry immediately.
func (w *DLQWriter) Write(ctx context.Context, msg Message, reason string) error {
	const stmt = `INSERT INTO outbox_dlq
        (stable_id, event_id, event_type, topic, payload, reason, aggregate_type, aggregate_id, schema_subject, partition_key, next_retry_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10, NOW())`

	_, err := w.pool.Exec(ctx, stmt,
		msg.StableID,
		msg.EventID,
		msg.EventType,
		msg.Topic,
		msg.Payload,
		reason,
		msg.AggregateType,
		msg.AggregateID,
		msg.SchemaSubject,
		msg.PartitionKey,
	)
	return err
}
