package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DLQManager sweeps the dead-letter queue: due entries are reinserted into
// the outbox for redelivery, and entries past the retry budget are
// quarantined for manual inspection.
type DLQManager struct {
	pool       *pgxpool.Pool
	maxRetries int
	baseDelay  time.Duration
}

// NewDLQManager constructs a DLQManager with the provided pool and retry configuration.
func NewDLQManager(pool *pgxpool.Pool, maxRetries int, baseDelay time.Duration) *DLQManager {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	if baseDelay <= 0 {
		baseDelay = time.Minute
	}
	return &DLQManager{pool: pool, maxRetries: maxRetries, baseDelay: baseDelay}
}

// dlqEntry is an outbox_dlq row selected for processing.
type dlqEntry struct {
	ID            int64
	StableID      string
	EventID       int64
	EventType     string
	Topic         string
	Payload       []byte
	Reason        string
	AggregateType string
	AggregateID   string
	SchemaSubject string
	PartitionKey  string
	RetryCount    int
}

// RunOnce processes one batch of due DLQ entries and returns how many were
// handled (requeued, backed off, or quarantined). Per-entry failures are
// joined into the returned error but do not stop the sweep.
func (m *DLQManager) RunOnce(ctx context.Context, batchSize int) (int, error) {
	const query = `SELECT dlq_id, stable_id, event_id, event_type, topic, payload, reason, aggregate_type, aggregate_id, schema_subject, partition_key, retry_count
                    FROM outbox_dlq
                   WHERE quarantined_at IS NULL AND (next_retry_at IS NULL OR next_retry_at <= NOW())
                   ORDER BY created_at
                   LIMIT $1`

	rows, err := m.pool.Query(ctx, query, batchSize)
	if err != nil {
		return 0, err
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (dlqEntry, error) {
		var e dlqEntry
		scanErr := row.Scan(&e.ID, &e.StableID, &e.EventID, &e.EventType, &e.Topic, &e.Payload, &e.Reason,
			&e.AggregateType, &e.AggregateID, &e.SchemaSubject, &e.PartitionKey, &e.RetryCount)
		return e, scanErr
	})
	if err != nil {
		return 0, err
	}

	processed := 0
	var errs []error
	for _, entry := range entries {
		if procErr := m.sweep(ctx, entry); procErr != nil {
			errs = append(errs, procErr)
			continue
		}
		processed++
	}

	updateBacklogGauge(ctx, m.pool)
	return processed, errors.Join(errs...)
}

// sweep decides one entry's fate: quarantine if the retry budget is spent,
// otherwise requeue, falling back to a delayed retry if the requeue fails.
func (m *DLQManager) sweep(ctx context.Context, entry dlqEntry) error {
	if entry.RetryCount >= m.maxRetries {
		return m.quarantine(ctx, entry)
	}
	if insertErr := m.requeue(ctx, entry); insertErr != nil {
		// The requeue transaction is already rolled back at this point;
		// the backoff update must run as its own statement or the
		// aborted transaction would reject it too.
		return m.scheduleRetry(ctx, entry, insertErr)
	}
	return nil
}

func (m *DLQManager) quarantine(ctx context.Context, entry dlqEntry) error {
	_, err := m.pool.Exec(ctx,
		`UPDATE outbox_dlq SET quarantined_at = NOW(), quarantine_reason = $1 WHERE dlq_id = $2`,
		"retry limit reached", entry.ID,
	)
	if err != nil {
		return err
	}
	recordDLQQuarantined(entry)
	return nil
}

// requeue moves one entry back onto the outbox. The insert and the DLQ
// delete must land together; neither table carries a row-level policy.
func (m *DLQManager) requeue(ctx context.Context, entry dlqEntry) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := reinsertOutbox(ctx, tx, entry); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM outbox_dlq WHERE dlq_id = $1`, entry.ID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	recordDLQRequeued(entry)
	return nil
}

func (m *DLQManager) scheduleRetry(ctx context.Context, entry dlqEntry, cause error) error {
	delay := m.backoffDelay(entry.RetryCount + 1)
	_, err := m.pool.Exec(ctx,
		`UPDATE outbox_dlq
           SET retry_count = retry_count + 1,
               last_attempt_at = NOW(),
               next_retry_at = NOW() + $1::interval,
               reason = $2
         WHERE dlq_id = $3`,
		delay, cause.Error(), entry.ID,
	)
	if err != nil {
		return err
	}
	recordDLQRetry(entry)
	return nil
}

// backoffDelay doubles per attempt, capped at one hour.
func (m *DLQManager) backoffDelay(attempt int) time.Duration {
	delay := time.Duration(1<<uint(attempt-1)) * m.baseDelay
	if delay > time.Hour {
		delay = time.Hour
	}
	return delay
}

// reinsertOutbox puts the payload back on the primary outbox table so the
// dispatcher replays it on its next poll.
func reinsertOutbox(ctx context.Context, tx pgx.Tx, entry dlqEntry) error {
	if entry.SchemaSubject == "" {
		return fmt.Errorf("missing schema_subject for dlq entry %d", entry.ID)
	}

	const stmt = `INSERT INTO outbox (stable_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload)
                   VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err := tx.Exec(ctx, stmt,
		entry.StableID,
		entry.AggregateType,
		entry.AggregateID,
		entry.EventType,
		entry.Topic,
		entry.SchemaSubject,
		entry.PartitionKey,
		entry.Payload,
	)
	return err
}
