// Package outbox persists and delivers domain events to Kafka.
package outbox

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

type schemaRegistrar interface {
	EnsureSchema(context.Context, string, string) (int, error)
}

// Dispatcher drains the outbox table and ships events to Kafka framed with
// Schema Registry IDs. Rows that cannot be delivered move to the DLQ; either
// way the row is marked published so the claim query never rescans it.
type Dispatcher struct {
	pool             *pgxpool.Pool
	producer         messageWriter
	registry         schemaRegistrar
	dlq              *DLQWriter
	pollInterval     time.Duration
	batchSize        int
	schemaIDCache    sync.Map
	shutdownComplete chan struct{}
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(pool *pgxpool.Pool, producer messageWriter, registry schemaRegistrar, pollInterval time.Duration, batchSize int) *Dispatcher {
	return &Dispatcher{
		pool:             pool,
		producer:         producer,
		registry:         registry,
		dlq:              NewDLQWriter(pool),
		pollInterval:     pollInterval,
		batchSize:        batchSize,
		shutdownComplete: make(chan struct{}),
	}
}

// Start launches the polling loop. It should be called in a goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer func() {
		ticker.Stop()
		close(d.shutdownComplete)
	}()

	for {
		if err := d.processBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("outbox dispatcher error: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Wait blocks until the polling loop has exited.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

// processBatch claims pending rows, frames them, writes each topic's batch,
// and marks every claimed row published. A failed topic write dead-letters
// only the messages in that batch.
func (d *Dispatcher) processBatch(ctx context.Context) error {
	claimed, err := d.claim(ctx)
	if err != nil {
		return err
	}
	if len(claimed) == 0 {
		return nil
	}

	start := time.Now()
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	batches, dead := d.frame(ctx, claimed)

	for topic, batch := range batches {
		if writeErr := d.producer.WriteMessages(ctx, topic, batch.records...); writeErr != nil {
			log.Printf("outbox: write to %s failed: %v", topic, writeErr)
			dead = append(dead, deadLetter{messages: batch.sources, reason: writeErr.Error()})
			continue
		}
		deliveredCounter.Add(float64(len(batch.records)))
	}

	for _, dl := range dead {
		failedCounter.Add(float64(len(dl.messages)))
		if dlqErr := d.moveToDLQ(ctx, dl.messages, dl.reason); dlqErr != nil {
			return dlqErr
		}
	}

	return d.markPublished(ctx, claimed)
}

// claim locks a batch of unpublished rows so concurrent dispatchers never
// pick up the same events.
func (d *Dispatcher) claim(ctx context.Context) ([]Message, error) {
	tx, err := d.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	query := `SELECT event_id, stable_id, aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload
        FROM outbox
        WHERE published_at IS NULL
        ORDER BY event_id
        LIMIT $1
        FOR UPDATE SKIP LOCKED`

	rows, err := tx.Query(ctx, query, d.batchSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	var ids []int64
	for rows.Next() {
		var msg Message
		if err = rows.Scan(&msg.EventID, &msg.StableID, &msg.AggregateType, &msg.AggregateID, &msg.EventType, &msg.Topic, &msg.SchemaSubject, &msg.PartitionKey, &msg.Payload); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
		ids = append(ids, msg.EventID)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		tx.Rollback(ctx)
		return nil, nil
	}

	if _, err = tx.Exec(ctx, `UPDATE outbox SET claimed_at = NOW() WHERE event_id = ANY($1)`, ids); err != nil {
		return nil, err
	}
	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return messages, nil
}

type topicBatch struct {
	records []kafka.Message
	sources []Message
}

type deadLetter struct {
	messages []Message
	reason   string
}

// frame resolves schema IDs and encodes each message into Confluent wire
// format, grouped by topic. Messages whose event type is unknown or whose
// schema cannot be registered become dead letters instead of aborting the
// batch.
func (d *Dispatcher) frame(ctx context.Context, messages []Message) (map[string]*topicBatch, []deadLetter) {
	batches := make(map[string]*topicBatch)
	var dead []deadLetter

	for _, msg := range messages {
		meta, ok := schemaCatalog[msg.EventType]
		if !ok {
			dead = append(dead, deadLetter{
				messages: []Message{msg},
				reason:   fmt.Sprintf("no schema metadata for event_type=%s", msg.EventType),
			})
			continue
		}

		schemaID, err := d.schemaID(ctx, msg.SchemaSubject, meta.Schema)
		if err != nil {
			dead = append(dead, deadLetter{messages: []Message{msg}, reason: err.Error()})
			continue
		}

		record := kafka.Message{
			Key:   []byte(msg.PartitionKey),
			Value: encodeWireFormat(schemaID, []byte(msg.Payload)),
			Time:  time.Now().UTC(),
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(msg.EventType)},
				{Key: "stable_id", Value: []byte(msg.StableID)},
				{Key: "schema_subject", Value: []byte(msg.SchemaSubject)},
			},
		}

		batch, exists := batches[msg.Topic]
		if !exists {
			batch = &topicBatch{}
			batches[msg.Topic] = batch
		}
		batch.records = append(batch.records, record)
		batch.sources = append(batch.sources, msg)
	}

	return batches, dead
}

// schemaID returns the registry ID for subject, consulting the in-process
// cache before calling out.
func (d *Dispatcher) schemaID(ctx context.Context, subject, schema string) (int, error) {
	cacheKey := subject + "::" + schema
	if cached, ok := d.schemaIDCache.Load(cacheKey); ok {
		return cached.(int), nil
	}

	id, err := d.registry.EnsureSchema(ctx, subject, schema)
	if err != nil {
		return 0, err
	}
	d.schemaIDCache.Store(cacheKey, id)
	return id, nil
}

func (d *Dispatcher) markPublished(ctx context.Context, messages []Message) error {
	ids := make([]int64, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.EventID)
	}

	_, err := d.pool.Exec(ctx, `UPDATE outbox SET published_at = NOW() WHERE event_id = ANY($1)`, ids)
	return err
}

func (d *Dispatcher) moveToDLQ(ctx context.Context, messages []Message, reason string) error {
	for _, msg := range messages {
		entryReason := fmt.Sprintf("%s (topic=%s)", reason, msg.Topic)
		if err := d.dlq.Write(ctx, msg, entryReason); err != nil {
			return err
		}
		dlqCounter.WithLabelValues(msg.Topic).Inc()
	}
	return nil
}

// Message represents a row fetched from outbox.
type Message struct {
	EventID       int64
	StableID      string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	SchemaSubject string
	PartitionKey  string
	Payload       json.RawMessage
}

// encodeWireFormat applies Confluent framing for Schema Registry aware payloads.
func encodeWireFormat(schemaID int, payload []byte) []byte {
	frame := make([]byte, 5+len(payload))
	frame[0] = 0
	binary.BigEndian.PutUint32(frame[1:5], uint32(schemaID))
	copy(frame[5:], payload)
	return frame
}

// SchemaCatalogEntry maps event type to schema definition.
type SchemaCatalogEntry struct {
	Schema string
}

var schemaCatalog = map[string]SchemaCatalogEntry{
	"activity.created": {
		Schema: activityCreatedSchema,
	},
	"activity.status_changed": {
		Schema: activityStatusChangedSchema,
	},
	"routine.step_recorded": {
		Schema: routineStepRecordedSchema,
	},
}
