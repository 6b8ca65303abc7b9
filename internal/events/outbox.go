package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sellerdesk/onboard/internal/config"
	"github.com/sellerdesk/onboard/internal/database"
)

// OutboxRecord is one event awaiting relay to Kafka.
type OutboxRecord struct {
	ID        int64
	EventID   string
	Topic     string
	Key       string
	Payload   json.RawMessage
	CreatedAt time.Time
	SentAt    *time.Time
}

// Outbox records events into PostgreSQL for at-least-once relay.
type Outbox struct {
	pool *pgxpool.Pool
}

// NewOutbox creates an outbox recorder.
// Returns error if pool is nil.
func NewOutbox(pool *pgxpool.Pool) (*Outbox, error) {
	if pool == nil {
		return nil, errors.New("database pool is required")
	}
	return &Outbox{pool: pool}, nil
}

// Record implements Recorder: the event is stored durably and picked up by
// the relay loop.
func (o *Outbox) Record(ctx context.Context, eventType, sellerID string, payload any) error {
	data, err := json.Marshal(envelope{Type: eventType, Data: payload})
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}

	query, args, err := database.QB.
		Insert("outbox").
		Columns("event_id", "topic", "key", "payload").
		Values(uuid.NewString(), config.OnboardingTopic, sellerID, data).
		ToSql()
	if err != nil {
		return fmt.Errorf("build outbox insert: %w", err)
	}

	if _, err := o.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert outbox record: %w", err)
	}
	return nil
}

// FetchPending returns unsent records in insertion order.
func (o *Outbox) FetchPending(ctx context.Context, limit int) ([]OutboxRecord, error) {
	query, args, err := database.QB.
		Select("id", "event_id", "topic", "key", "payload", "created_at", "sent_at").
		From("outbox").
		Where("sent_at IS NULL").
		OrderBy("id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build outbox query: %w", err)
	}

	rows, err := o.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var records []OutboxRecord
	for rows.Next() {
		var rec OutboxRecord
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Topic, &rec.Key, &rec.Payload, &rec.CreatedAt, &rec.SentAt); err != nil {
			return nil, fmt.Errorf("scan outbox record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox rows: %w", err)
	}
	return records, nil
}

// MarkSent stamps a record as relayed.
func (o *Outbox) MarkSent(ctx context.Context, id int64) error {
	query, args, err := database.QB.
		Update("outbox").
		Set("sent_at", time.Now().UTC()).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("build outbox update: %w", err)
	}

	if _, err := o.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("mark outbox record sent: %w", err)
	}
	return nil
}

// envelope wraps an event payload with its type for consumers.
type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// LogRecorder is the Recorder used when no database is configured: events are
// logged and dropped.
type LogRecorder struct{}

// Record logs the event at info level.
func (LogRecorder) Record(ctx context.Context, eventType, sellerID string, payload any) error {
	slog.Info("onboarding event", "type", eventType, "seller_id", sellerID)
	return nil
}
