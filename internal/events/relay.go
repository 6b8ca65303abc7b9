package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sellerdesk/onboard/internal/config"
)

// KafkaClient builds writers for a broker list.
type KafkaClient struct {
	Brokers []string
}

// NewKafkaClient parses a comma-separated broker list.
func NewKafkaClient(brokersCSV string) *KafkaClient {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return &KafkaClient{Brokers: brokers}
}

// Enabled reports whether any broker is configured.
func (c *KafkaClient) Enabled() bool {
	return len(c.Brokers) > 0
}

// NewWriter creates a writer for the given topic.
func (c *KafkaClient) NewWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

const (
	defaultRelayInterval = 5 * time.Second
	defaultRelayBatch    = 100
)

// Relay drains the outbox to Kafka in the background.
type Relay struct {
	outbox   *Outbox
	writer   *kafka.Writer
	interval time.Duration
	batch    int
	logger   *slog.Logger
}

// RelayOption is a functional option for configuring a Relay.
type RelayOption func(*Relay)

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) RelayOption {
	return func(r *Relay) {
		r.interval = d
	}
}

// WithLogger sets a custom logger for the relay.
func WithLogger(logger *slog.Logger) RelayOption {
	return func(r *Relay) {
		r.logger = logger
	}
}

// NewRelay creates a relay draining outbox to the client's onboarding topic.
func NewRelay(outbox *Outbox, client *KafkaClient, opts ...RelayOption) (*Relay, error) {
	if outbox == nil {
		return nil, errors.New("outbox is required")
	}
	if client == nil || !client.Enabled() {
		return nil, errors.New("kafka brokers are required")
	}

	r := &Relay{
		outbox:   outbox,
		writer:   client.NewWriter(config.OnboardingTopic),
		interval: defaultRelayInterval,
		batch:    defaultRelayBatch,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run polls the outbox until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer r.writer.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.drain(ctx); err != nil {
				r.logger.Error("outbox relay pass failed", "error", err)
			}
		}
	}
}

// drain relays one batch of pending records.
func (r *Relay) drain(ctx context.Context) error {
	records, err := r.outbox.FetchPending(ctx, r.batch)
	if err != nil {
		return fmt.Errorf("fetch pending events: %w", err)
	}

	for _, rec := range records {
		msg := kafka.Message{
			Key:   []byte(rec.Key),
			Value: rec.Payload,
			Time:  time.Now().UTC(),
		}
		if err := r.writer.WriteMessages(ctx, msg); err != nil {
			return fmt.Errorf("write event %s: %w", rec.EventID, err)
		}
		if err := r.outbox.MarkSent(ctx, rec.ID); err != nil {
			return fmt.Errorf("mark event %s sent: %w", rec.EventID, err)
		}
		r.logger.Debug("relayed onboarding event", "event_id", rec.EventID, "key", rec.Key)
	}
	return nil
}
