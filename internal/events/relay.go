package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"medledger/internal/platform/metrics"
)

const (
	defaultRelayInterval = time.Second
	defaultRelayBatch    = 100
)

// Relay drains the outbox to a Kafka topic. It is the only component that
// talks to Kafka; mutations only ever touch the outbox store, so broker
// downtime delays notifications without failing writes.
type Relay struct {
	store    Store
	client   *kgo.Client
	topic    string
	logger   *slog.Logger
	metrics  *metrics.Metrics
	interval time.Duration
	batch    int
}

// RelayOption configures a Relay.
type RelayOption func(*Relay)

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) RelayOption {
	return func(r *Relay) {
		r.metrics = m
	}
}

// WithInterval overrides the drain interval.
func WithInterval(d time.Duration) RelayOption {
	return func(r *Relay) {
		r.interval = d
	}
}

func NewRelay(store Store, client *kgo.Client, topic string, logger *slog.Logger, opts ...RelayOption) *Relay {
	r := &Relay{
		store:    store,
		client:   client,
		topic:    topic,
		logger:   logger,
		interval: defaultRelayInterval,
		batch:    defaultRelayBatch,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// EnsureTopic creates the notification topic if it does not exist yet.
func (r *Relay) EnsureTopic(ctx context.Context) error {
	adm := kadm.NewClient(r.client)
	resp, err := adm.CreateTopics(ctx, 1, 1, nil, r.topic)
	if err != nil {
		return fmt.Errorf("create topic %q: %w", r.topic, err)
	}
	for _, t := range resp {
		if t.Err != nil && !kerr.IsRetriable(t.Err) && t.Err != kerr.TopicAlreadyExists {
			return fmt.Errorf("create topic %q: %w", t.Topic, t.Err)
		}
	}
	return nil
}

// Run drains the outbox on a fixed interval until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Drain(ctx); err != nil {
				if r.metrics != nil {
					r.metrics.RelayFailures.Inc()
				}
				r.logger.ErrorContext(ctx, "notification relay drain failed", "error", err)
			}
		}
	}
}

// payload is the JSON structure published to Kafka.
type payload struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	Owner           string `json:"owner"`
	Provider        string `json:"provider,omitempty"`
	DataHash        string `json:"data_hash,omitempty"`
	RecordUpdatedAt string `json:"record_updated_at,omitempty"`
	EmittedAt       string `json:"emitted_at"`
}

// Drain publishes one batch of pending events and marks them published.
// Exported so integration tests can drive the relay without the ticker.
func (r *Relay) Drain(ctx context.Context) error {
	pending, err := r.store.Pending(ctx, r.batch)
	if err != nil {
		return fmt.Errorf("load pending events: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	published := make([]uuid.UUID, 0, len(pending))
	var produceErr error
	for _, event := range pending {
		body := payload{
			ID:        event.ID.String(),
			Type:      string(event.Type),
			Owner:     event.Owner.String(),
			EmittedAt: event.EmittedAt.Format(time.RFC3339Nano),
		}
		if !event.Provider.IsNil() {
			body.Provider = event.Provider.String()
		}
		if event.DataHash != "" {
			body.DataHash = event.DataHash
		}
		if !event.RecordUpdatedAt.IsZero() {
			body.RecordUpdatedAt = event.RecordUpdatedAt.Format(time.RFC3339Nano)
		}

		value, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", event.ID, err)
		}

		record := &kgo.Record{
			Topic: r.topic,
			// Keyed by owner so one patient's notifications stay ordered.
			Key:   []byte(event.Owner.String()),
			Value: value,
		}
		if err := r.client.ProduceSync(ctx, record).FirstErr(); err != nil {
			// Stop here; events published so far are still marked below so
			// the next drain resumes from this one.
			produceErr = fmt.Errorf("publish event %s: %w", event.ID, err)
			break
		}
		published = append(published, event.ID)
		if r.metrics != nil {
			r.metrics.EventsRelayed.Inc()
		}
	}

	if len(published) > 0 {
		if err := r.store.MarkPublished(ctx, published...); err != nil {
			return fmt.Errorf("mark events published: %w", err)
		}
	}
	return produceErr
}
