package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Publisher appends notifications to the outbox with synchronous, fail-closed
// semantics: the caller blocks until the write succeeds, and if it fails the
// calling operation must fail. Kafka delivery happens asynchronously via the
// relay, so a mutation and its notification never diverge.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

// Emit writes one notification to the outbox. ID and EmittedAt are filled
// when the event constructor left them zero.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Type == "" {
		return fmt.Errorf("notification requires a type")
	}
	if event.Owner.IsNil() {
		return fmt.Errorf("notification requires an owner identity")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now().UTC()
	}

	if err := p.store.Append(ctx, event); err != nil {
		return fmt.Errorf("notification persistence failed: %w", err)
	}
	return nil
}
