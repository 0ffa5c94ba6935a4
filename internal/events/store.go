package events

import (
	"context"

	"github.com/google/uuid"

	dErrors "medledger/pkg/domain-errors"
)

// Store is the notification outbox. Append is called inside the mutation's
// commit path; Pending and MarkPublished are the relay's drain surface.
type Store interface {
	Append(ctx context.Context, event Event) error
	Pending(ctx context.Context, limit int) ([]Event, error)
	MarkPublished(ctx context.Context, ids ...uuid.UUID) error
}

// ErrNotFound keeps outbox lookups consistent with the other stores.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "event not found")
