// Package store provides the PostgreSQL notification outbox.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"medledger/internal/events"
	id "medledger/pkg/domain"
	txcontext "medledger/pkg/platform/tx"
)

// PostgresStore implements events.Store against the notification_outbox table:
//
//	CREATE TABLE notification_outbox (
//	    id                UUID PRIMARY KEY,
//	    event_type        TEXT NOT NULL,
//	    owner_id          UUID NOT NULL,
//	    provider_id       UUID,
//	    data_hash         TEXT NOT NULL DEFAULT '',
//	    record_updated_at TIMESTAMPTZ,
//	    emitted_at        TIMESTAMPTZ NOT NULL,
//	    published_at      TIMESTAMPTZ
//	);
//
// Append joins the caller's transaction when one is in context, so a record
// write and its notification commit atomically.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, event events.Event) error {
	var provider any
	if !event.Provider.IsNil() {
		provider = event.Provider.String()
	}
	var recordUpdatedAt any
	if !event.RecordUpdatedAt.IsZero() {
		recordUpdatedAt = event.RecordUpdatedAt
	}

	query := `
		INSERT INTO notification_outbox (id, event_type, owner_id, provider_id, data_hash, record_updated_at, emitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		event.ID,
		string(event.Type),
		event.Owner.String(),
		provider,
		event.DataHash,
		recordUpdatedAt,
		event.EmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Pending(ctx context.Context, limit int) ([]events.Event, error) {
	query := `
		SELECT id, event_type, owner_id, provider_id, data_hash, record_updated_at, emitted_at
		FROM notification_outbox
		WHERE published_at IS NULL
		ORDER BY emitted_at, id
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending events: %w", err)
	}
	defer rows.Close()

	var pending []events.Event
	for rows.Next() {
		var (
			event           events.Event
			eventType       string
			ownerRaw        string
			providerRaw     sql.NullString
			recordUpdatedAt sql.NullTime
		)
		if err := rows.Scan(&event.ID, &eventType, &ownerRaw, &providerRaw, &event.DataHash, &recordUpdatedAt, &event.EmittedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		event.Type = events.Type(eventType)
		owner, err := id.ParseIdentity(ownerRaw)
		if err != nil {
			return nil, fmt.Errorf("outbox entry %s: %w", event.ID, err)
		}
		event.Owner = owner
		if providerRaw.Valid {
			provider, err := id.ParseIdentity(providerRaw.String)
			if err != nil {
				return nil, fmt.Errorf("outbox entry %s: %w", event.ID, err)
			}
			event.Provider = provider
		}
		if recordUpdatedAt.Valid {
			event.RecordUpdatedAt = recordUpdatedAt.Time
		}
		pending = append(pending, event)
	}
	return pending, rows.Err()
}

func (s *PostgresStore) MarkPublished(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, len(ids))
	for i, eventID := range ids {
		raw[i] = eventID.String()
	}
	query := `
		UPDATE notification_outbox
		SET published_at = $1
		WHERE id = ANY($2)
	`
	_, err := s.db.ExecContext(ctx, query, time.Now().UTC(), pq.Array(raw))
	if err != nil {
		return fmt.Errorf("mark events published: %w", err)
	}
	return nil
}
