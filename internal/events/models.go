// Package events carries the notifications emitted alongside state-changing
// operations. Mutations append events synchronously to an outbox store; the
// relay drains the outbox to Kafka for external subscribers.
package events

import (
	"time"

	"github.com/google/uuid"

	id "medledger/pkg/domain"
)

// Type classifies a notification.
type Type string

const (
	TypeRecordAdded   Type = "record_added"
	TypeAccessGranted Type = "access_granted"
	TypeAccessRevoked Type = "access_revoked"
)

// Event is one observable notification. Owner is always the acting caller;
// Provider is set for access events, DataHash and RecordUpdatedAt for record
// events. Reads emit nothing.
type Event struct {
	ID              uuid.UUID
	Type            Type
	Owner           id.Identity
	Provider        id.Identity
	DataHash        string
	RecordUpdatedAt time.Time
	EmittedAt       time.Time
}

// RecordAdded builds the notification for a record upsert.
func RecordAdded(owner id.Identity, dataHash string, updatedAt time.Time) Event {
	return Event{
		Type:            TypeRecordAdded,
		Owner:           owner,
		DataHash:        dataHash,
		RecordUpdatedAt: updatedAt,
	}
}

// AccessGranted builds the notification for a grant, including repeated grants.
func AccessGranted(owner, provider id.Identity) Event {
	return Event{
		Type:     TypeAccessGranted,
		Owner:    owner,
		Provider: provider,
	}
}

// AccessRevoked builds the notification for a revoke, including revokes of
// never-granted pairs.
func AccessRevoked(owner, provider id.Identity) Event {
	return Event{
		Type:     TypeAccessRevoked,
		Owner:    owner,
		Provider: provider,
	}
}
