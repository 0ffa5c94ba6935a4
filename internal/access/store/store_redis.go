package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"medledger/internal/access"
	id "medledger/pkg/domain"
)

// Redis key prefix for grant cells.
const grantKeyPrefix = "acl:grant:"

// CachedStore is a read-through cache in front of another access.Store.
// Mutations invalidate the cached cell rather than writing the new value:
// the durable write may still be inside an uncommitted transaction, and a
// cached cell must never outlive a rollback. The next Get repopulates from
// the durable store, so a revoke is visible on the very next authorization
// check; the TTL only bounds staleness after the cached cell is lost.
type CachedStore struct {
	next   access.Store
	client *redis.Client
	ttl    time.Duration
}

func NewCachedStore(next access.Store, client *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{next: next, client: client, ttl: ttl}
}

func grantKey(owner, grantee id.Identity) string {
	return grantKeyPrefix + owner.String() + ":" + grantee.String()
}

func (s *CachedStore) Set(ctx context.Context, owner, grantee id.Identity, granted bool) error {
	if err := s.next.Set(ctx, owner, grantee, granted); err != nil {
		return err
	}
	// A failed invalidation fails the mutation. Letting it pass would leave
	// the old cell authoritative for up to the TTL, and the caller's
	// transaction can still roll the durable write back.
	if err := s.client.Del(ctx, grantKey(owner, grantee)).Err(); err != nil {
		return fmt.Errorf("invalidate cached grant: %w", err)
	}
	return nil
}

func (s *CachedStore) Get(ctx context.Context, owner, grantee id.Identity) (bool, error) {
	cached, err := s.client.Get(ctx, grantKey(owner, grantee)).Result()
	if err == nil {
		return cached == "1", nil
	}
	if err != redis.Nil {
		// Degrade to the durable store on cache errors.
		return s.next.Get(ctx, owner, grantee)
	}

	granted, err := s.next.Get(ctx, owner, grantee)
	if err != nil {
		return false, err
	}
	value := "0"
	if granted {
		value = "1"
	}
	_ = s.client.Set(ctx, grantKey(owner, grantee), value, s.ttl).Err()
	return granted, nil
}

func (s *CachedStore) ListByOwner(ctx context.Context, owner id.Identity) ([]access.Grant, error) {
	return s.next.ListByOwner(ctx, owner)
}
