//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"medledger/internal/access"
	id "medledger/pkg/domain"
	"medledger/pkg/testutil/containers"
)

type CachedStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	next  *access.InMemoryStore
	store *CachedStore
	ctx   context.Context
}

func TestCachedStoreSuite(t *testing.T) {
	suite.Run(t, new(CachedStoreSuite))
}

func (s *CachedStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *CachedStoreSuite) TearDownSuite() {
	_ = s.redis.Client.Close()
	_ = s.redis.Container.Terminate(s.ctx)
}

func (s *CachedStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
	s.next = access.NewInMemoryStore()
	s.store = NewCachedStore(s.next, s.redis.Client, time.Minute)
}

func (s *CachedStoreSuite) TestGet_ReadThroughPopulatesCache() {
	owner := id.NewIdentity()
	grantee := id.NewIdentity()
	s.Require().NoError(s.next.Set(s.ctx, owner, grantee, true))

	granted, err := s.store.Get(s.ctx, owner, grantee)
	s.Require().NoError(err)
	s.True(granted)

	cached, err := s.redis.Client.Get(s.ctx, grantKey(owner, grantee)).Result()
	s.Require().NoError(err)
	s.Equal("1", cached)
}

func (s *CachedStoreSuite) TestRevoke_VisibleImmediately() {
	owner := id.NewIdentity()
	grantee := id.NewIdentity()

	s.Require().NoError(s.store.Set(s.ctx, owner, grantee, true))
	granted, err := s.store.Get(s.ctx, owner, grantee)
	s.Require().NoError(err)
	s.True(granted)

	// The revoke invalidates the cached cell, so the next check reads the
	// durable store instead of waiting out the TTL.
	s.Require().NoError(s.store.Set(s.ctx, owner, grantee, false))
	granted, err = s.store.Get(s.ctx, owner, grantee)
	s.Require().NoError(err)
	s.False(granted)
}

func (s *CachedStoreSuite) TestSet_InvalidatesCachedCell() {
	owner := id.NewIdentity()
	grantee := id.NewIdentity()
	s.Require().NoError(s.next.Set(s.ctx, owner, grantee, true))

	granted, err := s.store.Get(s.ctx, owner, grantee)
	s.Require().NoError(err)
	s.True(granted)

	s.Require().NoError(s.store.Set(s.ctx, owner, grantee, false))

	// The mutation deletes the cell; it never writes the new value.
	_, err = s.redis.Client.Get(s.ctx, grantKey(owner, grantee)).Result()
	s.Require().ErrorIs(err, redis.Nil)
}

func (s *CachedStoreSuite) TestSet_RolledBackWriteNotServedFromCache() {
	owner := id.NewIdentity()
	grantee := id.NewIdentity()

	s.Require().NoError(s.store.Set(s.ctx, owner, grantee, true))

	// Undo the durable write the way a transaction rollback would. Nothing
	// was cached by the mutation, so the lookup must see the durable state.
	s.Require().NoError(s.next.Set(s.ctx, owner, grantee, false))

	granted, err := s.store.Get(s.ctx, owner, grantee)
	s.Require().NoError(err)
	s.False(granted)
}

func (s *CachedStoreSuite) TestGet_DeniedCachedToo() {
	owner := id.NewIdentity()
	grantee := id.NewIdentity()

	granted, err := s.store.Get(s.ctx, owner, grantee)
	s.Require().NoError(err)
	s.False(granted)

	cached, err := s.redis.Client.Get(s.ctx, grantKey(owner, grantee)).Result()
	s.Require().NoError(err)
	s.Equal("0", cached)
}

func (s *CachedStoreSuite) TestListByOwner_BypassesCache() {
	owner := id.NewIdentity()
	grantee := id.NewIdentity()
	s.Require().NoError(s.store.Set(s.ctx, owner, grantee, true))

	grants, err := s.store.ListByOwner(s.ctx, owner)
	s.Require().NoError(err)
	s.Require().Len(grants, 1)
	s.Equal(grantee, grants[0].Provider)
	s.True(grants[0].Granted)
}
