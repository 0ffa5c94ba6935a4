//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	id "medledger/pkg/domain"
	"medledger/pkg/testutil/containers"
)

const accessGrantsDDL = `
CREATE TABLE IF NOT EXISTS access_grants (
    owner_id   UUID NOT NULL,
    grantee_id UUID NOT NULL,
    granted    BOOLEAN NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (owner_id, grantee_id)
);
`

type AccessPostgresSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
}

func TestAccessPostgresSuite(t *testing.T) {
	suite.Run(t, new(AccessPostgresSuite))
}

func (s *AccessPostgresSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(s.pg.ExecSchema(s.ctx, accessGrantsDDL))
	s.store = NewPostgresStore(s.pg.DB)
}

func (s *AccessPostgresSuite) TearDownSuite() {
	_ = s.pg.DB.Close()
	_ = s.pg.Container.Terminate(s.ctx)
}

func (s *AccessPostgresSuite) SetupTest() {
	_, err := s.pg.DB.ExecContext(s.ctx, "TRUNCATE access_grants")
	s.Require().NoError(err)
}

func (s *AccessPostgresSuite) TestGet_DefaultsDenied() {
	granted, err := s.store.Get(s.ctx, id.NewIdentity(), id.NewIdentity())
	s.Require().NoError(err)
	s.False(granted)
}

func (s *AccessPostgresSuite) TestSetAndGet() {
	owner := id.NewIdentity()
	grantee := id.NewIdentity()

	s.Require().NoError(s.store.Set(s.ctx, owner, grantee, true))

	granted, err := s.store.Get(s.ctx, owner, grantee)
	s.Require().NoError(err)
	s.True(granted)

	// reverse direction stays denied
	granted, err = s.store.Get(s.ctx, grantee, owner)
	s.Require().NoError(err)
	s.False(granted)
}

func (s *AccessPostgresSuite) TestSet_Overwrites() {
	owner := id.NewIdentity()
	grantee := id.NewIdentity()

	s.Require().NoError(s.store.Set(s.ctx, owner, grantee, true))
	s.Require().NoError(s.store.Set(s.ctx, owner, grantee, false))

	granted, err := s.store.Get(s.ctx, owner, grantee)
	s.Require().NoError(err)
	s.False(granted)
}

func (s *AccessPostgresSuite) TestListByOwner() {
	owner := id.NewIdentity()
	granteeA := id.NewIdentity()
	granteeB := id.NewIdentity()

	s.Require().NoError(s.store.Set(s.ctx, owner, granteeA, true))
	s.Require().NoError(s.store.Set(s.ctx, owner, granteeB, false))

	grants, err := s.store.ListByOwner(s.ctx, owner)
	s.Require().NoError(err)
	s.Require().Len(grants, 2)
	byProvider := map[id.Identity]bool{}
	for _, g := range grants {
		byProvider[g.Provider] = g.Granted
	}
	s.True(byProvider[granteeA])
	s.False(byProvider[granteeB])
}
