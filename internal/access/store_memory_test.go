package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "medledger/pkg/domain"
)

func TestInMemoryStore_DefaultFalse(t *testing.T) {
	store := NewInMemoryStore()
	granted, err := store.Get(context.Background(), id.NewIdentity(), id.NewIdentity())
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestInMemoryStore_SetOverwrites(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	owner := id.NewIdentity()
	grantee := id.NewIdentity()

	require.NoError(t, store.Set(ctx, owner, grantee, true))
	granted, err := store.Get(ctx, owner, grantee)
	require.NoError(t, err)
	assert.True(t, granted)

	require.NoError(t, store.Set(ctx, owner, grantee, false))
	granted, err = store.Get(ctx, owner, grantee)
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestInMemoryStore_PairsAreIndependent(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	a := id.NewIdentity()
	b := id.NewIdentity()
	c := id.NewIdentity()

	require.NoError(t, store.Set(ctx, a, b, true))

	for _, pair := range [][2]id.Identity{{b, a}, {a, c}, {c, b}} {
		granted, err := store.Get(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.False(t, granted)
	}
}

func TestInMemoryStore_ListByOwner_SortedByProvider(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	owner := id.NewIdentity()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Set(ctx, owner, id.NewIdentity(), true))
	}

	grants, err := store.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, grants, 5)
	for i := 1; i < len(grants); i++ {
		assert.Less(t, grants[i-1].Provider.String(), grants[i].Provider.String())
	}
}
