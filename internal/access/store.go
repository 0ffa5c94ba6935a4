package access

import (
	"context"

	id "medledger/pkg/domain"
)

// Store persists the ledger. Set writes the cell wholesale for either value;
// Get defaults to false for any pair never written.
type Store interface {
	Set(ctx context.Context, owner, grantee id.Identity, granted bool) error
	Get(ctx context.Context, owner, grantee id.Identity) (bool, error)
	ListByOwner(ctx context.Context, owner id.Identity) ([]Grant, error)
}
