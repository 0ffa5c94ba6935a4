package record

import (
	"context"

	id "medledger/pkg/domain"
	dErrors "medledger/pkg/domain-errors"
)

// ErrNotFound keeps storage-specific misses consistent across the in-memory
// and postgres implementations. The service maps it to the zero-value record
// for authorized reads; it never reaches callers of the external API.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "record not found")

// Store persists patient records, one per owner.
type Store interface {
	Save(ctx context.Context, owner id.Identity, rec PatientRecord) error
	Find(ctx context.Context, owner id.Identity) (PatientRecord, error)
}
