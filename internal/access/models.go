// Package access owns the per-(owner, grantee) authorization ledger. A grant
// is a plain boolean: it authorizes reading whatever the owner's record is at
// read time, with no expiry and no scoping to a record version.
package access

import (
	"time"

	id "medledger/pkg/domain"
)

// Grant is one ledger cell as seen by its owner. Granted toggles between the
// two states Denied and Granted; both transitions are idempotent and a pair
// never written is Denied.
type Grant struct {
	Provider  id.Identity
	Granted   bool
	UpdatedAt time.Time
}
