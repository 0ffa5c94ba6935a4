// Package domain holds typed identifiers shared across services.
//
// IDs are uuid-backed domain primitives. Construct them via the Parse*
// functions at trust boundaries; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "medledger/pkg/domain-errors"
)

// Identity is the principal performing or named in an operation. Patients and
// providers share one identity space: any identity may own a record and any
// identity may be granted access to another identity's record.
//
// Invariant: an Identity is a valid, non-nil UUID.
type Identity uuid.UUID

// ParseIdentity constructs an Identity from external input.
//
// Errors: returns CodeInvalidInput when the value is empty, malformed, or the
// nil UUID; no other errors are expected.
func ParseIdentity(s string) (Identity, error) {
	if s == "" {
		return Identity{}, dErrors.New(dErrors.CodeInvalidInput, "identity cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return Identity{}, dErrors.New(dErrors.CodeInvalidInput, "identity must be a valid UUID")
	}
	if u == uuid.Nil {
		return Identity{}, dErrors.New(dErrors.CodeInvalidInput, "identity cannot be the nil UUID")
	}
	return Identity(u), nil
}

// NewIdentity returns a fresh random Identity. Used by token issuance and tests.
func NewIdentity() Identity {
	return Identity(uuid.New())
}

// String returns the canonical UUID form.
func (i Identity) String() string {
	return uuid.UUID(i).String()
}

// IsNil reports whether the identity is the zero value.
func (i Identity) IsNil() bool {
	return uuid.UUID(i) == uuid.Nil
}
