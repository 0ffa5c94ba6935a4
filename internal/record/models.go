// Package record owns the patient record registry: one record per identity,
// holding a pointer to off-chain health data. The record service stores and
// gates access to the pointer; it never validates or interprets the hash.
package record

import "time"

// PatientRecord is the tuple bound to exactly one owning identity. The owner
// is the map key, not a field. Writes replace the record wholesale; no
// history is retained here.
//
// The zero value doubles as "no record was ever written": there is no delete
// operation, so an authorized read of an absent record returns this zero
// value and callers treat it as no record by convention.
type PatientRecord struct {
	Name      string
	DataHash  string
	UpdatedAt time.Time
}

// IsZero reports whether the record is the absent-record marker.
func (r PatientRecord) IsZero() bool {
	return r.Name == "" && r.DataHash == "" && r.UpdatedAt.IsZero()
}
