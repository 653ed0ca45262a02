package cred

import "github.com/asv/lox/group"

// Attribute indices for the MigrationKey credential type: id,
// from_bucket (2 attrs). MigrationKey is ephemeral and issuer-never-
// released: its MAC value Qk, once decrypted by the user, acts as a
// per-user per-bucket key for locating a row in the migration table,
// never as a credential the user keeps or shows again.
const (
	MigrationKeyID = iota + 1
	MigrationKeyFromBucket
)

// MigrationKeyNumAttrs is the MigrationKey credential's attribute
// count.
const MigrationKeyNumAttrs = 2

// MigrationKeyAttrs packs a MigrationKey credential's cleartext
// attributes.
type MigrationKeyAttrs struct {
	ID         *group.Scalar
	FromBucket *group.Scalar
}

// Map returns the slot-indexed representation.
func (a MigrationKeyAttrs) Map() map[int]*group.Scalar {
	return map[int]*group.Scalar{
		MigrationKeyID:         a.ID,
		MigrationKeyFromBucket: a.FromBucket,
	}
}

// Slice returns the attribute values in slot order.
func (a MigrationKeyAttrs) Slice() []*group.Scalar {
	return []*group.Scalar{a.ID, a.FromBucket}
}
