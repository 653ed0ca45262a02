package cred

import "github.com/asv/lox/group"

// MigrationType distinguishes a Migration credential minted after a
// two-step trust promotion (level 0 to 1) from one minted after a
// blockage demotion.
type MigrationType int

const (
	TrustUpgrade MigrationType = 0
	Blockage     MigrationType = 1
)

// Attribute indices for the Migration credential type: lox_id,
// from_bucket, to_bucket, migration_type (4 attrs).
const (
	MigrationLoxID = iota + 1
	MigrationFromBucket
	MigrationToBucket
	MigrationType_
)

// MigrationNumAttrs is the Migration credential's attribute count.
const MigrationNumAttrs = 4

// MigrationAttrs packs a Migration credential's cleartext attributes.
type MigrationAttrs struct {
	LoxID      *group.Scalar
	FromBucket *group.Scalar
	ToBucket   *group.Scalar
	Type       MigrationType
}

// Map returns the slot-indexed representation.
func (a MigrationAttrs) Map() map[int]*group.Scalar {
	return map[int]*group.Scalar{
		MigrationLoxID:      a.LoxID,
		MigrationFromBucket: a.FromBucket,
		MigrationToBucket:   a.ToBucket,
		MigrationType_:      group.FromUint64(uint64(a.Type)),
	}
}

// Slice returns the attribute values in slot order.
func (a MigrationAttrs) Slice() []*group.Scalar {
	return []*group.Scalar{a.LoxID, a.FromBucket, a.ToBucket, group.FromUint64(uint64(a.Type))}
}
