package cred

import "github.com/asv/lox/group"

// MaxLevel is the highest trust level a Lox credential can reach.
const MaxLevel = 4

// LevelInterval[i], i>=1, is the minimum number of days a user must
// remain at level i before leveling up to i+1 (or, at MAX_LEVEL,
// before refreshing invites_remaining). Index 0 is unused.
var LevelInterval = [MaxLevel + 1]uint32{0, 14, 28, 56, 84}

// LevelInvitations[i], i>=1, is the number of invitations a user at
// level i receives on leveling up to i+1. Index 0 is unused.
var LevelInvitations = [MaxLevel + 1]uint32{0, 2, 4, 6, 8}

// MaxBlockages[i], i>=1, is the maximum number of bucket blockages a
// user may have accrued at level i and still level up. Index 0 is
// unused.
var MaxBlockages = [MaxLevel + 1]uint32{0, 4, 3, 2, 2}

// MinTrustLevelForBlockageCheck is the minimum trust_level required to
// run check_blockage / blockage_migration.
const MinTrustLevelForBlockageCheck = 3

// InvitationExpiry is the number of days an Invitation credential's
// date may lag today and still redeem.
const InvitationExpiry = 15

// Attribute indices for the Lox credential type, matching the
// PrivateKey.X / PublicKey.X slot numbering (slot 0 is the constant
// term, so the first real attribute is slot 1).
const (
	LoxID = iota + 1
	LoxBucket
	LoxTrustLevel
	LoxLevelSince
	LoxInvitesRemaining
	LoxBlockages
)

// LoxNumAttrs is the number of attributes the Lox credential type
// carries (id, bucket, trust_level, level_since, invites_remaining,
// blockages).
const LoxNumAttrs = 6

// LoxAttrs packs a Lox credential's cleartext attribute values as a
// slot-indexed map suitable for Show, Issue, and Verify.
type LoxAttrs struct {
	ID               *group.Scalar
	Bucket           *group.Scalar
	TrustLevel       *group.Scalar
	LevelSince       *group.Scalar
	InvitesRemaining *group.Scalar
	Blockages        *group.Scalar
}

// Map returns the slot-indexed representation used by the show/issue
// algebra.
func (a LoxAttrs) Map() map[int]*group.Scalar {
	return map[int]*group.Scalar{
		LoxID:               a.ID,
		LoxBucket:           a.Bucket,
		LoxTrustLevel:       a.TrustLevel,
		LoxLevelSince:       a.LevelSince,
		LoxInvitesRemaining: a.InvitesRemaining,
		LoxBlockages:        a.Blockages,
	}
}

// LoxAttrsFromMap is the inverse of Map, used after a Showing/issuance
// round trip reconstructs a slot map.
func LoxAttrsFromMap(m map[int]*group.Scalar) LoxAttrs {
	return LoxAttrs{
		ID:               m[LoxID],
		Bucket:           m[LoxBucket],
		TrustLevel:       m[LoxTrustLevel],
		LevelSince:       m[LoxLevelSince],
		InvitesRemaining: m[LoxInvitesRemaining],
		Blockages:        m[LoxBlockages],
	}
}

// Slice returns the attribute values in slot order 1..LoxNumAttrs, the
// shape Issue and Verify take directly.
func (a LoxAttrs) Slice() []*group.Scalar {
	return []*group.Scalar{a.ID, a.Bucket, a.TrustLevel, a.LevelSince, a.InvitesRemaining, a.Blockages}
}
