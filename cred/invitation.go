package cred

import "github.com/asv/lox/group"

// Attribute indices for the Invitation credential type: inv_id, date,
// bucket, blockages (4 attrs).
const (
	InvitationInvID = iota + 1
	InvitationDate
	InvitationBucket
	InvitationBlockages
)

// InvitationNumAttrs is the Invitation credential's attribute count.
const InvitationNumAttrs = 4

// InvitationAttrs packs an Invitation credential's cleartext
// attributes.
type InvitationAttrs struct {
	InvID     *group.Scalar
	Date      *group.Scalar
	Bucket    *group.Scalar
	Blockages *group.Scalar
}

// Map returns the slot-indexed representation.
func (a InvitationAttrs) Map() map[int]*group.Scalar {
	return map[int]*group.Scalar{
		InvitationInvID:     a.InvID,
		InvitationDate:      a.Date,
		InvitationBucket:    a.Bucket,
		InvitationBlockages: a.Blockages,
	}
}

// Slice returns the attribute values in slot order.
func (a InvitationAttrs) Slice() []*group.Scalar {
	return []*group.Scalar{a.InvID, a.Date, a.Bucket, a.Blockages}
}
