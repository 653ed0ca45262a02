package cred

import "github.com/asv/lox/zkp"

// RedeemInviteDateBits is the bit width of redeem_invite's freshness
// range proof: 0 ≤ date + INVITATION_EXPIRY − today ≤ 15.
const RedeemInviteDateBits = 4

// RedeemInvitePlan is the Invitation credential's showing plan: inv_id
// revealed (consumed in inv_id_filter), date/bucket/blockages blinded.
// date feeds the freshness range proof; bucket and blockages carry
// forward into the issued Lox via EncAttrConstraints.
var RedeemInvitePlan = AttrPlan{
	Revealed: []int{InvitationInvID},
	Blinded:  []int{InvitationDate, InvitationBucket, InvitationBlockages},
}

// EncAttrConstraints indices for the issued Lox's two carried-forward
// attributes.
const (
	RedeemInviteBucketIdx    = 1
	RedeemInviteBlockagesIdx = 2
)

// RedeemInviteSecretNames ties the Invitation showing's bucket and
// blockages to the new Lox's blind-issued attributes, and names the
// date range-proof linkage.
func RedeemInviteSecretNames() map[int]string {
	return map[int]string{
		InvitationDate:      "redeeminvite/date",
		InvitationBucket:    "redeeminvite/bucket",
		InvitationBlockages: "redeeminvite/blockages",
	}
}

// RedeemInviteConstraints merges the Invitation showing, the date
// range-proof linkage, and the two carry-forward linkages into one
// combined statement.
func RedeemInviteConstraints() []zkp.Constraint {
	names := RedeemInviteSecretNames()
	cons := ShowConstraints("inv", RedeemInvitePlan, names)
	cons = append(cons, RangeLinkConstraint("redeeminvite/date"))
	cons = append(cons, EncAttrConstraints("newlox", RedeemInviteBucketIdx, names[InvitationBucket])...)
	cons = append(cons, EncAttrConstraints("newlox", RedeemInviteBlockagesIdx, names[InvitationBlockages])...)
	return cons
}
