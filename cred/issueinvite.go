package cred

import "github.com/asv/lox/zkp"

// IssueInvitePlan is issue_invite's Lox showing plan: only id is
// revealed; bucket, trust_level, level_since, invites_remaining and
// blockages are all blinded and all five carry forward into the
// reissued Lox (invites_remaining decremented by one), per §4.2.4.
var IssueInvitePlan = AttrPlan{
	Revealed: []int{LoxID},
	Blinded:  []int{LoxBucket, LoxTrustLevel, LoxLevelSince, LoxInvitesRemaining, LoxBlockages},
}

// IssueInviteBucketReachPlan mirrors LevelUpBucketReachPlan: date
// revealed and checked equal to today, bucket blinded and linked to
// the Lox showing's bucket.
var IssueInviteBucketReachPlan = AttrPlan{
	Revealed: []int{BucketReachDate},
	Blinded:  []int{BucketReachBucket},
}

// EncAttrConstraints indices for the reissued Lox's five carried-over
// attributes (invites_remaining carried via a minus-one shift, see
// issuer/client shiftInvitesDownEnc).
const (
	IssueInviteLoxBucketIdx     = 1
	IssueInviteLoxTrustLevelIdx = 2
	IssueInviteLoxLevelSinceIdx = 3
	IssueInviteLoxInvitesIdx    = 4
	IssueInviteLoxBlockagesIdx  = 5
)

// EncAttrConstraints indices for the new Invitation credential's two
// attributes pinned to the Lox showing's bucket and blockages.
const (
	IssueInviteInvBucketIdx    = 1
	IssueInviteInvBlockagesIdx = 2
)

// IssueInviteSecretNames ties the Lox showing's bucket to the
// BucketReachability showing's bucket; the other names namespace the
// carry-forward/pin linkages.
func IssueInviteSecretNames() (lox, bucketReach map[int]string) {
	lox = map[int]string{
		LoxBucket:           "issueinvite/bucket",
		LoxTrustLevel:       "issueinvite/trustlevel",
		LoxLevelSince:       "issueinvite/levelsince",
		LoxInvitesRemaining: "issueinvite/invremain",
		LoxBlockages:        "issueinvite/blockages",
	}
	bucketReach = map[int]string{BucketReachBucket: "issueinvite/bucket"}
	return
}

// IssueInviteConstraints merges the Lox and BucketReachability
// showings, the invites_remaining non-zero proof, the reissued Lox's
// five carry-forward linkages, and the new Invitation's two pin
// linkages into one combined statement.
func IssueInviteConstraints() []zkp.Constraint {
	loxNames, bucketReachNames := IssueInviteSecretNames()
	cons := ShowConstraints("lox", IssueInvitePlan, loxNames)
	cons = append(cons, ShowConstraints("bucketreach", IssueInviteBucketReachPlan, bucketReachNames)...)
	cons = append(cons, NonZeroConstraints("lox", LoxInvitesRemaining)...)
	cons = append(cons, EncAttrConstraints("newlox", IssueInviteLoxBucketIdx, loxNames[LoxBucket])...)
	cons = append(cons, EncAttrConstraints("newlox", IssueInviteLoxTrustLevelIdx, loxNames[LoxTrustLevel])...)
	cons = append(cons, EncAttrConstraints("newlox", IssueInviteLoxLevelSinceIdx, loxNames[LoxLevelSince])...)
	cons = append(cons, EncAttrConstraints("newlox", IssueInviteLoxInvitesIdx, loxNames[LoxInvitesRemaining])...)
	cons = append(cons, EncAttrConstraints("newlox", IssueInviteLoxBlockagesIdx, loxNames[LoxBlockages])...)
	cons = append(cons, EncAttrConstraints("newinv", IssueInviteInvBucketIdx, loxNames[LoxBucket])...)
	cons = append(cons, EncAttrConstraints("newinv", IssueInviteInvBlockagesIdx, loxNames[LoxBlockages])...)
	return cons
}
