package cred

import "github.com/asv/lox/zkp"

// LevelUpPlan is level_up's Lox showing plan: id and the current
// trust_level revealed so the issuer can check its precondition and
// compute the next level; bucket, level_since, invites_remaining and
// blockages blinded. Of these, only bucket and blockages carry over
// unchanged into the reissued Lox (see LevelUpBucketEncIdx /
// LevelUpBlockagesEncIdx below); level_since and invites_remaining are
// freshly chosen and revealed in the response instead.
var LevelUpPlan = AttrPlan{
	Revealed: []int{LoxID, LoxTrustLevel},
	Blinded:  []int{LoxBucket, LoxLevelSince, LoxInvitesRemaining, LoxBlockages},
}

// LevelUpBucketReachPlan is the companion BucketReachability showing's
// plan: date revealed (and checked equal to today), bucket blinded and
// linked to the Lox showing's bucket.
var LevelUpBucketReachPlan = AttrPlan{
	Revealed: []int{BucketReachDate},
	Blinded:  []int{BucketReachBucket},
}

// Bit widths for level_up's two range proofs, per §4.1: freshness
// bounds the day gap to 0..511, the blockage ceiling to 0..7.
const (
	LevelUpFreshnessBits = 9
	LevelUpBlockageBits  = 3
)

// EncAttrConstraints indices for the reissued Lox's carried-over
// bucket and blockages.
const (
	LevelUpBucketEncIdx    = 1
	LevelUpBlockagesEncIdx = 2
)

// LevelUpSecretNames ties the Lox showing's bucket to the
// BucketReachability showing's bucket.
func LevelUpSecretNames() (lox, bucketReach map[int]string) {
	lox = map[int]string{
		LoxBucket:           "levelup/bucket",
		LoxLevelSince:       "levelup/since",
		LoxInvitesRemaining: "levelup/invremain",
		LoxBlockages:        "levelup/blockages",
	}
	bucketReach = map[int]string{BucketReachBucket: "levelup/bucket"}
	return
}

// LevelUpConstraints merges the Lox and BucketReachability showings,
// the freshness and blockage-ceiling range-proof linkages, and the
// reissued Lox's carried-over bucket/blockages linkages into one
// combined statement.
func LevelUpConstraints() []zkp.Constraint {
	loxNames, bucketReachNames := LevelUpSecretNames()
	cons := ShowConstraints("lox", LevelUpPlan, loxNames)
	cons = append(cons, ShowConstraints("bucketreach", LevelUpBucketReachPlan, bucketReachNames)...)
	cons = append(cons, RangeLinkConstraint("levelup/freshness"))
	cons = append(cons, RangeLinkConstraint("levelup/blockage"))
	cons = append(cons, EncAttrConstraints("newlox", LevelUpBucketEncIdx, loxNames[LoxBucket])...)
	cons = append(cons, EncAttrConstraints("newlox", LevelUpBlockagesEncIdx, loxNames[LoxBlockages])...)
	return cons
}
