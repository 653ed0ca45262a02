package issuer

import (
	"io"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/filter"
	"github.com/asv/lox/group"
	"github.com/asv/lox/internal/common"
	"github.com/asv/lox/zkp"
)

// LevelUpRequest is §4.2.3's request: show the current Lox credential
// alongside a same-day BucketReachability for its own bucket, prove
// level_since is old enough and blockages low enough for the current
// level, and blind-issue a Lox carrying the same bucket and blockages
// forward.
type LevelUpRequest struct {
	LoxP        *group.Point
	LoxShowing  *cred.Showing
	LoxRevealed map[int]*group.Scalar

	BucketReachP        *group.Point
	BucketReachShowing  *cred.Showing
	BucketReachRevealed map[int]*group.Scalar

	FreshnessRange *zkp.RangeProof
	BlockageRange  *zkp.RangeProof

	D            *group.Point
	BucketEnc    *cred.Ciphertext
	BlockagesEnc *cred.Ciphertext
	Proof        *zkp.Proof
}

// LevelUpResponse carries the issuer-chosen revealed attributes of the
// reissued Lox plus its blind issuance.
type LevelUpResponse struct {
	Revealed map[int]*group.Scalar
	Issuance *IssuanceResponse
}

// HandleLevelUp implements handle_level_up: verify the combined
// showing/range-proof/linkage statement, consult (and record) the Lox
// id_filter, and blind-issue a Lox one level higher (capped at
// MaxLevel) with a fresh invites_remaining batch and today's
// level_since, carrying bucket and blockages forward unchanged.
func (iss *Issuer) HandleLevelUp(req *LevelUpRequest, rng io.Reader) (*LevelUpResponse, error) {
	iss.mu.Lock()
	defer iss.mu.Unlock()

	if req.LoxP.IsIdentity() || req.BucketReachP.IsIdentity() {
		return nil, common.ErrVerificationFailure
	}
	level, ok := req.LoxRevealed[cred.LoxTrustLevel]
	if !ok || !levelInRange(level, 1, cred.MaxLevel) {
		return nil, common.ErrVerificationFailure
	}
	levelVal, ok := decodeLevel(level)
	if !ok {
		return nil, common.ErrVerificationFailure
	}
	id, ok := req.LoxRevealed[cred.LoxID]
	if !ok {
		return nil, common.ErrVerificationFailure
	}
	today := iss.Dates.Today()
	bucketDate, ok := req.BucketReachRevealed[cred.BucketReachDate]
	if !ok || !bucketDate.Equal(groupFromUint32(today)) {
		return nil, common.ErrVerificationFailure
	}

	loxPriv := iss.Lox.Current().Priv
	loxV, err := cred.RecomputeVerificationPoint(loxPriv, req.LoxP, req.LoxRevealed, req.LoxShowing)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	bucketReachPriv := iss.BucketReach.Current().Priv
	bucketReachV, err := cred.RecomputeVerificationPoint(bucketReachPriv, req.BucketReachP, req.BucketReachRevealed, req.BucketReachShowing)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}

	freshnessDiff, err := zkp.RecombineRange(req.FreshnessRange)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	blockageDiff, err := zkp.RecombineRange(req.BlockageRange)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	freshnessConstant := uint64(today) - uint64(cred.LevelInterval[levelVal])
	blockageConstant := uint64(cred.MaxBlockages[levelVal])
	freshnessTarget := cred.RangeLinkTarget(req.LoxShowing.Commitments[cred.LoxLevelSince], freshnessDiff, freshnessConstant, req.LoxP)
	blockageTarget := cred.RangeLinkTarget(req.LoxShowing.Commitments[cred.LoxBlockages], blockageDiff, blockageConstant, req.LoxP)

	if err := zkp.VerifyRange("levelup/freshness", req.LoxP, freshnessDiff, req.FreshnessRange); err != nil {
		return nil, common.ErrVerificationFailure
	}
	if err := zkp.VerifyRange("levelup/blockage", req.LoxP, blockageDiff, req.BlockageRange); err != nil {
		return nil, common.ErrVerificationFailure
	}

	points := mergePoints(
		cred.ShowPoints("lox", loxPriv.Public(), req.LoxP, loxV, req.LoxShowing, cred.LevelUpPlan),
		cred.ShowPoints("bucketreach", bucketReachPriv.Public(), req.BucketReachP, bucketReachV, req.BucketReachShowing, cred.LevelUpBucketReachPlan),
		cred.RangeLinkPoints("levelup/freshness", freshnessTarget),
		cred.RangeLinkPoints("levelup/blockage", blockageTarget),
		cred.EncAttrPoints("newlox", cred.LevelUpBucketEncIdx, req.BucketEnc, req.D),
		cred.EncAttrPoints("newlox", cred.LevelUpBlockagesEncIdx, req.BlockagesEnc, req.D),
	)
	stmt, err := zkp.NewStatement("levelup/request", cred.LevelUpConstraints()...)
	if err != nil {
		return nil, verificationFail(err)
	}
	if err := zkp.Verify(stmt, req.Proof, points); err != nil {
		return nil, common.ErrVerificationFailure
	}

	status, err := iss.Lox.Current().Filter.Consult(id)
	if err != nil || status == filter.Seen {
		return nil, common.ErrVerificationFailure
	}

	newLevel := levelVal + 1
	if newLevel > cred.MaxLevel {
		newLevel = cred.MaxLevel
	}
	revealed := map[int]*group.Scalar{
		cred.LoxID:               id,
		cred.LoxTrustLevel:       groupFromUint32(newLevel),
		cred.LoxLevelSince:       groupFromUint32(today),
		cred.LoxInvitesRemaining: groupFromUint32(cred.LevelInvitations[levelVal]),
	}
	blinded := map[int]*cred.BlindAttr{
		cred.LoxBucket:    {Enc: req.BucketEnc},
		cred.LoxBlockages: {Enc: req.BlockagesEnc},
	}
	issuance, _, err := blindIssueAndProve("lox", loxPriv, revealed, blinded, req.D, rng)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	return &LevelUpResponse{Revealed: revealed, Issuance: issuance}, nil
}
