package issuer

import (
	"io"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/filter"
	"github.com/asv/lox/group"
	"github.com/asv/lox/internal/common"
	"github.com/asv/lox/zkp"
)

// IssueInviteRequest is §4.2.4's request: show the current Lox
// credential (id revealed only) alongside a same-day BucketReachability
// for its bucket, prove invites_remaining is nonzero, and blind-issue a
// Lox with invites_remaining decremented plus a new Invitation pinned
// to the Lox's bucket and blockages.
type IssueInviteRequest struct {
	LoxP        *group.Point
	LoxShowing  *cred.Showing
	LoxRevealed map[int]*group.Scalar

	BucketReachP        *group.Point
	BucketReachShowing  *cred.Showing
	BucketReachRevealed map[int]*group.Scalar

	NonZeroC2 *group.Point

	D                *group.Point
	LoxBucketEnc     *cred.Ciphertext
	LoxTrustLevelEnc *cred.Ciphertext
	LoxLevelSinceEnc *cred.Ciphertext
	LoxInvitesEnc    *cred.Ciphertext // encrypts invites_remaining - 1
	LoxBlockagesEnc  *cred.Ciphertext

	InvBucketEnc    *cred.Ciphertext
	InvBlockagesEnc *cred.Ciphertext

	Proof *zkp.Proof
}

// IssueInviteResponse bundles the two blind issuances §4.2.4 returns:
// the reissued Lox and the new Invitation, plus the issuer-chosen
// revealed attributes of each.
type IssueInviteResponse struct {
	LoxRevealed map[int]*group.Scalar
	LoxIssuance *IssuanceResponse

	InvitationRevealed map[int]*group.Scalar
	InvitationIssuance *IssuanceResponse
}

func shiftInvitesDownEnc(enc *cred.Ciphertext) *cred.Ciphertext {
	return &cred.Ciphertext{C0: enc.C0, C1: enc.C1.Add(group.B)}
}

// HandleIssueInvite implements handle_issue_invite: verify the combined
// showing/non-zero/linkage statement, consult (and record) the Lox
// id_filter, and blind-issue a Lox with invites_remaining decremented
// by one plus a fresh Invitation dated today and pinned to the Lox's
// bucket and blockages.
func (iss *Issuer) HandleIssueInvite(req *IssueInviteRequest, rng io.Reader) (*IssueInviteResponse, error) {
	iss.mu.Lock()
	defer iss.mu.Unlock()

	if req.LoxP.IsIdentity() || req.BucketReachP.IsIdentity() {
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

	points := mergePoints(
		cred.ShowPoints("lox", loxPriv.Public(), req.LoxP, loxV, req.LoxShowing, cred.IssueInvitePlan),
		cred.ShowPoints("bucketreach", bucketReachPriv.Public(), req.BucketReachP, bucketReachV, req.BucketReachShowing, cred.IssueInviteBucketReachPlan),
		cred.NonZeroPoints("lox", cred.LoxInvitesRemaining, req.LoxP, req.NonZeroC2),
		cred.EncAttrPoints("newlox", cred.IssueInviteLoxBucketIdx, req.LoxBucketEnc, req.D),
		cred.EncAttrPoints("newlox", cred.IssueInviteLoxTrustLevelIdx, req.LoxTrustLevelEnc, req.D),
		cred.EncAttrPoints("newlox", cred.IssueInviteLoxLevelSinceIdx, req.LoxLevelSinceEnc, req.D),
		cred.EncAttrPoints("newlox", cred.IssueInviteLoxInvitesIdx, shiftInvitesDownEnc(req.LoxInvitesEnc), req.D),
		cred.EncAttrPoints("newlox", cred.IssueInviteLoxBlockagesIdx, req.LoxBlockagesEnc, req.D),
		cred.EncAttrPoints("newinv", cred.IssueInviteInvBucketIdx, req.InvBucketEnc, req.D),
		cred.EncAttrPoints("newinv", cred.IssueInviteInvBlockagesIdx, req.InvBlockagesEnc, req.D),
	)
	stmt, err := zkp.NewStatement("issueinvite/request", cred.IssueInviteConstraints()...)
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

	loxRevealed := map[int]*group.Scalar{cred.LoxID: id}
	loxBlinded := map[int]*cred.BlindAttr{
		cred.LoxBucket:           {Enc: req.LoxBucketEnc},
		cred.LoxTrustLevel:       {Enc: req.LoxTrustLevelEnc},
		cred.LoxLevelSince:       {Enc: req.LoxLevelSinceEnc},
		cred.LoxInvitesRemaining: {Enc: req.LoxInvitesEnc},
		cred.LoxBlockages:        {Enc: req.LoxBlockagesEnc},
	}
	loxIssuance, _, err := blindIssueAndProve("lox", loxPriv, loxRevealed, loxBlinded, req.D, rng)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}

	invID, err := group.RandomNonZeroScalar(rng)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	invRevealed := map[int]*group.Scalar{
		cred.InvitationInvID: invID,
		cred.InvitationDate:  groupFromUint32(today),
	}
	invBlinded := map[int]*cred.BlindAttr{
		cred.InvitationBucket:    {Enc: req.InvBucketEnc},
		cred.InvitationBlockages: {Enc: req.InvBlockagesEnc},
	}
	invPriv := iss.Invitation.Current().Priv
	invIssuance, _, err := blindIssueAndProve("invitation", invPriv, invRevealed, invBlinded, req.D, rng)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}

	return &IssueInviteResponse{
		LoxRevealed:        loxRevealed,
		LoxIssuance:        loxIssuance,
		InvitationRevealed: invRevealed,
		InvitationIssuance: invIssuance,
	}, nil
}
