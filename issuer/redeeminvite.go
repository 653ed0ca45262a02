package issuer

import (
	"io"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/filter"
	"github.com/asv/lox/group"
	"github.com/asv/lox/internal/common"
	"github.com/asv/lox/zkp"
)

// RedeemInviteRequest is §4.2.5's request: show the Invitation
// credential (inv_id revealed, consumed in inv_id_filter), prove it is
// not yet expired, and blind-issue a level-1 Lox carrying the
// Invitation's bucket and blockages forward.
//
// The freshness range proof is taken over today-date rather than the
// date+INVITATION_EXPIRY-today spec formula; since INVITATION_EXPIRY is
// exactly 2^RedeemInviteDateBits-1, the two are the same range and
// today-date fits the existing additive-equality linkage directly
// (see RedeemInviteConstant).
type RedeemInviteRequest struct {
	InvP        *group.Point
	InvShowing  *cred.Showing
	InvRevealed map[int]*group.Scalar

	DateRange *zkp.RangeProof

	D            *group.Point
	IDClientEnc  *cred.Ciphertext
	BucketEnc    *cred.Ciphertext
	BlockagesEnc *cred.Ciphertext
	Proof        *zkp.Proof
}

// RedeemInviteResponse carries the issuer-chosen revealed attributes of
// the newly issued Lox plus its blind issuance.
type RedeemInviteResponse struct {
	Revealed map[int]*group.Scalar
	Issuance *IssuanceResponse
}

// HandleRedeemInvite implements handle_redeem_invite: verify the
// combined showing/range-proof/linkage statement, consult (and record)
// the Invitation id_filter, and blind-issue a fresh level-1 Lox dated
// today with zero invites_remaining, carrying bucket and blockages
// forward from the Invitation.
func (iss *Issuer) HandleRedeemInvite(req *RedeemInviteRequest, rng io.Reader) (*RedeemInviteResponse, error) {
	iss.mu.Lock()
	defer iss.mu.Unlock()

	if req.InvP.IsIdentity() {
		return nil, common.ErrVerificationFailure
	}
	invID, ok := req.InvRevealed[cred.InvitationInvID]
	if !ok {
		return nil, common.ErrVerificationFailure
	}
	today := iss.Dates.Today()

	invPriv := iss.Invitation.Current().Priv
	invV, err := cred.RecomputeVerificationPoint(invPriv, req.InvP, req.InvRevealed, req.InvShowing)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}

	dateDiff, err := zkp.RecombineRange(req.DateRange)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	dateConstant := uint64(today)
	dateTarget := cred.RangeLinkTarget(req.InvShowing.Commitments[cred.InvitationDate], dateDiff, dateConstant, req.InvP)
	if err := zkp.VerifyRange("redeeminvite/date", req.InvP, dateDiff, req.DateRange); err != nil {
		return nil, common.ErrVerificationFailure
	}

	points := mergePoints(
		cred.ShowPoints("inv", invPriv.Public(), req.InvP, invV, req.InvShowing, cred.RedeemInvitePlan),
		cred.RangeLinkPoints("redeeminvite/date", dateTarget),
		cred.EncAttrPoints("newlox", cred.RedeemInviteBucketIdx, req.BucketEnc, req.D),
		cred.EncAttrPoints("newlox", cred.RedeemInviteBlockagesIdx, req.BlockagesEnc, req.D),
	)
	stmt, err := zkp.NewStatement("redeeminvite/request", cred.RedeemInviteConstraints()...)
	if err != nil {
		return nil, verificationFail(err)
	}
	if err := zkp.Verify(stmt, req.Proof, points); err != nil {
		return nil, common.ErrVerificationFailure
	}

	status, err := iss.Invitation.Current().Filter.Consult(invID)
	if err != nil || status == filter.Seen {
		return nil, common.ErrVerificationFailure
	}

	idOffset, err := group.RandomScalar(rng)
	if err != nil {
		return nil, err
	}
	revealed := map[int]*group.Scalar{
		cred.LoxTrustLevel:       groupFromUint32(1),
		cred.LoxLevelSince:       groupFromUint32(today),
		cred.LoxInvitesRemaining: groupFromUint32(0),
	}
	blinded := map[int]*cred.BlindAttr{
		cred.LoxID:        {Enc: req.IDClientEnc, Offset: idOffset},
		cred.LoxBucket:    {Enc: req.BucketEnc},
		cred.LoxBlockages: {Enc: req.BlockagesEnc},
	}
	loxPriv := iss.Lox.Current().Priv
	issuance, _, err := blindIssueAndProve("lox", loxPriv, revealed, blinded, req.D, rng)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	issuance.IDOffset = idOffset
	return &RedeemInviteResponse{Revealed: revealed, Issuance: issuance}, nil
}
