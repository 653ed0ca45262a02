package client

import (
	"io"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/group"
	"github.com/asv/lox/internal/common"
	"github.com/asv/lox/issuer"
	"github.com/asv/lox/zkp"
)

// IssueInviteState is the ephemeral state RequestIssueInvite produces,
// consumed by HandleIssueInviteResponse.
type IssueInviteState struct {
	elgamal *cred.ElGamalKeyPair

	loxBucketEnc     *cred.Ciphertext
	loxTrustLevelEnc *cred.Ciphertext
	loxLevelSinceEnc *cred.Ciphertext
	loxInvitesEnc    *cred.Ciphertext
	loxBlockagesEnc  *cred.Ciphertext

	invBucketEnc    *cred.Ciphertext
	invBlockagesEnc *cred.Ciphertext

	id               *group.Scalar
	bucket           *group.Scalar
	trustLevel       *group.Scalar
	levelSince       *group.Scalar
	newInvitesRemaining *group.Scalar
	blockages        *group.Scalar
}

func shiftInvitesDownEnc(enc *cred.Ciphertext) *cred.Ciphertext {
	return &cred.Ciphertext{C0: enc.C0, C1: enc.C1.Add(group.B)}
}

// RequestIssueInvite builds §4.2.4's request: show the current Lox
// credential (id revealed only) alongside a same-day BucketReachability
// for its bucket, prove invites_remaining is nonzero, and blind-issue a
// Lox with invites_remaining decremented plus a new Invitation pinned
// to the Lox's bucket and blockages.
func RequestIssueInvite(loxPub, bucketReachPub *cred.PublicKey, loxMAC *cred.MAC, loxAttrs cred.LoxAttrs, bucketReachMAC *cred.MAC, bucketReachAttrs cred.BucketReachAttrs, rng io.Reader) (*issuer.IssueInviteRequest, *IssueInviteState, error) {
	loxShowing, loxWitness, err := cred.Show(loxMAC, loxAttrs.Map(), cred.IssueInvitePlan, rng)
	if err != nil {
		return nil, nil, err
	}
	bucketReachShowing, bucketReachWitness, err := cred.Show(bucketReachMAC, bucketReachAttrs.Map(), cred.IssueInviteBucketReachPlan, rng)
	if err != nil {
		return nil, nil, err
	}

	invitesRemaining := loxWitness.Attrs[cred.LoxInvitesRemaining]
	if invitesRemaining.IsZero() {
		return nil, nil, common.ErrNoInvitationsRemaining
	}
	c2, w, wz, err := cred.NonZeroWitness(cred.LoxInvitesRemaining, loxShowing.Commitments[cred.LoxInvitesRemaining], invitesRemaining, loxWitness.Blinds[cred.LoxInvitesRemaining])
	if err != nil {
		return nil, nil, err
	}

	eg, err := cred.GenerateElGamalKeyPair(rng)
	if err != nil {
		return nil, nil, err
	}
	loxBucketEnc, eLoxBucket, err := cred.EncryptAttr(eg.Pub, loxAttrs.Bucket, rng)
	if err != nil {
		return nil, nil, err
	}
	loxTrustLevelEnc, eLoxTrustLevel, err := cred.EncryptAttr(eg.Pub, loxAttrs.TrustLevel, rng)
	if err != nil {
		return nil, nil, err
	}
	loxLevelSinceEnc, eLoxLevelSince, err := cred.EncryptAttr(eg.Pub, loxAttrs.LevelSince, rng)
	if err != nil {
		return nil, nil, err
	}
	newInvitesRemaining := invitesRemaining.Sub(group.One())
	loxInvitesEnc, eLoxInvites, err := cred.EncryptAttr(eg.Pub, newInvitesRemaining, rng)
	if err != nil {
		return nil, nil, err
	}
	loxBlockagesEnc, eLoxBlockages, err := cred.EncryptAttr(eg.Pub, loxAttrs.Blockages, rng)
	if err != nil {
		return nil, nil, err
	}
	invBucketEnc, eInvBucket, err := cred.EncryptAttr(eg.Pub, loxAttrs.Bucket, rng)
	if err != nil {
		return nil, nil, err
	}
	invBlockagesEnc, eInvBlockages, err := cred.EncryptAttr(eg.Pub, loxAttrs.Blockages, rng)
	if err != nil {
		return nil, nil, err
	}

	loxV, err := cred.ShowVPoint(loxPub, loxShowing, loxWitness, cred.IssueInvitePlan)
	if err != nil {
		return nil, nil, err
	}
	bucketReachV, err := cred.ShowVPoint(bucketReachPub, bucketReachShowing, bucketReachWitness, cred.IssueInviteBucketReachPlan)
	if err != nil {
		return nil, nil, err
	}

	loxNames, bucketReachNames := cred.IssueInviteSecretNames()
	points := mergePoints(
		cred.ShowPoints("lox", loxPub, loxShowing.P, loxV, loxShowing, cred.IssueInvitePlan),
		cred.ShowPoints("bucketreach", bucketReachPub, bucketReachShowing.P, bucketReachV, bucketReachShowing, cred.IssueInviteBucketReachPlan),
		cred.NonZeroPoints("lox", cred.LoxInvitesRemaining, loxShowing.P, c2),
		cred.EncAttrPoints("newlox", cred.IssueInviteLoxBucketIdx, loxBucketEnc, eg.Pub),
		cred.EncAttrPoints("newlox", cred.IssueInviteLoxTrustLevelIdx, loxTrustLevelEnc, eg.Pub),
		cred.EncAttrPoints("newlox", cred.IssueInviteLoxLevelSinceIdx, loxLevelSinceEnc, eg.Pub),
		cred.EncAttrPoints("newlox", cred.IssueInviteLoxInvitesIdx, shiftInvitesDownEnc(loxInvitesEnc), eg.Pub),
		cred.EncAttrPoints("newlox", cred.IssueInviteLoxBlockagesIdx, loxBlockagesEnc, eg.Pub),
		cred.EncAttrPoints("newinv", cred.IssueInviteInvBucketIdx, invBucketEnc, eg.Pub),
		cred.EncAttrPoints("newinv", cred.IssueInviteInvBlockagesIdx, invBlockagesEnc, eg.Pub),
	)
	secrets := mergeScalars(
		cred.ShowSecrets("lox", loxWitness, cred.IssueInvitePlan, loxNames),
		cred.ShowSecrets("bucketreach", bucketReachWitness, cred.IssueInviteBucketReachPlan, bucketReachNames),
		cred.NonZeroSecrets("lox", cred.LoxInvitesRemaining, w, wz),
		cred.EncAttrSecrets("newlox", cred.IssueInviteLoxBucketIdx, eLoxBucket),
		cred.EncAttrSecrets("newlox", cred.IssueInviteLoxTrustLevelIdx, eLoxTrustLevel),
		cred.EncAttrSecrets("newlox", cred.IssueInviteLoxLevelSinceIdx, eLoxLevelSince),
		cred.EncAttrSecrets("newlox", cred.IssueInviteLoxInvitesIdx, eLoxInvites),
		cred.EncAttrSecrets("newlox", cred.IssueInviteLoxBlockagesIdx, eLoxBlockages),
		cred.EncAttrSecrets("newinv", cred.IssueInviteInvBucketIdx, eInvBucket),
		cred.EncAttrSecrets("newinv", cred.IssueInviteInvBlockagesIdx, eInvBlockages),
	)
	stmt, err := zkp.NewStatement("issueinvite/request", cred.IssueInviteConstraints()...)
	if err != nil {
		return nil, nil, err
	}
	proof, err := zkp.Prove(stmt, zkp.Assignment{Points: points, Secrets: secrets})
	if err != nil {
		return nil, nil, err
	}

	req := &issuer.IssueInviteRequest{
		LoxP:                loxShowing.P,
		LoxShowing:          loxShowing,
		LoxRevealed:         map[int]*group.Scalar{cred.LoxID: loxAttrs.ID},
		BucketReachP:        bucketReachShowing.P,
		BucketReachShowing:  bucketReachShowing,
		BucketReachRevealed: map[int]*group.Scalar{cred.BucketReachDate: bucketReachAttrs.Date},
		NonZeroC2:           c2,
		D:                   eg.Pub,
		LoxBucketEnc:        loxBucketEnc,
		LoxTrustLevelEnc:    loxTrustLevelEnc,
		LoxLevelSinceEnc:    loxLevelSinceEnc,
		LoxInvitesEnc:       loxInvitesEnc,
		LoxBlockagesEnc:     loxBlockagesEnc,
		InvBucketEnc:        invBucketEnc,
		InvBlockagesEnc:     invBlockagesEnc,
		Proof:               proof,
	}
	state := &IssueInviteState{
		elgamal:          eg,
		loxBucketEnc:     loxBucketEnc,
		loxTrustLevelEnc: loxTrustLevelEnc,
		loxLevelSinceEnc: loxLevelSinceEnc,
		loxInvitesEnc:    loxInvitesEnc,
		loxBlockagesEnc:  loxBlockagesEnc,
		invBucketEnc:     invBucketEnc,
		invBlockagesEnc:  invBlockagesEnc,
		id:                  loxAttrs.ID,
		bucket:              loxAttrs.Bucket,
		trustLevel:          loxAttrs.TrustLevel,
		levelSince:          loxAttrs.LevelSince,
		newInvitesRemaining: newInvitesRemaining,
		blockages:           loxAttrs.Blockages,
	}
	return req, state, nil
}

// HandleIssueInviteResponse verifies both issuance proofs in resp and
// reconstructs the reissued Lox and the new Invitation credential.
func HandleIssueInviteResponse(state *IssueInviteState, resp *issuer.IssueInviteResponse, loxPub *cred.PublicKey, invitationPub *cred.PublicKey) (*cred.MAC, cred.LoxAttrs, *cred.MAC, cred.InvitationAttrs, error) {
	loxBlinded := map[int]*cred.BlindAttr{
		cred.LoxBucket:           {Enc: state.loxBucketEnc},
		cred.LoxTrustLevel:       {Enc: state.loxTrustLevelEnc},
		cred.LoxLevelSince:       {Enc: state.loxLevelSinceEnc},
		cred.LoxInvitesRemaining: {Enc: state.loxInvitesEnc},
		cred.LoxBlockages:        {Enc: state.loxBlockagesEnc},
	}
	if err := verifyIssuance("lox", loxPub, resp.LoxRevealed, loxBlinded, state.elgamal.Pub, resp.LoxIssuance); err != nil {
		return nil, cred.LoxAttrs{}, nil, cred.InvitationAttrs{}, err
	}
	invBlinded := map[int]*cred.BlindAttr{
		cred.InvitationBucket:    {Enc: state.invBucketEnc},
		cred.InvitationBlockages: {Enc: state.invBlockagesEnc},
	}
	if err := verifyIssuance("invitation", invitationPub, resp.InvitationRevealed, invBlinded, state.elgamal.Pub, resp.InvitationIssuance); err != nil {
		return nil, cred.LoxAttrs{}, nil, cred.InvitationAttrs{}, err
	}

	loxMAC := decryptMAC(state.elgamal.Priv, resp.LoxIssuance)
	loxAttrs := cred.LoxAttrsFromMap(map[int]*group.Scalar{
		cred.LoxID:               state.id,
		cred.LoxBucket:           state.bucket,
		cred.LoxTrustLevel:       state.trustLevel,
		cred.LoxLevelSince:       state.levelSince,
		cred.LoxInvitesRemaining: state.newInvitesRemaining,
		cred.LoxBlockages:        state.blockages,
	})

	invMAC := decryptMAC(state.elgamal.Priv, resp.InvitationIssuance)
	invAttrs := cred.InvitationAttrs{
		InvID:     resp.InvitationRevealed[cred.InvitationInvID],
		Date:      resp.InvitationRevealed[cred.InvitationDate],
		Bucket:    state.bucket,
		Blockages: state.blockages,
	}
	return loxMAC, loxAttrs, invMAC, invAttrs, nil
}
