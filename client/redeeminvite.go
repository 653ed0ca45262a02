package client

import (
	"fmt"
	"io"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/group"
	"github.com/asv/lox/internal/common"
	"github.com/asv/lox/issuer"
	"github.com/asv/lox/zkp"
)

// RedeemInviteState is the ephemeral state RequestRedeemInvite
// produces, consumed by HandleRedeemInviteResponse.
type RedeemInviteState struct {
	elgamal      *cred.ElGamalKeyPair
	idClient     *group.Scalar
	idClientEnc  *cred.Ciphertext
	bucketEnc    *cred.Ciphertext
	blockagesEnc *cred.Ciphertext
	bucket       *group.Scalar
	blockages    *group.Scalar
}

// RequestRedeemInvite builds §4.2.5's request: show the Invitation
// credential, prove it is not yet expired, and blind-issue a level-1
// Lox whose id is jointly chosen with the issuer and whose bucket and
// blockages carry the Invitation's forward. today and dateDay are the
// client's own plaintext day counts (the latter recalled from when the
// Invitation was issued), matching the issuer's DateSource epoch.
func RequestRedeemInvite(invitationPub *cred.PublicKey, invMAC *cred.MAC, invAttrs cred.InvitationAttrs, today, dateDay uint32, rng io.Reader) (*issuer.RedeemInviteRequest, *RedeemInviteState, error) {
	invShowing, invWitness, err := cred.Show(invMAC, invAttrs.Map(), cred.RedeemInvitePlan, rng)
	if err != nil {
		return nil, nil, err
	}

	if today < dateDay {
		return nil, nil, &common.InvalidFieldError{Field: "date"}
	}
	if dateDay+cred.InvitationExpiry < today {
		return nil, nil, fmt.Errorf("client: invitation dated %d exceeds the %d-day expiry as of %d: %w", dateDay, cred.InvitationExpiry, today, common.ErrCredentialExpired)
	}
	dateDiffValue := uint64(today) - uint64(dateDay)
	dateRange, dateBlind, err := zkp.ProveRange("redeeminvite/date", invShowing.P, dateDiffValue, cred.RedeemInviteDateBits)
	if err != nil {
		return nil, nil, err
	}
	dateDiff, err := zkp.RecombineRange(dateRange)
	if err != nil {
		return nil, nil, err
	}
	dateConstant := uint64(today)
	dateTarget := cred.RangeLinkTarget(invShowing.Commitments[cred.InvitationDate], dateDiff, dateConstant, invShowing.P)
	dateZSum := invWitness.Blinds[cred.InvitationDate].Add(dateBlind)

	eg, err := cred.GenerateElGamalKeyPair(rng)
	if err != nil {
		return nil, nil, err
	}
	idClient, err := group.RandomScalar(rng)
	if err != nil {
		return nil, nil, err
	}
	idClientEnc, _, err := cred.EncryptAttr(eg.Pub, idClient, rng)
	if err != nil {
		return nil, nil, err
	}
	bucketEnc, eBucket, err := cred.EncryptAttr(eg.Pub, invAttrs.Bucket, rng)
	if err != nil {
		return nil, nil, err
	}
	blockagesEnc, eBlockages, err := cred.EncryptAttr(eg.Pub, invAttrs.Blockages, rng)
	if err != nil {
		return nil, nil, err
	}

	invV, err := cred.ShowVPoint(invitationPub, invShowing, invWitness, cred.RedeemInvitePlan)
	if err != nil {
		return nil, nil, err
	}

	names := cred.RedeemInviteSecretNames()
	points := mergePoints(
		cred.ShowPoints("inv", invitationPub, invShowing.P, invV, invShowing, cred.RedeemInvitePlan),
		cred.RangeLinkPoints("redeeminvite/date", dateTarget),
		cred.EncAttrPoints("newlox", cred.RedeemInviteBucketIdx, bucketEnc, eg.Pub),
		cred.EncAttrPoints("newlox", cred.RedeemInviteBlockagesIdx, blockagesEnc, eg.Pub),
	)
	secrets := mergeScalars(
		cred.ShowSecrets("inv", invWitness, cred.RedeemInvitePlan, names),
		cred.RangeLinkSecrets("redeeminvite/date", dateZSum),
		cred.EncAttrSecrets("newlox", cred.RedeemInviteBucketIdx, eBucket),
		cred.EncAttrSecrets("newlox", cred.RedeemInviteBlockagesIdx, eBlockages),
	)
	stmt, err := zkp.NewStatement("redeeminvite/request", cred.RedeemInviteConstraints()...)
	if err != nil {
		return nil, nil, err
	}
	proof, err := zkp.Prove(stmt, zkp.Assignment{Points: points, Secrets: secrets})
	if err != nil {
		return nil, nil, err
	}

	req := &issuer.RedeemInviteRequest{
		InvP:         invShowing.P,
		InvShowing:   invShowing,
		InvRevealed:  map[int]*group.Scalar{cred.InvitationInvID: invAttrs.InvID},
		DateRange:    dateRange,
		D:            eg.Pub,
		IDClientEnc:  idClientEnc,
		BucketEnc:    bucketEnc,
		BlockagesEnc: blockagesEnc,
		Proof:        proof,
	}
	state := &RedeemInviteState{
		elgamal:      eg,
		idClient:     idClient,
		idClientEnc:  idClientEnc,
		bucketEnc:    bucketEnc,
		blockagesEnc: blockagesEnc,
		bucket:       invAttrs.Bucket,
		blockages:    invAttrs.Blockages,
	}
	return req, state, nil
}

// HandleRedeemInviteResponse verifies resp's issuance proof and
// reconstructs the freshly minted level-1 Lox credential.
func HandleRedeemInviteResponse(state *RedeemInviteState, resp *issuer.RedeemInviteResponse, loxPub *cred.PublicKey) (*cred.MAC, cred.LoxAttrs, error) {
	blinded := map[int]*cred.BlindAttr{
		cred.LoxID:        {Enc: state.idClientEnc, Offset: resp.Issuance.IDOffset},
		cred.LoxBucket:    {Enc: state.bucketEnc},
		cred.LoxBlockages: {Enc: state.blockagesEnc},
	}
	if err := verifyIssuance("lox", loxPub, resp.Revealed, blinded, state.elgamal.Pub, resp.Issuance); err != nil {
		return nil, cred.LoxAttrs{}, err
	}
	mac := decryptMAC(state.elgamal.Priv, resp.Issuance)
	attrs := cred.LoxAttrsFromMap(map[int]*group.Scalar{
		cred.LoxID:               state.idClient.Add(resp.Issuance.IDOffset),
		cred.LoxBucket:           state.bucket,
		cred.LoxTrustLevel:       resp.Revealed[cred.LoxTrustLevel],
		cred.LoxLevelSince:       resp.Revealed[cred.LoxLevelSince],
		cred.LoxInvitesRemaining: resp.Revealed[cred.LoxInvitesRemaining],
		cred.LoxBlockages:        state.blockages,
	})
	return mac, attrs, nil
}
