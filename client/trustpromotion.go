package client

import (
	"io"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/group"
	"github.com/asv/lox/internal/common"
	"github.com/asv/lox/issuer"
	"github.com/asv/lox/migrationtable"
	"github.com/asv/lox/zkp"
)

// TrustPromotionState is the ephemeral state RequestTrustPromotion
// produces, consumed by HandleTrustPromotionResponse.
type TrustPromotionState struct {
	elgamal   *cred.ElGamalKeyPair
	bucketEnc *cred.Ciphertext
	id        *group.Scalar
	bucket    *group.Scalar
}

// RequestTrustPromotion builds trust_promotion's request: a level-0
// Lox credential is shown with id and trust_level=0 revealed, and its
// bucket is ElGamal-encrypted for the issuer's MigrationKey issuance,
// exactly mirroring RequestCheckBlockage's shape.
func RequestTrustPromotion(loxPub *cred.PublicKey, mac *cred.MAC, attrs cred.LoxAttrs, rng io.Reader) (*issuer.TrustPromotionRequest, *TrustPromotionState, error) {
	plan := cred.BlockageCheckPlan
	names := cred.BlockageCheckSecretNames()

	showing, witness, err := cred.Show(mac, attrs.Map(), plan, rng)
	if err != nil {
		return nil, nil, err
	}
	eg, err := cred.GenerateElGamalKeyPair(rng)
	if err != nil {
		return nil, nil, err
	}
	bucketEnc, e, err := cred.EncryptAttr(eg.Pub, attrs.Bucket, rng)
	if err != nil {
		return nil, nil, err
	}

	vPoint, err := cred.ShowVPoint(loxPub, showing, witness, plan)
	if err != nil {
		return nil, nil, err
	}
	points := mergePoints(
		cred.ShowPoints("lox", loxPub, showing.P, vPoint, showing, plan),
		cred.EncAttrPoints("blockagecheck", cred.BlockageCheckEncAttrIdx, bucketEnc, eg.Pub),
	)
	secrets := mergeScalars(
		cred.ShowSecrets("lox", witness, plan, names),
		cred.EncAttrSecrets("blockagecheck", cred.BlockageCheckEncAttrIdx, e),
	)
	stmt, err := zkp.NewStatement("checkblockage/request", cred.BlockageCheckConstraints()...)
	if err != nil {
		return nil, nil, err
	}
	proof, err := zkp.Prove(stmt, zkp.Assignment{Points: points, Secrets: secrets})
	if err != nil {
		return nil, nil, err
	}

	req := &issuer.TrustPromotionRequest{
		P:         showing.P,
		Showing:   showing,
		Revealed:  map[int]*group.Scalar{cred.LoxID: attrs.ID, cred.LoxTrustLevel: attrs.TrustLevel},
		D:         eg.Pub,
		BucketEnc: bucketEnc,
		Proof:     proof,
	}
	state := &TrustPromotionState{elgamal: eg, bucketEnc: bucketEnc, id: attrs.ID, bucket: attrs.Bucket}
	return req, state, nil
}

// HandleTrustPromotionResponse verifies the MigrationKey issuance,
// decrypts Qk, and locates this client's TrustUpgrade row, yielding the
// Migration credential that the migration protocol then consumes to
// actually move to trust_level 1.
func HandleTrustPromotionResponse(state *TrustPromotionState, resp *issuer.TrustPromotionResponse, migKeyPub *cred.PublicKey) (*cred.MAC, cred.MigrationAttrs, error) {
	blinded := map[int]*cred.BlindAttr{cred.MigrationKeyFromBucket: {Enc: state.bucketEnc}}
	revealed := map[int]*group.Scalar{cred.MigrationKeyID: state.id}
	if err := verifyIssuance("migrationkey", migKeyPub, revealed, blinded, state.elgamal.Pub, resp.Issuance); err != nil {
		return nil, cred.MigrationAttrs{}, err
	}

	qk := decryptMAC(state.elgamal.Priv, resp.Issuance)
	entry, found, err := migrationtable.Lookup(resp.Table, state.id, state.bucket, qk.Q)
	if err != nil {
		return nil, cred.MigrationAttrs{}, err
	}
	if !found {
		return nil, cred.MigrationAttrs{}, common.ErrNoMigrationRow
	}

	mac := &cred.MAC{P: entry.P, Q: entry.Q}
	attrs := cred.MigrationAttrs{LoxID: state.id, FromBucket: state.bucket, ToBucket: entry.ToBucket, Type: cred.TrustUpgrade}
	return mac, attrs, nil
}
