package client

import (
	"io"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/group"
	"github.com/asv/lox/issuer"
	"github.com/asv/lox/zkp"
)

// BlockageMigrationState is the ephemeral state
// RequestBlockageMigration produces, consumed by
// HandleBlockageMigrationResponse.
type BlockageMigrationState struct {
	elgamal        *cred.ElGamalKeyPair
	bucketEnc      *cred.Ciphertext
	blockagesEnc   *cred.Ciphertext
	id             *group.Scalar
	bucket         *group.Scalar
	knownBlockages *group.Scalar
}

func blockageMigrationConstraints(names cred.MigrationSecretNames) []zkp.Constraint {
	cons := cred.MigrationRequestConstraints(names)
	return append(cons, cred.EncAttrConstraints("newlox", cred.MigrationNewBlockagesIdx, names.Lox[cred.LoxBlockages])...)
}

func shiftedBlockagesEnc(enc *cred.Ciphertext) *cred.Ciphertext {
	return &cred.Ciphertext{C0: enc.C0, C1: enc.C1.Sub(group.B)}
}

// RequestBlockageMigration builds §4.2.7's request: show the current
// Lox credential alongside the Blockage-type Migration credential
// obtained from check_blockage, and blind-issue a demoted Lox whose
// bucket is the Migration credential's to_bucket and whose blockages
// is the old value plus one.
func RequestBlockageMigration(loxPub, migPub *cred.PublicKey, loxMAC *cred.MAC, loxAttrs cred.LoxAttrs, migMAC *cred.MAC, migAttrs cred.MigrationAttrs, rng io.Reader) (*issuer.BlockageMigrationRequest, *BlockageMigrationState, error) {
	loxShowing, loxWitness, err := cred.Show(loxMAC, loxAttrs.Map(), cred.MigrationLoxPlan, rng)
	if err != nil {
		return nil, nil, err
	}
	migShowing, migWitness, err := cred.Show(migMAC, migAttrs.Map(), cred.MigrationCredPlan, rng)
	if err != nil {
		return nil, nil, err
	}

	eg, err := cred.GenerateElGamalKeyPair(rng)
	if err != nil {
		return nil, nil, err
	}
	bucketEnc, eBucket, err := cred.EncryptAttr(eg.Pub, migAttrs.ToBucket, rng)
	if err != nil {
		return nil, nil, err
	}
	newBlockages := loxAttrs.Blockages.Add(group.One())
	rawBlockagesEnc, eBlockages, err := cred.EncryptAttr(eg.Pub, newBlockages, rng)
	if err != nil {
		return nil, nil, err
	}

	loxV, err := cred.ShowVPoint(loxPub, loxShowing, loxWitness, cred.MigrationLoxPlan)
	if err != nil {
		return nil, nil, err
	}
	migV, err := cred.ShowVPoint(migPub, migShowing, migWitness, cred.MigrationCredPlan)
	if err != nil {
		return nil, nil, err
	}

	names := cred.NewMigrationSecretNames("blockagemigration")
	points := mergePoints(
		cred.ShowPoints("lox", loxPub, loxShowing.P, loxV, loxShowing, cred.MigrationLoxPlan),
		cred.ShowPoints("mig", migPub, migShowing.P, migV, migShowing, cred.MigrationCredPlan),
		cred.EncAttrPoints("newlox", cred.MigrationNewBucketIdx, bucketEnc, eg.Pub),
		cred.EncAttrPoints("newlox", cred.MigrationNewBlockagesIdx, shiftedBlockagesEnc(rawBlockagesEnc), eg.Pub),
	)
	secrets := mergeScalars(
		cred.ShowSecrets("lox", loxWitness, cred.MigrationLoxPlan, names.Lox),
		cred.ShowSecrets("mig", migWitness, cred.MigrationCredPlan, names.Migration),
		cred.EncAttrSecrets("newlox", cred.MigrationNewBucketIdx, eBucket),
		cred.EncAttrSecrets("newlox", cred.MigrationNewBlockagesIdx, eBlockages),
	)
	stmt, err := zkp.NewStatement("blockagemigration/request", blockageMigrationConstraints(names)...)
	if err != nil {
		return nil, nil, err
	}
	proof, err := zkp.Prove(stmt, zkp.Assignment{Points: points, Secrets: secrets})
	if err != nil {
		return nil, nil, err
	}

	req := &issuer.BlockageMigrationRequest{
		LoxP:         loxShowing.P,
		LoxShowing:   loxShowing,
		LoxRevealed:  map[int]*group.Scalar{cred.LoxID: loxAttrs.ID, cred.LoxTrustLevel: loxAttrs.TrustLevel},
		MigP:         migShowing.P,
		MigShowing:   migShowing,
		MigRevealed:  map[int]*group.Scalar{cred.MigrationLoxID: migAttrs.LoxID, cred.MigrationType_: group.FromUint64(uint64(migAttrs.Type))},
		D:            eg.Pub,
		BucketEnc:    bucketEnc,
		BlockagesEnc: rawBlockagesEnc,
		Proof:        proof,
	}
	state := &BlockageMigrationState{
		elgamal:        eg,
		bucketEnc:      bucketEnc,
		blockagesEnc:   rawBlockagesEnc,
		id:             loxAttrs.ID,
		bucket:         migAttrs.ToBucket,
		knownBlockages: newBlockages,
	}
	return req, state, nil
}

// HandleBlockageMigrationResponse verifies resp's issuance proof and
// reconstructs the demoted Lox credential.
func HandleBlockageMigrationResponse(state *BlockageMigrationState, resp *issuer.BlockageMigrationResponse, loxPub *cred.PublicKey) (*cred.MAC, cred.LoxAttrs, error) {
	blinded := map[int]*cred.BlindAttr{
		cred.LoxBucket:    {Enc: state.bucketEnc},
		cred.LoxBlockages: {Enc: state.blockagesEnc},
	}
	if err := verifyIssuance("lox", loxPub, resp.Revealed, blinded, state.elgamal.Pub, resp.Issuance); err != nil {
		return nil, cred.LoxAttrs{}, err
	}
	mac := decryptMAC(state.elgamal.Priv, resp.Issuance)
	attrs := cred.LoxAttrsFromMap(map[int]*group.Scalar{
		cred.LoxID:               state.id,
		cred.LoxBucket:           state.bucket,
		cred.LoxTrustLevel:       resp.Revealed[cred.LoxTrustLevel],
		cred.LoxLevelSince:       resp.Revealed[cred.LoxLevelSince],
		cred.LoxInvitesRemaining: resp.Revealed[cred.LoxInvitesRemaining],
		cred.LoxBlockages:        newBlockagesFromState(state),
	})
	return mac, attrs, nil
}

func newBlockagesFromState(state *BlockageMigrationState) *group.Scalar {
	// The response's Revealed map never carries blockages (it stays
	// blinded through the whole protocol); the client already knows it
	// from the request it built.
	return state.knownBlockages
}
