package client

import (
	"io"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/group"
	"github.com/asv/lox/issuer"
	"github.com/asv/lox/zkp"
)

// MigrationState is the ephemeral state RequestMigration produces,
// consumed by HandleMigrationResponse.
type MigrationState struct {
	elgamal   *cred.ElGamalKeyPair
	bucketEnc *cred.Ciphertext
	id        *group.Scalar
	bucket    *group.Scalar
}

// RequestMigration builds §4.2.2's second request: show the level-0
// Lox credential alongside the Migration credential obtained from
// trust_promotion, and blind-issue a new Lox whose bucket is the
// Migration credential's to_bucket.
func RequestMigration(loxPub, migPub *cred.PublicKey, loxMAC *cred.MAC, loxAttrs cred.LoxAttrs, migMAC *cred.MAC, migAttrs cred.MigrationAttrs, rng io.Reader) (*issuer.MigrationRequest, *MigrationState, error) {
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
	bucketEnc, e, err := cred.EncryptAttr(eg.Pub, migAttrs.ToBucket, rng)
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

	names := cred.NewMigrationSecretNames("migration")
	points := mergePoints(
		cred.ShowPoints("lox", loxPub, loxShowing.P, loxV, loxShowing, cred.MigrationLoxPlan),
		cred.ShowPoints("mig", migPub, migShowing.P, migV, migShowing, cred.MigrationCredPlan),
		cred.EncAttrPoints("newlox", cred.MigrationNewBucketIdx, bucketEnc, eg.Pub),
	)
	secrets := mergeScalars(
		cred.ShowSecrets("lox", loxWitness, cred.MigrationLoxPlan, names.Lox),
		cred.ShowSecrets("mig", migWitness, cred.MigrationCredPlan, names.Migration),
		cred.EncAttrSecrets("newlox", cred.MigrationNewBucketIdx, e),
	)
	stmt, err := zkp.NewStatement("migration/request", cred.MigrationRequestConstraints(names)...)
	if err != nil {
		return nil, nil, err
	}
	proof, err := zkp.Prove(stmt, zkp.Assignment{Points: points, Secrets: secrets})
	if err != nil {
		return nil, nil, err
	}

	req := &issuer.MigrationRequest{
		LoxP:        loxShowing.P,
		LoxShowing:  loxShowing,
		LoxRevealed: map[int]*group.Scalar{cred.LoxID: loxAttrs.ID, cred.LoxTrustLevel: loxAttrs.TrustLevel},
		MigP:        migShowing.P,
		MigShowing:  migShowing,
		MigRevealed: map[int]*group.Scalar{cred.MigrationLoxID: migAttrs.LoxID, cred.MigrationType_: group.FromUint64(uint64(migAttrs.Type))},
		D:           eg.Pub,
		BucketEnc:   bucketEnc,
		Proof:       proof,
	}
	return req, &MigrationState{elgamal: eg, bucketEnc: bucketEnc, id: loxAttrs.ID, bucket: migAttrs.ToBucket}, nil
}

// HandleMigrationResponse verifies resp's issuance proof and
// reconstructs the new Lox credential at trust_level 1.
func HandleMigrationResponse(state *MigrationState, resp *issuer.MigrationResponse, loxPub *cred.PublicKey) (*cred.MAC, cred.LoxAttrs, error) {
	blinded := map[int]*cred.BlindAttr{cred.LoxBucket: {Enc: state.bucketEnc}}
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
		cred.LoxBlockages:        resp.Revealed[cred.LoxBlockages],
	})
	return mac, attrs, nil
}
