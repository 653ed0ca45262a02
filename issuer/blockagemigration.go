package issuer

import (
	"io"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/filter"
	"github.com/asv/lox/group"
	"github.com/asv/lox/internal/common"
	"github.com/asv/lox/zkp"
)

// BlockageMigrationRequest is §4.2.7's request: show the current Lox
// credential (trust_level >= MinTrustLevelForBlockageCheck) and the
// Blockage-type Migration credential obtained from check_blockage
// together, proving the Migration's from_bucket equals the Lox's
// bucket, the new Lox's bucket equals the Migration's to_bucket, and
// the new Lox's blockages equals the old blockages plus one.
type BlockageMigrationRequest struct {
	LoxP        *group.Point
	LoxShowing  *cred.Showing
	LoxRevealed map[int]*group.Scalar

	MigP        *group.Point
	MigShowing  *cred.Showing
	MigRevealed map[int]*group.Scalar

	D            *group.Point
	BucketEnc    *cred.Ciphertext
	BlockagesEnc *cred.Ciphertext // encrypts (old_blockages + 1)
	Proof        *zkp.Proof
}

// BlockageMigrationResponse carries the issuer-chosen revealed
// attributes of the new, demoted Lox plus its blind issuance.
type BlockageMigrationResponse struct {
	Revealed map[int]*group.Scalar
	Issuance *IssuanceResponse
}

func blockageMigrationConstraints(names cred.MigrationSecretNames) []zkp.Constraint {
	cons := cred.MigrationRequestConstraints(names)
	return append(cons, cred.EncAttrConstraints("newlox", cred.MigrationNewBlockagesIdx, names.Lox[cred.LoxBlockages])...)
}

// shiftedBlockagesEnc adjusts enc (an encryption of old_blockages+1) so
// EncAttrConstraints can verify it against the old_blockages secret
// directly: subtracting 1*B from C1 turns "proves plaintext =
// old_blockages" into the true statement about the unshifted
// ciphertext.
func shiftedBlockagesEnc(enc *cred.Ciphertext) *cred.Ciphertext {
	return &cred.Ciphertext{C0: enc.C0, C1: enc.C1.Sub(group.B)}
}

// HandleBlockageMigration implements handle_blockage_migration: verify
// the combined showing/linkage proof, confirm the Migration credential
// is a Blockage row for the same id, require trust_level in
// MinTrustLevelForBlockageCheck..MaxLevel, consult (and record) the Lox
// id_filter, and blind-issue a demoted Lox.
func (iss *Issuer) HandleBlockageMigration(req *BlockageMigrationRequest, rng io.Reader) (*BlockageMigrationResponse, error) {
	iss.mu.Lock()
	defer iss.mu.Unlock()

	if req.LoxP.IsIdentity() || req.MigP.IsIdentity() {
		return nil, common.ErrVerificationFailure
	}
	level, ok := req.LoxRevealed[cred.LoxTrustLevel]
	if !ok || !levelInRange(level, cred.MinTrustLevelForBlockageCheck, cred.MaxLevel) {
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
	migID, ok := req.MigRevealed[cred.MigrationLoxID]
	if !ok || !migID.Equal(id) {
		return nil, common.ErrVerificationFailure
	}
	migType, ok := req.MigRevealed[cred.MigrationType_]
	if !ok || !migType.Equal(group.FromUint64(uint64(cred.Blockage))) {
		return nil, common.ErrVerificationFailure
	}

	loxPriv := iss.Lox.Current().Priv
	loxV, err := cred.RecomputeVerificationPoint(loxPriv, req.LoxP, req.LoxRevealed, req.LoxShowing)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	migPriv := iss.Migration.Current().Priv
	migV, err := cred.RecomputeVerificationPoint(migPriv, req.MigP, req.MigRevealed, req.MigShowing)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}

	names := cred.NewMigrationSecretNames("blockagemigration")
	points := mergePoints(
		cred.ShowPoints("lox", loxPriv.Public(), req.LoxP, loxV, req.LoxShowing, cred.MigrationLoxPlan),
		cred.ShowPoints("mig", migPriv.Public(), req.MigP, migV, req.MigShowing, cred.MigrationCredPlan),
		cred.EncAttrPoints("newlox", cred.MigrationNewBucketIdx, req.BucketEnc, req.D),
		cred.EncAttrPoints("newlox", cred.MigrationNewBlockagesIdx, shiftedBlockagesEnc(req.BlockagesEnc), req.D),
	)
	stmt, err := zkp.NewStatement("blockagemigration/request", blockageMigrationConstraints(names)...)
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

	today := iss.Dates.Today()
	newLevel := levelVal - 2
	revealed := map[int]*group.Scalar{
		cred.LoxID:               id,
		cred.LoxTrustLevel:       groupFromUint32(newLevel),
		cred.LoxLevelSince:       groupFromUint32(today),
		cred.LoxInvitesRemaining: groupFromUint32(cred.LevelInvitations[levelVal-3]),
	}
	blinded := map[int]*cred.BlindAttr{
		cred.LoxBucket:    {Enc: req.BucketEnc},
		cred.LoxBlockages: {Enc: req.BlockagesEnc},
	}
	issuance, _, err := blindIssueAndProve("lox", loxPriv, revealed, blinded, req.D, rng)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	return &BlockageMigrationResponse{Revealed: revealed, Issuance: issuance}, nil
}
