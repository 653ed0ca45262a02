package issuer

import (
	"io"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/filter"
	"github.com/asv/lox/group"
	"github.com/asv/lox/internal/common"
	"github.com/asv/lox/zkp"
)

// MigrationRequest is §4.2.2's second step: show the level-0 Lox
// credential and the Migration credential obtained from
// trust_promotion together, proving the Migration's from_bucket
// equals the Lox's bucket and that the new Lox being blind-issued
// carries the Migration's to_bucket.
type MigrationRequest struct {
	LoxP        *group.Point
	LoxShowing  *cred.Showing
	LoxRevealed map[int]*group.Scalar

	MigP        *group.Point
	MigShowing  *cred.Showing
	MigRevealed map[int]*group.Scalar

	D         *group.Point
	BucketEnc *cred.Ciphertext
	Proof     *zkp.Proof
}

// MigrationResponse carries the issuer-chosen revealed attributes of
// the new Lox (trust_level, level_since, invites_remaining, blockages)
// plus its blind issuance.
type MigrationResponse struct {
	Revealed map[int]*group.Scalar
	Issuance *IssuanceResponse
}

// HandleMigration implements handle_migration: verify the combined
// showing/linkage proof, confirm the shown Migration credential is a
// TrustUpgrade row for the same id as the Lox showing, consult (and
// record) the Lox id_filter, and blind-issue a trust_level=1 Lox whose
// bucket is the Migration credential's to_bucket.
func (iss *Issuer) HandleMigration(req *MigrationRequest, rng io.Reader) (*MigrationResponse, error) {
	iss.mu.Lock()
	defer iss.mu.Unlock()

	if req.LoxP.IsIdentity() || req.MigP.IsIdentity() {
		return nil, common.ErrVerificationFailure
	}
	level, ok := req.LoxRevealed[cred.LoxTrustLevel]
	if !ok || !level.Equal(group.FromUint64(0)) {
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
	if !ok || !migType.Equal(group.FromUint64(uint64(cred.TrustUpgrade))) {
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

	names := cred.NewMigrationSecretNames("migration")
	points := mergePoints(
		cred.ShowPoints("lox", loxPriv.Public(), req.LoxP, loxV, req.LoxShowing, cred.MigrationLoxPlan),
		cred.ShowPoints("mig", migPriv.Public(), req.MigP, migV, req.MigShowing, cred.MigrationCredPlan),
		cred.EncAttrPoints("newlox", cred.MigrationNewBucketIdx, req.BucketEnc, req.D),
	)
	stmt, err := zkp.NewStatement("migration/request", cred.MigrationRequestConstraints(names)...)
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
	revealed := map[int]*group.Scalar{
		cred.LoxID:               id,
		cred.LoxTrustLevel:       group.FromUint64(1),
		cred.LoxLevelSince:       groupFromUint32(today),
		cred.LoxInvitesRemaining: group.Zero(),
		cred.LoxBlockages:        group.Zero(),
	}
	blinded := map[int]*cred.BlindAttr{cred.LoxBucket: {Enc: req.BucketEnc}}
	issuance, _, err := blindIssueAndProve("lox", loxPriv, revealed, blinded, req.D, rng)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	return &MigrationResponse{Revealed: revealed, Issuance: issuance}, nil
}
