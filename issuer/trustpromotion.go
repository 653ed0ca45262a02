package issuer

import (
	"io"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/filter"
	"github.com/asv/lox/group"
	"github.com/asv/lox/internal/common"
	"github.com/asv/lox/migrationtable"
	"github.com/asv/lox/zkp"
)

// TrustPromotionRequest is trust_promotion's combined request, the
// same shape as CheckBlockageRequest (§4.2.2 notes it mirrors
// check_blockage's MigrationKey machinery, keyed on TrustUpgrade
// instead of Blockage and without the trust-level floor).
type TrustPromotionRequest struct {
	P         *group.Point
	Showing   *cred.Showing
	Revealed  map[int]*group.Scalar
	D         *group.Point
	BucketEnc *cred.Ciphertext
	Proof     *zkp.Proof
}

// TrustPromotionResponse carries the blind-issued MigrationKey MAC and
// the encrypted migration table built from the issuer's TrustUpgrade
// routes.
type TrustPromotionResponse struct {
	Issuance *IssuanceResponse
	Table    migrationtable.Table
}

// HandleTrustPromotion implements the level-0-to-1 upgrade's first
// step: verify the combined showing/linkage proof, require
// trust_level == 0 exactly (a level-0 credential has not yet run
// check_blockage's MIN_TRUST_LEVEL gate, so it is promoted
// unconditionally once it exists), check (without recording) the Lox
// id_filter, and build the MigrationKey response against the
// TrustUpgrade migration inventory.
func (iss *Issuer) HandleTrustPromotion(req *TrustPromotionRequest, rng io.Reader) (*TrustPromotionResponse, error) {
	iss.mu.Lock()
	defer iss.mu.Unlock()

	if req.P.IsIdentity() {
		return nil, common.ErrVerificationFailure
	}
	level, ok := req.Revealed[cred.LoxTrustLevel]
	if !ok || !level.Equal(group.FromUint64(0)) {
		return nil, common.ErrVerificationFailure
	}
	id, ok := req.Revealed[cred.LoxID]
	if !ok {
		return nil, common.ErrVerificationFailure
	}

	priv := iss.Lox.Current().Priv
	vPoint, err := cred.RecomputeVerificationPoint(priv, req.P, req.Revealed, req.Showing)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	pub := priv.Public()
	points := mergePoints(
		cred.ShowPoints("lox", pub, req.P, vPoint, req.Showing, cred.BlockageCheckPlan),
		cred.EncAttrPoints("blockagecheck", cred.BlockageCheckEncAttrIdx, req.BucketEnc, req.D),
	)
	stmt, err := zkp.NewStatement("checkblockage/request", cred.BlockageCheckConstraints()...)
	if err != nil {
		return nil, verificationFail(err)
	}
	if err := zkp.Verify(stmt, req.Proof, points); err != nil {
		return nil, common.ErrVerificationFailure
	}

	status, err := iss.Lox.Current().Filter.Check(id)
	if err != nil || status == filter.Seen {
		return nil, common.ErrVerificationFailure
	}

	mkResp, err := iss.buildMigrationKeyResponse(cred.TrustUpgrade, id, req.BucketEnc, req.D, rng)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	return &TrustPromotionResponse{Issuance: mkResp.Issuance, Table: mkResp.Table}, nil
}
