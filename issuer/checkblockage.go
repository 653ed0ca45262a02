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

// CheckBlockageRequest is §4.2.6's combined request: a Lox showing
// (id and trust_level revealed, everything else blinded) plus an
// ElGamal encryption of the bucket attribute under an ephemeral key D,
// tied together by one compact proof (cred.BlockageCheckConstraints).
type CheckBlockageRequest struct {
	P         *group.Point
	Showing   *cred.Showing
	Revealed  map[int]*group.Scalar
	D         *group.Point
	BucketEnc *cred.Ciphertext
	Proof     *zkp.Proof
}

// CheckBlockageResponse carries the blind-issued MigrationKey MAC and
// the encrypted migration table built from the issuer's Blockage
// routes.
type CheckBlockageResponse struct {
	Issuance *IssuanceResponse
	Table    migrationtable.Table
}

// HandleCheckBlockage implements handle_check_blockage: verify the
// combined showing/linkage proof (recomputing V from the issuer's own
// key rather than trusting the requester's), require trust_level in
// MinTrustLevelForBlockageCheck..MaxLevel, check (without recording)
// the Lox id_filter so the protocol can be retried, then build the
// MigrationKey response against the Blockage migration inventory.
func (iss *Issuer) HandleCheckBlockage(req *CheckBlockageRequest, rng io.Reader) (*CheckBlockageResponse, error) {
	iss.mu.Lock()
	defer iss.mu.Unlock()

	if req.P.IsIdentity() {
		return nil, common.ErrVerificationFailure
	}
	level, ok := req.Revealed[cred.LoxTrustLevel]
	if !ok || !levelInRange(level, cred.MinTrustLevelForBlockageCheck, cred.MaxLevel) {
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

	mkResp, err := iss.buildMigrationKeyResponse(cred.Blockage, id, req.BucketEnc, req.D, rng)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	return &CheckBlockageResponse{Issuance: mkResp.Issuance, Table: mkResp.Table}, nil
}
