package issuer

import (
	"io"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/filter"
	"github.com/asv/lox/group"
	"github.com/asv/lox/internal/common"
	"github.com/asv/lox/zkp"
)

// UpdateCredPlan reveals every Lox attribute: update_cred changes
// nothing about the credential's contents, only its signing key, so
// there is nothing left to hide behind a Pedersen commitment.
var UpdateCredPlan = cred.AttrPlan{
	Revealed: []int{cred.LoxID, cred.LoxBucket, cred.LoxTrustLevel, cred.LoxLevelSince, cred.LoxInvitesRemaining, cred.LoxBlockages},
}

// UpdateCredRequest is §4.2.8's request: show a Lox credential still
// valid under a retired key generation and blind-issue an
// identical-attribute credential under the current key. Generation
// indexes iss.Lox's retired history (0 = most recently retired),
// bounded by common.UpdateGraceGenerations.
type UpdateCredRequest struct {
	Generation int
	P          *group.Point
	Showing    *cred.Showing
	Revealed   map[int]*group.Scalar

	D     *group.Point
	Proof *zkp.Proof
}

// UpdateCredResponse carries the reissued Lox's revealed attributes
// (identical to the request's) plus its blind issuance under the
// current key.
type UpdateCredResponse struct {
	Revealed map[int]*group.Scalar
	Issuance *IssuanceResponse
}

// HandleUpdateCred implements handle_update_cred: verify the showing
// under the named retired generation's key, consult that generation's
// own id_filter (so a credential already updated once cannot be
// updated again under the same retired key), and blind-issue an
// unchanged Lox under the current key.
func (iss *Issuer) HandleUpdateCred(req *UpdateCredRequest, rng io.Reader) (*UpdateCredResponse, error) {
	iss.mu.Lock()
	defer iss.mu.Unlock()

	if req.P.IsIdentity() {
		return nil, common.ErrVerificationFailure
	}
	if req.Generation < 0 || req.Generation >= common.UpdateGraceGenerations {
		return nil, common.ErrVerificationFailure
	}
	gen, err := iss.Lox.Retired(req.Generation)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	id, ok := req.Revealed[cred.LoxID]
	if !ok {
		return nil, common.ErrVerificationFailure
	}

	v, err := cred.RecomputeVerificationPoint(gen.Priv, req.P, req.Revealed, req.Showing)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	points := cred.ShowPoints("lox", gen.Pub, req.P, v, req.Showing, UpdateCredPlan)
	stmt, err := zkp.NewStatement("updatecred/request", cred.ShowConstraints("lox", UpdateCredPlan, nil)...)
	if err != nil {
		return nil, verificationFail(err)
	}
	if err := zkp.Verify(stmt, req.Proof, points); err != nil {
		return nil, common.ErrVerificationFailure
	}

	status, err := gen.Filter.Consult(id)
	if err != nil || status == filter.Seen {
		return nil, common.ErrVerificationFailure
	}

	issuance, _, err := blindIssueAndProve("lox", iss.Lox.Current().Priv, req.Revealed, nil, req.D, rng)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	return &UpdateCredResponse{Revealed: req.Revealed, Issuance: issuance}, nil
}
