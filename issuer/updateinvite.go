package issuer

import (
	"io"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/filter"
	"github.com/asv/lox/group"
	"github.com/asv/lox/internal/common"
	"github.com/asv/lox/zkp"
)

// UpdateInvitePlan reveals every Invitation attribute, mirroring
// UpdateCredPlan's reasoning for the Invitation credential type.
var UpdateInvitePlan = cred.AttrPlan{
	Revealed: []int{cred.InvitationInvID, cred.InvitationDate, cred.InvitationBucket, cred.InvitationBlockages},
}

// UpdateInviteRequest is §4.2.8's request for the Invitation credential
// type: show an Invitation credential still valid under a retired key
// generation and blind-issue an identical-attribute credential under
// the current key.
type UpdateInviteRequest struct {
	Generation int
	P          *group.Point
	Showing    *cred.Showing
	Revealed   map[int]*group.Scalar

	D     *group.Point
	Proof *zkp.Proof
}

// UpdateInviteResponse carries the reissued Invitation's revealed
// attributes plus its blind issuance under the current key.
type UpdateInviteResponse struct {
	Revealed map[int]*group.Scalar
	Issuance *IssuanceResponse
}

// HandleUpdateInvite implements handle_update_invite: verify the
// showing under the named retired generation's key, consult that
// generation's own inv_id_filter, and blind-issue an unchanged
// Invitation under the current key.
func (iss *Issuer) HandleUpdateInvite(req *UpdateInviteRequest, rng io.Reader) (*UpdateInviteResponse, error) {
	iss.mu.Lock()
	defer iss.mu.Unlock()

	if req.P.IsIdentity() {
		return nil, common.ErrVerificationFailure
	}
	if req.Generation < 0 || req.Generation >= common.UpdateGraceGenerations {
		return nil, common.ErrVerificationFailure
	}
	gen, err := iss.Invitation.Retired(req.Generation)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	invID, ok := req.Revealed[cred.InvitationInvID]
	if !ok {
		return nil, common.ErrVerificationFailure
	}

	v, err := cred.RecomputeVerificationPoint(gen.Priv, req.P, req.Revealed, req.Showing)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	points := cred.ShowPoints("invitation", gen.Pub, req.P, v, req.Showing, UpdateInvitePlan)
	stmt, err := zkp.NewStatement("updateinvite/request", cred.ShowConstraints("invitation", UpdateInvitePlan, nil)...)
	if err != nil {
		return nil, verificationFail(err)
	}
	if err := zkp.Verify(stmt, req.Proof, points); err != nil {
		return nil, common.ErrVerificationFailure
	}

	status, err := gen.Filter.Consult(invID)
	if err != nil || status == filter.Seen {
		return nil, common.ErrVerificationFailure
	}

	issuance, _, err := blindIssueAndProve("invitation", iss.Invitation.Current().Priv, req.Revealed, nil, req.D, rng)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	return &UpdateInviteResponse{Revealed: req.Revealed, Issuance: issuance}, nil
}
