package client

import (
	"io"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/issuer"
	"github.com/asv/lox/zkp"
)

// UpdateInviteState is the ephemeral state RequestUpdateInvite
// produces, consumed by HandleUpdateInviteResponse.
type UpdateInviteState struct {
	elgamal *cred.ElGamalKeyPair
}

// RequestUpdateInvite builds §4.2.8's request for the Invitation
// credential type, mirroring RequestUpdateCred.
func RequestUpdateInvite(retiredPub *cred.PublicKey, generation int, invMAC *cred.MAC, invAttrs cred.InvitationAttrs, rng io.Reader) (*issuer.UpdateInviteRequest, *UpdateInviteState, error) {
	showing, witness, err := cred.Show(invMAC, invAttrs.Map(), issuer.UpdateInvitePlan, rng)
	if err != nil {
		return nil, nil, err
	}
	v, err := cred.ShowVPoint(retiredPub, showing, witness, issuer.UpdateInvitePlan)
	if err != nil {
		return nil, nil, err
	}

	eg, err := cred.GenerateElGamalKeyPair(rng)
	if err != nil {
		return nil, nil, err
	}

	revealed := invAttrs.Map()
	points := cred.ShowPoints("invitation", retiredPub, showing.P, v, showing, issuer.UpdateInvitePlan)
	secrets := cred.ShowSecrets("invitation", witness, issuer.UpdateInvitePlan, nil)
	stmt, err := zkp.NewStatement("updateinvite/request", cred.ShowConstraints("invitation", issuer.UpdateInvitePlan, nil)...)
	if err != nil {
		return nil, nil, err
	}
	proof, err := zkp.Prove(stmt, zkp.Assignment{Points: points, Secrets: secrets})
	if err != nil {
		return nil, nil, err
	}

	req := &issuer.UpdateInviteRequest{
		Generation: generation,
		P:          showing.P,
		Showing:    showing,
		Revealed:   revealed,
		D:          eg.Pub,
		Proof:      proof,
	}
	return req, &UpdateInviteState{elgamal: eg}, nil
}

// HandleUpdateInviteResponse verifies resp's issuance proof and
// reconstructs the Invitation credential under the current key.
func HandleUpdateInviteResponse(state *UpdateInviteState, resp *issuer.UpdateInviteResponse, invitationPub *cred.PublicKey) (*cred.MAC, cred.InvitationAttrs, error) {
	if err := verifyIssuance("invitation", invitationPub, resp.Revealed, nil, state.elgamal.Pub, resp.Issuance); err != nil {
		return nil, cred.InvitationAttrs{}, err
	}
	mac := decryptMAC(state.elgamal.Priv, resp.Issuance)
	attrs := cred.InvitationAttrs{
		InvID:     resp.Revealed[cred.InvitationInvID],
		Date:      resp.Revealed[cred.InvitationDate],
		Bucket:    resp.Revealed[cred.InvitationBucket],
		Blockages: resp.Revealed[cred.InvitationBlockages],
	}
	return mac, attrs, nil
}
