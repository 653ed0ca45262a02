package client

import (
	"io"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/group"
	"github.com/asv/lox/issuer"
	"github.com/asv/lox/zkp"
)

// UpdateCredState is the ephemeral state RequestUpdateCred produces,
// consumed by HandleUpdateCredResponse.
type UpdateCredState struct {
	elgamal *cred.ElGamalKeyPair
}

// RequestUpdateCred builds §4.2.8's request for the Lox credential
// type: show a Lox credential under a retired generation's public key
// (since all attributes are revealed, none are hidden) and request an
// identical-attribute reissue under the current key.
func RequestUpdateCred(retiredPub *cred.PublicKey, generation int, loxMAC *cred.MAC, loxAttrs cred.LoxAttrs, rng io.Reader) (*issuer.UpdateCredRequest, *UpdateCredState, error) {
	showing, witness, err := cred.Show(loxMAC, loxAttrs.Map(), issuer.UpdateCredPlan, rng)
	if err != nil {
		return nil, nil, err
	}
	v, err := cred.ShowVPoint(retiredPub, showing, witness, issuer.UpdateCredPlan)
	if err != nil {
		return nil, nil, err
	}

	eg, err := cred.GenerateElGamalKeyPair(rng)
	if err != nil {
		return nil, nil, err
	}

	revealed := loxAttrs.Map()
	points := cred.ShowPoints("lox", retiredPub, showing.P, v, showing, issuer.UpdateCredPlan)
	secrets := cred.ShowSecrets("lox", witness, issuer.UpdateCredPlan, nil)
	stmt, err := zkp.NewStatement("updatecred/request", cred.ShowConstraints("lox", issuer.UpdateCredPlan, nil)...)
	if err != nil {
		return nil, nil, err
	}
	proof, err := zkp.Prove(stmt, zkp.Assignment{Points: points, Secrets: secrets})
	if err != nil {
		return nil, nil, err
	}

	req := &issuer.UpdateCredRequest{
		Generation: generation,
		P:          showing.P,
		Showing:    showing,
		Revealed:   revealed,
		D:          eg.Pub,
		Proof:      proof,
	}
	return req, &UpdateCredState{elgamal: eg}, nil
}

// HandleUpdateCredResponse verifies resp's issuance proof and
// reconstructs the credential under the current key. Its attributes
// are unchanged from loxAttrs; only the MAC is fresh.
func HandleUpdateCredResponse(state *UpdateCredState, resp *issuer.UpdateCredResponse, loxPub *cred.PublicKey) (*cred.MAC, cred.LoxAttrs, error) {
	if err := verifyIssuance("lox", loxPub, resp.Revealed, nil, state.elgamal.Pub, resp.Issuance); err != nil {
		return nil, cred.LoxAttrs{}, err
	}
	mac := decryptMAC(state.elgamal.Priv, resp.Issuance)
	attrs := cred.LoxAttrsFromMap(resp.Revealed)
	return mac, attrs, nil
}
