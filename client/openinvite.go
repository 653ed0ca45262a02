package client

import (
	"io"

	"github.com/asv/lox/bridgeauth"
	"github.com/asv/lox/cred"
	"github.com/asv/lox/group"
	"github.com/asv/lox/issuer"
)

// OpenInviteState is the ephemeral state request_open_invite produces,
// consumed exactly once by HandleOpenInviteResponse.
type OpenInviteState struct {
	elgamal *cred.ElGamalKeyPair
	idShare *group.Scalar
	idEnc   *cred.Ciphertext
}

// RequestOpenInvite builds the Request half of §4.2.1: generate an
// ephemeral ElGamal key, draw a random id share, and encrypt it for
// the issuer's blind-issuance step.
func RequestOpenInvite(token []byte, rng io.Reader) (*issuer.OpenInviteRequest, *OpenInviteState, error) {
	eg, err := cred.GenerateElGamalKeyPair(rng)
	if err != nil {
		return nil, nil, err
	}
	idShare, err := group.RandomScalar(rng)
	if err != nil {
		return nil, nil, err
	}
	enc, _, err := cred.EncryptAttr(eg.Pub, idShare, rng)
	if err != nil {
		return nil, nil, err
	}
	req := &issuer.OpenInviteRequest{Token: token, D: eg.Pub, IDEnc: enc}
	return req, &OpenInviteState{elgamal: eg, idShare: idShare, idEnc: enc}, nil
}

// HandleOpenInviteResponse verifies resp's issuance proof under the
// issuer's current Lox public key and reconstructs the new Lox
// credential: its id is the sum of this client's share and the
// issuer's published offset (cred.BlindAttr's cooperative-generation
// mechanism).
func HandleOpenInviteResponse(state *OpenInviteState, resp *issuer.OpenInviteResponse, loxPub *cred.PublicKey) (*cred.MAC, cred.LoxAttrs, bridgeauth.BridgeLine, error) {
	blinded := map[int]*cred.BlindAttr{cred.LoxID: {Enc: state.idEnc, Offset: resp.Issuance.IDOffset}}
	if err := verifyIssuance("lox", loxPub, resp.Revealed, blinded, state.elgamal.Pub, resp.Issuance); err != nil {
		return nil, cred.LoxAttrs{}, bridgeauth.BridgeLine{}, err
	}
	mac := decryptMAC(state.elgamal.Priv, resp.Issuance)
	attrs := cred.LoxAttrsFromMap(map[int]*group.Scalar{
		cred.LoxID:               state.idShare.Add(resp.Issuance.IDOffset),
		cred.LoxBucket:           resp.Revealed[cred.LoxBucket],
		cred.LoxTrustLevel:       resp.Revealed[cred.LoxTrustLevel],
		cred.LoxLevelSince:       resp.Revealed[cred.LoxLevelSince],
		cred.LoxInvitesRemaining: resp.Revealed[cred.LoxInvitesRemaining],
		cred.LoxBlockages:        resp.Revealed[cred.LoxBlockages],
	})
	return mac, attrs, resp.Bridge, nil
}
