package issuer

import (
	"io"

	"github.com/asv/lox/bridgeauth"
	"github.com/asv/lox/cred"
	"github.com/asv/lox/filter"
	"github.com/asv/lox/group"
	"github.com/asv/lox/internal/common"
)

// OpenInviteRequest bootstraps a level-0 Lox credential from a signed
// open-invitation token, per §4.2.1. The token's invite_id/bucket_id
// are authenticated by the BridgeAuth collaborator, not by a user-side
// zkp proof, since there is no prior credential to show.
type OpenInviteRequest struct {
	Token []byte
	D     *group.Point
	IDEnc *cred.Ciphertext
}

// OpenInviteResponse carries the freshly blind-issued Lox credential's
// issuance, the revealed attribute values the issuer chose (bucket and
// level_since are not known to the client in advance), and a
// representative bridge line for the assigned bucket.
type OpenInviteResponse struct {
	Bridge   bridgeauth.BridgeLine
	Revealed map[int]*group.Scalar
	Issuance *IssuanceResponse
}

// HandleOpenInvite implements handle_open_invite: authenticate the
// token, replay-check its invite_id, verify the bucket is reachable,
// and blind-issue a fresh level-0 Lox credential whose id is the sum
// of the client's encrypted share and a fresh issuer-chosen offset.
func (iss *Issuer) HandleOpenInvite(req *OpenInviteRequest, rng io.Reader) (*OpenInviteResponse, error) {
	iss.mu.Lock()
	defer iss.mu.Unlock()

	inviteID, bucketID, err := iss.Auth.Verify(req.Token)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	if _, ok := iss.Bridges.Buckets[bucketID]; !ok {
		return nil, common.ErrVerificationFailure
	}
	status, err := iss.OpenInviteFilter.Current().Consult(inviteID)
	if err != nil || status == filter.Seen {
		return nil, common.ErrVerificationFailure
	}

	key := iss.Bridges.Keys[bucketID]
	today := iss.Dates.Today()
	revealed := map[int]*group.Scalar{
		cred.LoxBucket:           cred.PackBucket(bucketID, key),
		cred.LoxTrustLevel:       group.Zero(),
		cred.LoxLevelSince:       groupFromUint32(today),
		cred.LoxInvitesRemaining: group.Zero(),
		cred.LoxBlockages:        group.Zero(),
	}
	idOffset, err := group.RandomScalar(rng)
	if err != nil {
		return nil, err
	}
	blinded := map[int]*cred.BlindAttr{cred.LoxID: {Enc: req.IDEnc, Offset: idOffset}}

	issuance, _, err := blindIssueAndProve("lox", iss.Lox.Current().Priv, revealed, blinded, req.D, rng)
	if err != nil {
		return nil, common.ErrVerificationFailure
	}
	issuance.IDOffset = idOffset

	line, ok := iss.Bridges.Representative(bucketID)
	if !ok {
		return nil, common.ErrVerificationFailure
	}
	return &OpenInviteResponse{Bridge: line, Revealed: revealed, Issuance: issuance}, nil
}
