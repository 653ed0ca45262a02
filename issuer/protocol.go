package issuer

import (
	"io"
	"sort"

	"github.com/asv/lox/cred"
	"github.com/asv/lox/group"
	"github.com/asv/lox/internal/common"
	"github.com/asv/lox/zkp"
)

// mergePoints combines several point maps into one, used to assemble a
// combined zkp.Statement's Assignment from several credentials' and
// range/nonzero proofs' individual point maps.
func mergePoints(maps ...map[string]*group.Point) map[string]*group.Point {
	out := make(map[string]*group.Point)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func mergeScalars(maps ...map[string]*group.Scalar) map[string]*group.Scalar {
	out := make(map[string]*group.Scalar)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// verificationFail wraps any internal error (proof failure, filter
// hit, identity point, domain check) as the single generic
// ErrVerificationFailure the issuer returns for every rejected
// request, per §4.6 and §7's "server-side errors are intentionally
// uniform".
func verificationFail(err error) error {
	if err == nil {
		return nil
	}
	return common.ErrVerificationFailure
}

// IssuanceResponse is the wire-visible half of a blind-issuance result
// the issuer returns: the new MAC's P and EncQ, the helper points the
// issuance proof needs, and the proof itself. idOffset carries the
// issuer's share of a cooperatively-generated id attribute (see
// cred.BlindAttr); it is zero for protocols that reissue an existing
// id unchanged.
type IssuanceResponse struct {
	Result   *cred.BlindIssueResult
	Proof    *zkp.Proof
	IDOffset *group.Scalar
}

// blindIssueAndProve runs the issuer's half of §4.1's blind-issuance
// transformation: mint the new MAC homomorphically, then build the
// proof tying the response's published points to the issuer's
// witness. blindedIdx need not be supplied by the caller in any
// particular order; it is sorted so the resulting Statement's
// constraint order (and therefore its transcript) is deterministic.
func blindIssueAndProve(credName string, priv *cred.PrivateKey, revealed map[int]*group.Scalar, blinded map[int]*cred.BlindAttr, userPub *group.Point, rng io.Reader) (*IssuanceResponse, map[string]*group.Point, error) {
	result, witness, err := cred.BlindIssue(priv, revealed, blinded, userPub, rng)
	if err != nil {
		return nil, nil, err
	}
	blindedIdx := make([]int, 0, len(blinded))
	for idx := range blinded {
		blindedIdx = append(blindedIdx, idx)
	}
	sort.Ints(blindedIdx)
	cons := cred.IssueConstraints(credName, blindedIdx)
	stmt, err := zkp.NewStatement(credName+"/issue", cons...)
	if err != nil {
		return nil, nil, err
	}
	pub := priv.Public()
	points := cred.IssuePoints(credName, pub, revealed, blinded, userPub, result)
	secrets := cred.IssueSecrets(credName, priv, witness)
	proof, err := zkp.Prove(stmt, zkp.Assignment{Points: points, Secrets: secrets})
	if err != nil {
		return nil, nil, err
	}
	return &IssuanceResponse{Result: result, Proof: proof}, points, nil
}
